package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"postboard/internal/config"
	"postboard/internal/db"
	"postboard/internal/events"
	"postboard/internal/logging"
	"postboard/internal/model"
	"postboard/internal/repository"
	"postboard/internal/service"
	"postboard/internal/validation"
)

const seedPassword = "password"

type seedUser struct {
	Name  string
	Email string
}

type seedPost struct {
	Content string
	Tags    []string
	Image   string
}

var (
	seedUsers = []seedUser{
		{Name: "Alice Example", Email: "alice@example.com"},
		{Name: "Bob Example", Email: "bob@example.com"},
		{Name: "Carol Example", Email: "carol@example.com"},
	}

	seedPosts = []seedPost{
		{Content: "Hello from the seeder!", Tags: []string{"intro", "hello"}, Image: "sample1.jpg"},
		{Content: "Weekend hike photos.", Tags: []string{"outdoors", "photos"}, Image: "sample2.jpg"},
		{Content: "Trying out the new coffee place downtown.", Tags: []string{"food"}, Image: "sample3.jpg"},
		{Content: "Anyone up for a game night?", Tags: []string{"games", "friends"}},
	}

	seedComments = []string{"Nice one!", "Thanks for sharing."}
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	logger.Info("starting seed script")

	gormDB, err := db.New(cfg.DBDriver, cfg.DBDSN, cfg.DBLogLevel)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to database")
	}
	if err := db.Migrate(gormDB); err != nil {
		logger.WithError(err).Fatal("failed to run migrations")
	}
	logger.Info("database migrations completed")

	ctx := context.Background()
	userRepo := repository.NewUserRepository(gormDB)
	postRepo := repository.NewPostRepository(gormDB)
	validator := validation.New()
	postService := service.NewPostService(postRepo, validator, events.NopPublisher{})
	commentService := service.NewCommentService(repository.NewCommentRepository(gormDB), postRepo, validator, events.NopPublisher{})

	vocabulary := make([]string, 0)
	for _, p := range seedPosts {
		vocabulary = append(vocabulary, p.Tags...)
	}
	tags, err := repository.NewTagRepository(gormDB).FirstOrCreate(ctx, vocabulary)
	if err != nil {
		logger.WithError(err).Fatal("failed to seed tags")
	}
	logger.WithField("count", len(tags)).Info("tags ready")

	users, created, err := seedAccounts(ctx, userRepo)
	if err != nil {
		logger.WithError(err).Fatal("failed to seed users")
	}
	if created == 0 {
		logger.Info("users already present, skipping posts and comments")
		return
	}

	posts, comments := 0, 0
	for i, sp := range seedPosts {
		author := users[i%len(users)]
		post, err := postService.Create(ctx, author, service.CreatePostInput{
			Content: sp.Content,
			TagList: sp.Tags,
			Image:   loadImage(cfg.SeedImageDir, sp.Image, logger),
		})
		if err != nil {
			logger.WithError(err).WithField("content", sp.Content).Fatal("failed to seed post")
		}
		posts++

		for j, text := range seedComments {
			commenter := users[(i+j+1)%len(users)]
			if _, err := commentService.Create(ctx, commenter, post.ID, service.CreateCommentInput{Content: text}); err != nil {
				logger.WithError(err).WithField("post_id", post.ID).Fatal("failed to seed comment")
			}
			comments++
		}
	}

	logger.WithFields(logrus.Fields{
		"users":    created,
		"posts":    posts,
		"comments": comments,
	}).Info("seed completed successfully")
}

// seedAccounts creates the demo users that do not exist yet and returns all of them.
func seedAccounts(ctx context.Context, repo repository.UserRepository) ([]*model.User, int, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, 0, fmt.Errorf("hash password: %w", err)
	}

	users := make([]*model.User, 0, len(seedUsers))
	created := 0
	for _, su := range seedUsers {
		existing, err := repo.FindByEmail(ctx, su.Email)
		if err == nil {
			users = append(users, existing)
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, created, fmt.Errorf("check user %s: %w", su.Email, err)
		}

		user := &model.User{Name: su.Name, Email: su.Email, PasswordHash: string(hash)}
		if err := repo.Create(ctx, user); err != nil {
			return nil, created, fmt.Errorf("create user %s: %w", su.Email, err)
		}
		users = append(users, user)
		created++
	}
	return users, created, nil
}

// loadImage reads name from dir. A missing directory or file yields a text-only post.
func loadImage(dir, name string, logger logrus.FieldLogger) *service.ImageUpload {
	if dir == "" || name == "" {
		return nil
	}
	path := filepath.Join(dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		logger.WithError(err).WithField("path", path).Warn("seed image not found")
		return nil
	}
	return &service.ImageUpload{Filename: name, Data: data, Size: int64(len(data))}
}
