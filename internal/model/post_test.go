package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPost_FillImageBase64(t *testing.T) {
	mime := "image/png"
	tests := []struct {
		name string
		post Post
		want *string
	}{
		{name: "no image", post: Post{}, want: nil},
		{name: "bytes without mime", post: Post{ImageData: []byte("abc")}, want: nil},
		{name: "png", post: Post{ImageData: []byte("abc"), ImageMime: &mime}, want: strPtr("data:image/png;base64,YWJj")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.post
			p.FillImageBase64()
			assert.Equal(t, tt.want, p.ImageBase64)
		})
	}
}

func TestPost_JSONHidesRawImage(t *testing.T) {
	mime := "image/gif"
	content := "hello"
	p := Post{ID: 3, UserID: 1, Content: &content, ImageData: []byte("GIF89a"), ImageMime: &mime}
	require.NoError(t, p.AfterFind(nil))

	raw, err := json.Marshal(p)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.NotContains(t, body, "ImageData")
	assert.Equal(t, "data:image/gif;base64,R0lGODlh", body["image_base64"])
	assert.Equal(t, "hello", body["content"])
}

func TestUser_JSONHidesPasswordHash(t *testing.T) {
	raw, err := json.Marshal(User{ID: 1, Name: "alice", Email: "a@x.com", PasswordHash: "$2a$10$secret"})
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret")
}

func strPtr(s string) *string { return &s }
