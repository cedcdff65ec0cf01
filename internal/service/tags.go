package service

import (
	"strings"

	"postboard/internal/model"
)

// ParseTags splits a comma separated tag string and normalises the result.
func ParseTags(csv string) []string {
	return NormalizeTags(strings.Split(csv, ","))
}

// NormalizeTags trims names, drops empties and duplicates, and keeps the
// first model.MaxTagsPerPost names in order of first appearance.
// The result is never nil.
func NormalizeTags(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
		if len(out) == model.MaxTagsPerPost {
			break
		}
	}
	return out
}

// tagNames returns the names of tags in order.
func tagNames(tags []model.Tag) []string {
	names := make([]string, 0, len(tags))
	for _, tag := range tags {
		names = append(names, tag.Name)
	}
	return names
}
