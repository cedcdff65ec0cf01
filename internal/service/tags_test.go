package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"postboard/internal/model"
)

func TestParseTags(t *testing.T) {
	tests := []struct {
		name string
		csv  string
		want []string
	}{
		{name: "empty", csv: "", want: []string{}},
		{name: "only separators", csv: " , ,, ", want: []string{}},
		{name: "duplicates", csv: "a, a, b", want: []string{"a", "b"}},
		{name: "first seen order", csv: "c,b,a,b,c", want: []string{"c", "b", "a"}},
		{name: "case sensitive", csv: "Go,go", want: []string{"Go", "go"}},
		{name: "capped at ten", csv: "1,2,3,4,5,6,7,8,9,10,11,12", want: []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10"}},
		{name: "duplicates do not use up the cap", csv: "1,1,2,3,4,5,6,7,8,9,10", want: []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseTags(tt.csv)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, len(got), model.MaxTagsPerPost)
		})
	}
}

func TestNormalizeTags_NeverNil(t *testing.T) {
	assert.NotNil(t, NormalizeTags(nil))
}

func TestPolicies(t *testing.T) {
	owner := &model.User{ID: 1}
	other := &model.User{ID: 2}
	post := &model.Post{ID: 10, UserID: 1}
	comment := &model.Comment{ID: 20, UserID: 2}

	assert.True(t, CanModifyPost(owner, post))
	assert.False(t, CanModifyPost(other, post))
	assert.False(t, CanModifyPost(nil, post))
	assert.True(t, CanModifyComment(other, comment))
	assert.False(t, CanModifyComment(owner, comment))
	assert.False(t, CanModifyComment(&model.User{}, &model.Comment{}))
}
