package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "postboard/internal/errors"
)

type signup struct {
	Name                 string `json:"name" validate:"required"`
	Email                string `json:"email" validate:"required,email"`
	Password             string `json:"password" validate:"required,min=6,eqfield=PasswordConfirmation"`
	PasswordConfirmation string `json:"password_confirmation"`
	Bio                  string `json:"bio" validate:"max=5"`
}

func TestValidator_Struct(t *testing.T) {
	v := New()

	tests := []struct {
		name     string
		input    signup
		expected map[string][]string
	}{
		{
			name:  "valid",
			input: signup{Name: "u1", Email: "u1@x.com", Password: "secret", PasswordConfirmation: "secret"},
		},
		{
			name:  "missing fields",
			input: signup{},
			expected: map[string][]string{
				"name":     {"The name field is required."},
				"email":    {"The email field is required."},
				"password": {"The password field is required."},
			},
		},
		{
			name:  "bad email, short password and long bio",
			input: signup{Name: "u1", Email: "nope", Password: "abc", PasswordConfirmation: "abc", Bio: "toolong"},
			expected: map[string][]string{
				"email":    {"The email field must be a valid email address."},
				"password": {"The password field must be at least 6 characters."},
				"bio":      {"The bio field must not be greater than 5 characters."},
			},
		},
		{
			name:  "confirmation mismatch",
			input: signup{Name: "u1", Email: "u1@x.com", Password: "secret", PasswordConfirmation: "secreT"},
			expected: map[string][]string{
				"password": {"The password field confirmation does not match."},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.input)
			if tt.expected == nil {
				assert.NoError(t, err)
				return
			}
			var verr *apperrors.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.expected, verr.Fields)
		})
	}
}
