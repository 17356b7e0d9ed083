package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Range    string `query:"range" validate:"omitempty,oneof=7days 30days all"`
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required,min=8"`
	Note     string `json:"-" validate:"max=3"`
}

func TestValidate_FieldNamesFromTags(t *testing.T) {
	v := New()

	err := v.Validate(&sample{Range: "1year", Email: "nope", Password: "short", Note: "toolong"})
	require.Error(t, err)

	errs, ok := err.(ValidationErrors)
	require.True(t, ok)

	byField := map[string]ValidationError{}
	for _, e := range errs {
		byField[e.Field] = e
	}

	assert.Equal(t, "oneof", byField["range"].Tag)
	assert.Equal(t, "range must be one of: 7days 30days all", byField["range"].Message)
	assert.Equal(t, "email must be a valid email address", byField["email"].Message)
	assert.Equal(t, "password must be at least 8", byField["password"].Message)
	assert.Empty(t, byField["password"].Value)
	assert.Equal(t, "max", byField["Note"].Tag)
}

func TestValidate_Valid(t *testing.T) {
	assert.NoError(t, New().Validate(&sample{Range: "7days", Email: "ana@example.com", Password: "long-enough"}))
}

func TestValidationErrors_Error(t *testing.T) {
	tests := []struct {
		name     string
		errs     ValidationErrors
		expected string
	}{
		{"empty", ValidationErrors{}, ""},
		{"single", ValidationErrors{{Message: "email is required"}}, "email is required"},
		{
			"multiple",
			ValidationErrors{{Message: "email is required"}, {Message: "range must be one of: 7days 30days all"}},
			"email is required; range must be one of: 7days 30days all",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.errs.Error())
		})
	}
}
