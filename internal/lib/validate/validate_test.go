package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name,omitempty" validate:"max=3"`
	Kind  string `json:"kind" validate:"oneof=income expense"`
}

func TestFields(t *testing.T) {
	v := New()

	err := v.Struct(sample{Email: "nope", Name: "toolong", Kind: "x"})
	require.Error(t, err)

	fields := Fields(err)
	assert.Equal(t, map[string]string{
		"email": "must be a valid email address",
		"name":  "must be at most 3 characters",
		"kind":  "must be one of: income expense",
	}, fields)
}

func TestFields_Required(t *testing.T) {
	err := New().Struct(sample{Kind: "income"})
	require.Error(t, err)

	assert.Equal(t, "is required", Fields(err)["email"])
}

func TestFields_NonValidationError(t *testing.T) {
	fields := Fields(errors.New("boom"))
	assert.Equal(t, map[string]string{"_": "boom"}, fields)
}

func TestNewWithTag(t *testing.T) {
	type cfg struct {
		Port int `env:"PORT" validate:"min=1"`
	}

	err := NewWithTag("env").Struct(cfg{})
	require.Error(t, err)
	assert.Contains(t, Fields(err), "PORT")
}
