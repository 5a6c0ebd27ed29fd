package validation_test

import (
	"testing"

	"messageapp/internal/apperr"
	"messageapp/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password" validate:"required,min=6"`
	Tags     []string `json:"tags" validate:"required,min=1"`
	Nickname *string  `json:"nickname" validate:"omitempty,min=3"`
}

func TestStructReportsJSONFieldNames(t *testing.T) {
	v := validation.New()
	short := "ab"
	err := v.Struct(signup{Email: "nope", Password: "123", Nickname: &short})
	require.Error(t, err)

	var e *apperr.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, apperr.KindValidation, e.Kind)

	byField := map[string]string{}
	for _, f := range e.Fields {
		byField[f.Field] = f.Message
	}
	assert.Equal(t, "must be a valid email address", byField["email"])
	assert.Equal(t, "must be at least 6 characters long", byField["password"])
	assert.Equal(t, "is required", byField["tags"])
	assert.Equal(t, "must be at least 3 characters long", byField["nickname"])
}

func TestStructAcceptsValidInput(t *testing.T) {
	v := validation.New()
	assert.NoError(t, v.Struct(signup{Email: "a@x.com", Password: "secret1", Tags: []string{"x"}}))
}
