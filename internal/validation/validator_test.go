package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signInBody struct {
	Email       string `json:"email" validate:"required,email"`
	CallbackURL string `json:"callbackUrl" validate:"omitempty,startswith=/"`
	CSRFToken   string `json:"csrfToken" validate:"required"`
}

func TestValidateStruct_OK(t *testing.T) {
	assert.NoError(t, ValidateStruct(signInBody{Email: "a@example.com", CSRFToken: "t", CallbackURL: "/admin"}))
}

func TestValidateStruct_InvalidEmail(t *testing.T) {
	err := ValidateStruct(signInBody{Email: "not-an-email"})
	require.Error(t, err)

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "invalid email, and 1 other error", ve.Error())
	assert.Equal(t, []string{"must be a valid email"}, ve.Fields()["email"])
	assert.Equal(t, []string{"is required"}, ve.Fields()["csrfToken"])
	assert.Equal(t, 400, ve.ProblemStatus())
	assert.Equal(t, "ErrValidation", ve.ProblemCode())
}

func TestValidateStruct_StableSummary(t *testing.T) {
	for i := 0; i < 10; i++ {
		err := ValidateStruct(signInBody{Email: "a@example.com", CallbackURL: "https://evil.example.com"})
		require.Error(t, err)
		assert.Equal(t, `callbackUrl must start with "/", and 1 other error`, err.Error())
	}
}

func TestVar(t *testing.T) {
	assert.NoError(t, Var("smtpFrom", "noreply@example.com", "email"))

	err := Var("smtpPort", 70000, "gte=1,lte=65535")
	require.Error(t, err)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, []string{"must be 65535 or less"}, ve.Fields()["smtpPort"])
	assert.Equal(t, "smtpPort must be 65535 or less", ve.Error())
}

func TestVar_Port(t *testing.T) {
	assert.NoError(t, Var("smtpPort", "587", "port"))
	assert.NoError(t, Var("smtpPort", 465, "port"))
	assert.NoError(t, Var("smtpPort", "", "omitempty,port"))

	for _, bad := range []any{"0", "65536", "abc", -1} {
		err := Var("smtpPort", bad, "port")
		var ve *ValidationError
		require.ErrorAs(t, err, &ve, "%v", bad)
		assert.Equal(t, "smtpPort must be a port between 1 and 65535", ve.Error())
	}
}

type untagged struct {
	DisplayName string `validate:"required"`
}

func TestValidateStruct_FallsBackToLowerCamelName(t *testing.T) {
	var ve *ValidationError
	require.ErrorAs(t, ValidateStruct(untagged{}), &ve)
	assert.Equal(t, []string{"is required"}, ve.Fields()["displayName"])
}
