package jwttoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "trichluc/pkg/domain-errors"
)

func TestGenerateAndValidate(t *testing.T) {
	svc := NewJWTService("test-signing-key", "trichluc")

	token, err := svc.GenerateAccessToken("clerk-1", "Nguyễn Văn A", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "clerk-1", claims.Operator)
	assert.Equal(t, "Nguyễn Văn A", claims.Name)
}

func TestValidateExpiredToken(t *testing.T) {
	svc := NewJWTService("test-signing-key", "trichluc")

	token, err := svc.GenerateAccessToken("clerk-1", "", -time.Minute)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	assert.Contains(t, err.Error(), "expired")
}

func TestValidateWrongKey(t *testing.T) {
	minted := NewJWTService("key-one", "trichluc")
	verifier := NewJWTService("key-two", "trichluc")

	token, err := minted.GenerateAccessToken("clerk-1", "", time.Hour)
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestValidateGarbage(t *testing.T) {
	svc := NewJWTService("test-signing-key", "trichluc")

	_, err := svc.ValidateToken("not-a-token")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
