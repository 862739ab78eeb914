package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_GenerateAndValidate(t *testing.T) {
	svc, err := NewJWTService("test-secret", time.Hour)
	require.NoError(t, err)

	token, err := svc.GenerateToken("user-1", "normal_user@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "normal_user@example.com", claims.Email)
}

func TestJWTService_EmptySecret(t *testing.T) {
	_, err := NewJWTService("", time.Hour)
	assert.Error(t, err)
}

func TestJWTService_WrongSecret(t *testing.T) {
	issuer, err := NewJWTService("secret-a", time.Hour)
	require.NoError(t, err)
	verifier, err := NewJWTService("secret-b", time.Hour)
	require.NoError(t, err)

	token, err := issuer.GenerateToken("user-1", "a@example.com")
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTService_Expired(t *testing.T) {
	svc, err := NewJWTService("test-secret", time.Minute)
	require.NoError(t, err)

	issued := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }
	token, err := svc.GenerateToken("user-1", "a@example.com")
	require.NoError(t, err)

	svc.now = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestJWTService_RejectsOtherSigningMethods(t *testing.T) {
	svc, err := NewJWTService("test-secret", time.Hour)
	require.NoError(t, err)

	claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.ValidateToken(unsigned)
	assert.Error(t, err)
}

func TestJWTService_RequiresSubject(t *testing.T) {
	svc, err := NewJWTService("test-secret", time.Hour)
	require.NoError(t, err)

	token, err := svc.GenerateToken("", "a@example.com")
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}
