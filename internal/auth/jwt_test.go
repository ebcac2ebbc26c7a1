package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_RoundTrip(t *testing.T) {
	service, err := NewJWTService([]byte("test-secret-key"), "test-issuer", time.Hour)
	require.NoError(t, err)

	ctx := context.Background()
	token, err := service.GenerateToken(ctx, "session-1", "user-1")
	require.NoError(t, err)
	assert.Contains(t, token, ".")

	claims, err := service.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "session-1", claims.SessionID)
	assert.Equal(t, "user-1", claims.UserID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, 5*time.Second)
}

func TestJWTService_ValidateToken_InvalidToken(t *testing.T) {
	service, err := NewJWTService([]byte("test-secret-key"), "test-issuer", time.Hour)
	require.NoError(t, err)

	_, err = service.ValidateToken(context.Background(), "invalid-token")
	assert.ErrorContains(t, err, "failed to parse token")
}

func TestJWTService_ValidateToken_WrongSecret(t *testing.T) {
	service1, err := NewJWTService([]byte("secret-1"), "test-issuer", time.Hour)
	require.NoError(t, err)
	service2, err := NewJWTService([]byte("secret-2"), "test-issuer", time.Hour)
	require.NoError(t, err)

	ctx := context.Background()
	token, err := service1.GenerateToken(ctx, "session-1", "user-1")
	require.NoError(t, err)

	_, err = service2.ValidateToken(ctx, token)
	assert.Error(t, err)
}

func TestJWTService_ValidateToken_WrongIssuer(t *testing.T) {
	service1, err := NewJWTService([]byte("secret"), "issuer-1", time.Hour)
	require.NoError(t, err)
	service2, err := NewJWTService([]byte("secret"), "issuer-2", time.Hour)
	require.NoError(t, err)

	ctx := context.Background()
	token, err := service1.GenerateToken(ctx, "session-1", "user-1")
	require.NoError(t, err)

	_, err = service2.ValidateToken(ctx, token)
	assert.Error(t, err)
}

func TestJWTService_ValidateToken_Expired(t *testing.T) {
	service, err := NewJWTService([]byte("secret"), "test-issuer", -time.Minute)
	require.NoError(t, err)

	ctx := context.Background()
	token, err := service.GenerateToken(ctx, "session-1", "user-1")
	require.NoError(t, err)

	_, err = service.ValidateToken(ctx, token)
	assert.Error(t, err)
}
