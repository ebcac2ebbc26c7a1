package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

type JWTService struct {
	signingKey jwk.Key
	issuer     string
	expiry     time.Duration
}

// TokenClaims names the session a token was issued for. The session itself
// lives in the store; the token only points at it.
type TokenClaims struct {
	SessionID string
	UserID    string
	ExpiresAt time.Time
}

func NewJWTService(signingKey []byte, issuer string, expiry time.Duration) (*JWTService, error) {
	key, err := jwk.FromRaw(signingKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWK: %w", err)
	}

	if err := key.Set(jwk.AlgorithmKey, jwa.HS256); err != nil {
		return nil, fmt.Errorf("failed to set algorithm: %w", err)
	}

	return &JWTService{
		signingKey: key,
		issuer:     issuer,
		expiry:     expiry,
	}, nil
}

func (s *JWTService) Expiry() time.Duration {
	return s.expiry
}

func (s *JWTService) GenerateToken(ctx context.Context, sessionID, userID string) (string, error) {
	now := time.Now()

	token, err := jwt.NewBuilder().
		Issuer(s.issuer).
		Subject(sessionID).
		IssuedAt(now).
		Expiration(now.Add(s.expiry)).
		Claim("user_id", userID).
		Build()
	if err != nil {
		return "", fmt.Errorf("failed to build token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256, s.signingKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return string(signed), nil
}

func (s *JWTService) ValidateToken(ctx context.Context, tokenString string) (*TokenClaims, error) {
	parsedToken, err := jwt.Parse([]byte(tokenString),
		jwt.WithKey(jwa.HS256, s.signingKey),
		jwt.WithIssuer(s.issuer),
		jwt.WithValidate(true))
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if parsedToken.Subject() == "" {
		return nil, fmt.Errorf("token has no session subject")
	}

	claims := &TokenClaims{
		SessionID: parsedToken.Subject(),
		ExpiresAt: parsedToken.Expiration(),
	}
	if v, ok := parsedToken.Get("user_id"); ok {
		claims.UserID, _ = v.(string)
	}
	return claims, nil
}
