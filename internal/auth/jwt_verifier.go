package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"inkstand/internal/domain"
	"inkstand/internal/domain/models"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// JWKSVerifier verifies asymmetric tokens against a remote JWKS.
type JWKSVerifier struct {
	jwks   keyfunc.Keyfunc
	logger *slog.Logger
}

// NewJWKSVerifier creates a verifier that fetches public keys from jwksURL.
// keyfunc caches the keys and refreshes them based on HTTP cache headers.
func NewJWKSVerifier(jwksURL string, logger *slog.Logger) (*JWKSVerifier, error) {
	if jwksURL == "" {
		return nil, errors.New("JWKS URL cannot be empty")
	}

	jwks, err := keyfunc.NewDefaultCtx(context.Background(), []string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("failed to create JWKS client: %w", err)
	}

	logger.Info("JWT verifier initialized", "mode", "jwks", "jwks_url", jwksURL)
	return &JWKSVerifier{jwks: jwks, logger: logger}, nil
}

// VerifyToken accepts RS256 and ES256 tokens only
func (v *JWKSVerifier) VerifyToken(tokenString string) (*models.Claims, error) {
	return parseClaims(tokenString, v.jwks.Keyfunc, []string{"RS256", "ES256"}, v.logger)
}

// Close is a no-op; keyfunc v3 manages its own refresh goroutine lifetime
func (v *JWKSVerifier) Close() error {
	v.logger.Info("JWT verifier closed")
	return nil
}

// HMACVerifier verifies HS256 tokens signed with a shared secret.
type HMACVerifier struct {
	secret []byte
	logger *slog.Logger
}

func NewHMACVerifier(secret string, logger *slog.Logger) (*HMACVerifier, error) {
	if secret == "" {
		return nil, errors.New("JWT secret cannot be empty")
	}
	logger.Info("JWT verifier initialized", "mode", "hmac")
	return &HMACVerifier{secret: []byte(secret), logger: logger}, nil
}

func (v *HMACVerifier) VerifyToken(tokenString string) (*models.Claims, error) {
	keyFn := func(*jwt.Token) (interface{}, error) { return v.secret, nil }
	return parseClaims(tokenString, keyFn, []string{"HS256"}, v.logger)
}

func (v *HMACVerifier) Close() error { return nil }

// NewVerifier returns a JWKS verifier when jwksURL is set, otherwise an HMAC one.
func NewVerifier(jwksURL, secret string, logger *slog.Logger) (JWTVerifier, error) {
	if jwksURL != "" {
		return NewJWKSVerifier(jwksURL, logger)
	}
	return NewHMACVerifier(secret, logger)
}

func parseClaims(tokenString string, keyFn jwt.Keyfunc, algs []string, logger *slog.Logger) (*models.Claims, error) {
	// WithValidMethods prevents algorithm confusion
	token, err := jwt.ParseWithClaims(tokenString, &models.Claims{}, keyFn, jwt.WithValidMethods(algs))
	if err != nil {
		logger.Debug("token parse failed", "error", err)
		return nil, domain.ErrUnauthorized
	}
	if !token.Valid {
		return nil, domain.ErrUnauthorized
	}

	claims, ok := token.Claims.(*models.Claims)
	if !ok {
		logger.Error("failed to extract claims from token")
		return nil, domain.ErrUnauthorized
	}
	if claims.GetUserID() == "" {
		logger.Debug("token missing user id")
		return nil, domain.ErrUnauthorized
	}

	return claims, nil
}
