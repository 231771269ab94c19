package services

import (
	"context"
	"time"

	"github.com/quipufin/cajachica_backend/internal/core/domain"
)

// TokenSvcFacade handles JWT access tokens and refresh tokens.
type TokenSvcFacade interface {
	// GenerateAccessToken creates a new JWT access token for the given user.
	GenerateAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error)

	// GenerateRefreshToken creates a new opaque refresh token for the user.
	GenerateRefreshToken(ctx context.Context, user *domain.User) (string, time.Time, error)

	// ValidateAndParseRefreshToken validates a refresh token string and returns
	// the associated user.
	ValidateAndParseRefreshToken(ctx context.Context, userID string, refreshTokenString string) (*domain.User, error)
}

// GoogleUserInfo holds the identity claims extracted from a validated Google ID
// token.
type GoogleUserInfo struct {
	Subject string
	Email   string
	Name    string
}

// GoogleOAuthHandlerSvcFacade handles the Google authorization-code exchange.
type GoogleOAuthHandlerSvcFacade interface {
	// GenerateStateString creates a CSRF token for the OAuth flow.
	GenerateStateString(ctx context.Context) (string, error)

	// GetGoogleLoginURL returns the URL to redirect the user to for login.
	GetGoogleLoginURL(ctx context.Context, state string) string

	// ExchangeCodeForUser exchanges an authorization code for Google tokens,
	// validates the ID token, and returns the verified identity.
	ExchangeCodeForUser(ctx context.Context, code string) (*GoogleUserInfo, error)
}
