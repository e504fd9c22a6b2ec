package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/auth"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

// AuthService coordinates login and logout flows.
type AuthService struct {
	credentials *auth.CredentialStore
	tokenMgr    *auth.TokenManager
	revocations auth.Revocations
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	Credentials *auth.CredentialStore
	Tokens      *auth.TokenManager
	Revocations auth.Revocations
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	return &AuthService{
		credentials: deps.Credentials,
		tokenMgr:    deps.Tokens,
		revocations: deps.Revocations,
	}
}

// Login verifies the credentials and issues a session token.
func (s *AuthService) Login(_ context.Context, username, password string) (*dto.AuthResponse, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperrors.NewValidationError("username and password required", nil)
	}
	if !s.credentials.Verify(username, password) {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}

	token, claims, err := s.tokenMgr.GenerateToken(username)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &dto.AuthResponse{
		Token:     token,
		Username:  username,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Logout revokes the caller's token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, principal *auth.Principal) error {
	if principal == nil {
		return apperrors.NewUnauthorized("not authenticated")
	}
	if err := s.revocations.Revoke(ctx, principal.TokenID, principal.ExpiresAt); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}
