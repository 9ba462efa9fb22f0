// Package auth holds the credential backends the session manager talks to.
//
// Two variants exist: PlaceholderProvider, which fabricates users and
// tokens locally, and RealProvider, the slot for a real backend, which is
// not implemented and rejects every call with common.ErrAuthFailure.
// NewProvider picks one once at startup.
package auth

import (
	"context"
	"time"

	"github.com/dmitrijs2005/sessionkeeper/internal/client/models"
)

// SignUpRequest carries registration input. FullName and Phone are optional.
type SignUpRequest struct {
	Email    string
	Password string
	FullName *string
	Phone    *string
}

// Provider performs credential operations and returns issued sessions.
// It never touches local storage.
type Provider interface {
	Login(ctx context.Context, email, password string) (*models.Session, error)
	SignUp(ctx context.Context, req SignUpRequest) (*models.Session, error)
	// Refresh exchanges a refresh token for a new access token.
	Refresh(ctx context.Context, refreshToken string) (string, error)
	ResetPassword(ctx context.Context, email string) error
	VerifyEmail(ctx context.Context, token string) error
	// Name identifies the variant in logs.
	Name() string
}

// NewProvider selects the backend from the real-auth toggle.
func NewProvider(realAuth bool, now func() time.Time) Provider {
	if realAuth {
		return NewRealProvider()
	}
	return NewPlaceholderProvider(now)
}
