package auth

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/sessionkeeper/internal/client/models"
	"github.com/dmitrijs2005/sessionkeeper/internal/common"
)

// RealProvider is selected when real authentication is switched on. No
// backend protocol exists yet, so every operation fails.
type RealProvider struct{}

func NewRealProvider() *RealProvider { return &RealProvider{} }

func (RealProvider) Name() string { return "real" }

func notImplemented(op string) error {
	return fmt.Errorf("%s: %w: real authentication backend %w", op, common.ErrAuthFailure, common.ErrNotImplemented)
}

func (RealProvider) Login(context.Context, string, string) (*models.Session, error) {
	return nil, notImplemented("login")
}

func (RealProvider) SignUp(context.Context, SignUpRequest) (*models.Session, error) {
	return nil, notImplemented("signup")
}

func (RealProvider) Refresh(context.Context, string) (string, error) {
	return "", notImplemented("refresh token")
}

func (RealProvider) ResetPassword(context.Context, string) error {
	return notImplemented("reset password")
}

func (RealProvider) VerifyEmail(context.Context, string) error {
	return notImplemented("verify email")
}
