package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/sessionkeeper/internal/client/models"
	"github.com/google/uuid"
)

// Token prefixes of fabricated tokens; the suffix is Unix milliseconds.
const (
	AccessTokenPrefix  = "placeholder-token-"
	RefreshTokenPrefix = "placeholder-refresh-"
)

// PlaceholderProvider accepts any credentials and fabricates a fresh user
// with a random ID on every login or signup. It stands in until a backend
// exists and must not be mistaken for authentication.
type PlaceholderProvider struct {
	now   func() time.Time
	newID func() string
}

func NewPlaceholderProvider(now func() time.Time) *PlaceholderProvider {
	if now == nil {
		now = time.Now
	}
	return &PlaceholderProvider{now: now, newID: uuid.NewString}
}

func (p *PlaceholderProvider) Name() string { return "placeholder" }

func (p *PlaceholderProvider) accessToken() string {
	return fmt.Sprintf("%s%d", AccessTokenPrefix, p.now().UnixMilli())
}

func (p *PlaceholderProvider) refreshToken() string {
	return fmt.Sprintf("%s%d", RefreshTokenPrefix, p.now().UnixMilli())
}

func (p *PlaceholderProvider) Login(ctx context.Context, email, password string) (*models.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	u := &models.User{
		ID:    p.newID(),
		Email: email,
	}
	return &models.Session{User: u, AccessToken: p.accessToken(), RefreshToken: p.refreshToken()}, nil
}

func (p *PlaceholderProvider) SignUp(ctx context.Context, req SignUpRequest) (*models.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	u := &models.User{
		ID:              p.newID(),
		Email:           req.Email,
		FullName:        req.FullName,
		Phone:           req.Phone,
		IsOnboarded:     false,
		Subscribed:      false,
		EmailUnverified: models.Ptr(true),
	}
	return &models.Session{User: u, AccessToken: p.accessToken(), RefreshToken: p.refreshToken()}, nil
}

func (p *PlaceholderProvider) Refresh(ctx context.Context, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return p.accessToken(), nil
}

func (p *PlaceholderProvider) ResetPassword(ctx context.Context, _ string) error {
	return ctx.Err()
}

// VerifyEmail accepts any token.
func (p *PlaceholderProvider) VerifyEmail(ctx context.Context, _ string) error {
	return ctx.Err()
}
