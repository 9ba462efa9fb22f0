// Package services contains application services of the client.
// This file defines the session manager: login, signup, logout, token
// refresh, password reset and email verification, keeping the persisted
// session store consistent with the outcome.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/sessionkeeper/internal/client/auth"
	"github.com/dmitrijs2005/sessionkeeper/internal/client/models"
	"github.com/dmitrijs2005/sessionkeeper/internal/common"
	"github.com/dmitrijs2005/sessionkeeper/internal/logging"
)

// SessionStore is the persistence the manager needs. storage.SessionStore
// implements it.
type SessionStore interface {
	Save(ctx context.Context, sess *models.Session) error
	SaveUser(ctx context.Context, u *models.User) error
	SaveAccessToken(ctx context.Context, token string) error
	LoadUser(ctx context.Context) (*models.User, error)
	LoadAccessToken(ctx context.Context) (string, error)
	LoadRefreshToken(ctx context.Context) (string, error)
	Clear(ctx context.Context) error
}

// SessionManager performs session-affecting operations.
//
// Mutating operations return errors wrapping common.ErrAuthFailure,
// common.ErrStorageFailure or common.ErrValidationFailure. Read-only
// queries never fail: unreadable state is logged and reported as absent.
type SessionManager struct {
	provider auth.Provider
	store    SessionStore
	logger   logging.Logger

	mu sync.Mutex
	// loggedOut hides a stored session whose clearing failed until the
	// next successful login or signup replaces it.
	loggedOut bool
}

func NewSessionManager(provider auth.Provider, store SessionStore, logger logging.Logger) *SessionManager {
	if logger == nil {
		logger = logging.Nop()
	}
	return &SessionManager{
		provider: provider,
		store:    store,
		logger:   logger.With("component", "session_manager", "provider", provider.Name()),
	}
}

func authErr(op string, err error) error {
	if errors.Is(err, common.ErrAuthFailure) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, common.ErrAuthFailure, err)
}

func validateCredentials(email, password string) error {
	if strings.TrimSpace(email) == "" {
		return fmt.Errorf("%w: email is required", common.ErrValidationFailure)
	}
	if password == "" {
		return fmt.Errorf("%w: password is required", common.ErrValidationFailure)
	}
	return nil
}

func (m *SessionManager) hidden() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loggedOut
}

func (m *SessionManager) setHidden(v bool) {
	m.mu.Lock()
	m.loggedOut = v
	m.mu.Unlock()
}

func (m *SessionManager) establish(ctx context.Context, op string, sess *models.Session) (*models.Session, error) {
	if err := m.store.Save(ctx, sess); err != nil {
		m.logger.Error(ctx, "persisting session failed", "op", op, "error", err)
		// an unpersisted session is a failed login as far as callers care
		return nil, fmt.Errorf("%s: %w: %w", op, common.ErrAuthFailure, err)
	}
	m.setHidden(false)
	m.logger.Info(ctx, "session established", "op", op, "user_id", sess.User.ID)
	return sess, nil
}

// Login authenticates and persists the resulting session.
func (m *SessionManager) Login(ctx context.Context, email, password string) (*models.Session, error) {
	if err := validateCredentials(email, password); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	sess, err := m.provider.Login(ctx, strings.TrimSpace(email), password)
	if err != nil {
		m.logger.Warn(ctx, "login rejected", "error", err)
		return nil, authErr("login", err)
	}
	return m.establish(ctx, "login", sess)
}

// SignUp registers and persists the resulting session. New users start
// not onboarded, not subscribed and with an unverified email.
func (m *SessionManager) SignUp(ctx context.Context, req auth.SignUpRequest) (*models.Session, error) {
	if err := validateCredentials(req.Email, req.Password); err != nil {
		return nil, fmt.Errorf("signup: %w", err)
	}
	req.Email = strings.TrimSpace(req.Email)
	sess, err := m.provider.SignUp(ctx, req)
	if err != nil {
		m.logger.Warn(ctx, "signup rejected", "error", err)
		return nil, authErr("signup", err)
	}
	return m.establish(ctx, "signup", sess)
}

// Logout clears the stored session, retrying once on failure. Whatever
// the store reports, the manager stops returning the old session; the
// returned error only says the on-disk copy may linger.
func (m *SessionManager) Logout(ctx context.Context) error {
	m.setHidden(true)

	err := m.store.Clear(ctx)
	if err == nil {
		m.setHidden(false)
		m.logger.Info(ctx, "logged out")
		return nil
	}

	m.logger.Warn(ctx, "clearing session failed, retrying", "error", err)
	if err = m.store.Clear(ctx); err != nil {
		m.logger.Error(ctx, "clearing session failed", "error", err)
		return fmt.Errorf("logout: %w", err)
	}
	m.setHidden(false)
	m.logger.Info(ctx, "logged out")
	return nil
}

// CurrentUser returns the stored user or nil.
func (m *SessionManager) CurrentUser(ctx context.Context) *models.User {
	if m.hidden() {
		return nil
	}
	u, err := m.store.LoadUser(ctx)
	if err != nil {
		m.logger.Warn(ctx, "stored user unreadable, treating as logged out", "error", err)
		return nil
	}
	return u
}

// AccessToken returns the stored access token or "".
func (m *SessionManager) AccessToken(ctx context.Context) string {
	if m.hidden() {
		return ""
	}
	tok, err := m.store.LoadAccessToken(ctx)
	if err != nil {
		m.logger.Warn(ctx, "stored access token unreadable", "error", err)
		return ""
	}
	return tok
}

// IsLoggedIn reports whether both a user and an access token are stored.
func (m *SessionManager) IsLoggedIn(ctx context.Context) bool {
	return m.CurrentUser(ctx) != nil && m.AccessToken(ctx) != ""
}

// RefreshToken obtains a new access token and stores it in place of the
// old one. The user and refresh token are left untouched. Without a
// stored user and refresh token there is nothing to refresh.
func (m *SessionManager) RefreshToken(ctx context.Context) (string, error) {
	if m.CurrentUser(ctx) == nil {
		return "", fmt.Errorf("refresh token: %w: no active session", common.ErrAuthFailure)
	}
	rt, err := m.store.LoadRefreshToken(ctx)
	if err != nil {
		return "", fmt.Errorf("refresh token: %w", err)
	}
	if rt == "" {
		return "", fmt.Errorf("refresh token: %w: no refresh token stored", common.ErrAuthFailure)
	}
	tok, err := m.provider.Refresh(ctx, rt)
	if err != nil {
		return "", authErr("refresh token", err)
	}
	if err := m.store.SaveAccessToken(ctx, tok); err != nil {
		return "", fmt.Errorf("refresh token: %w", err)
	}
	m.logger.Debug(ctx, "access token refreshed")
	return tok, nil
}

// ResetPassword asks the provider to start a password reset.
func (m *SessionManager) ResetPassword(ctx context.Context, email string) error {
	if err := m.provider.ResetPassword(ctx, email); err != nil {
		return authErr("reset password", err)
	}
	m.logger.Info(ctx, "password reset requested")
	return nil
}

// VerifyEmail confirms the email with the provider and clears the
// unverified flag of the stored user, if any. The token is passed through
// as is.
func (m *SessionManager) VerifyEmail(ctx context.Context, token string) error {
	if err := m.provider.VerifyEmail(ctx, token); err != nil {
		return authErr("verify email", err)
	}
	u := m.CurrentUser(ctx)
	if u == nil {
		return nil
	}
	u.EmailUnverified = models.Ptr(false)
	if err := m.store.SaveUser(ctx, u); err != nil {
		return fmt.Errorf("verify email: %w", err)
	}
	return nil
}

// SaveUser persists an updated user record.
func (m *SessionManager) SaveUser(ctx context.Context, u *models.User) error {
	if err := m.store.SaveUser(ctx, u); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}
