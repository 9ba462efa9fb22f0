// Package storage is the persisted session store: the current user and its
// tokens kept under the "session" namespace of the local metadata table.
//
// The three keys are always written and cleared inside one transaction, so
// readers never observe a half-written session. Readers still tolerate
// partial state (e.g. a token without a user) produced by older versions or
// manual edits; see services.SessionManager.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/dmitrijs2005/sessionkeeper/internal/client/models"
	"github.com/dmitrijs2005/sessionkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/sessionkeeper/internal/common"
	"github.com/dmitrijs2005/sessionkeeper/internal/dbx"
)

// Namespace groups the session keys in the metadata table.
const Namespace = "session"

// Keys inside Namespace.
const (
	KeyUser         = "user"
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
)

type SessionStore struct {
	db *sql.DB
}

func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{db: db}
}

func (s *SessionStore) repo(db dbx.DBTX) metadata.Repository {
	return metadata.NewSQLiteRepository(db, Namespace)
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, common.ErrStorageFailure, err)
}

// Save writes user, access token and refresh token in one transaction.
// An empty refresh token removes any stored one.
func (s *SessionStore) Save(ctx context.Context, sess *models.Session) error {
	if sess == nil || sess.User == nil {
		return fmt.Errorf("save session: %w: session without user", common.ErrValidationFailure)
	}
	userJSON, err := json.Marshal(sess.User)
	if err != nil {
		return storageErr("encode user", err)
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		r := s.repo(tx)
		if err := r.Set(ctx, KeyUser, userJSON); err != nil {
			return err
		}
		if err := r.Set(ctx, KeyAccessToken, []byte(sess.AccessToken)); err != nil {
			return err
		}
		if sess.RefreshToken == "" {
			return r.Delete(ctx, KeyRefreshToken)
		}
		return r.Set(ctx, KeyRefreshToken, []byte(sess.RefreshToken))
	})
	if err != nil {
		return storageErr("save session", err)
	}
	return nil
}

// SaveUser replaces the stored user record only.
func (s *SessionStore) SaveUser(ctx context.Context, u *models.User) error {
	if u == nil {
		return fmt.Errorf("save user: %w: nil user", common.ErrValidationFailure)
	}
	b, err := json.Marshal(u)
	if err != nil {
		return storageErr("encode user", err)
	}
	if err := s.repo(s.db).Set(ctx, KeyUser, b); err != nil {
		return storageErr("save user", err)
	}
	return nil
}

// SaveAccessToken replaces the stored access token only.
func (s *SessionStore) SaveAccessToken(ctx context.Context, token string) error {
	if err := s.repo(s.db).Set(ctx, KeyAccessToken, []byte(token)); err != nil {
		return storageErr("save access token", err)
	}
	return nil
}

// LoadUser returns (nil, nil) when no user is stored.
func (s *SessionStore) LoadUser(ctx context.Context) (*models.User, error) {
	b, err := s.repo(s.db).Get(ctx, KeyUser)
	if err != nil {
		return nil, storageErr("load user", err)
	}
	if len(b) == 0 {
		return nil, nil
	}
	var u models.User
	if err := json.Unmarshal(b, &u); err != nil {
		return nil, storageErr("decode user", err)
	}
	return &u, nil
}

// LoadAccessToken returns "" when no token is stored.
func (s *SessionStore) LoadAccessToken(ctx context.Context) (string, error) {
	return s.loadString(ctx, KeyAccessToken)
}

// LoadRefreshToken returns "" when no token is stored.
func (s *SessionStore) LoadRefreshToken(ctx context.Context) (string, error) {
	return s.loadString(ctx, KeyRefreshToken)
}

func (s *SessionStore) loadString(ctx context.Context, key string) (string, error) {
	b, err := s.repo(s.db).Get(ctx, key)
	if err != nil {
		return "", storageErr("load "+key, err)
	}
	return string(b), nil
}

// Keys lists the session keys currently stored, sorted. Values are not
// returned; tokens stay out of logs.
func (s *SessionStore) Keys(ctx context.Context) ([]string, error) {
	pairs, err := s.repo(s.db).List(ctx)
	if err != nil {
		return nil, storageErr("list session keys", err)
	}
	return slices.Sorted(maps.Keys(pairs)), nil
}

// Clear removes every session key in one transaction. Clearing an empty
// store succeeds.
func (s *SessionStore) Clear(ctx context.Context) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repo(tx).Clear(ctx)
	})
	if err != nil {
		return storageErr("clear session", err)
	}
	return nil
}
