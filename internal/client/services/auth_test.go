package services

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/sessionkeeper/internal/client/auth"
	"github.com/dmitrijs2005/sessionkeeper/internal/client/models"
	"github.com/dmitrijs2005/sessionkeeper/internal/client/storage"
	"github.com/dmitrijs2005/sessionkeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- helpers ----

func newSQLiteStore(t *testing.T) *storage.SessionStore {
	t.Helper()
	db, err := storage.Open(context.Background(), filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return storage.NewSessionStore(db)
}

func newManager(t *testing.T) (*SessionManager, *storage.SessionStore) {
	t.Helper()
	store := newSQLiteStore(t)
	return NewSessionManager(auth.NewPlaceholderProvider(nil), store, nil), store
}

// ---- fake store ----

// flakyStore wraps a real store and injects failures per operation.
type flakyStore struct {
	SessionStore

	clearErrs   []error
	clearCalls  int
	saveErr     error
	loadUserErr error
	tokenErr    error
}

func (f *flakyStore) Clear(ctx context.Context) error {
	f.clearCalls++
	if len(f.clearErrs) > 0 {
		err := f.clearErrs[0]
		f.clearErrs = f.clearErrs[1:]
		if err != nil {
			return err
		}
	}
	return f.SessionStore.Clear(ctx)
}

func (f *flakyStore) Save(ctx context.Context, s *models.Session) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	return f.SessionStore.Save(ctx, s)
}

func (f *flakyStore) LoadUser(ctx context.Context) (*models.User, error) {
	if f.loadUserErr != nil {
		return nil, f.loadUserErr
	}
	return f.SessionStore.LoadUser(ctx)
}

func (f *flakyStore) SaveAccessToken(ctx context.Context, tok string) error {
	if f.tokenErr != nil {
		return f.tokenErr
	}
	return f.SessionStore.SaveAccessToken(ctx, tok)
}

var errDisk = errors.New("disk unplugged")

// ---- TESTS ----

func TestLogin_ThenIsLoggedIn(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()

	for _, email := range []string{"a@example.com", "b.c+tag@example.org"} {
		sess, err := m.Login(ctx, email, "secret")
		require.NoError(t, err)
		require.Equal(t, email, sess.User.Email)

		assert.True(t, m.IsLoggedIn(ctx))
		u := m.CurrentUser(ctx)
		require.NotNil(t, u)
		assert.Equal(t, email, u.Email)
		assert.Equal(t, sess.AccessToken, m.AccessToken(ctx))
	}
}

func TestLogin_ValidationFailure(t *testing.T) {
	m, _ := newManager(t)

	_, err := m.Login(context.Background(), "  ", "pw")
	require.ErrorIs(t, err, common.ErrValidationFailure)

	_, err = m.Login(context.Background(), "a@example.com", "")
	require.ErrorIs(t, err, common.ErrValidationFailure)
	assert.False(t, m.IsLoggedIn(context.Background()))
}

func TestLogin_RealProviderIsAuthFailure(t *testing.T) {
	store := newSQLiteStore(t)
	m := NewSessionManager(auth.NewRealProvider(), store, nil)

	_, err := m.Login(context.Background(), "a@example.com", "pw")
	require.ErrorIs(t, err, common.ErrAuthFailure)
	require.True(t, strings.HasPrefix(err.Error(), "login:"))
	assert.False(t, m.IsLoggedIn(context.Background()))
}

func TestLogin_StorageFailureIsReported(t *testing.T) {
	fs := &flakyStore{SessionStore: newSQLiteStore(t), saveErr: errors.Join(common.ErrStorageFailure, errDisk)}
	m := NewSessionManager(auth.NewPlaceholderProvider(nil), fs, nil)

	_, err := m.Login(context.Background(), "a@example.com", "pw")
	require.ErrorIs(t, err, common.ErrStorageFailure)
	require.ErrorIs(t, err, common.ErrAuthFailure)
	assert.False(t, m.IsLoggedIn(context.Background()))
}

func TestSignUp_StorageFailureIsAuthFailure(t *testing.T) {
	fs := &flakyStore{SessionStore: newSQLiteStore(t), saveErr: errors.Join(common.ErrStorageFailure, errDisk)}
	m := NewSessionManager(auth.NewPlaceholderProvider(nil), fs, nil)

	_, err := m.SignUp(context.Background(), auth.SignUpRequest{Email: "new@example.com", Password: "pw"})
	require.ErrorIs(t, err, common.ErrAuthFailure)
	require.ErrorIs(t, err, common.ErrStorageFailure)
	require.ErrorIs(t, err, errDisk)
	assert.Nil(t, m.CurrentUser(context.Background()))
}

func TestSignUp_NewUserFlags(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()

	sess, err := m.SignUp(ctx, auth.SignUpRequest{Email: "new@example.com", Password: "pw", Phone: models.Ptr("555")})
	require.NoError(t, err)

	for _, u := range []*models.User{sess.User, m.CurrentUser(ctx)} {
		assert.False(t, u.IsOnboarded)
		assert.False(t, u.Subscribed)
		assert.True(t, u.IsEmailUnverified())
		assert.Equal(t, "555", *u.Phone)
	}
}

func TestLogout_ClearsAndIsIdempotent(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()

	require.NoError(t, m.Logout(ctx), "logout without a session")

	_, err := m.Login(ctx, "a@example.com", "pw")
	require.NoError(t, err)

	require.NoError(t, m.Logout(ctx))
	assert.False(t, m.IsLoggedIn(ctx))
	assert.Nil(t, m.CurrentUser(ctx))
	assert.Empty(t, m.AccessToken(ctx))

	require.NoError(t, m.Logout(ctx))
	assert.False(t, m.IsLoggedIn(ctx))
}

func TestLogout_RetriesOnce(t *testing.T) {
	fs := &flakyStore{SessionStore: newSQLiteStore(t), clearErrs: []error{errDisk}}
	m := NewSessionManager(auth.NewPlaceholderProvider(nil), fs, nil)
	ctx := context.Background()

	_, err := m.Login(ctx, "a@example.com", "pw")
	require.NoError(t, err)

	require.NoError(t, m.Logout(ctx))
	assert.Equal(t, 2, fs.clearCalls)
	assert.False(t, m.IsLoggedIn(ctx))
}

func TestLogout_PersistentFailureStillHidesSession(t *testing.T) {
	fs := &flakyStore{SessionStore: newSQLiteStore(t), clearErrs: []error{errDisk, errDisk}}
	m := NewSessionManager(auth.NewPlaceholderProvider(nil), fs, nil)
	ctx := context.Background()

	_, err := m.Login(ctx, "a@example.com", "pw")
	require.NoError(t, err)

	err = m.Logout(ctx)
	require.ErrorIs(t, err, errDisk)

	assert.False(t, m.IsLoggedIn(ctx))
	assert.Nil(t, m.CurrentUser(ctx))
	assert.Empty(t, m.AccessToken(ctx))

	// a later login replaces the lingering session and unhides it
	_, err = m.Login(ctx, "b@example.com", "pw")
	require.NoError(t, err)
	require.True(t, m.IsLoggedIn(ctx))
	assert.Equal(t, "b@example.com", m.CurrentUser(ctx).Email)
}

func TestCurrentUser_UnreadableIsAbsent(t *testing.T) {
	fs := &flakyStore{SessionStore: newSQLiteStore(t)}
	m := NewSessionManager(auth.NewPlaceholderProvider(nil), fs, nil)
	ctx := context.Background()

	_, err := m.Login(ctx, "a@example.com", "pw")
	require.NoError(t, err)

	fs.loadUserErr = errors.Join(common.ErrStorageFailure, errDisk)
	assert.Nil(t, m.CurrentUser(ctx))
	assert.False(t, m.IsLoggedIn(ctx))
}

func TestIsLoggedIn_RequiresUserAndToken(t *testing.T) {
	m, store := newManager(t)
	ctx := context.Background()

	require.NoError(t, store.SaveAccessToken(ctx, "orphan-token"))
	assert.Nil(t, m.CurrentUser(ctx))
	assert.False(t, m.IsLoggedIn(ctx), "token without user is no session")

	require.NoError(t, store.Clear(ctx))
	require.NoError(t, store.SaveUser(ctx, &models.User{ID: "1", Email: "a@b.c"}))
	assert.NotNil(t, m.CurrentUser(ctx))
	assert.False(t, m.IsLoggedIn(ctx), "user without token is no session")
}

func TestRefreshToken_ReplacesOnlyAccessToken(t *testing.T) {
	store := newSQLiteStore(t)
	now := time.Date(2026, time.October, 15, 9, 0, 0, 0, time.UTC)
	m := NewSessionManager(auth.NewPlaceholderProvider(func() time.Time { return now }), store, nil)
	ctx := context.Background()

	sess, err := m.Login(ctx, "a@example.com", "pw")
	require.NoError(t, err)

	now = now.Add(time.Minute)
	tok, err := m.RefreshToken(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, sess.AccessToken, tok)
	assert.Equal(t, tok, m.AccessToken(ctx))

	rt, err := store.LoadRefreshToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, sess.RefreshToken, rt)
	assert.Equal(t, sess.User.ID, m.CurrentUser(ctx).ID)
}

func TestRefreshToken_Failures(t *testing.T) {
	ctx := context.Background()

	store := newSQLiteStore(t)
	_, err := NewSessionManager(auth.NewPlaceholderProvider(nil), store, nil).Login(ctx, "a@example.com", "pw")
	require.NoError(t, err)
	m := NewSessionManager(auth.NewRealProvider(), store, nil)
	_, err = m.RefreshToken(ctx)
	require.ErrorIs(t, err, common.ErrAuthFailure)
	require.ErrorIs(t, err, common.ErrNotImplemented)

	fs := &flakyStore{SessionStore: newSQLiteStore(t), tokenErr: errors.Join(common.ErrStorageFailure, errDisk)}
	m = NewSessionManager(auth.NewPlaceholderProvider(nil), fs, nil)
	_, err = m.Login(ctx, "a@example.com", "pw")
	require.NoError(t, err)
	_, err = m.RefreshToken(ctx)
	require.ErrorIs(t, err, common.ErrStorageFailure)
}

func TestRefreshToken_NoSessionWritesNothing(t *testing.T) {
	m, store := newManager(t)
	ctx := context.Background()

	_, err := m.RefreshToken(ctx)
	require.ErrorIs(t, err, common.ErrAuthFailure)

	tok, err := store.LoadAccessToken(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok, "no orphan access token")
}

func TestRefreshToken_NoRefreshTokenStored(t *testing.T) {
	m, store := newManager(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &models.Session{User: &models.User{ID: "1", Email: "a@b.c"}, AccessToken: "at"}))

	_, err := m.RefreshToken(ctx)
	require.ErrorIs(t, err, common.ErrAuthFailure)
	assert.Equal(t, "at", m.AccessToken(ctx))
}

func TestRefreshToken_AfterFailedLogoutWritesNothing(t *testing.T) {
	fs := &flakyStore{SessionStore: newSQLiteStore(t), clearErrs: []error{errDisk, errDisk}}
	m := NewSessionManager(auth.NewPlaceholderProvider(nil), fs, nil)
	ctx := context.Background()

	sess, err := m.Login(ctx, "a@example.com", "pw")
	require.NoError(t, err)
	require.Error(t, m.Logout(ctx))

	_, err = m.RefreshToken(ctx)
	require.ErrorIs(t, err, common.ErrAuthFailure)

	tok, err := fs.LoadAccessToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, sess.AccessToken, tok, "stored token untouched")
}

func TestVerifyEmail_ClearsFlagForAnyToken(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()

	for _, token := range []string{"", "garbage", "placeholder-token-1"} {
		_, err := m.SignUp(ctx, auth.SignUpRequest{Email: "v@example.com", Password: "pw"})
		require.NoError(t, err)
		require.True(t, m.CurrentUser(ctx).IsEmailUnverified())

		require.NoError(t, m.VerifyEmail(ctx, token))
		assert.False(t, m.CurrentUser(ctx).IsEmailUnverified())
	}
}

func TestVerifyEmail_NoUserIsNoop(t *testing.T) {
	m, _ := newManager(t)
	require.NoError(t, m.VerifyEmail(context.Background(), "t"))
	assert.Nil(t, m.CurrentUser(context.Background()))
}

func TestResetPassword_Delegates(t *testing.T) {
	m, _ := newManager(t)
	require.NoError(t, m.ResetPassword(context.Background(), "a@example.com"))

	m = NewSessionManager(auth.NewRealProvider(), newSQLiteStore(t), nil)
	require.ErrorIs(t, m.ResetPassword(context.Background(), "a@example.com"), common.ErrAuthFailure)
}

func TestSaveUser_Persists(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()

	sess, err := m.Login(ctx, "a@example.com", "pw")
	require.NoError(t, err)

	u := sess.User.Clone()
	u.FullName = models.Ptr("Alice")
	require.NoError(t, m.SaveUser(ctx, u))
	assert.Equal(t, "Alice", *m.CurrentUser(ctx).FullName)
}
