// Package authstate is the single in-memory source of truth for "who is
// logged in and what can they do". State is built once at startup from
// the session manager, updated by every mutating operation, and pushes a
// Snapshot to registered listeners after each change.
//
// Operations never return Go errors: failures come back as a Result with a
// human-readable message so that UI code only has to check Result.OK.
package authstate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/sessionkeeper/internal/client/auth"
	"github.com/dmitrijs2005/sessionkeeper/internal/client/models"
	"github.com/dmitrijs2005/sessionkeeper/internal/logging"
)

// ErrNotLoggedIn is reported when an operation needs a loaded user.
var ErrNotLoggedIn = errors.New("not logged in")

// Manager is the session manager as seen by State.
// services.SessionManager implements it.
type Manager interface {
	Login(ctx context.Context, email, password string) (*models.Session, error)
	SignUp(ctx context.Context, req auth.SignUpRequest) (*models.Session, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) *models.User
	IsLoggedIn(ctx context.Context) bool
	RefreshToken(ctx context.Context) (string, error)
	ResetPassword(ctx context.Context, email string) error
	VerifyEmail(ctx context.Context, token string) error
	SaveUser(ctx context.Context, u *models.User) error
}

// Result is the outcome of a mutating operation. An empty Error means
// success.
type Result struct {
	Error string
}

func (r Result) OK() bool { return r.Error == "" }

func failure(err error) Result {
	return Result{Error: err.Error()}
}

// Snapshot is a copy of the observable state.
type Snapshot struct {
	User            *models.User
	IsLoading       bool
	EmailUnverified bool
}

// Option configures State.
type Option func(*State)

func WithLogger(l logging.Logger) Option {
	return func(s *State) { s.logger = l }
}

// WithClock replaces time.Now for subscription arithmetic.
func WithClock(now func() time.Time) Option {
	return func(s *State) { s.now = now }
}

type State struct {
	manager Manager
	logger  logging.Logger
	now     func() time.Time

	mu              sync.RWMutex
	user            *models.User
	inFlight        int
	emailUnverified bool

	lmu       sync.Mutex
	listeners map[int]func(Snapshot)
	nextID    int
}

// New restores the stored session, if any, and returns a ready State.
func New(ctx context.Context, m Manager, opts ...Option) *State {
	s := &State{
		manager:   m,
		logger:    logging.Nop(),
		now:       time.Now,
		inFlight:  1,
		listeners: make(map[int]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "auth_state")

	u := m.CurrentUser(ctx)
	if u != nil && !m.IsLoggedIn(ctx) {
		// a user without its token is an incomplete session
		s.logger.Warn(ctx, "stored session incomplete, starting logged out", "user_id", u.ID)
		u = nil
	}

	s.mu.Lock()
	s.user = u
	s.emailUnverified = u.IsEmailUnverified()
	s.inFlight = 0
	s.mu.Unlock()

	if u != nil {
		s.logger.Info(ctx, "session restored", "user_id", u.ID)
	}
	return s
}

// Snapshot returns a copy of the current state.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		User:            s.user.Clone(),
		IsLoading:       s.inFlight > 0,
		EmailUnverified: s.emailUnverified,
	}
}

// User returns a copy of the loaded user, or nil.
func (s *State) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user.Clone()
}

func (s *State) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

func (s *State) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inFlight > 0
}

func (s *State) EmailUnverified() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.emailUnverified
}

// OnChange registers fn to receive a Snapshot after every state change.
// The returned func unregisters it. fn runs on the goroutine that made the
// change and must not block.
func (s *State) OnChange(fn func(Snapshot)) (cancel func()) {
	s.lmu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.lmu.Unlock()

	return func() {
		s.lmu.Lock()
		delete(s.listeners, id)
		s.lmu.Unlock()
	}
}

func (s *State) notify() {
	snap := s.Snapshot()

	s.lmu.Lock()
	fns := make([]func(Snapshot), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.lmu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func (s *State) begin() {
	s.mu.Lock()
	s.inFlight++
	s.mu.Unlock()
	s.notify()
}

func (s *State) end() {
	s.mu.Lock()
	s.inFlight--
	s.mu.Unlock()
	s.notify()
}

// run brackets an operation with the loading flag and turns a panic in a
// collaborator into a failed Result.
func (s *State) run(ctx context.Context, op string, fn func() Result) (res Result) {
	s.begin()
	defer s.end()
	defer func() {
		if p := recover(); p != nil {
			s.logger.Error(ctx, "operation panicked", "op", op, "panic", p)
			res = Result{Error: fmt.Sprintf("%s: unexpected failure", op)}
		}
	}()
	return fn()
}

func (s *State) setUser(u *models.User) {
	s.mu.Lock()
	s.user = u.Clone()
	s.emailUnverified = u.IsEmailUnverified()
	s.mu.Unlock()
}

// mutate applies fn to a copy of the loaded user, installs the copy and
// persists it. It reports false, changing nothing, when no user is loaded.
// A failed write is logged; the in-memory state still changes.
func (s *State) mutate(ctx context.Context, op string, fn func(u *models.User)) bool {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return false
	}
	u := s.user.Clone()
	fn(u)
	s.user = u
	s.emailUnverified = u.IsEmailUnverified()
	s.mu.Unlock()

	if err := s.manager.SaveUser(ctx, u.Clone()); err != nil {
		s.logger.Error(ctx, "persisting user failed", "op", op, "error", err)
	}
	return true
}
