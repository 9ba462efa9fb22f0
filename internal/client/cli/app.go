package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dmitrijs2005/sessionkeeper/internal/client/api"
	"github.com/dmitrijs2005/sessionkeeper/internal/client/auth"
	"github.com/dmitrijs2005/sessionkeeper/internal/client/authstate"
	"github.com/dmitrijs2005/sessionkeeper/internal/client/config"
	"github.com/dmitrijs2005/sessionkeeper/internal/client/services"
	"github.com/dmitrijs2005/sessionkeeper/internal/client/storage"
	"github.com/dmitrijs2005/sessionkeeper/internal/filex"
	"github.com/dmitrijs2005/sessionkeeper/internal/logging"
)

const dbFileName = "session.db"

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// pinger is the part of api.Client the connectivity watcher needs.
type pinger interface {
	Ping(ctx context.Context) error
}

type App struct {
	config *config.Config
	state  *authstate.State
	api    pinger
	logger logging.Logger
	db     *sql.DB
	reader *bufio.Reader
	out    io.Writer

	mu   sync.RWMutex
	mode Mode
	who  string

	cancelWatch func()
}

// NewApp opens the session database under c.DataDir and wires the session
// manager, the auth state and the API client.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stderr, c.Debug)

	dir, err := filex.EnsureDir(c.DataDir)
	if err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}

	db, err := storage.Open(ctx, filepath.Join(dir, dbFileName))
	if err != nil {
		logger.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	store := storage.NewSessionStore(db)
	if keys, err := store.Keys(ctx); err != nil {
		logger.Warn(ctx, "listing stored session keys failed", "error", err)
	} else {
		logger.Debug(ctx, "stored session keys", "keys", keys)
	}

	provider := auth.NewProvider(c.RealAuth, time.Now)
	manager := services.NewSessionManager(provider, store, logger)
	state := authstate.New(ctx, manager, authstate.WithLogger(logger))

	apiClient := api.New(c.APIBaseURL, c.RequestTimeout, api.WithTokenSource(manager.AccessToken))

	logger.Debug(ctx, "app ready", "provider", provider.Name(), "data_dir", dir, "api", c.APIBaseURL)

	a := newApp(c, state, apiClient, logger, bufio.NewReader(os.Stdin), os.Stdout)
	a.db = db
	return a, nil
}

func newApp(c *config.Config, state *authstate.State, p pinger, logger logging.Logger, r *bufio.Reader, out io.Writer) *App {
	if logger == nil {
		logger = logging.Nop()
	}
	a := &App{
		config: c,
		state:  state,
		api:    p,
		logger: logger,
		reader: r,
		out:    out,
		mode:   ModeOffline,
	}
	a.who = userLabel(state.Snapshot())
	a.cancelWatch = state.OnChange(func(s authstate.Snapshot) {
		a.mu.Lock()
		a.who = userLabel(s)
		a.mu.Unlock()
	})
	return a
}

// Close stops listening to state changes and closes the database.
func (a *App) Close() error {
	if a.cancelWatch != nil {
		a.cancelWatch()
	}
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// Run starts the connectivity watcher and the REPL. It blocks until the
// user exits or input ends.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	fmt.Fprintln(a.out, "Welcome to sessionkeeper (type 'help' for commands)")

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a.routes(), a.isLoggedIn, a.getStatus, a.reader)
}

func (a *App) isLoggedIn() bool {
	return a.state.IsAuthenticated()
}

func (a *App) getMode() Mode {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.mode
}

func (a *App) setMode(ctx context.Context, mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.logger.Info(ctx, "connectivity changed", "mode", string(mode))
	}
}

// getStatus renders the prompt label, e.g. "(ann@example.com online)".
func (a *App) getStatus() string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	s := string(a.mode)
	if a.who != "" {
		s = a.who + " " + s
	}
	if s == "" {
		return ""
	}
	return "(" + s + ")"
}

func userLabel(s authstate.Snapshot) string {
	if s.User == nil {
		return ""
	}
	if s.EmailUnverified {
		return s.User.Email + "*"
	}
	return s.User.Email
}

// StartOnlineStatusWatcher pings the API every interval and flips the mode
// between online and offline. It returns when ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	if err := a.api.Ping(ctx); err != nil {
		a.logger.Debug(ctx, "ping failed", "error", err)
		a.setMode(ctx, ModeOffline)
		return
	}
	a.setMode(ctx, ModeOnline)
}
