// Package httpapi is the REST facade over the account directory. Account
// routes sit at the root (/SignIn, /Login, /EditInformation, ...) and the
// caller's task list under /tasks. Every route except /SignIn, /Login,
// /healthz and /user/profile needs a bearer access token.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/accounts"
	"github.com/dmitrijs2005/taskkeeper/internal/server/archive"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/tasks"
)

// Directory is the part of accounts.Directory the facade uses.
type Directory interface {
	SignIn(ctx context.Context, displayName, username, password string) (bool, error)
	Login(ctx context.Context, username, password string) (*models.Session, error)
	Logout(ctx context.Context, sessionID string) error
	GetProfileOrThrow(username string) (*accounts.Account, error)
	SessionUserObject(ctx context.Context, sessionID string) (*accounts.Account, error)
	LookupSession(ctx context.Context, sessionID string) (*models.Session, error)
	DeleteUser(ctx context.Context, username string) (bool, error)
	ReturnProfileUsernames() []string
	EditInformation(ctx context.Context, username, displayName, newUsername, password string) error
}

// Archiver uploads task snapshots.
type Archiver interface {
	Snapshot(ctx context.Context, username string, list []tasks.Task) (*archive.Result, error)
}

const (
	requestTimeout  = 5 * time.Second
	shutdownTimeout = 5 * time.Second
)

type Server struct {
	address   string
	directory Directory
	archiver  Archiver
	logger    logging.Logger
	jwtSecret []byte
	mux       *http.ServeMux
	now       func() time.Time
}

// NewServer wires the routes. archiver may be nil, in which case snapshot
// requests get 503.
func NewServer(address string, l logging.Logger, d Directory, a Archiver, secretKey string) *Server {
	s := &Server{
		address:   address,
		directory: d,
		archiver:  a,
		logger:    l.With("module", "http_server"),
		jwtSecret: []byte(secretKey),
		mux:       http.NewServeMux(),
		now:       time.Now,
	}

	s.mux.HandleFunc("GET /healthz", s.handleHealth)

	s.mux.HandleFunc("POST /SignIn", s.handleSignIn)
	s.mux.HandleFunc("POST /Login", s.handleLogin)
	s.mux.HandleFunc("POST /Logout", s.handleLogout)
	s.mux.HandleFunc("GET /ReturnProfileInformation", s.handleProfileInformation)
	s.mux.HandleFunc("GET /user/profile", s.handleSessionProfile)
	s.mux.HandleFunc("POST /EditInformation", s.handleEditInformation)
	s.mux.HandleFunc("DELETE /profile", s.handleDeleteProfile)
	s.mux.HandleFunc("GET /usernames", s.handleUsernames)

	s.mux.HandleFunc("GET /tasks", s.handleListTasks)
	s.mux.HandleFunc("POST /tasks/add", s.handleAddTask)
	s.mux.HandleFunc("POST /tasks/complete", s.handleCompleteTask)
	s.mux.HandleFunc("DELETE /tasks/delete", s.handleDeleteTask)
	s.mux.HandleFunc("POST /tasks/reset", s.handleResetTasks)
	s.mux.HandleFunc("PATCH /tasks/update-urgency", s.handleUpdateUrgency)
	s.mux.HandleFunc("GET /tasks/completion", s.handleCompletion)
	s.mux.HandleFunc("POST /tasks/snapshot", s.handleSnapshot)

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.withMiddleware(s.mux).ServeHTTP(w, r)
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
