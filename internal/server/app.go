// Package server wires the account directory to its storage and facades.
// It picks the store driver, runs migrations, warms the account cache and
// runs the HTTP and gRPC servers until a shutdown signal arrives.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/accounts"
	"github.com/dmitrijs2005/taskkeeper/internal/server/archive"
	"github.com/dmitrijs2005/taskkeeper/internal/server/auth"
	"github.com/dmitrijs2005/taskkeeper/internal/server/config"
	"github.com/dmitrijs2005/taskkeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"

	gs "github.com/dmitrijs2005/taskkeeper/internal/server/grpc"
)

type App struct {
	config    *config.Config
	logger    logging.Logger
	repos     repomanager.RepositoryManager
	directory *accounts.Directory
	archiver  httpapi.Archiver
}

var newPostgresManager = func(dsn string) (repomanager.RepositoryManager, error) {
	return repomanager.NewPostgresRepositoryManager(dsn)
}

func newRepositoryManager(c *config.Config) (repomanager.RepositoryManager, error) {
	switch c.StoreDriver {
	case config.StoreDriverMemory:
		return repomanager.NewInMemoryRepositoryManager(), nil
	case config.StoreDriverPostgres:
		return newPostgresManager(c.DatabaseDSN)
	default:
		return nil, fmt.Errorf("unknown store driver %q", c.StoreDriver)
	}
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	repos, err := newRepositoryManager(c)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := repos.RunMigrations(ctx); err != nil {
		_ = repos.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	dir := accounts.NewDirectory(repos, auth.NewPasswordHasher(c.BcryptCost), logger, c.SessionValidityDuration)
	if err := dir.Initialize(ctx); err != nil {
		_ = repos.Close()
		return nil, fmt.Errorf("cache init error: %w", err)
	}

	app := &App{config: c, logger: logger, repos: repos, directory: dir}

	// a nil *Archiver must not end up inside the interface
	if c.ArchiveEnabled {
		app.archiver = archive.NewArchiver(c)
	}

	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.directory, app.config.SecretKey)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewServer(app.config.EndpointAddrHTTP, app.logger, app.directory, app.archiver, app.config.SecretKey)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until ctx is cancelled, a signal arrives or a server fails.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "store", app.config.StoreDriver)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	if app.config.CacheRefreshInterval > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.directory.RunCacheRefresh(ctx, app.config.CacheRefreshInterval)
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.repos.Close(); err != nil {
		app.logger.Error(ctx, "close store", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
