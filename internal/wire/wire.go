// Package wire provides dependency injection for the flairbot application.
// It creates singleton services with lazy initialization from the loaded
// configuration.
package wire

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	cliadapter "github.com/example/flairbot/internal/adapters/cli"
	"github.com/example/flairbot/internal/adapters/filesystem"
	"github.com/example/flairbot/internal/adapters/reddit"
	"github.com/example/flairbot/internal/adapters/sqlite"
	"github.com/example/flairbot/internal/app"
	"github.com/example/flairbot/internal/config"
	"github.com/example/flairbot/internal/core/flair"
	"github.com/example/flairbot/internal/db"
	"github.com/example/flairbot/internal/ports/primary"
	"github.com/example/flairbot/internal/ports/secondary"
)

var (
	cfg    *config.Config
	logger = zap.NewNop()

	database  *sql.DB
	snapshots secondary.SnapshotStore
	auditLog  secondary.AuditLog
	forum     secondary.ForumClient
	forumErr  error
	client    *reddit.Client

	store           *app.TrackingStore
	trackingService primary.TrackingService
	historyService  primary.HistoryService

	once    sync.Once
	initErr error
)

// Configure sets the configuration and logger used to build services.
// It must be called before any accessor.
func Configure(c *config.Config, l *zap.Logger) {
	cfg = c
	if l != nil {
		logger = l
	}
}

// Logger returns the configured logger.
func Logger() *zap.Logger {
	return logger
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	if cfg == nil {
		initErr = errors.New("wire: Configure was not called")
		return
	}

	if err := initStorage(); err != nil {
		initErr = err
		return
	}

	// The forum client is optional for offline commands
	forum, forumErr = newForumClient()

	timing := cfg.TimingPolicy()
	store = app.NewTrackingStore(snapshots, logger.Named("store"))
	trackingService = app.NewTrackingService(store, forum, cfg.Community, timing, time.Now)
	historyService = app.NewHistoryService(auditLog)
}

// initStorage opens the configured persistence backend.
func initStorage() error {
	path, err := db.ExpandPath(cfg.Store.Path)
	if err != nil {
		return err
	}

	switch cfg.Store.Driver {
	case config.DriverJSON:
		snapshots = filesystem.NewSnapshotFile(path)
	case config.DriverSQLite3, config.DriverSQLite:
		database, err = db.Open(cfg.Store.Driver, path)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		snapshots = sqlite.NewSnapshotRepository(database)
		auditLog = sqlite.NewModerationLogRepository(database)
	default:
		return fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}
	return nil
}

func newForumClient() (secondary.ForumClient, error) {
	if err := cfg.ValidateCredentials(); err != nil {
		return nil, err
	}
	var err error
	client, err = reddit.NewClient(reddit.ClientConfig{
		BaseURL:           cfg.Platform.BaseURL,
		TokenURL:          cfg.Platform.TokenURL,
		UserAgent:         cfg.Platform.UserAgent,
		Username:          cfg.Platform.Username,
		Password:          cfg.Platform.Password,
		ClientID:          cfg.Platform.ClientID,
		ClientSecret:      cfg.Platform.ClientSecret,
		RequestsPerMinute: cfg.Platform.RequestsPerMinute,
		Timeout:           config.Seconds(cfg.Platform.TimeoutSeconds),
		Logger:            logger.Named("reddit"),
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

// Orchestrator builds the enforcement loop with its three passes.
func Orchestrator() (primary.Orchestrator, error) {
	once.Do(initServices)
	if initErr != nil {
		return nil, initErr
	}
	if forumErr != nil {
		return nil, fmt.Errorf("cannot reach the platform: %w", forumErr)
	}

	catalog, err := flair.NewCatalog(cfg.FlairTable())
	if err != nil {
		return nil, err
	}
	timing := cfg.TimingPolicy()
	community := cfg.Community

	executor := app.NewEffectExecutor(forum, store, auditLog, community, logger.Named("executor"))
	passes := []primary.Pass{
		app.NewPostScanner(forum, store, catalog, auditLog, app.PostScannerConfig{
			Community:    community,
			ScanLimit:    cfg.Loop.ScanLimit,
			Timing:       timing,
			GuideURL:     cfg.Messages.GuideURL,
			ConfirmDelay: config.Milliseconds(cfg.Loop.ConfirmDelayMS),
		}, logger.Named(primary.PassScan), time.Now, app.SleepContext),
		app.NewReplyCorrelator(forum, store, catalog, executor, logger.Named(primary.PassReplies)),
		app.NewTimeoutReconciler(forum, store, executor, timing, logger.Named(primary.PassReconcile), time.Now),
	}

	return app.NewOrchestrator(store, passes, app.OrchestratorConfig{
		PassDelay:  config.Seconds(cfg.Loop.PassDelaySeconds),
		ErrorPause: config.Seconds(cfg.Loop.ErrorPauseSeconds),
		Interval:   config.Seconds(cfg.Loop.IntervalSeconds),
	}, logger.Named("loop"), app.SleepContext), nil
}

// TrackingAdapter returns a new TrackingAdapter writing to stdout.
func TrackingAdapter() (*cliadapter.TrackingAdapter, error) {
	return TrackingAdapterWithOutput(os.Stdout)
}

// TrackingAdapterWithOutput returns a new TrackingAdapter writing to the given output.
// Each call creates a new adapter (adapters are stateless translators).
func TrackingAdapterWithOutput(out io.Writer) (*cliadapter.TrackingAdapter, error) {
	once.Do(initServices)
	if initErr != nil {
		return nil, initErr
	}
	return cliadapter.NewTrackingAdapter(trackingService, out), nil
}

// HistoryAdapter returns a new HistoryAdapter writing to stdout.
func HistoryAdapter() (*cliadapter.HistoryAdapter, error) {
	return HistoryAdapterWithOutput(os.Stdout)
}

// HistoryAdapterWithOutput returns a new HistoryAdapter writing to the given output.
func HistoryAdapterWithOutput(out io.Writer) (*cliadapter.HistoryAdapter, error) {
	once.Do(initServices)
	if initErr != nil {
		return nil, initErr
	}
	return cliadapter.NewHistoryAdapter(historyService, out), nil
}

// Close releases the platform connections and the database, if opened.
func Close() error {
	if client != nil {
		client.CloseIdleConnections()
	}
	if database != nil {
		return database.Close()
	}
	return nil
}
