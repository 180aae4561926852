package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/gofrs/flock"

	"fitroom/internal/api"
	"fitroom/internal/cleanup"
	"fitroom/internal/config"
	"fitroom/internal/ledger"
	"fitroom/internal/logging"
	"fitroom/internal/notifications"
	"fitroom/internal/workflow"
)

// Version identifies the daemon build in status payloads.
const Version = "0.1.0"

// Daemon owns the background services and enforces single-instance execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *ledger.Store
	workflow *workflow.Manager
	sweeper  *cleanup.Monitor
	service  *api.Service
	server   *apiServer

	logPath    string
	logHub     *logging.StreamHub
	logArchive *logging.EventArchive

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	Workflow     workflow.StatusSummary
	DatabasePath string
	LockFilePath string
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *ledger.Store, logger *slog.Logger, wf *workflow.Manager, logPath string, hub *logging.StreamHub, archive *logging.EventArchive) (*Daemon, error) {
	if cfg == nil || store == nil || logger == nil || wf == nil {
		return nil, errors.New("daemon requires config, store, logger, and workflow manager")
	}

	lockPath := filepath.Join(cfg.Paths.DataDir, "fitroomd.lock")
	d := &Daemon{
		cfg:        cfg,
		logger:     logger,
		store:      store,
		workflow:   wf,
		sweeper:    cleanup.NewMonitor(cfg, store, logger),
		service:    api.NewService(cfg, store, logger),
		logPath:    logPath,
		logHub:     hub,
		logArchive: archive,
		lockPath:   lockPath,
		lock:       flock.New(lockPath),
	}

	server, err := newAPIServer(cfg, d, logger)
	if err != nil {
		return nil, fmt.Errorf("build api server: %w", err)
	}
	d.server = server
	return d, nil
}

// Start acquires the daemon lock and launches the background services.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another fitroom daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	if err := d.workflow.Start(d.ctx); err != nil {
		d.releaseLock()
		d.cancel()
		d.ctx = nil
		d.cancel = nil
		return fmt.Errorf("start workflow: %w", err)
	}

	if d.sweeper != nil {
		if err := d.sweeper.Start(d.ctx); err != nil {
			d.logger.Warn("cleanup monitor failed to start", logging.Error(err))
		}
	}

	if err := d.server.start(d.ctx); err != nil {
		d.sweeper.Stop()
		d.workflow.Stop()
		d.releaseLock()
		d.cancel()
		d.ctx = nil
		d.cancel = nil
		return fmt.Errorf("start api server: %w", err)
	}

	d.running.Store(true)
	d.logger.Info("fitroom daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop tears the services down in reverse start order and releases the lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.server.stop()
	d.sweeper.Stop()
	d.workflow.Stop()
	d.releaseLock()
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("fitroom daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

func (d *Daemon) releaseLock() {
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	return Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		Workflow:     d.workflow.Status(ctx),
		DatabasePath: d.cfg.DatabasePath(),
		LockFilePath: d.lockPath,
	}
}

// Service exposes the ledger-facing API service for in-process callers.
func (d *Daemon) Service() *api.Service {
	return d.service
}

// DatabaseHealth returns detailed ledger database diagnostics.
func (d *Daemon) DatabaseHealth(ctx context.Context) (ledger.DatabaseHealth, error) {
	if d.store == nil {
		return ledger.DatabaseHealth{}, errors.New("ledger store unavailable")
	}
	return d.store.CheckHealth(ctx)
}

// TestNotification triggers a test notification using the current configuration.
func (d *Daemon) TestNotification(ctx context.Context) (bool, string, error) {
	if d.cfg == nil {
		return false, "configuration unavailable", errors.New("configuration unavailable")
	}
	if strings.TrimSpace(d.cfg.Notifications.NtfyTopic) == "" {
		return false, "ntfy topic not configured", nil
	}
	notifier := notifications.NewService(d.cfg)
	if err := notifier.Publish(ctx, notifications.EventTest, nil); err != nil {
		return false, "failed to send notification", err
	}
	return true, "test notification sent", nil
}

// LogPath returns the path to the daemon log file.
func (d *Daemon) LogPath() string {
	return d.logPath
}

// LogStream returns the in-memory log event hub.
func (d *Daemon) LogStream() *logging.StreamHub {
	return d.logHub
}

// LogArchive returns the on-disk log event journal.
func (d *Daemon) LogArchive() *logging.EventArchive {
	return d.logArchive
}

// Addr reports the API server's bound address, available after Start.
func (d *Daemon) Addr() string {
	return d.server.addr()
}
