package workflow

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"fitroom/internal/config"
	"fitroom/internal/ledger"
	"fitroom/internal/logging"
	"fitroom/internal/notifications"
	"fitroom/internal/services/tryon"
)

// defaultBudget bounds a synthesis call when the variant row carries no
// usable ceiling.
const defaultBudget = 180 * time.Second

// Manager coordinates generation processing with a pool of workers.
type Manager struct {
	cfg      *config.Config
	store    *ledger.Store
	backend  tryon.Backend
	notifier notifications.Service
	logger   *slog.Logger

	workers       int
	pollInterval  time.Duration
	retryInterval time.Duration

	mu      sync.RWMutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	lastErr error
}

// NewManager constructs a workflow manager with the ntfy notifier derived
// from the configuration.
func NewManager(cfg *config.Config, store *ledger.Store, backend tryon.Backend, logger *slog.Logger) *Manager {
	return NewManagerWithNotifier(cfg, store, backend, logger, notifications.NewService(cfg))
}

// NewManagerWithNotifier constructs a workflow manager with a custom
// notifier (used in tests).
func NewManagerWithNotifier(cfg *config.Config, store *ledger.Store, backend tryon.Backend, logger *slog.Logger, notifier notifications.Service) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	workers := cfg.Workflow.GenerationWorkers
	if workers < 1 {
		workers = 1
	}
	return &Manager{
		cfg:           cfg,
		store:         store,
		backend:       backend,
		notifier:      notifier,
		logger:        logging.NewComponentLoggerWithOverrides(logger, "workflow", cfg.Logging.ComponentOverrides),
		workers:       workers,
		pollInterval:  time.Duration(cfg.Workflow.QueuePollInterval) * time.Second,
		retryInterval: time.Duration(cfg.Workflow.ErrorRetryInterval) * time.Second,
	}
}

// Workers reports the configured worker pool size.
func (m *Manager) Workers() int {
	return m.workers
}
