package cleanup

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"fitroom/internal/config"
	"fitroom/internal/ledger"
	"fitroom/internal/logging"
)

const defaultInterval = 6 * time.Hour

// Monitor runs periodic sweeps while the daemon is up.
type Monitor struct {
	sweeper  *Sweeper
	logger   *slog.Logger
	interval time.Duration

	mu      sync.Mutex
	running bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewMonitor builds the background sweeper. Returns nil when cleanup is
// disabled; callers must guard against that.
func NewMonitor(cfg *config.Config, store *ledger.Store, logger *slog.Logger) *Monitor {
	if cfg == nil || store == nil || !cfg.Cleanup.Enabled {
		return nil
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	interval := time.Duration(cfg.Cleanup.IntervalHours) * time.Hour
	if interval <= 0 {
		interval = defaultInterval
	}

	return &Monitor{
		sweeper:  NewSweeper(cfg, store, logger),
		logger:   logging.NewComponentLogger(logger, "cleanup"),
		interval: interval,
	}
}

func (m *Monitor) Start(ctx context.Context) error {
	if m == nil {
		return errors.New("cleanup monitor unavailable")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return errors.New("cleanup monitor already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.ctx = runCtx
	m.cancel = cancel
	m.running = true

	m.wg.Add(1)
	go m.loop()
	return nil
}

func (m *Monitor) Stop() {
	if m == nil {
		return
	}
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	m.wg.Wait()
}

func (m *Monitor) loop() {
	defer m.wg.Done()

	m.sweep()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

func (m *Monitor) sweep() {
	if _, err := m.sweeper.Sweep(m.ctx); err != nil {
		if m.ctx.Err() != nil {
			return
		}
		m.logger.Warn("orphan sweep failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "sweep_failed"),
			logging.String(logging.FieldErrorHint, "check ledger database access and image directory permissions"),
		)
	}
}
