package workflow

import (
	"context"

	"fitroom/internal/ledger"
	"fitroom/internal/logging"
)

// StatusSummary represents lightweight workflow diagnostics.
type StatusSummary struct {
	Running       bool
	Workers       int
	LastError     string
	ByStatus      map[ledger.Status]int
	Total         int
	CompletedCost float64
}

// Status returns the latest workflow information.
func (m *Manager) Status(ctx context.Context) StatusSummary {
	m.mu.RLock()
	running := m.running
	lastErr := m.lastErr
	m.mu.RUnlock()

	stats, err := m.store.Stats(ctx)
	if err != nil {
		m.logger.Warn("failed to read ledger stats", logging.Error(err))
	}

	summary := StatusSummary{
		Running:       running,
		Workers:       m.workers,
		ByStatus:      stats.ByStatus,
		Total:         stats.Total,
		CompletedCost: stats.CompletedCost,
	}
	if lastErr != nil {
		summary.LastError = lastErr.Error()
	}
	return summary
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}
