package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"fitroom/internal/config"
	"fitroom/internal/fileutil"
	"fitroom/internal/ledger"
	"fitroom/internal/logging"
)

const defaultMinAge = 24 * time.Hour

// Result summarizes one sweep pass.
type Result struct {
	Examined   int
	Removed    int
	Failed     int
	FreedBytes int64
}

// Sweeper deletes unreferenced image files older than the configured minimum
// age.
type Sweeper struct {
	cfg    *config.Config
	store  *ledger.Store
	logger *slog.Logger
	minAge time.Duration
}

// NewSweeper builds a sweeper from the cleanup config section.
func NewSweeper(cfg *config.Config, store *ledger.Store, logger *slog.Logger) *Sweeper {
	if logger == nil {
		logger = logging.NewNop()
	}
	minAge := time.Duration(cfg.Cleanup.MinAgeHours) * time.Hour
	if cfg.Cleanup.MinAgeHours < 0 {
		minAge = defaultMinAge
	}
	return &Sweeper{
		cfg:    cfg,
		store:  store,
		logger: logging.NewComponentLoggerWithOverrides(logger, "cleanup", cfg.Logging.ComponentOverrides),
		minAge: minAge,
	}
}

// Sweep walks the uploads and results directories once and removes every
// orphan past the age threshold. Per-file removal failures are logged and
// counted, not fatal.
func (s *Sweeper) Sweep(ctx context.Context) (Result, error) {
	start := time.Now()
	referenced, err := s.referencedPaths(ctx)
	if err != nil {
		return Result{}, err
	}
	cutoff := start.Add(-s.minAge)

	var result Result
	for _, dir := range []string{s.cfg.Paths.UploadsDir, s.cfg.Paths.ResultsDir} {
		s.sweepDir(dir, referenced, cutoff, &result)
	}

	if result.Removed > 0 || result.Failed > 0 {
		s.logger.Info("sweep completed",
			logging.Int("examined", result.Examined),
			logging.Int("removed", result.Removed),
			logging.Int("failed", result.Failed),
			logging.Int64("freed_bytes", result.FreedBytes),
			logging.Duration("elapsed", time.Since(start)),
		)
	}
	return result, nil
}

func (s *Sweeper) referencedPaths(ctx context.Context) (map[string]struct{}, error) {
	generations, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list generations: %w", err)
	}
	refs := make(map[string]struct{}, len(generations)*3)
	for _, gen := range generations {
		for _, path := range gen.OwnedFiles() {
			refs[filepath.Clean(path)] = struct{}{}
		}
	}
	return refs, nil
}

func (s *Sweeper) sweepDir(dir string, referenced map[string]struct{}, cutoff time.Time, result *Result) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("cannot read image directory",
				logging.String("dir", dir),
				logging.Error(err))
			result.Failed++
		}
		return
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		result.Examined++

		path := filepath.Clean(filepath.Join(dir, entry.Name()))
		if _, ok := referenced[path]; ok {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}

		removed, err := fileutil.RemoveIfExists(path)
		if err != nil {
			s.logger.Warn("failed to remove orphaned image",
				logging.String("path", path),
				logging.Error(err))
			result.Failed++
			continue
		}
		if !removed {
			continue
		}
		result.Removed++
		result.FreedBytes += info.Size()
		s.logger.Debug("removed orphaned image",
			logging.String("path", path),
			logging.Int64("size_bytes", info.Size()))
	}
}
