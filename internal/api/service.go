package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"fitroom/internal/config"
	"fitroom/internal/ledger"
	"fitroom/internal/logging"
)

const garmentFetchTimeout = 30 * time.Second

// Service implements the application operations shared by the daemon's HTTP
// handlers and the CLI's direct-store mode. It owns upload normalization,
// file placement, and record/file lifecycle so the two entry points cannot
// drift apart.
type Service struct {
	cfg    *config.Config
	store  *ledger.Store
	logger *slog.Logger
	fetch  *http.Client
}

// NewService constructs the application service around an open store.
func NewService(cfg *config.Config, store *ledger.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	var overrides map[string]string
	if cfg != nil {
		overrides = cfg.Logging.ComponentOverrides
	}
	return &Service{
		cfg:    cfg,
		store:  store,
		logger: logging.NewComponentLoggerWithOverrides(logger, "api", overrides),
		fetch:  &http.Client{Timeout: garmentFetchTimeout},
	}
}

// Store exposes the underlying ledger store for components that need raw
// access (workflow manager, health checks).
func (s *Service) Store() *ledger.Store {
	return s.store
}

// List returns ledger records filtered by status, newest first.
func (s *Service) List(ctx context.Context, statuses ...ledger.Status) ([]Generation, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	gens, err := s.store.List(ctx, statuses...)
	if err != nil {
		return nil, err
	}
	return FromGenerations(gens), nil
}

// Describe fetches a single record. Missing records return nil without error
// so callers control their own not-found semantics.
func (s *Service) Describe(ctx context.Context, id int64) (*Generation, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	gen, err := s.store.GetByID(ctx, id)
	if err != nil || gen == nil {
		return nil, err
	}
	dto := FromGeneration(gen)
	return &dto, nil
}

// Stats returns ledger summary counts and completed spend.
func (s *Service) Stats(ctx context.Context) (StatsResponse, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return StatsResponse{}, err
	}
	return FromStats(stats), nil
}

// SetRating applies a star rating to a completed record.
func (s *Service) SetRating(ctx context.Context, id int64, rating int) error {
	if err := s.store.SetRating(ctx, id, rating); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "rating updated",
		logging.Int64("generation_id", id),
		logging.Int("rating", rating))
	return nil
}

// ListVariants returns registry entries. The public view keeps only
// available variants; includeUnavailable adds disabled and blacklisted ones
// for administrative commands.
func (s *Service) ListVariants(ctx context.Context, includeUnavailable bool) ([]Variant, error) {
	var (
		variants []*ledger.Variant
		err      error
	)
	if includeUnavailable {
		variants, err = s.store.ListVariants(ctx)
	} else {
		variants, err = s.store.ListEnabledVariants(ctx)
	}
	if err != nil {
		return nil, err
	}
	return FromVariants(variants), nil
}

// DescribeVariant returns one registry entry including blacklist state.
func (s *Service) DescribeVariant(ctx context.Context, name string) (*Variant, error) {
	variant, err := s.store.GetVariant(ctx, name)
	if err != nil {
		return nil, err
	}
	dto := FromVariant(variant)
	return &dto, nil
}

// EnableVariant flips a variant's enabled flag. Enabling a blacklisted
// variant is rejected; it must be reset first.
func (s *Service) EnableVariant(ctx context.Context, name string, enabled bool) error {
	if err := s.store.SetVariantEnabled(ctx, name, enabled); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "variant toggled",
		logging.String("variant", name),
		logging.Bool("enabled", enabled))
	return nil
}

// ResetVariant clears a variant's blacklist state and timing history.
func (s *Service) ResetVariant(ctx context.Context, name string) error {
	if err := s.store.ResetBlacklist(ctx, name); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "variant blacklist reset", logging.String("variant", name))
	return nil
}
