package ledgeraccess

import (
	"context"
	"errors"

	"fitroom/internal/api"
	"fitroom/internal/apiclient"
	"fitroom/internal/config"
	"fitroom/internal/ledger"
	"fitroom/internal/logging"
	"fitroom/internal/services"
)

// Access provides ledger operations regardless of daemon API or direct
// store backing.
type Access interface {
	DaemonStatus(ctx context.Context) (api.DaemonStatus, error)
	List(ctx context.Context, statuses []string) ([]api.Generation, error)
	Describe(ctx context.Context, id int64) (*api.Generation, error)
	Create(ctx context.Context, req api.CreateRequest) (api.CreateAccepted, error)
	Delete(ctx context.Context, id int64) error
	SetRating(ctx context.Context, id int64, rating int) (*api.Generation, error)
	ListVariants(ctx context.Context, includeUnavailable bool) ([]api.Variant, error)
	EnableVariant(ctx context.Context, name string) (*api.Variant, error)
	DisableVariant(ctx context.Context, name string) (*api.Variant, error)
	ResetVariant(ctx context.Context, name string) (*api.Variant, error)
}

// NewAPIAccess returns an Access backed by the daemon REST API.
func NewAPIAccess(client *apiclient.Client) Access {
	return &apiAccess{client: client}
}

// NewStoreAccess returns an Access backed by direct ledger access. Records
// created this way stay pending until a running daemon claims them.
func NewStoreAccess(cfg *config.Config, store *ledger.Store) Access {
	return &storeAccess{
		cfg:     cfg,
		store:   store,
		service: api.NewService(cfg, store, logging.NewNop()),
	}
}

// IsNotFound reports whether err marks a missing record in either backing mode.
func IsNotFound(err error) bool {
	return apiclient.IsNotFound(err) ||
		errors.Is(err, services.ErrNotFound) ||
		errors.Is(err, ledger.ErrNotFound)
}

type apiAccess struct {
	client *apiclient.Client
}

func (a *apiAccess) DaemonStatus(ctx context.Context) (api.DaemonStatus, error) {
	return a.client.Status(ctx)
}

func (a *apiAccess) List(ctx context.Context, statuses []string) ([]api.Generation, error) {
	return a.client.ListGenerations(ctx, statuses)
}

func (a *apiAccess) Describe(ctx context.Context, id int64) (*api.Generation, error) {
	return a.client.GetGeneration(ctx, id)
}

func (a *apiAccess) Create(ctx context.Context, req api.CreateRequest) (api.CreateAccepted, error) {
	return a.client.CreateGeneration(ctx, apiclient.CreateGenerationRequest{
		PersonName:      req.PersonName,
		GarmentName:     req.GarmentName,
		PersonImage:     req.Person.Data,
		PersonFilename:  req.Person.Filename,
		GarmentImage:    req.Garment.Data,
		GarmentFilename: req.Garment.Filename,
		GarmentURL:      req.GarmentURL,
		Variant:         req.Variant,
	})
}

func (a *apiAccess) Delete(ctx context.Context, id int64) error {
	return a.client.DeleteGeneration(ctx, id)
}

func (a *apiAccess) SetRating(ctx context.Context, id int64, rating int) (*api.Generation, error) {
	return a.client.SetRating(ctx, id, rating)
}

func (a *apiAccess) ListVariants(ctx context.Context, includeUnavailable bool) ([]api.Variant, error) {
	return a.client.ListVariants(ctx, includeUnavailable)
}

func (a *apiAccess) EnableVariant(ctx context.Context, name string) (*api.Variant, error) {
	return a.client.EnableVariant(ctx, name)
}

func (a *apiAccess) DisableVariant(ctx context.Context, name string) (*api.Variant, error) {
	return a.client.DisableVariant(ctx, name)
}

func (a *apiAccess) ResetVariant(ctx context.Context, name string) (*api.Variant, error) {
	return a.client.ResetVariant(ctx, name)
}

type storeAccess struct {
	cfg     *config.Config
	store   *ledger.Store
	service *api.Service
}

func (a *storeAccess) DaemonStatus(ctx context.Context) (api.DaemonStatus, error) {
	stats, err := a.service.Stats(ctx)
	if err != nil {
		return api.DaemonStatus{}, err
	}
	status := api.DaemonStatus{
		Workflow: api.WorkflowStatus{
			Counts:        stats.Counts,
			Total:         stats.Total,
			CompletedCost: stats.CompletedCost,
		},
	}
	if a.cfg != nil {
		status.DatabasePath = a.cfg.DatabasePath()
	}
	return status, nil
}

func (a *storeAccess) List(ctx context.Context, statuses []string) ([]api.Generation, error) {
	var filters []ledger.Status
	for _, s := range statuses {
		if parsed, ok := ledger.ParseStatus(s); ok {
			filters = append(filters, parsed)
		}
	}
	return a.service.List(ctx, filters...)
}

func (a *storeAccess) Describe(ctx context.Context, id int64) (*api.Generation, error) {
	return a.service.Describe(ctx, id)
}

func (a *storeAccess) Create(ctx context.Context, req api.CreateRequest) (api.CreateAccepted, error) {
	created, err := a.service.CreateGeneration(ctx, req)
	if err != nil {
		return api.CreateAccepted{}, err
	}
	return api.CreateAccepted{ID: created.ID, Status: created.Status}, nil
}

func (a *storeAccess) Delete(ctx context.Context, id int64) error {
	return a.service.DeleteGeneration(ctx, id)
}

func (a *storeAccess) SetRating(ctx context.Context, id int64, rating int) (*api.Generation, error) {
	if err := a.service.SetRating(ctx, id, rating); err != nil {
		return nil, err
	}
	return a.service.Describe(ctx, id)
}

func (a *storeAccess) ListVariants(ctx context.Context, includeUnavailable bool) ([]api.Variant, error) {
	return a.service.ListVariants(ctx, includeUnavailable)
}

func (a *storeAccess) EnableVariant(ctx context.Context, name string) (*api.Variant, error) {
	if err := a.service.EnableVariant(ctx, name, true); err != nil {
		return nil, err
	}
	return a.service.DescribeVariant(ctx, name)
}

func (a *storeAccess) DisableVariant(ctx context.Context, name string) (*api.Variant, error) {
	if err := a.service.EnableVariant(ctx, name, false); err != nil {
		return nil, err
	}
	return a.service.DescribeVariant(ctx, name)
}

func (a *storeAccess) ResetVariant(ctx context.Context, name string) (*api.Variant, error) {
	if err := a.service.ResetVariant(ctx, name); err != nil {
		return nil, err
	}
	return a.service.DescribeVariant(ctx, name)
}
