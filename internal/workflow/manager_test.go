package workflow_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"fitroom/internal/config"
	"fitroom/internal/ledger"
	"fitroom/internal/logging"
	"fitroom/internal/notifications"
	"fitroom/internal/services"
	"fitroom/internal/services/tryon"
	"fitroom/internal/testsupport"
	"fitroom/internal/workflow"
)

type stubBackend struct {
	mu       sync.Mutex
	generate func(ctx context.Context, req tryon.GenerateRequest) (*tryon.GenerateResult, error)
	fetch    func(ctx context.Context, resultURL string) ([]byte, string, error)
	requests []tryon.GenerateRequest
}

func (b *stubBackend) Generate(ctx context.Context, req tryon.GenerateRequest) (*tryon.GenerateResult, error) {
	b.mu.Lock()
	b.requests = append(b.requests, req)
	fn := b.generate
	b.mu.Unlock()
	if fn != nil {
		return fn(ctx, req)
	}
	return &tryon.GenerateResult{ResultURL: "/results/stub.jpg"}, nil
}

func (b *stubBackend) FetchResult(ctx context.Context, resultURL string) ([]byte, string, error) {
	b.mu.Lock()
	fn := b.fetch
	b.mu.Unlock()
	if fn != nil {
		return fn(ctx, resultURL)
	}
	return []byte("stub result bytes"), "image/jpeg", nil
}

func (b *stubBackend) Health(ctx context.Context) error { return nil }

func (b *stubBackend) recordedRequests() []tryon.GenerateRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]tryon.GenerateRequest, len(b.requests))
	copy(out, b.requests)
	return out
}

type recordingNotifier struct {
	mu       sync.Mutex
	events   []notifications.Event
	payloads []notifications.Payload
}

func (n *recordingNotifier) Publish(_ context.Context, event notifications.Event, payload notifications.Payload) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	n.payloads = append(n.payloads, payload)
	return nil
}

func (n *recordingNotifier) find(event notifications.Event) (notifications.Payload, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i, e := range n.events {
		if e == event {
			return n.payloads[i], true
		}
	}
	return nil, false
}

func newWorkflowConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	cfg.Workflow.QueuePollInterval = 0
	cfg.Workflow.ErrorRetryInterval = 0
	return cfg
}

func startManager(t *testing.T, cfg *config.Config, store *ledger.Store, backend tryon.Backend, notifier notifications.Service) *workflow.Manager {
	t.Helper()
	manager := workflow.NewManagerWithNotifier(cfg, store, backend, logging.NewNop(), notifier)
	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(manager.Stop)
	return manager
}

func waitForStatus(t *testing.T, store *ledger.Store, id int64, want ledger.Status) *ledger.Generation {
	t.Helper()
	ctx := context.Background()
	deadline := time.After(5 * time.Second)
	for {
		gen, err := store.GetByID(ctx, id)
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if gen != nil && gen.Status == want {
			return gen
		}
		select {
		case <-deadline:
			status := ledger.Status("missing")
			if gen != nil {
				status = gen.Status
			}
			t.Fatalf("generation %d never reached %s (last status %s)", id, want, status)
		case <-time.After(25 * time.Millisecond):
		}
	}
}

func TestManagerProcessesGeneration(t *testing.T) {
	cfg := newWorkflowConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	backend := &stubBackend{
		fetch: func(context.Context, string) ([]byte, string, error) {
			return []byte("rendered png bytes"), "image/png", nil
		},
	}
	notifier := &recordingNotifier{}
	gen := testsupport.NewGeneration(t, cfg, store, "local-free")
	startManager(t, cfg, store, backend, notifier)

	done := waitForStatus(t, store, gen.ID, ledger.StatusCompleted)
	if done.GenerationTimeSeconds <= 0 {
		t.Fatalf("expected positive generation time, got %f", done.GenerationTimeSeconds)
	}
	if done.ErrorMessage != "" {
		t.Fatalf("unexpected error message %q", done.ErrorMessage)
	}
	if done.ResultImagePath == "" {
		t.Fatal("expected result image path")
	}
	if !strings.HasPrefix(filepath.Base(done.ResultImagePath), "result_") {
		t.Fatalf("unexpected result file name %q", filepath.Base(done.ResultImagePath))
	}
	if !strings.HasSuffix(done.ResultImagePath, ".png") {
		t.Fatalf("expected .png extension for image/png payload, got %q", done.ResultImagePath)
	}
	data, err := os.ReadFile(done.ResultImagePath)
	if err != nil {
		t.Fatalf("read result image: %v", err)
	}
	if string(data) != "rendered png bytes" {
		t.Fatalf("result file contents mismatch: %q", data)
	}

	requests := backend.recordedRequests()
	if len(requests) != 1 {
		t.Fatalf("expected one backend call, got %d", len(requests))
	}
	req := requests[0]
	if len(req.PersonImage) == 0 || len(req.GarmentImage) == 0 {
		t.Fatal("expected image bytes forwarded to the backend")
	}
	if !strings.HasSuffix(req.PersonFilename, "_person.jpg") {
		t.Fatalf("unexpected person filename %q", req.PersonFilename)
	}
	if req.EnhancePrompt {
		t.Fatal("free variant should not request prompt enhancement")
	}

	variant, err := store.GetVariant(ctx, "local-free")
	if err != nil {
		t.Fatalf("GetVariant failed: %v", err)
	}
	if variant.AvgTimeSeconds <= 0 {
		t.Fatalf("expected timing sample recorded, got avg %f", variant.AvgTimeSeconds)
	}
	if variant.IsBlacklisted {
		t.Fatal("fast completion must not blacklist the variant")
	}

	payload, ok := notifier.find(notifications.EventGenerationCompleted)
	if !ok {
		t.Fatal("expected completion notification")
	}
	if payload["personName"] != "Test Person" || payload["garmentName"] != "Test Garment" {
		t.Fatalf("unexpected completion payload: %v", payload)
	}
	if payload["variant"] != "local-free" {
		t.Fatalf("unexpected variant in payload: %v", payload)
	}
	if !strings.HasSuffix(payload["elapsed"], "s") {
		t.Fatalf("expected elapsed duration in payload, got %q", payload["elapsed"])
	}
	if _, ok := notifier.find(notifications.EventVariantBlacklisted); ok {
		t.Fatal("unexpected blacklist notification")
	}
}

func TestManagerAppliesVariantBudget(t *testing.T) {
	cfg := newWorkflowConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	backend := &stubBackend{
		generate: func(ctx context.Context, _ tryon.GenerateRequest) (*tryon.GenerateResult, error) {
			deadline, ok := ctx.Deadline()
			if !ok {
				return nil, errors.New("missing deadline")
			}
			if remaining := time.Until(deadline); remaining > 181*time.Second {
				return nil, errors.New("deadline beyond variant ceiling")
			}
			return &tryon.GenerateResult{ResultURL: "/results/budget.jpg"}, nil
		},
	}
	gen := testsupport.NewGeneration(t, cfg, store, "local-free")
	startManager(t, cfg, store, backend, &recordingNotifier{})

	waitForStatus(t, store, gen.ID, ledger.StatusCompleted)
}

func TestManagerMarksTimeoutFailed(t *testing.T) {
	cfg := newWorkflowConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	backend := &stubBackend{
		generate: func(context.Context, tryon.GenerateRequest) (*tryon.GenerateResult, error) {
			return nil, services.Wrap(services.ErrTimeout, "tryon", "generate", "request timed out", context.DeadlineExceeded)
		},
	}
	notifier := &recordingNotifier{}
	gen := testsupport.NewGeneration(t, cfg, store, "local-free")
	startManager(t, cfg, store, backend, notifier)

	failed := waitForStatus(t, store, gen.ID, ledger.StatusFailed)
	if failed.ErrorMessage != "inference timed out after 180s" {
		t.Fatalf("unexpected failure reason %q", failed.ErrorMessage)
	}
	if failed.ResultImagePath != "" {
		t.Fatalf("failed generation must not carry a result path, got %q", failed.ResultImagePath)
	}

	if entries, err := os.ReadDir(cfg.Paths.ResultsDir); err == nil && len(entries) > 0 {
		t.Fatalf("expected empty results directory, found %d entries", len(entries))
	}

	payload, ok := notifier.find(notifications.EventGenerationFailed)
	if !ok {
		t.Fatal("expected failure notification")
	}
	if payload["error"] != "inference timed out after 180s" {
		t.Fatalf("unexpected failure payload: %v", payload)
	}
}

func TestManagerMarksBackendErrorFailed(t *testing.T) {
	cfg := newWorkflowConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	backend := &stubBackend{
		generate: func(context.Context, tryon.GenerateRequest) (*tryon.GenerateResult, error) {
			return nil, errors.New("adapter crashed while loading weights")
		},
	}
	notifier := &recordingNotifier{}
	gen := testsupport.NewGeneration(t, cfg, store, "cloud-free")
	startManager(t, cfg, store, backend, notifier)

	failed := waitForStatus(t, store, gen.ID, ledger.StatusFailed)
	if !strings.Contains(failed.ErrorMessage, "adapter crashed while loading weights") {
		t.Fatalf("unexpected failure reason %q", failed.ErrorMessage)
	}
	if _, ok := notifier.find(notifications.EventGenerationFailed); !ok {
		t.Fatal("expected failure notification")
	}

	variant, err := store.GetVariant(context.Background(), "cloud-free")
	if err != nil {
		t.Fatalf("GetVariant failed: %v", err)
	}
	if variant.AvgTimeSeconds != 0 {
		t.Fatalf("failures must not feed the timing average, got %f", variant.AvgTimeSeconds)
	}
}

func TestManagerMarksFetchFailureFailed(t *testing.T) {
	cfg := newWorkflowConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	backend := &stubBackend{
		fetch: func(context.Context, string) ([]byte, string, error) {
			return nil, "", errors.New("pull result image: connection reset")
		},
	}
	gen := testsupport.NewGeneration(t, cfg, store, "local-free")
	startManager(t, cfg, store, backend, &recordingNotifier{})

	failed := waitForStatus(t, store, gen.ID, ledger.StatusFailed)
	if !strings.Contains(failed.ErrorMessage, "connection reset") {
		t.Fatalf("unexpected failure reason %q", failed.ErrorMessage)
	}
}

func TestManagerNotifiesBlacklistFlip(t *testing.T) {
	cfg := newWorkflowConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	// A concurrent timing sample pushes the variant over its ceiling while
	// this generation is in flight. The worker snapshots blacklist state at
	// claim time, so the completion must detect and announce the flip.
	backend := &stubBackend{
		generate: func(ctx context.Context, _ tryon.GenerateRequest) (*tryon.GenerateResult, error) {
			if err := store.RecordTiming(ctx, "cloud-premium", 400); err != nil {
				return nil, err
			}
			return &tryon.GenerateResult{ResultURL: "/results/premium.jpg"}, nil
		},
	}
	notifier := &recordingNotifier{}
	gen := testsupport.NewGeneration(t, cfg, store, "cloud-premium")
	startManager(t, cfg, store, backend, notifier)

	waitForStatus(t, store, gen.ID, ledger.StatusCompleted)

	requests := backend.recordedRequests()
	if len(requests) != 1 || !requests[0].EnhancePrompt {
		t.Fatal("paid variant should request prompt enhancement")
	}

	payload, ok := notifier.find(notifications.EventVariantBlacklisted)
	if !ok {
		t.Fatal("expected blacklist notification")
	}
	if payload["variant"] != "cloud-premium" {
		t.Fatalf("unexpected blacklist payload: %v", payload)
	}
	if !strings.Contains(payload["reason"], "exceeded") {
		t.Fatalf("expected blacklist reason, got %q", payload["reason"])
	}
	if _, ok := notifier.find(notifications.EventGenerationCompleted); !ok {
		t.Fatal("completion notification should still fire")
	}
}

func TestManagerStartStopGuards(t *testing.T) {
	cfg := newWorkflowConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	missing := workflow.NewManagerWithNotifier(cfg, store, nil, logging.NewNop(), &recordingNotifier{})
	if err := missing.Start(context.Background()); err == nil {
		t.Fatal("expected error when backend is not configured")
	}

	manager := workflow.NewManagerWithNotifier(cfg, store, &stubBackend{}, logging.NewNop(), &recordingNotifier{})
	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := manager.Start(context.Background()); err == nil {
		t.Fatal("expected error for second Start")
	}
	manager.Stop()
	manager.Stop()

	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("restart after Stop failed: %v", err)
	}
	manager.Stop()
}

func TestManagerStatus(t *testing.T) {
	cfg := newWorkflowConfig(t)
	cfg.Workflow.GenerationWorkers = 3
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	manager := workflow.NewManagerWithNotifier(cfg, store, &stubBackend{}, logging.NewNop(), &recordingNotifier{})
	if manager.Workers() != 3 {
		t.Fatalf("expected 3 workers, got %d", manager.Workers())
	}

	summary := manager.Status(ctx)
	if summary.Running {
		t.Fatal("manager should not report running before Start")
	}
	if summary.Workers != 3 {
		t.Fatalf("expected worker count 3, got %d", summary.Workers)
	}

	gen := testsupport.NewGeneration(t, cfg, store, "local-free")
	if err := manager.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(manager.Stop)

	if summary := manager.Status(ctx); !summary.Running {
		t.Fatal("manager should report running after Start")
	}

	waitForStatus(t, store, gen.ID, ledger.StatusCompleted)
	summary = manager.Status(ctx)
	if summary.ByStatus[ledger.StatusCompleted] != 1 {
		t.Fatalf("expected one completed generation, got %v", summary.ByStatus)
	}
	if summary.Total != 1 {
		t.Fatalf("expected total 1, got %d", summary.Total)
	}
}
