package ledgeraccess_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"fitroom/internal/api"
	"fitroom/internal/apiclient"
	"fitroom/internal/ledger"
	"fitroom/internal/ledgeraccess"
	"fitroom/internal/testsupport"
)

func TestOpenWithFallbackPrefersAPI(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/status" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(api.DaemonStatus{Running: true, PID: 99})
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t)
	dial := func() (*apiclient.Client, error) {
		return apiclient.New(apiclient.Config{BaseURL: server.URL})
	}

	session, err := ledgeraccess.OpenWithFallback(cfg, dial, nil)
	if err != nil {
		t.Fatalf("OpenWithFallback failed: %v", err)
	}
	defer session.Close()

	if session.Direct {
		t.Fatal("expected API-backed session")
	}
	status, err := session.Access.DaemonStatus(context.Background())
	if err != nil {
		t.Fatalf("DaemonStatus returned error: %v", err)
	}
	if !status.Running || status.PID != 99 {
		t.Fatalf("unexpected status: %+v", status)
	}
}

func TestOpenWithFallbackUsesStore(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dial := func() (*apiclient.Client, error) {
		return nil, errors.New("daemon unreachable")
	}
	openStore := func() (*ledger.Store, error) {
		return ledger.Open(cfg)
	}

	session, err := ledgeraccess.OpenWithFallback(cfg, dial, openStore)
	if err != nil {
		t.Fatalf("OpenWithFallback failed: %v", err)
	}
	defer session.Close()

	if !session.Direct {
		t.Fatal("expected direct store session")
	}

	ctx := context.Background()
	accepted, err := session.Access.Create(ctx, api.CreateRequest{
		PersonName: "Alice",
		Person:     api.UploadedImage{Data: testsupport.JPEGBytes(t, 64, 64), Filename: "alice.jpg"},
		Garment:    api.UploadedImage{Data: testsupport.PNGBytes(t, 48, 48), Filename: "dress.png"},
		Variant:    "local-free",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if accepted.ID <= 0 || accepted.Status != "pending" {
		t.Fatalf("unexpected accept payload: %+v", accepted)
	}

	item, err := session.Access.Describe(ctx, accepted.ID)
	if err != nil {
		t.Fatalf("Describe returned error: %v", err)
	}
	if item == nil || item.PersonName != "Alice" {
		t.Fatalf("unexpected item: %+v", item)
	}

	missing, err := session.Access.Describe(ctx, 9999)
	if err != nil {
		t.Fatalf("Describe missing id returned error: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for missing record, got %+v", missing)
	}

	// Rating a pending record must be rejected, and the rejection is a
	// transition error rather than a missing record.
	if _, err := session.Access.SetRating(ctx, accepted.ID, 4); err == nil {
		t.Fatal("expected rating rejection for pending record")
	} else if ledgeraccess.IsNotFound(err) {
		t.Fatalf("transition error misread as not-found: %v", err)
	}

	status, err := session.Access.DaemonStatus(ctx)
	if err != nil {
		t.Fatalf("DaemonStatus returned error: %v", err)
	}
	if status.Running {
		t.Fatal("direct session must not report a running daemon")
	}
	if status.Workflow.Counts["pending"] != 1 {
		t.Fatalf("unexpected counts: %+v", status.Workflow.Counts)
	}
	if status.DatabasePath != cfg.DatabasePath() {
		t.Fatalf("unexpected database path %q", status.DatabasePath)
	}
}

func TestStoreAccessVariantActions(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	access := ledgeraccess.NewStoreAccess(cfg, store)
	ctx := context.Background()

	variant, err := access.DisableVariant(ctx, "local-free")
	if err != nil {
		t.Fatalf("DisableVariant returned error: %v", err)
	}
	if variant == nil || variant.IsEnabled {
		t.Fatalf("expected disabled variant, got %+v", variant)
	}

	variant, err = access.EnableVariant(ctx, "local-free")
	if err != nil {
		t.Fatalf("EnableVariant returned error: %v", err)
	}
	if variant == nil || !variant.IsEnabled {
		t.Fatalf("expected enabled variant, got %+v", variant)
	}

	if _, err := access.ResetVariant(ctx, "no-such-variant"); !ledgeraccess.IsNotFound(err) {
		t.Fatalf("expected not-found for unknown variant, got %v", err)
	}
}

func TestIsNotFound(t *testing.T) {
	if ledgeraccess.IsNotFound(nil) {
		t.Fatal("nil error must not read as not-found")
	}
	if ledgeraccess.IsNotFound(errors.New("boom")) {
		t.Fatal("generic error must not read as not-found")
	}
	if !ledgeraccess.IsNotFound(&apiclient.APIError{StatusCode: http.StatusNotFound}) {
		t.Fatal("daemon 404 should read as not-found")
	}
	if ledgeraccess.IsNotFound(&apiclient.APIError{StatusCode: http.StatusConflict}) {
		t.Fatal("daemon 409 must not read as not-found")
	}
	if !ledgeraccess.IsNotFound(ledger.ErrNotFound) {
		t.Fatal("ledger sentinel should read as not-found")
	}
}
