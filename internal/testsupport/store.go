package testsupport

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"

	"fitroom/internal/config"
	"fitroom/internal/ledger"
)

// MustOpenStore opens a ledger.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *ledger.Store {
	t.Helper()

	store, err := ledger.Open(cfg)
	if err != nil {
		t.Fatalf("ledger.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

var fixtureCounter atomic.Int64

// NewGeneration inserts a pending generation for tests, writing small person
// and garment files under the config's uploads directory.
func NewGeneration(t testing.TB, cfg *config.Config, store *ledger.Store, variant string) *ledger.Generation {
	t.Helper()

	n := fixtureCounter.Add(1)
	personPath := filepath.Join(cfg.Paths.UploadsDir, fmt.Sprintf("%d_person.jpg", n))
	garmentPath := filepath.Join(cfg.Paths.UploadsDir, fmt.Sprintf("%d_garment.jpg", n))
	WriteFile(t, personPath, 64)
	WriteFile(t, garmentPath, 64)

	gen, err := store.Create(context.Background(), ledger.NewGeneration{
		PersonName:       "Test Person",
		GarmentName:      "Test Garment",
		PersonImagePath:  personPath,
		GarmentImagePath: garmentPath,
		Variant:          variant,
	})
	if err != nil {
		t.Fatalf("store.Create: %v", err)
	}
	return gen
}
