package discovery

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/shaiso/spim-dispatch/internal/config"
	"github.com/shaiso/spim-dispatch/internal/storage"
)

var testDiscovery = config.Discovery{
	Prefix:  "fused/",
	Pattern: `Ex_\d{3}_Em_\d{3}`,
}

// errorStore — Store, у которого листинг всегда падает.
type errorStore struct{}

func (errorStore) List(context.Context, string) ([]string, error) {
	return nil, errors.New("access denied")
}
func (errorStore) Exists(context.Context, string) (bool, error) { return false, nil }
func (errorStore) DeletePrefix(context.Context, string) (int, error) {
	return 0, nil
}

func TestDiscover(t *testing.T) {
	store := storage.NewMemoryStore(
		"dataset/fused/Ex_488_Em_525.zarr/0/0/0",
		"dataset/fused/Ex_488_Em_525.zarr/0/0/1",
		"dataset/fused/Ex_561_Em_600.zarr/0/0/0",
		"dataset/fused/metadata/info.json",
		"dataset/stitched/Ex_639_Em_680/tile.raw", // вне discovery-префикса
	)

	d, err := New(store, testDiscovery, slog.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	channels, err := d.Discover(context.Background(), "dataset")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(channels) != 2 {
		t.Fatalf("expected 2 channels, got %d: %v", len(channels), channels)
	}
	if channels[0].Name != "Ex_488_Em_525" || channels[1].Name != "Ex_561_Em_600" {
		t.Errorf("unexpected channel order: %v", channels)
	}
	if channels[0].SourcePrefix != "dataset/fused/Ex_488_Em_525" {
		t.Errorf("unexpected source prefix: %s", channels[0].SourcePrefix)
	}
}

func TestDiscover_Deduplicates(t *testing.T) {
	store := storage.NewMemoryStore(
		"d/fused/Ex_488_Em_525.zarr/a",
		"d/fused/Ex_488_Em_525.zarr/b",
		"d/fused/Ex_488_Em_525.zarr/c",
	)

	d, _ := New(store, testDiscovery, nil)
	channels, err := d.Discover(context.Background(), "d")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(channels) != 1 {
		t.Errorf("expected 1 channel after dedup, got %d", len(channels))
	}
}

func TestDiscover_ZeroChannels(t *testing.T) {
	store := storage.NewMemoryStore("d/fused/metadata/info.json")

	d, _ := New(store, testDiscovery, nil)
	_, err := d.Discover(context.Background(), "d")
	if !errors.Is(err, ErrNoChannels) {
		t.Errorf("expected ErrNoChannels, got %v", err)
	}
}

func TestDiscover_EmptyRoot(t *testing.T) {
	d, _ := New(storage.NewMemoryStore(), testDiscovery, nil)
	_, err := d.Discover(context.Background(), "missing")
	if !errors.Is(err, ErrNoChannels) {
		t.Errorf("expected ErrNoChannels, got %v", err)
	}
}

func TestDiscover_ListError(t *testing.T) {
	d, _ := New(errorStore{}, testDiscovery, nil)
	_, err := d.Discover(context.Background(), "d")
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, ErrNoChannels) {
		t.Error("listing error must not be reported as ErrNoChannels")
	}
}

func TestNew_BadPattern(t *testing.T) {
	_, err := New(storage.NewMemoryStore(), config.Discovery{Pattern: `Ex_(\d{3}`}, nil)
	if !errors.Is(err, ErrBadPattern) {
		t.Errorf("expected ErrBadPattern, got %v", err)
	}
}
