package viz

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/shaiso/spim-dispatch/internal/config"
	"github.com/shaiso/spim-dispatch/internal/domain"
)

func TestColorForEmission(t *testing.T) {
	cases := []struct {
		wavelength int
		want       string
	}{
		{469, "#61abfd"},
		{500, "#61abfd"}, // граница включительная
		{525, "#92ff42"},
		{593, "#f15f22"},
		{667, "#c51e1f"},
		{690, "#a81f1f"},
		{720, "#a81f1f"}, // выше последней границы
	}
	for _, c := range cases {
		if got := ColorForEmission(c.wavelength); got != c.want {
			t.Errorf("ColorForEmission(%d) = %q, want %q", c.wavelength, got, c.want)
		}
	}
}

func testHandles() []domain.RunHandle {
	return []domain.RunHandle{
		{Channel: "Ex_488_Em_525", RunID: "r1", OutputPrefix: "ds1/processed/Ex_488_Em_525"},
		{Channel: "Ex_561_Em_593", RunID: "r2", OutputPrefix: "ds1/processed/Ex_561_Em_593"},
	}
}

func TestBuildState(t *testing.T) {
	cfg := config.Viz{
		BaseURL:       "https://ng.example.org",
		ResolutionXYZ: [3]float64{1.8, 1.8, 2.0},
	}

	state, err := Build(cfg, "ds1", "spim-bucket", testHandles())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if state.Title != "ds1" {
		t.Errorf("Title = %q", state.Title)
	}
	if len(state.Layers) != 2 {
		t.Fatalf("layers = %d, want 2", len(state.Layers))
	}

	l := state.Layers[0]
	if l.Name != "Ex_488_Em_525" {
		t.Errorf("layer name = %q", l.Name)
	}
	if l.Source != "zarr://s3://spim-bucket/ds1/processed/Ex_488_Em_525" {
		t.Errorf("layer source = %q", l.Source)
	}
	if l.Shader.Color != "#92ff42" {
		t.Errorf("layer color = %q, want EGFP green for Em_525", l.Shader.Color)
	}
	if state.Layers[1].Shader.Color != "#f15f22" {
		t.Errorf("second layer color = %q", state.Layers[1].Shader.Color)
	}

	if d := state.Dimensions["z"]; d.VoxelSize != 2.0 || d.Unit != "microns" {
		t.Errorf("z dimension = %+v", d)
	}
	if state.Link != "https://ng.example.org#!s3://spim-bucket/ds1/neuroglancer_config.json" {
		t.Errorf("Link = %q", state.Link)
	}
}

func TestBuildStateNoRuns(t *testing.T) {
	if _, err := Build(config.Viz{}, "ds1", "b", nil); err == nil {
		t.Error("expected error for empty handle list")
	}
}

func TestWriteState(t *testing.T) {
	dir := t.TempDir()
	state, err := Build(config.Viz{ResolutionXYZ: [3]float64{1, 1, 1}}, "ds1", "b", testHandles())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if err := Write(dir, state); err != nil {
		t.Fatalf("Write: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, Filename))
	if err != nil {
		t.Fatalf("read state: %v", err)
	}

	var loaded State
	if err := json.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("parse state: %v", err)
	}
	if len(loaded.Layers) != 2 || loaded.Layers[0].Name != "Ex_488_Em_525" {
		t.Errorf("loaded layers = %v", loaded.Layers)
	}
}
