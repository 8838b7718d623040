package record

import (
	"testing"
	"time"

	"github.com/shaiso/spim-dispatch/internal/domain"
)

func TestWriteRead_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	submitted := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	rec := FromHandles("SmartSPIM_000001", "2.0.2", []domain.RunHandle{
		{RunID: "run-1", Channel: "Ex_488_Em_525", OutputPrefix: "ds/image_cell_segmentation/Ex_488_Em_525", SubmittedAt: submitted},
		{RunID: "run-2", Channel: "Ex_561_Em_600", OutputPrefix: "ds/image_cell_segmentation/Ex_561_Em_600", SubmittedAt: submitted},
	})

	if err := Write(dir, rec); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := Read(dir)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	if got.Dataset != "SmartSPIM_000001" {
		t.Errorf("unexpected dataset: %s", got.Dataset)
	}
	if got.PipelineVersion != "2.0.2" {
		t.Errorf("unexpected pipeline version: %s", got.PipelineVersion)
	}
	if len(got.Runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(got.Runs))
	}

	entry, ok := got.Runs["Ex_488_Em_525"]
	if !ok {
		t.Fatal("missing entry for Ex_488_Em_525")
	}
	if entry.RunID != "run-1" {
		t.Errorf("unexpected run id: %s", entry.RunID)
	}
	if entry.OutputPrefix != "ds/image_cell_segmentation/Ex_488_Em_525" {
		t.Errorf("unexpected output prefix: %s", entry.OutputPrefix)
	}
	if !entry.SubmittedAt.Equal(submitted) {
		t.Errorf("unexpected submitted at: %v", entry.SubmittedAt)
	}
}

func TestWrite_Overwrites(t *testing.T) {
	dir := t.TempDir()

	first := FromHandles("ds", "", []domain.RunHandle{{RunID: "a", Channel: "Ex_488_Em_525"}})
	if err := Write(dir, first); err != nil {
		t.Fatalf("write: %v", err)
	}

	second := FromHandles("ds", "", []domain.RunHandle{{RunID: "b", Channel: "Ex_488_Em_525"}})
	if err := Write(dir, second); err != nil {
		t.Fatalf("rewrite: %v", err)
	}

	got, err := Read(dir)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Runs["Ex_488_Em_525"].RunID != "b" {
		t.Errorf("record not overwritten: %+v", got.Runs)
	}
}

func TestRead_Missing(t *testing.T) {
	_, err := Read(t.TempDir())
	if err == nil {
		t.Error("expected error for missing record")
	}
}
