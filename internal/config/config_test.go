package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const testConfig = `
pipeline_version: "2.0.2"
dataset: SmartSPIM_000001_2023-10-18_20-30-30
dataset_root: SmartSPIM_000001_2023-10-18_20-30-30_stitched/
results_dir: /tmp/results

pipeline:
  capsule_id: 11111111-2222-3333-4444-555555555555
  input_path_template: ../data/fused/{channel}
  output_prefix_template: "{dataset}/image_cell_segmentation/{channel}"
  parameters:
    mode: segment

discovery:
  prefix: image_tile_fusing/OMEZarr/
  pattern: 'Ex_\d{3}_Em_\d{3}'

retry:
  max_attempts: 5

storage:
  endpoint: s3.us-west-2.amazonaws.com
  bucket: aind-open-data
  region: us-west-2

launch:
  base_url: https://codeocean.example.org/api/v1
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, testConfig))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Pipeline.CapsuleID != "11111111-2222-3333-4444-555555555555" {
		t.Errorf("unexpected capsule id: %s", cfg.Pipeline.CapsuleID)
	}
	if cfg.Discovery.Prefix != "image_tile_fusing/OMEZarr/" {
		t.Errorf("unexpected discovery prefix: %s", cfg.Discovery.Prefix)
	}
	if cfg.Storage.Bucket != "aind-open-data" {
		t.Errorf("unexpected bucket: %s", cfg.Storage.Bucket)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
dataset_root: some_dataset/
storage:
  endpoint: localhost:9000
  bucket: test
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Retry.MaxAttempts != defaultMaxAttempts {
		t.Errorf("expected default max attempts, got %d", cfg.Retry.MaxAttempts)
	}
	if cfg.Retry.InitialDelayMs != defaultInitialDelayMs {
		t.Errorf("expected default initial delay, got %d", cfg.Retry.InitialDelayMs)
	}
	if cfg.Cleanup.Marker != defaultMarker {
		t.Errorf("expected default marker, got %s", cfg.Cleanup.Marker)
	}
	if cfg.Discovery.Pattern != defaultDiscoveryPattern {
		t.Errorf("expected default pattern, got %s", cfg.Discovery.Pattern)
	}
	if cfg.ResultsDir != defaultResultsDir {
		t.Errorf("expected default results dir, got %s", cfg.ResultsDir)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("STORAGE_ACCESS_KEY", "AKIATEST")
	t.Setenv("STORAGE_SECRET_KEY", "secret")
	t.Setenv("LAUNCH_API_TOKEN", "token-from-env")
	t.Setenv("LAUNCH_TIMEOUT_SEC", "60")

	cfg, err := Load(writeConfig(t, testConfig))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Storage.AccessKey != "AKIATEST" {
		t.Errorf("access key not taken from env: %s", cfg.Storage.AccessKey)
	}
	if cfg.Launch.Token != "token-from-env" {
		t.Errorf("token not taken from env: %s", cfg.Launch.Token)
	}
	if cfg.Launch.TimeoutSec != 60 {
		t.Errorf("timeout not taken from env: %d", cfg.Launch.TimeoutSec)
	}
}

func TestLoad_MissingDatasetRoot(t *testing.T) {
	_, err := Load(writeConfig(t, `
storage:
  endpoint: localhost:9000
  bucket: test
`))
	if !errors.Is(err, ErrMissingDatasetRoot) {
		t.Errorf("expected ErrMissingDatasetRoot, got %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Error("expected error for missing file")
	}
}
