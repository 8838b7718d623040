package cleaner

import (
	"context"
	"fmt"
	"testing"

	"github.com/shaiso/spim-dispatch/internal/config"
	"github.com/shaiso/spim-dispatch/internal/dispatcher"
	"github.com/shaiso/spim-dispatch/internal/domain"
	"github.com/shaiso/spim-dispatch/internal/launch"
	"github.com/shaiso/spim-dispatch/internal/storage"
)

// Полный цикл этапа: dispatch записывает run record, clean читает его
// и удаляет output-префиксы отправленных запусков.
func TestDispatchThenCleanRoundTrip(t *testing.T) {
	resultsDir := t.TempDir()
	inputPaths := make(map[string]string)

	d, err := dispatcher.New(dispatcher.Config{
		Submitter: fakeSubmitter(inputPaths),
		Pipeline: config.Pipeline{
			CapsuleID:            "capsule-123",
			InputPathTemplate:    "fused/{channel}",
			OutputPrefixTemplate: "{dataset}/processed/{channel}",
		},
		Retry:      config.Retry{MaxAttempts: 1, InitialDelayMs: 1, MaxDelayMs: 1},
		ResultsDir: resultsDir,
	})
	if err != nil {
		t.Fatalf("dispatcher.New: %v", err)
	}

	channels := []domain.Channel{
		{Name: "Ex_488_Em_525"},
		{Name: "Ex_561_Em_593"},
	}
	result, err := d.Dispatch(context.Background(), "ds1", channels)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if len(result.Handles) != 2 {
		t.Fatalf("handles = %d, want 2", len(result.Handles))
	}
	if inputPaths["Ex_488_Em_525"] == inputPaths["Ex_561_Em_593"] {
		t.Errorf("channels share input binding: %v", inputPaths)
	}

	// Downstream-запуски отработали и архивация подтвердила копию.
	store := storage.NewMemoryStore()
	for _, h := range result.Handles {
		store.Put(h.OutputPrefix + "/0/chunk0")
		store.Put(h.OutputPrefix + "/COPY_COMPLETE")
	}

	c := newTestCleaner(t, store)
	cleanResult, err := c.Clean(context.Background(), resultsDir)
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}

	if len(cleanResult.Deleted) != 2 || len(cleanResult.Skipped) != 0 {
		t.Fatalf("clean summary: %s", cleanResult.Summary())
	}
	for i, h := range result.Handles {
		if cleanResult.Deleted[i].Prefix != h.OutputPrefix {
			t.Errorf("target prefix %q, want recorded %q",
				cleanResult.Deleted[i].Prefix, h.OutputPrefix)
		}
	}
	if store.Len() != 0 {
		t.Errorf("objects left after clean: %d", store.Len())
	}
}

// fakeSubmitter выдаёт run id по каналу и запоминает входные пути.
func fakeSubmitter(inputPaths map[string]string) launch.SubmitterFunc {
	return func(_ context.Context, req domain.RunRequest) (string, error) {
		ch := req.Parameters[domain.ParamChannel]
		inputPaths[ch] = req.Parameters[domain.ParamInputPath]
		return fmt.Sprintf("run-%s", ch), nil
	}
}
