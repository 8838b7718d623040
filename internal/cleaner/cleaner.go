package cleaner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/shaiso/spim-dispatch/internal/domain"
	"github.com/shaiso/spim-dispatch/internal/ledger"
	"github.com/shaiso/spim-dispatch/internal/record"
	"github.com/shaiso/spim-dispatch/internal/storage"
	"github.com/shaiso/spim-dispatch/internal/telemetry"
)

// Config — конфигурация Cleaner.
type Config struct {
	// Store — объектное хранилище с артефактами. Обязательно.
	Store storage.Store

	// Marker — имя copy-complete маркера под output-префиксом.
	Marker string

	// Ledger — центральный журнал. Может быть nil.
	Ledger *ledger.Ledger

	// Logger — логгер. Если nil, используется slog.Default().
	Logger *slog.Logger
}

// Cleaner выполняет clean-режим этапа.
type Cleaner struct {
	store  storage.Store
	marker string
	ledger *ledger.Ledger
	logger *slog.Logger
}

// New создаёт новый Cleaner.
func New(cfg Config) (*Cleaner, error) {
	if cfg.Store == nil {
		return nil, errors.New("store is required")
	}
	if cfg.Marker == "" {
		return nil, errors.New("copy-complete marker is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Cleaner{
		store:  cfg.Store,
		marker: cfg.Marker,
		ledger: cfg.Ledger,
		logger: cfg.Logger,
	}, nil
}

// Clean удаляет устаревшие промежуточные артефакты датасета.
//
// Targets выводятся из run record в resultsDir и обрабатываются
// в порядке сортировки имён каналов. Ошибка одного target не
// останавливает остальные; ошибки агрегируются в результат.
func (c *Cleaner) Clean(ctx context.Context, resultsDir string) (*domain.CleanupResult, error) {
	rec, err := record.Read(resultsDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRecordUnreadable, err)
	}

	log := telemetry.WithDataset(c.logger, rec.Dataset)
	log.Info("cleaning dataset", "runs", len(rec.Runs), "marker", c.marker)

	result := &domain.CleanupResult{Dataset: rec.Dataset}

	for _, target := range targetsFromRecord(rec) {
		tLog := telemetry.WithChannel(log, target.Channel)

		ok, err := c.store.Exists(ctx, markerKey(target.Prefix, c.marker))
		if err != nil {
			tLog.Error("marker check failed", "prefix", target.Prefix, "error", err)
			result.Failed = append(result.Failed, domain.TargetError{
				Target: target,
				Err:    fmt.Errorf("check marker: %w", err),
			})
			continue
		}
		if !ok {
			tLog.Warn("copy-complete marker absent, skipping",
				"prefix", target.Prefix,
			)
			telemetry.TargetsSkipped.Inc()
			result.Skipped = append(result.Skipped, target)
			continue
		}

		deleted, err := c.store.DeletePrefix(ctx, target.Prefix)
		if err != nil {
			tLog.Error("prefix deletion failed", "prefix", target.Prefix, "error", err)
			result.Failed = append(result.Failed, domain.TargetError{
				Target: target,
				Err:    err,
			})
			continue
		}

		tLog.Info("prefix cleaned", "prefix", target.Prefix, "objects", deleted)
		telemetry.ObjectsDeleted.Add(float64(deleted))
		result.Deleted = append(result.Deleted, target)
		result.DeletedObjects += deleted

		if err := c.ledger.RecordCleanup(ctx, rec.Dataset, target.Prefix, deleted); err != nil {
			tLog.Warn("failed to record cleanup in ledger", "error", err)
		}
	}

	result.Sort()

	if !result.Ok() {
		return result, fmt.Errorf("%w: %d of %d targets", ErrPartialCleanup,
			len(result.Failed), len(rec.Runs))
	}
	return result, nil
}

// targetsFromRecord строит отсортированный список targets из record.
func targetsFromRecord(rec *record.Record) []domain.CleanupTarget {
	targets := make([]domain.CleanupTarget, 0, len(rec.Runs))
	for channel, entry := range rec.Runs {
		targets = append(targets, domain.CleanupTarget{
			Channel: channel,
			Prefix:  entry.OutputPrefix,
			Reason:  fmt.Sprintf("superseded by run %s", entry.RunID),
		})
	}
	sort.Slice(targets, func(i, j int) bool {
		return targets[i].Channel < targets[j].Channel
	})
	return targets
}

// markerKey возвращает ключ copy-complete маркера под префиксом.
func markerKey(prefix, marker string) string {
	return strings.TrimSuffix(prefix, "/") + "/" + marker
}
