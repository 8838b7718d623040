package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shaiso/spim-dispatch/internal/config"
	"github.com/shaiso/spim-dispatch/internal/domain"
	"github.com/shaiso/spim-dispatch/internal/launch"
	"github.com/shaiso/spim-dispatch/internal/ledger"
	"github.com/shaiso/spim-dispatch/internal/mq"
	"github.com/shaiso/spim-dispatch/internal/record"
	"github.com/shaiso/spim-dispatch/internal/telemetry"
)

// Config — конфигурация Dispatcher.
type Config struct {
	// Submitter — клиент сервиса запуска. Обязателен.
	Submitter launch.Submitter

	// Pipeline — параметры целевого downstream-пайплайна.
	Pipeline config.Pipeline

	// Retry — политика повторов transient-ошибок.
	Retry config.Retry

	// PipelineVersion записывается в run record.
	PipelineVersion string

	// ResultsDir — папка, куда пишется run record.
	ResultsDir string

	// Publisher — публикация событий о запусках. Может быть nil.
	Publisher *mq.Publisher

	// Ledger — центральный журнал запусков. Может быть nil.
	Ledger *ledger.Ledger

	// Logger — логгер. Если nil, используется slog.Default().
	Logger *slog.Logger
}

// Dispatcher выполняет dispatch-режим этапа.
type Dispatcher struct {
	submitter       launch.Submitter
	pipeline        config.Pipeline
	retry           config.Retry
	pipelineVersion string
	resultsDir      string
	publisher       *mq.Publisher
	ledger          *ledger.Ledger
	logger          *slog.Logger

	// sleep подменяется в тестах, чтобы не ждать backoff.
	sleep func(ctx context.Context, d time.Duration) error
}

// New создаёт новый Dispatcher.
func New(cfg Config) (*Dispatcher, error) {
	if cfg.Submitter == nil {
		return nil, errors.New("submitter is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry.MaxAttempts = 1
	}

	return &Dispatcher{
		submitter:       cfg.Submitter,
		pipeline:        cfg.Pipeline,
		retry:           cfg.Retry,
		pipelineVersion: cfg.PipelineVersion,
		resultsDir:      cfg.ResultsDir,
		publisher:       cfg.Publisher,
		ledger:          cfg.Ledger,
		logger:          cfg.Logger,
		sleep:           sleepCtx,
	}, nil
}

// Dispatch отправляет по одному downstream-запуску на каждый канал.
//
// Каналы обрабатываются в порядке сортировки имён. Постоянная ошибка
// одного канала не останавливает остальные: она попадает в агрегат,
// а вызов продолжается. Run record пишется до возврата, даже при
// частичном провале — успешные запуски уже существуют, clean-режим
// должен про них знать.
func (d *Dispatcher) Dispatch(ctx context.Context, dataset string, channels []domain.Channel) (*domain.DispatchResult, error) {
	if len(channels) == 0 {
		return nil, fmt.Errorf("dispatch %s: no channels", dataset)
	}

	domain.SortChannels(channels)
	background := BackgroundChannel(d.pipeline.BackgroundChannel, channels)

	log := telemetry.WithDataset(d.logger, dataset)
	log.Info("dispatching channels",
		"channels", len(channels),
		"background_channel", background,
		"capsule_id", d.pipeline.CapsuleID,
	)

	result := &domain.DispatchResult{Dataset: dataset}

	for _, ch := range channels {
		chLog := telemetry.WithChannel(log, ch.Name)

		req, err := BuildRunRequest(ch, background, d.pipeline, dataset)
		if err != nil {
			// Ошибка конфигурации одинакова для всех каналов,
			// продолжать бессмысленно.
			return nil, fmt.Errorf("build request for %s: %w", ch.Name, err)
		}

		runID, err := d.submitWithRetry(ctx, chLog, req)
		if err != nil {
			chLog.Error("channel dispatch failed", "error", err)
			telemetry.SubmissionsTotal.WithLabelValues("failed").Inc()
			result.Failed = append(result.Failed, domain.ChannelError{
				Channel: ch.Name,
				Err:     err,
			})
			continue
		}

		handle := domain.RunHandle{
			RunID:        runID,
			Channel:      ch.Name,
			OutputPrefix: req.OutputPrefix,
			SubmittedAt:  time.Now().UTC(),
		}
		result.Handles = append(result.Handles, handle)

		chLog.Info("run submitted", "run_id", runID, "output_prefix", req.OutputPrefix)
		telemetry.SubmissionsTotal.WithLabelValues("succeeded").Inc()

		d.announce(ctx, chLog, dataset, handle)
	}

	result.Sort()

	rec := record.FromHandles(dataset, d.pipelineVersion, result.Handles)
	if err := record.Write(d.resultsDir, rec); err != nil {
		return result, fmt.Errorf("persist run record: %w", err)
	}
	log.Info("run record written", "dir", d.resultsDir, "runs", len(rec.Runs))

	if !result.Ok() {
		return result, fmt.Errorf("%w: %v", ErrPartialFailure, result.FailedChannels())
	}
	return result, nil
}

// submitWithRetry отправляет запрос с повторами transient-ошибок.
//
// Повторяются только ошибки, классифицированные как launch.ErrTransient;
// ошибки валидации возвращаются сразу.
func (d *Dispatcher) submitWithRetry(ctx context.Context, log *slog.Logger, req domain.RunRequest) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= d.retry.MaxAttempts; attempt++ {
		runID, err := d.submitter.Submit(ctx, req)
		if err == nil {
			return runID, nil
		}
		lastErr = err

		if !errors.Is(err, launch.ErrTransient) {
			return "", err
		}
		if attempt == d.retry.MaxAttempts {
			break
		}

		delay := d.backoff(attempt)
		log.Warn("transient submit error, retrying",
			"attempt", attempt,
			"max_attempts", d.retry.MaxAttempts,
			"delay", delay,
			"error", err,
		)
		telemetry.SubmissionRetries.Inc()

		if err := d.sleep(ctx, delay); err != nil {
			return "", err
		}
	}

	return "", fmt.Errorf("after %d attempts: %w", d.retry.MaxAttempts, lastErr)
}

// backoff возвращает задержку перед повтором номер attempt+1.
// Экспоненциальный рост от InitialDelay с потолком MaxDelay.
func (d *Dispatcher) backoff(attempt int) time.Duration {
	delay := d.retry.InitialDelay()
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= d.retry.MaxDelay() {
			return d.retry.MaxDelay()
		}
	}
	if max := d.retry.MaxDelay(); max > 0 && delay > max {
		return max
	}
	return delay
}

// announce рассылает событие об успешной отправке в опциональные
// интеграции. Их отказ не влияет на исход dispatch.
func (d *Dispatcher) announce(ctx context.Context, log *slog.Logger, dataset string, h domain.RunHandle) {
	if d.publisher != nil {
		err := d.publisher.PublishRunSubmitted(ctx, mq.RunSubmittedPayload{
			Dataset:      dataset,
			Channel:      h.Channel,
			RunID:        h.RunID,
			OutputPrefix: h.OutputPrefix,
		})
		if err != nil {
			log.Warn("failed to publish run.submitted event", "error", err)
		}
	}

	if err := d.ledger.RecordSubmission(ctx, dataset, h.Channel, h.RunID, h.OutputPrefix, h.SubmittedAt); err != nil {
		log.Warn("failed to record submission in ledger", "error", err)
	}
}

// sleepCtx ждёт d или отмены контекста.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
