package telemetry

import (
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// registry — собственный реестр этапа: в Pushgateway уходят только
// метрики этого вызова, без go_* коллекторов.
var registry = prometheus.NewRegistry()

// Метрики этапа.
var (
	// ChannelsDiscovered — количество каналов, найденных в датасете.
	ChannelsDiscovered = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "spim_dispatch_channels_discovered",
		Help: "Number of channels discovered in the dataset.",
	})

	// SubmissionsTotal — отправки по исходу: succeeded / failed.
	SubmissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "spim_dispatch_submissions_total",
		Help: "Downstream run submissions by outcome.",
	}, []string{"outcome"})

	// SubmissionRetries — количество повторов transient-ошибок.
	SubmissionRetries = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "spim_dispatch_submission_retries_total",
		Help: "Submission attempts retried after a transient error.",
	})

	// ObjectsDeleted — объекты, удалённые clean-режимом.
	ObjectsDeleted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "spim_dispatch_objects_deleted_total",
		Help: "Objects deleted during cleanup.",
	})

	// TargetsSkipped — targets, пропущенные из-за отсутствия маркера.
	TargetsSkipped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "spim_dispatch_targets_skipped_total",
		Help: "Cleanup targets skipped because the copy-complete marker was absent.",
	})
)

func init() {
	registry.MustRegister(
		ChannelsDiscovered,
		SubmissionsTotal,
		SubmissionRetries,
		ObjectsDeleted,
		TargetsSkipped,
	)
}

// PushMetrics выталкивает метрики вызова в Pushgateway.
//
// Адрес берётся из PUSHGATEWAY_URL; если переменная не задана,
// push молча пропускается — метрики опциональны для этапа.
func PushMetrics(job string) error {
	url := os.Getenv("PUSHGATEWAY_URL")
	if url == "" {
		return nil
	}

	err := push.New(url, job).
		Gatherer(registry).
		Push()
	if err != nil {
		return fmt.Errorf("push metrics to %s: %w", url, err)
	}
	return nil
}
