// Package telemetry обеспечивает наблюдаемость этапа.
//
// Включает:
//   - logging.go — structured logging через slog
//   - metrics.go — Prometheus-метрики с push в Pushgateway
//
// Этап — батч-процесс: вместо /metrics endpoint метрики одного
// вызова выталкиваются в Pushgateway при завершении (если задан
// PUSHGATEWAY_URL).
package telemetry
