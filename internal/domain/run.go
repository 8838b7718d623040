package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Фиксированные ключи параметров, под которыми builder привязывает
// данные канала к запросу. Downstream-капсула ищет свой срез данных
// именно по этим ключам.
const (
	// ParamChannel — имя обрабатываемого канала.
	ParamChannel = "channel"

	// ParamBackgroundChannel — фоновый (регистрационный) канал датасета.
	ParamBackgroundChannel = "background_channel"

	// ParamInputPath — путь к входным данным канала внутри капсулы.
	ParamInputPath = "channel_input_path"
)

// DataAsset — привязка входного data asset к downstream-запуску.
type DataAsset struct {
	// ID — идентификатор data asset в сервисе запуска.
	ID string `json:"id"`

	// Mount — точка монтирования внутри капсулы.
	Mount string `json:"mount"`
}

// RunRequest — полностью разрешённая спецификация одного downstream-запуска.
//
// Строится ровно один раз на канал и не изменяется после построения.
type RunRequest struct {
	// CapsuleID — идентификатор целевой капсулы/пайплайна.
	CapsuleID string `json:"capsule_id"`

	// Parameters — параметры запуска (порядок не важен).
	// Включают общие параметры пайплайна и канальные привязки
	// под фиксированными ключами Param*.
	Parameters map[string]string `json:"parameters"`

	// DataAssets — привязанные входные data assets.
	DataAssets []DataAsset `json:"data_assets,omitempty"`

	// OutputPrefix — префикс в хранилище, куда запуск пишет результаты.
	// Запоминается в run record, чтобы clean-режим знал что удалять.
	OutputPrefix string `json:"output_prefix"`
}

// RunHandle — ссылка на запущенное downstream-вычисление.
//
// Идентификатор непрозрачен: его выдаёт сервис запуска. Handle
// персистируется в run record, чтобы последующий clean-вызов восстановил
// соответствие канал → запуск. Handle никогда не переиспользуется
// между датасетами.
type RunHandle struct {
	// RunID — идентификатор запуска, выданный сервисом.
	RunID string `json:"run_id"`

	// Channel — имя канала, для которого создан запуск.
	Channel string `json:"channel"`

	// OutputPrefix — префикс результатов запуска в хранилище.
	OutputPrefix string `json:"output_prefix"`

	// SubmittedAt — время успешной отправки.
	SubmittedAt time.Time `json:"submitted_at"`
}

// ChannelError — постоянная ошибка отправки для одного канала.
type ChannelError struct {
	// Channel — имя канала.
	Channel string

	// Err — причина отказа (после исчерпания retry либо ошибка валидации).
	Err error
}

// Error реализует интерфейс error.
func (e ChannelError) Error() string {
	return fmt.Sprintf("channel %s: %v", e.Channel, e.Err)
}

// Unwrap возвращает исходную ошибку.
func (e ChannelError) Unwrap() error {
	return e.Err
}

// DispatchResult — агрегат одного dispatch-вызова.
//
// Существует только на время вызова; суммируется в exit-статус и логи.
// Handles и Failed отсортированы по имени канала.
type DispatchResult struct {
	// Dataset — датасет, для которого выполнялось разветвление.
	Dataset string

	// Handles — успешно отправленные запуски.
	Handles []RunHandle

	// Failed — каналы с постоянными ошибками отправки.
	Failed []ChannelError
}

// Ok возвращает true, если все каналы отправлены успешно.
func (r *DispatchResult) Ok() bool {
	return len(r.Failed) == 0
}

// Sort упорядочивает агрегат по имени канала.
func (r *DispatchResult) Sort() {
	sort.Slice(r.Handles, func(i, j int) bool {
		return r.Handles[i].Channel < r.Handles[j].Channel
	})
	sort.Slice(r.Failed, func(i, j int) bool {
		return r.Failed[i].Channel < r.Failed[j].Channel
	})
}

// FailedChannels возвращает имена каналов с ошибками.
func (r *DispatchResult) FailedChannels() []string {
	names := make([]string, len(r.Failed))
	for i, f := range r.Failed {
		names[i] = f.Channel
	}
	return names
}

// Summary возвращает человекочитаемую сводку результата.
func (r *DispatchResult) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "dispatch %s: %d submitted, %d failed\n",
		r.Dataset, len(r.Handles), len(r.Failed))
	for _, h := range r.Handles {
		fmt.Fprintf(&b, "  submitted %s run=%s output=%s\n", h.Channel, h.RunID, h.OutputPrefix)
	}
	for _, f := range r.Failed {
		fmt.Fprintf(&b, "  failed    %s: %v\n", f.Channel, f.Err)
	}
	return b.String()
}
