package domain

import (
	"fmt"
	"sort"
	"strings"
)

// CleanupTarget — префикс в хранилище, артефакты под которым безопасно
// удалить, плюс обоснование (какому запуску принадлежат и почему
// устарели).
//
// Targets выводятся из run record, записанного dispatch-вызовом
// над тем же датасетом.
type CleanupTarget struct {
	// Channel — канал, которому принадлежат артефакты.
	Channel string

	// Prefix — префикс удаляемых артефактов.
	Prefix string

	// Reason — обоснование удаления.
	Reason string
}

// TargetError — ошибка удаления одного target.
type TargetError struct {
	Target CleanupTarget
	Err    error
}

// Error реализует интерфейс error.
func (e TargetError) Error() string {
	return fmt.Sprintf("target %s: %v", e.Target.Prefix, e.Err)
}

// Unwrap возвращает исходную ошибку.
func (e TargetError) Unwrap() error {
	return e.Err
}

// CleanupResult — агрегат одного clean-вызова.
type CleanupResult struct {
	// Dataset — датасет, который очищался.
	Dataset string

	// Deleted — успешно удалённые targets.
	Deleted []CleanupTarget

	// DeletedObjects — суммарное число удалённых объектов.
	// Ноль при повторном clean того же датасета — это не ошибка.
	DeletedObjects int

	// Skipped — targets без copy-complete маркера.
	// Пропуск — предупреждение, не ошибка: удалять без маркера нельзя.
	Skipped []CleanupTarget

	// Failed — targets, удаление которых завершилось ошибкой.
	Failed []TargetError
}

// Ok возвращает true, если ни один target не завершился ошибкой.
// Пропущенные targets не считаются ошибками.
func (r *CleanupResult) Ok() bool {
	return len(r.Failed) == 0
}

// Sort упорядочивает агрегат по имени канала.
func (r *CleanupResult) Sort() {
	sort.Slice(r.Deleted, func(i, j int) bool {
		return r.Deleted[i].Channel < r.Deleted[j].Channel
	})
	sort.Slice(r.Skipped, func(i, j int) bool {
		return r.Skipped[i].Channel < r.Skipped[j].Channel
	})
	sort.Slice(r.Failed, func(i, j int) bool {
		return r.Failed[i].Target.Channel < r.Failed[j].Target.Channel
	})
}

// Summary возвращает человекочитаемую сводку результата.
func (r *CleanupResult) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "clean %s: %d deleted (%d objects), %d skipped, %d failed\n",
		r.Dataset, len(r.Deleted), r.DeletedObjects, len(r.Skipped), len(r.Failed))
	for _, t := range r.Deleted {
		fmt.Fprintf(&b, "  deleted %s prefix=%s\n", t.Channel, t.Prefix)
	}
	for _, t := range r.Skipped {
		fmt.Fprintf(&b, "  skipped %s prefix=%s (no copy-complete marker)\n", t.Channel, t.Prefix)
	}
	for _, f := range r.Failed {
		fmt.Fprintf(&b, "  failed  %s prefix=%s: %v\n", f.Target.Channel, f.Target.Prefix, f.Err)
	}
	return b.String()
}
