// Package domain — основные типы этапа.
//
// Здесь живут понятия, общие для обоих режимов:
//   - Mode — режим вызова (dispatch / clean)
//   - Channel — канал изображения датасета
//   - RunRequest / RunHandle — downstream-запуск и ссылка на него
//   - DispatchResult / CleanupResult — агрегаты вызовов
//
// Пакет не делает IO и не зависит от остальных пакетов этапа.
package domain
