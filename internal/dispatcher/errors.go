package dispatcher

import "errors"

// Ошибки dispatch-режима.
var (
	// ErrPartialFailure — часть каналов не отправлена.
	// Успешные запуски при этом записаны в run record.
	ErrPartialFailure = errors.New("some channels failed to dispatch")

	// ErrMissingCapsuleID — в конфигурации не задана целевая капсула.
	ErrMissingCapsuleID = errors.New("pipeline.capsule_id is required")

	// ErrMissingInputTemplate — не задан шаблон входного пути канала.
	ErrMissingInputTemplate = errors.New("pipeline.input_path_template is required")
)
