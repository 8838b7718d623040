package cleaner

import "errors"

// Ошибки clean-режима.
var (
	// ErrRecordUnreadable — run record отсутствует или не читается.
	// Фатально: без record невозможно понять, что безопасно удалять.
	ErrRecordUnreadable = errors.New("run record unreadable")

	// ErrPartialCleanup — часть targets не удалена.
	ErrPartialCleanup = errors.New("some cleanup targets failed")
)
