package discovery

import "errors"

// Ошибки обнаружения каналов.
var (
	// ErrNoChannels — под корнем датасета не найдено ни одного канала.
	ErrNoChannels = errors.New("no channels found under dataset root")

	// ErrBadPattern — регулярное выражение обнаружения не компилируется.
	ErrBadPattern = errors.New("invalid discovery pattern")
)
