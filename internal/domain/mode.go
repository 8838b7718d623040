package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Mode — режим работы этапа пайплайна.
//
// Этап запускается ровно в одном из двух режимов:
//
//	dispatch — создаёт по одному downstream-запуску на каждый канал
//	clean    — удаляет промежуточные результаты после копирования в архив
type Mode string

const (
	// ModeDispatch — режим разветвления по каналам.
	ModeDispatch Mode = "dispatch"

	// ModeClean — режим очистки промежуточных артефактов.
	ModeClean Mode = "clean"
)

// ErrInvalidMode — запрошен нераспознанный режим.
var ErrInvalidMode = errors.New("invalid mode")

// ParseMode парсит строку режима.
// Допустимы только "dispatch" и "clean" (без учёта регистра).
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(ModeDispatch):
		return ModeDispatch, nil
	case string(ModeClean):
		return ModeClean, nil
	default:
		return "", fmt.Errorf("%w: %q (expected dispatch or clean)", ErrInvalidMode, s)
	}
}

// String возвращает строковое представление Mode.
func (m Mode) String() string {
	return string(m)
}
