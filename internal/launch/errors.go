package launch

import (
	"errors"
	"fmt"
	"net/http"
)

// Классификация ошибок отправки.
var (
	// ErrTransient — временная ошибка backend'а; отправку можно повторить.
	ErrTransient = errors.New("transient submission error")

	// ErrValidation — запрос отвергнут как невалидный; повтор бесполезен.
	ErrValidation = errors.New("submission rejected")
)

// classifyStatus сопоставляет HTTP-статус с классом ошибки.
//
// 408/429 и 5xx — transient. 400/404/422 — валидация. Остальные
// неуспешные статусы считаются постоянными, чтобы не устраивать
// retry-шторм на незнакомых ответах.
func classifyStatus(code int, body string) error {
	switch {
	case code == http.StatusRequestTimeout || code == http.StatusTooManyRequests || code >= 500:
		return fmt.Errorf("%w: HTTP %d: %s", ErrTransient, code, body)
	case code == http.StatusBadRequest || code == http.StatusNotFound || code == http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: HTTP %d: %s", ErrValidation, code, body)
	default:
		return fmt.Errorf("%w: unexpected HTTP %d: %s", ErrValidation, code, body)
	}
}
