// Package launch — клиент сервиса запуска вычислений.
//
// Сервис запуска исполняет контейнеризованные капсулы на своей
// инфраструктуре; этот пакет умеет только отправить запрос и
// классифицировать ошибку:
//   - ErrTransient — стоит повторить (rate limit, 5xx, таймаут)
//   - ErrValidation — повторять бессмысленно (невалидный запрос)
//
// Оркестратор работает с интерфейсом Submitter; тесты подставляют
// SubmitterFunc.
package launch
