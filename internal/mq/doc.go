// Package mq — публикация событий этапа в RabbitMQ.
//
// Диспетчер — источник событий для остального пайплайна:
//   - run.submitted    — отправлен downstream-запуск для канала
//   - stage.completed  — режим (dispatch/clean) завершил работу
//
// Интеграция опциональна: без RABBITMQ_URL этап работает,
// события просто не публикуются. Подписчики — дашборды и
// последующие этапы пайплайна.
package mq
