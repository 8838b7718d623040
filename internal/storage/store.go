package storage

import "context"

// Store абстрагирует S3-совместимое объектное хранилище.
//
// Интерфейс намеренно узкий: ровно те операции, которые нужны
// обнаружению каналов и очистке. Тесты подставляют MemoryStore.
type Store interface {
	// List возвращает ключи объектов под префиксом.
	// Отсутствующий префикс — пустой список, не ошибка.
	List(ctx context.Context, prefix string) ([]string, error)

	// Exists проверяет существование объекта по точному ключу.
	Exists(ctx context.Context, key string) (bool, error)

	// DeletePrefix удаляет все объекты под префиксом и возвращает
	// количество удалённых. Ноль — валидный результат (идемпотентность).
	DeletePrefix(ctx context.Context, prefix string) (int, error)
}
