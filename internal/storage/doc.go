// Package storage — адаптер объектного хранилища.
//
// Оркестраторы работают только с узким интерфейсом Store:
// листинг по префиксу, проверка существования ключа и удаление
// по префиксу. Реализации:
//   - MinioStore — S3-совместимое хранилище (minio-go)
//   - MemoryStore — хранилище в памяти для тестов
//
// Удаление отсутствующего префикса не является ошибкой:
// clean-режим обязан быть идемпотентным.
package storage
