// Package discovery — обнаружение каналов датасета.
//
// Каналы извлекаются из раскладки результатов upstream-этапа:
// листинг по настроенному префиксу, извлечение имени канала
// регулярным выражением, дедупликация и сортировка.
//
// Датасет без каналов — ошибка конфигурации пайплайна, а не
// тихий no-op: этап без разветвления означает сломанный upstream.
package discovery
