// Package config — статическая конфигурация этапа.
//
// Конфигурация загружается один раз в Mode Controller и передаётся
// оркестраторам явным объектом: логика разветвления и очистки не
// читает окружение в произвольных местах и остаётся тестируемой.
//
// Источники (в порядке приоритета):
//  1. переменные окружения (credentials и адреса интеграций)
//  2. YAML-файл конфигурации пайплайна
//  3. значения по умолчанию
package config
