// Package dispatcher реализует dispatch-режим этапа: разветвление
// одного upstream-датасета на независимые downstream-запуски,
// по одному на канал.
//
// Жизненный цикл одного вызова:
//  1. Builder строит неизменяемый RunRequest на каждый канал.
//  2. Каждый запрос отправляется сервису запуска; transient-ошибки
//     повторяются с exponential backoff, постоянные — нет.
//  3. Успешные запуски персистируются в run record; он — вход
//     последующего clean-вызова.
//
// Отправка строго последовательная. Каналов в датасете единицы,
// параллелизм здесь не окупает усложнения порядка логов и агрегата.
package dispatcher
