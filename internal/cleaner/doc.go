// Package cleaner реализует clean-режим этапа: удаление промежуточных
// артефактов каналов, downstream-копия которых подтверждена.
//
// Вход — run record, записанный dispatch-вызовом над тем же датасетом.
// Для каждого записанного запуска cleaner проверяет copy-complete
// маркер под output-префиксом; без маркера префикс пропускается
// с предупреждением. Повторный clean того же датасета безопасен:
// нуль удалённых объектов — успех, не ошибка.
package cleaner
