// Package record — персистентная запись о запусках одного датасета.
//
// Dispatch-режим пишет run record один раз перед завершением;
// clean-режим (возможно, другой процесс, позже в пайплайне) читает
// его, чтобы восстановить соответствие канал → запуск → префикс
// результатов. Запись атомарна: временный файл + rename.
package record

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shaiso/spim-dispatch/internal/domain"
)

// Filename — фиксированное имя run record в папке результатов.
const Filename = "run_record.json"

// Entry — один записанный запуск.
type Entry struct {
	// RunID — идентификатор запуска в сервисе запуска.
	RunID string `json:"run_id"`

	// OutputPrefix — префикс результатов запуска в хранилище.
	OutputPrefix string `json:"output_prefix"`

	// SubmittedAt — время успешной отправки.
	SubmittedAt time.Time `json:"submitted_at"`
}

// Record — run record одного dispatch-вызова.
//
// Record принадлежит ровно одному датасету: dispatch и clean обязаны
// работать над одним и тем же корнем, иначе очистка удалит артефакты
// чужого прогона.
type Record struct {
	// Dataset — имя датасета.
	Dataset string `json:"dataset"`

	// PipelineVersion — версия пайплайна, создавшего record.
	PipelineVersion string `json:"pipeline_version,omitempty"`

	// Runs — соответствие имя канала → записанный запуск.
	Runs map[string]Entry `json:"runs"`
}

// FromHandles строит Record из успешно отправленных запусков.
func FromHandles(dataset, pipelineVersion string, handles []domain.RunHandle) *Record {
	runs := make(map[string]Entry, len(handles))
	for _, h := range handles {
		runs[h.Channel] = Entry{
			RunID:        h.RunID,
			OutputPrefix: h.OutputPrefix,
			SubmittedAt:  h.SubmittedAt,
		}
	}
	return &Record{
		Dataset:         dataset,
		PipelineVersion: pipelineVersion,
		Runs:            runs,
	}
}

// Write сохраняет record в dir/Filename атомарно.
//
// Запись идёт во временный файл в той же директории с последующим
// rename: читатель либо видит старый record целиком, либо новый.
func Write(dir string, rec *Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal run record: %w", err)
	}

	tmp, err := os.CreateTemp(dir, Filename+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp record: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp record: %w", err)
	}

	if err := os.Rename(tmpName, filepath.Join(dir, Filename)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename run record: %w", err)
	}
	return nil
}

// Read загружает record из dir/Filename.
func Read(dir string) (*Record, error) {
	path := filepath.Join(dir, Filename)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read run record %s: %w", path, err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parse run record %s: %w", path, err)
	}
	return &rec, nil
}
