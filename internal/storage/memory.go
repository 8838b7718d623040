package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryStore — реализация Store в памяти.
//
// Используется тестами оркестраторов и локальными dry-run прогонами.
// Потокобезопасна.
type MemoryStore struct {
	mu   sync.RWMutex
	keys map[string]struct{}
}

// NewMemoryStore создаёт MemoryStore с начальным набором ключей.
func NewMemoryStore(keys ...string) *MemoryStore {
	s := &MemoryStore{keys: make(map[string]struct{}, len(keys))}
	for _, k := range keys {
		s.keys[k] = struct{}{}
	}
	return s
}

// Put добавляет ключ.
func (s *MemoryStore) Put(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[key] = struct{}{}
}

// List возвращает отсортированные ключи под префиксом.
func (s *MemoryStore) List(_ context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var keys []string
	for k := range s.keys {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Exists проверяет существование ключа.
func (s *MemoryStore) Exists(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.keys[key]
	return ok, nil
}

// DeletePrefix удаляет все ключи под префиксом.
func (s *MemoryStore) DeletePrefix(_ context.Context, prefix string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for k := range s.keys {
		if strings.HasPrefix(k, prefix) {
			delete(s.keys, k)
			deleted++
		}
	}
	return deleted, nil
}

// Len возвращает количество ключей в хранилище.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.keys)
}
