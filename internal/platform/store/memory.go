package store

import (
	"context"
	"sort"
	"sync"
)

type Memory struct {
	mu   sync.RWMutex
	data map[Collection]map[string]Record
}

func NewMemory() *Memory {
	return &Memory{data: map[Collection]map[string]Record{}}
}

func (m *Memory) Get(ctx context.Context, c Collection, id string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.data[c][id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return cloneRecord(rec), nil
}

func (m *Memory) List(ctx context.Context, c Collection) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Record, 0, len(m.data[c]))
	for _, rec := range m.data[c] {
		out = append(out, cloneRecord(rec))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) Put(ctx context.Context, c Collection, id string, data []byte) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	version := m.data[c][id].Version + 1
	m.write(c, id, data, version)
	return version, nil
}

func (m *Memory) PutIfVersion(ctx context.Context, c Collection, id string, data []byte, expected int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, exists := m.data[c][id]
	if (expected == 0 && exists) || (expected != 0 && (!exists || current.Version != expected)) {
		return 0, ErrVersionConflict
	}
	version := expected + 1
	m.write(c, id, data, version)
	return version, nil
}

func (m *Memory) Delete(ctx context.Context, c Collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[c][id]; !ok {
		return ErrNotFound
	}
	delete(m.data[c], id)
	return nil
}

func (m *Memory) Ping(ctx context.Context) error {
	return nil
}

func (m *Memory) write(c Collection, id string, data []byte, version int64) {
	bucket, ok := m.data[c]
	if !ok {
		bucket = map[string]Record{}
		m.data[c] = bucket
	}
	bucket[id] = cloneRecord(Record{ID: id, Version: version, Data: data})
}

func cloneRecord(rec Record) Record {
	data := make([]byte, len(rec.Data))
	copy(data, rec.Data)
	rec.Data = data
	return rec
}
