package store

import (
	"context"
	"sync"

	"github.com/matzehuels/stateflow/pkg/io"
	"github.com/matzehuels/stateflow/pkg/model"
)

// Memory keeps records in process memory.
type Memory struct {
	mu      sync.RWMutex
	records map[string][]byte
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{records: make(map[string][]byte)}
}

func (m *Memory) Get(ctx context.Context, id string) (*model.Diagram, error) {
	if err := alive(ctx); err != nil {
		return nil, err
	}
	m.mu.RLock()
	data, ok := m.records[id]
	m.mu.RUnlock()
	if !ok {
		return nil, NotFound(id)
	}
	return io.UnmarshalRecord(data)
}

func (m *Memory) Put(ctx context.Context, d *model.Diagram) error {
	if err := alive(ctx); err != nil {
		return err
	}
	if err := checkPut(d); err != nil {
		return err
	}
	data, err := io.MarshalRecord(d)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.records[d.ID] = data
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(ctx context.Context, id string) error {
	if err := alive(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	delete(m.records, id)
	m.mu.Unlock()
	return nil
}

func (m *Memory) List(ctx context.Context) ([]Summary, error) {
	if err := alive(ctx); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Summary, 0, len(m.records))
	for _, data := range m.records {
		d, err := io.UnmarshalRecord(data)
		if err != nil {
			return nil, err
		}
		out = append(out, Summarize(d))
	}
	SortSummaries(out)
	return out, nil
}

func (m *Memory) Close() error { return nil }

var _ Store = (*Memory)(nil)
