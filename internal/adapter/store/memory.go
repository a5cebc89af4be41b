package store

import (
	"fmt"
	"os"
	"sync"

	"go.ngs.io/fluxplot/internal/domain"
)

// MemDataset is an in-memory Dataset, mainly for tests and synthetic inputs.
type MemDataset struct {
	vars   []*domain.Array
	closed bool
}

// NewMemDataset creates a dataset holding vars in the given order.
func NewMemDataset(vars ...*domain.Array) *MemDataset {
	return &MemDataset{vars: vars}
}

// Variables lists variable names in insertion order.
func (m *MemDataset) Variables() []string {
	names := make([]string, len(m.vars))
	for i, v := range m.vars {
		names[i] = v.Name
	}
	return names
}

// Variable returns a copy of the named variable.
func (m *MemDataset) Variable(name string) (*domain.Array, error) {
	for _, v := range m.vars {
		if v.Name == name {
			data := make([]float64, len(v.Data))
			copy(data, v.Data)
			return &domain.Array{
				Name:  v.Name,
				Dims:  append([]string(nil), v.Dims...),
				Shape: append([]int(nil), v.Shape...),
				Data:  data,
			}, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", name, ErrVariableNotFound)
}

// DimensionNames returns the union of all variable dimensions.
func (m *MemDataset) DimensionNames() map[string]bool {
	dims := make(map[string]bool)
	for _, v := range m.vars {
		for _, d := range v.Dims {
			dims[d] = true
		}
	}
	return dims
}

// Close marks the dataset closed.
func (m *MemDataset) Close() error {
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *MemDataset) Closed() bool { return m.closed }

// MemStore maps paths to in-memory datasets and serves them through Open.
type MemStore struct {
	mu    sync.RWMutex
	files map[string]*MemDataset
}

// NewMemStore creates an empty store.
func NewMemStore() *MemStore {
	return &MemStore{files: make(map[string]*MemDataset)}
}

// Put registers a dataset under path.
func (s *MemStore) Put(path string, ds *MemDataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[path] = ds
}

// Open implements Opener.
func (s *MemStore) Open(path string) (Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ds, ok := s.files[path]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", path, os.ErrNotExist)
	}
	return ds, nil
}
