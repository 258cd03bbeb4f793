package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"dvc-go/internal/dvc"
)

// MemoryArchive is an in-memory implementation of the Archive interface.
// It stores every container and object in memory, making it useful for
// testing. This implementation is safe for concurrent use.
type MemoryArchive struct {
	name       string
	containers map[string]bool
	objects    map[string][]byte              // location -> payload
	grants     map[string]map[string]dvc.Role // location -> principal -> role
	puts       int
	mu         sync.RWMutex
}

// NewMemoryArchive creates a new in-memory archive with the given name.
func NewMemoryArchive(name string) *MemoryArchive {
	return &MemoryArchive{
		name:       name,
		containers: make(map[string]bool),
		objects:    make(map[string][]byte),
		grants:     make(map[string]map[string]dvc.Role),
	}
}

// CreateContainer registers a container. Creating it twice is a no-op.
func (m *MemoryArchive) CreateContainer(_ context.Context, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("container name is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.containers[name] = true
	return name, nil
}

// Put stores an object inside an existing container.
func (m *MemoryArchive) Put(_ context.Context, container string, name string, r io.Reader, size int64) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read payload: %w", err)
	}
	if int64(len(data)) != size {
		return "", fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.containers[container] {
		return "", fmt.Errorf("container not found: %s", container)
	}
	location := objectLocation(container, name)
	m.objects[location] = data
	m.puts++
	return location, nil
}

// Get writes the object at location to w.
func (m *MemoryArchive) Get(_ context.Context, location string, w io.Writer) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.objects[location]
	if !ok {
		return fmt.Errorf("object not found: %s", location)
	}
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write payload: %w", err)
	}
	return nil
}

// Share records a grant on a container or object.
func (m *MemoryArchive) Share(_ context.Context, location string, principal string, role dvc.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, isObject := m.objects[location]
	if !m.containers[location] && !isObject {
		return fmt.Errorf("location not found: %s", location)
	}
	if m.grants[location] == nil {
		m.grants[location] = make(map[string]dvc.Role)
	}
	m.grants[location][principal] = role
	return nil
}

// Grants returns a copy of the grants recorded on location.
func (m *MemoryArchive) Grants(location string) map[string]dvc.Role {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]dvc.Role, len(m.grants[location]))
	for p, r := range m.grants[location] {
		out[p] = r
	}
	return out
}

// PutCount returns how many objects were stored, including overwrites.
func (m *MemoryArchive) PutCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.puts
}

// ValidateSetup always succeeds for the in-memory archive.
func (m *MemoryArchive) ValidateSetup(context.Context) error {
	return nil
}

// Compile-time check that MemoryArchive implements dvc.Archive interface
var _ dvc.Archive = (*MemoryArchive)(nil)
