package drive

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"dvc-go/internal/dvc"
)

type memoryFile struct {
	name      string
	isFolder  bool
	parent    string
	revision  string
	thumbnail []byte
}

// MemoryDrive is an in-memory drive for tests. Every content change gets a
// new revision and old revisions stay fetchable. This implementation is safe
// for concurrent use.
type MemoryDrive struct {
	mu       sync.Mutex
	files    map[string]*memoryFile
	contents map[string]string // id + "@" + revision -> text
	next     int
	fetches  int
	err      error
}

// NewMemoryDrive creates a drive holding only the root folder rootID.
func NewMemoryDrive(rootID string) *MemoryDrive {
	return &MemoryDrive{
		files:    map[string]*memoryFile{rootID: {name: rootID, isFolder: true}},
		contents: map[string]string{},
	}
}

// AddFolder creates or replaces a folder.
func (m *MemoryDrive) AddFolder(id, name, parent string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[id] = &memoryFile{name: name, isFolder: true, parent: parent}
}

// AddFile creates or replaces a file and returns its new revision.
func (m *MemoryDrive) AddFile(id, name, parent, text string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[id] = &memoryFile{name: name, parent: parent}
	return m.writeLocked(id, text)
}

// Write replaces a file's text and returns the new revision.
func (m *MemoryDrive) Write(id, text string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writeLocked(id, text)
}

func (m *MemoryDrive) writeLocked(id, text string) string {
	m.next++
	rev := fmt.Sprintf("r%d", m.next)
	m.files[id].revision = rev
	m.contents[id+"@"+rev] = text
	return rev
}

// Rename changes a file's name.
func (m *MemoryDrive) Rename(id, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[id].name = name
}

// Move changes a file's parent folder.
func (m *MemoryDrive) Move(id, parent string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[id].parent = parent
}

// SetThumbnail changes a file's thumbnail.
func (m *MemoryDrive) SetThumbnail(id string, thumbnail []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[id].thumbnail = thumbnail
}

// Delete removes a file; it is reported as deleted from then on.
func (m *MemoryDrive) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, id)
}

// Fail makes every call return err until Fail(nil).
func (m *MemoryDrive) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// ContentFetches returns how many times FetchContent was called.
func (m *MemoryDrive) ContentFetches() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fetches
}

func (m *MemoryDrive) Fetch(_ context.Context, id string) (*dvc.RemoteFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	f, ok := m.files[id]
	if !ok {
		return &dvc.RemoteFile{Deleted: true}, nil
	}
	return &dvc.RemoteFile{
		Name:                f.name,
		IsFolder:            f.isFolder,
		ContentRevision:     f.revision,
		ContainerExternalID: f.parent,
		Thumbnail:           f.thumbnail,
	}, nil
}

func (m *MemoryDrive) FetchContent(_ context.Context, id string, revision string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	m.fetches++
	text, ok := m.contents[id+"@"+revision]
	if !ok {
		return "", fmt.Errorf("revision %s of %s not found", revision, id)
	}
	return text, nil
}

func (m *MemoryDrive) Children(_ context.Context, id string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var ids []string
	for childID, f := range m.files {
		if f.parent == id && childID != id {
			ids = append(ids, childID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// Compile-time check that MemoryDrive implements dvc.SyncAdapter interface
var _ dvc.SyncAdapter = (*MemoryDrive)(nil)
