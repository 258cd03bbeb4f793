package archive

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"dvc-go/internal/dvc"
)

const grantsFile = "grants.toml"

// grantList is the on-disk form of the grants of one container.
type grantList struct {
	Grants map[string]dvc.Role `toml:"grants"`
}

// FileSystemArchive is a filesystem-based implementation of the Archive
// interface. Containers are directories under the root:
//
//	<root>/
//	  <container>/
//	    grants.toml   (principal -> role)
//	    <object>      (compressed, possibly encrypted payload)
type FileSystemArchive struct {
	name string
	root string
}

// NewFileSystemArchive creates a new filesystem archive rooted at the given path.
func NewFileSystemArchive(name, root string) (*FileSystemArchive, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive root: %w", err)
	}
	return &FileSystemArchive{name: name, root: root}, nil
}

// CreateContainer creates the container directory if it doesn't exist.
func (a *FileSystemArchive) CreateContainer(_ context.Context, name string) (string, error) {
	if err := validSegment(name); err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Join(a.root, name), 0755); err != nil {
		return "", fmt.Errorf("failed to create container: %w", err)
	}
	return name, nil
}

// Put stores an object inside a container using an atomic write.
func (a *FileSystemArchive) Put(_ context.Context, container string, name string, r io.Reader, size int64) (string, error) {
	if err := validSegment(container); err != nil {
		return "", err
	}
	if err := validSegment(name); err != nil {
		return "", err
	}
	dir := filepath.Join(a.root, container)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return "", fmt.Errorf("container not found: %s", container)
	}

	if err := writeFile(filepath.Join(dir, name), r, size); err != nil {
		return "", err
	}
	return objectLocation(container, name), nil
}

// Get writes the object at location to w.
func (a *FileSystemArchive) Get(_ context.Context, location string, w io.Writer) error {
	container, name, err := splitLocation(location)
	if err != nil {
		return err
	}

	f, err := os.Open(filepath.Join(a.root, container, name))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("object not found: %s", location)
		}
		return fmt.Errorf("failed to open object: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to read object: %w", err)
	}
	return nil
}

// Share records a grant in the container's grants file. Sharing an object
// records the grant on its container.
func (a *FileSystemArchive) Share(_ context.Context, location string, principal string, role dvc.Role) error {
	container := location
	if strings.Contains(location, "/") {
		c, _, err := splitLocation(location)
		if err != nil {
			return err
		}
		container = c
	}
	dir := filepath.Join(a.root, container)
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("container not found: %s", container)
	}

	grants, err := a.readGrants(container)
	if err != nil {
		return err
	}
	grants.Grants[principal] = role

	var buf strings.Builder
	if err := toml.NewEncoder(&buf).Encode(grants); err != nil {
		return fmt.Errorf("encoding grants: %w", err)
	}
	data := buf.String()
	return writeFile(filepath.Join(dir, grantsFile), strings.NewReader(data), int64(len(data)))
}

// GrantsOf returns the grants recorded on a container.
func (a *FileSystemArchive) GrantsOf(container string) (map[string]dvc.Role, error) {
	grants, err := a.readGrants(container)
	if err != nil {
		return nil, err
	}
	return grants.Grants, nil
}

func (a *FileSystemArchive) readGrants(container string) (*grantList, error) {
	grants := &grantList{Grants: map[string]dvc.Role{}}
	_, err := toml.DecodeFile(filepath.Join(a.root, container, grantsFile), grants)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading grants: %w", err)
	}
	if grants.Grants == nil {
		grants.Grants = map[string]dvc.Role{}
	}
	return grants, nil
}

// ValidateSetup verifies that the archive root is an accessible directory.
func (a *FileSystemArchive) ValidateSetup(context.Context) error {
	info, err := os.Stat(a.root)
	if err != nil {
		return fmt.Errorf("archive root not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("archive root is not a directory: %s", a.root)
	}
	return nil
}

// writeFile writes data from r to the specified path using atomic write (temp file + rename).
func writeFile(destPath string, r io.Reader, expectedSize int64) error {
	// Temp file in the same directory so the rename stays on one filesystem
	dir := filepath.Dir(destPath)
	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmpFile, r)
	if err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if written != expectedSize {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", expectedSize, written)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

func objectLocation(container, name string) string {
	return path.Join(container, name)
}

func splitLocation(location string) (string, string, error) {
	container, name, ok := strings.Cut(location, "/")
	if !ok || validSegment(container) != nil || validSegment(name) != nil {
		return "", "", fmt.Errorf("invalid location: %q", location)
	}
	return container, name, nil
}

// validSegment rejects names that would escape the archive root.
func validSegment(s string) error {
	if s == "" || s == "." || s == ".." || strings.ContainsAny(s, `/\`) {
		return fmt.Errorf("invalid archive name: %q", s)
	}
	return nil
}

// Compile-time check that FileSystemArchive implements dvc.Archive interface
var _ dvc.Archive = (*FileSystemArchive)(nil)
