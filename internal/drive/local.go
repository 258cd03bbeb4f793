package drive

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"lukechampine.com/blake3"

	"dvc-go/internal/dvc"
)

// RootID is the external id of the drive root.
const RootID = "."

// LocalDrive exposes a local directory as a drive. External ids are
// slash-separated paths relative to the root, and a file's content revision
// is the blake3 hash of its bytes, so an unchanged file keeps its revision.
// Files that are not UTF-8 text are tracked without content.
type LocalDrive struct {
	root   string
	ignore *IgnoreMatcher
}

// NewLocalDrive creates a drive rooted at root. Patterns from the root's
// .dvcignore are appended to the configured ones.
func NewLocalDrive(root string, ignore []string) (*LocalDrive, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving drive root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat drive root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("drive root is not a directory: %s", abs)
	}

	fromFile, err := ParseIgnoreFile(filepath.Join(abs, IgnoreFileName))
	if err != nil {
		return nil, err
	}
	return &LocalDrive{
		root:   abs,
		ignore: NewIgnoreMatcher(append(append([]string{}, ignore...), fromFile...)),
	}, nil
}

// Root returns the absolute directory the drive serves.
func (d *LocalDrive) Root() string {
	return d.root
}

// Fetch reports the current metadata of id. Missing and ignored files are
// reported as deleted.
func (d *LocalDrive) Fetch(ctx context.Context, id string) (*dvc.RemoteFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	full, err := d.resolve(id)
	if err != nil {
		return nil, err
	}
	if d.ignore.Match(id) {
		return &dvc.RemoteFile{Deleted: true}, nil
	}

	info, err := os.Lstat(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &dvc.RemoteFile{Deleted: true}, nil
		}
		return nil, fmt.Errorf("stat %s: %w", id, err)
	}
	if !info.IsDir() && !info.Mode().IsRegular() {
		return nil, fmt.Errorf("unsupported file type %s: %s", info.Mode().Type(), id)
	}

	remote := &dvc.RemoteFile{
		Name:     info.Name(),
		IsFolder: info.IsDir(),
	}
	if id != RootID {
		remote.ContainerExternalID = path.Dir(id)
	}
	if !info.IsDir() {
		data, err := os.ReadFile(full)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", id, err)
		}
		if utf8.Valid(data) {
			remote.ContentRevision = revisionOf(data)
		}
	}
	return remote, nil
}

// FetchContent returns the text of id. The revision must still be current;
// a local directory keeps no history.
func (d *LocalDrive) FetchContent(ctx context.Context, id string, revision string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	full, err := d.resolve(id)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", id, err)
	}
	if rev := revisionOf(data); rev != revision {
		return "", fmt.Errorf("revision %s of %s is no longer available", revision, id)
	}
	if !utf8.Valid(data) {
		return "", &dvc.Error{Kind: dvc.ErrInvalid, Entity: "file", Message: id + " is not plain text"}
	}
	return string(data), nil
}

// Children lists the ids directly inside the folder id, skipping ignored
// entries and anything that is neither a folder nor a regular file.
func (d *LocalDrive) Children(ctx context.Context, id string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	full, err := d.resolve(id)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(full)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", id, err)
	}

	var ids []string
	for _, entry := range entries {
		if !entry.IsDir() && !entry.Type().IsRegular() {
			continue
		}
		child := path.Join(id, entry.Name())
		if d.ignore.Match(child) {
			continue
		}
		ids = append(ids, child)
	}
	sort.Strings(ids)
	return ids, nil
}

// resolve maps an id to an absolute path inside the root.
func (d *LocalDrive) resolve(id string) (string, error) {
	if id == "" || path.IsAbs(id) || path.Clean(id) != id || id == ".." || strings.HasPrefix(id, "../") {
		return "", fmt.Errorf("invalid drive id: %q", id)
	}
	return filepath.Join(d.root, filepath.FromSlash(id)), nil
}

func revisionOf(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Compile-time check that LocalDrive implements dvc.SyncAdapter interface
var _ dvc.SyncAdapter = (*LocalDrive)(nil)
