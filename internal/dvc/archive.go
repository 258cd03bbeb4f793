package dvc

import (
	"context"
	"io"
)

// Role is the access level granted when sharing an archive.
type Role string

const (
	RoleReader Role = "reader"
	RoleWriter Role = "writer"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleReader || r == RoleWriter
}

// Archive is the external provider that stores backup copies of versions.
// Every repository owns one container; all of its backups live under it.
type Archive interface {
	// CreateContainer creates a container for a repository and returns its
	// external id. Creating a container that already exists is not an error.
	CreateContainer(ctx context.Context, name string) (string, error)

	// Put stores size bytes read from r as object name inside container and
	// returns the external location of the stored copy.
	Put(ctx context.Context, container string, name string, r io.Reader, size int64) (string, error)

	// Get writes the object at location to w.
	Get(ctx context.Context, location string, w io.Writer) error

	// Share grants principal the given role on the container or object at location.
	Share(ctx context.Context, location string, principal string, role Role) error

	// ValidateSetup verifies that the archive is reachable and configured.
	ValidateSetup(ctx context.Context) error
}
