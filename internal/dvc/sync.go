package dvc

import "context"

// RemoteFile is the authoritative metadata for one file as reported by the
// external drive.
type RemoteFile struct {
	Name                string
	IsFolder            bool
	ContentRevision     string
	ContainerExternalID string
	Deleted             bool
	Thumbnail           []byte
}

// SyncAdapter fetches file metadata and content from an external drive.
// Implementations are injected per provider. An error wrapping ErrInvalid
// marks a file the drive can never serve; Sync skips it. Any other error is
// treated as a transient outage.
type SyncAdapter interface {
	// Fetch returns the current metadata for externalID. A file that no
	// longer exists is reported with Deleted set, not as an error.
	Fetch(ctx context.Context, externalID string) (*RemoteFile, error)

	// FetchContent returns the plain text of externalID at revision.
	FetchContent(ctx context.Context, externalID string, revision string) (string, error)

	// Children lists the external ids directly inside the folder externalID.
	Children(ctx context.Context, externalID string) ([]string, error)
}
