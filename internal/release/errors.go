package release

import "errors"

// Precondition failures abort the whole pipeline; none of them is remediated
// automatically.
var (
	// ErrMetadataUnavailable means no version could be resolved from project
	// metadata and none was supplied explicitly.
	ErrMetadataUnavailable = errors.New("could not read version from project metadata")

	// ErrRepositoryNotClean means the working tree has uncommitted changes.
	ErrRepositoryNotClean = errors.New("working directory has uncommitted changes")

	// ErrTagExists means the computed release tag already exists. Re-running
	// after a full success lands here; it is the pipeline's idempotence guard.
	ErrTagExists = errors.New("release tag already exists")

	// ErrCancelled means the operator declined the confirmation prompt.
	ErrCancelled = errors.New("release cancelled")
)
