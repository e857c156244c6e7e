package job

import (
	"context"
	"errors"
)

var (
	ErrNotFound        = errors.New("job not found")
	ErrVersionConflict = errors.New("job was modified concurrently")
)

// Store is the durable keyed collection of job records. Updates are
// row-level with optimistic versioning: an Update whose in-memory Version
// does not match the stored row fails with ErrVersionConflict instead of
// silently losing a concurrent write.
type Store interface {
	Create(ctx context.Context, j *Job) error
	// Update persists the full record and increments j.Version on success.
	Update(ctx context.Context, j *Job) error
	Get(ctx context.Context, id string) (*Job, error)
	// List returns all jobs ordered newest-first.
	List(ctx context.Context) ([]*Job, error)
	Delete(ctx context.Context, id string) error
}
