package store

import (
	"context"
	"errors"

	"github.com/pineda/postd/pkg/post"
)

// Sentinel errors returned by PostStore implementations.
var (
	// ErrNotFound is returned by Save when updating a row that no longer exists.
	ErrNotFound = errors.New("post not found")

	// ErrVersionConflict is returned by Save when the post's version does not
	// match the stored version.
	ErrVersionConflict = errors.New("post version conflict")
)

// Backend names a PostStore implementation.
type Backend string

const (
	BackendMemory   Backend = "memory"
	BackendPostgres Backend = "postgres"
)

// PostStore handles persistence of posts.
type PostStore interface {
	// FindAll returns every post ordered by id.
	FindAll(ctx context.Context) ([]*post.Post, error)

	// FindByID returns the post with the given id, if any.
	FindByID(ctx context.Context, id int64) (*post.Post, bool, error)

	// FindByTitle returns the post whose title matches exactly, if any.
	FindByTitle(ctx context.Context, title string) (*post.Post, bool, error)

	// Save inserts p when p.ID is zero and updates the row otherwise.
	// Inserts start at version 0; updates require p.Version to match the
	// stored version (nil counts as 0) and store version+1.
	Save(ctx context.Context, p *post.Post) (*post.Post, error)

	// DeleteByID removes the post with the given id. Deleting a missing id
	// is not an error.
	DeleteByID(ctx context.Context, id int64) error

	// Close releases resources held by the store.
	Close() error
}

// Seeder is implemented by stores that can be loaded with fixed rows,
// preserving their ids and versions.
type Seeder interface {
	Seed(ctx context.Context, posts []*post.Post) error
}
