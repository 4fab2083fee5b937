// Package memory provides an in-process PostStore.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"

	"github.com/pineda/postd/pkg/post"
	"github.com/pineda/postd/pkg/store"
	"github.com/puzpuzpuz/xsync/v3"
)

// Store is a concurrent in-memory PostStore. Rows are kept in an xsync map
// keyed by id; updates run inside Compute so the version check and the write
// happen atomically per row.
type Store struct {
	posts  *xsync.MapOf[int64, *post.Post]
	nextID atomic.Int64
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		posts: xsync.NewMapOf[int64, *post.Post](),
	}
}

// FindAll returns every post ordered by id.
func (s *Store) FindAll(_ context.Context) ([]*post.Post, error) {
	result := make([]*post.Post, 0, s.posts.Size())
	s.posts.Range(func(_ int64, p *post.Post) bool {
		result = append(result, p.Clone())
		return true
	})
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// FindByID returns the post with the given id, if any.
func (s *Store) FindByID(_ context.Context, id int64) (*post.Post, bool, error) {
	p, ok := s.posts.Load(id)
	if !ok {
		return nil, false, nil
	}
	return p.Clone(), true, nil
}

// FindByTitle returns the lowest-id post whose title matches exactly.
func (s *Store) FindByTitle(_ context.Context, title string) (*post.Post, bool, error) {
	var found *post.Post
	s.posts.Range(func(_ int64, p *post.Post) bool {
		if p.Title == title && (found == nil || p.ID < found.ID) {
			found = p
		}
		return true
	})
	if found == nil {
		return nil, false, nil
	}
	return found.Clone(), true, nil
}

// Save inserts or updates p.
func (s *Store) Save(_ context.Context, p *post.Post) (*post.Post, error) {
	if p == nil {
		return nil, fmt.Errorf("save: post is nil")
	}

	if p.IsNew() {
		row := p.Clone()
		row.ID = s.nextID.Add(1)
		row.Version = post.Int64(0)
		s.posts.Store(row.ID, row)
		return row.Clone(), nil
	}

	var (
		saved   *post.Post
		saveErr error
	)
	s.posts.Compute(p.ID, func(old *post.Post, loaded bool) (*post.Post, bool) {
		if !loaded {
			saveErr = store.ErrNotFound
			return nil, true
		}
		if old.VersionOrZero() != p.VersionOrZero() {
			saveErr = store.ErrVersionConflict
			return old, false
		}
		row := p.Clone()
		row.Version = post.Int64(old.VersionOrZero() + 1)
		saved = row
		return row, false
	})
	if saveErr != nil {
		return nil, saveErr
	}
	return saved.Clone(), nil
}

// DeleteByID removes the post with the given id.
func (s *Store) DeleteByID(_ context.Context, id int64) error {
	s.posts.Delete(id)
	return nil
}

// Seed loads posts as-is, keeping their ids and versions. Posts without an id
// are assigned the next free one. The id sequence continues after the highest
// seeded id.
func (s *Store) Seed(_ context.Context, posts []*post.Post) error {
	for i, p := range posts {
		if p == nil {
			return fmt.Errorf("seed: nil post at index %d", i)
		}
		row := p.Clone()
		if row.IsNew() {
			row.ID = s.nextID.Add(1)
		}
		if _, loaded := s.posts.LoadOrStore(row.ID, row); loaded {
			return fmt.Errorf("seed: duplicate id %d at index %d", row.ID, i)
		}
		s.bumpNextID(row.ID)
	}
	return nil
}

// Count returns the number of stored posts.
func (s *Store) Count() int {
	return s.posts.Size()
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}

func (s *Store) bumpNextID(id int64) {
	for {
		cur := s.nextID.Load()
		if id <= cur || s.nextID.CompareAndSwap(cur, id) {
			return
		}
	}
}

var (
	_ store.PostStore = (*Store)(nil)
	_ store.Seeder    = (*Store)(nil)
)
