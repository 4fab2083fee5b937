package api

import (
	"context"
	"errors"

	"github.com/pineda/postd/pkg/metrics"
	"github.com/pineda/postd/pkg/post"
	"github.com/pineda/postd/pkg/store"
)

// instrumentedStore counts every store call by operation and result.
type instrumentedStore struct {
	store.PostStore
	reg *metrics.Registry
}

func instrument(s store.PostStore, reg *metrics.Registry) store.PostStore {
	if s == nil || reg == nil {
		return s
	}
	return &instrumentedStore{PostStore: s, reg: reg}
}

func (s *instrumentedStore) FindAll(ctx context.Context) ([]*post.Post, error) {
	posts, err := s.PostStore.FindAll(ctx)
	s.observe("FindAll", err, true)
	return posts, err
}

func (s *instrumentedStore) FindByID(ctx context.Context, id int64) (*post.Post, bool, error) {
	p, ok, err := s.PostStore.FindByID(ctx, id)
	s.observe("FindByID", err, ok)
	return p, ok, err
}

func (s *instrumentedStore) FindByTitle(ctx context.Context, title string) (*post.Post, bool, error) {
	p, ok, err := s.PostStore.FindByTitle(ctx, title)
	s.observe("FindByTitle", err, ok)
	return p, ok, err
}

func (s *instrumentedStore) Save(ctx context.Context, p *post.Post) (*post.Post, error) {
	saved, err := s.PostStore.Save(ctx, p)
	s.observe("Save", err, true)
	return saved, err
}

func (s *instrumentedStore) DeleteByID(ctx context.Context, id int64) error {
	err := s.PostStore.DeleteByID(ctx, id)
	s.observe("DeleteByID", err, true)
	return err
}

func (s *instrumentedStore) observe(op string, err error, found bool) {
	result := metrics.ResultOK
	switch {
	case errors.Is(err, store.ErrVersionConflict):
		result = metrics.ResultConflict
	case errors.Is(err, store.ErrNotFound):
		result = metrics.ResultNotFound
	case err != nil:
		result = metrics.ResultError
	case !found:
		result = metrics.ResultNotFound
	}
	s.reg.ObserveStoreOp(op, result)
}
