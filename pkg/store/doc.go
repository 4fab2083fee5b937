// Package store defines the persistence contract for posts.
//
// PostStore is the explicit, per-query interface the HTTP layer consumes:
//
//   - FindAll returns a snapshot of every post ordered by id.
//   - FindByID and FindByTitle return (post, true, nil) when a row exists and
//     (nil, false, nil) when it does not. Absence is never an error.
//   - Save inserts when the post has no id and updates otherwise, enforcing
//     the optimistic-concurrency version.
//   - DeleteByID removes a row and is idempotent.
//
// Implementations:
//
//   - memory: a concurrent in-process store, the default backend, seedable
//     from configuration. Available in the "github.com/pineda/postd/pkg/store/memory" package.
//   - postgres: a pgx connection pool over the post table.
//     Available in the "github.com/pineda/postd/pkg/store/postgres" package.
package store
