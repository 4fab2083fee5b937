// Package postgres provides a PostStore backed by a PostgreSQL table.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pineda/postd/pkg/post"
	"github.com/pineda/postd/pkg/store"
)

// Schema creates the post table.
const Schema = `CREATE TABLE IF NOT EXISTS post (
    id      BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL,
    title   VARCHAR(255) NOT NULL,
    body    TEXT NOT NULL,
    version BIGINT
)`

const (
	selectColumns = `SELECT id, user_id, title, body, version FROM post`

	queryFindAll     = selectColumns + ` ORDER BY id`
	queryFindByID    = selectColumns + ` WHERE id = $1`
	queryFindByTitle = selectColumns + ` WHERE title = $1 ORDER BY id LIMIT 1`

	queryInsert = `INSERT INTO post (user_id, title, body, version)
VALUES ($1, $2, $3, 0)
RETURNING id, user_id, title, body, version`

	// the version predicate makes a stale update match zero rows
	queryUpdate = `UPDATE post
SET user_id = $2, title = $3, body = $4, version = COALESCE(version, 0) + 1
WHERE id = $1 AND COALESCE(version, 0) = $5
RETURNING id, user_id, title, body, version`

	queryExists = `SELECT EXISTS (SELECT 1 FROM post WHERE id = $1)`
	queryDelete = `DELETE FROM post WHERE id = $1`

	querySeed       = `INSERT INTO post (id, user_id, title, body, version) VALUES ($1, $2, $3, $4, $5)`
	querySyncSerial = `SELECT setval(pg_get_serial_sequence('post', 'id'), (SELECT MAX(id) FROM post))`
)

// Config configures the connection pool.
type Config struct {
	// DSN is a libpq connection string or URL.
	DSN string
	// MaxConns caps the pool size. Zero keeps the pgx default.
	MaxConns int32
	// ConnectTimeout bounds the initial ping.
	ConnectTimeout time.Duration
}

// Store is a PostStore over a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// Open creates the pool and verifies connectivity.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	// every query here is a fixed statement, so cache them per connection
	poolCfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheStatement
	poolCfg.ConnConfig.StatementCacheCapacity = 32

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	pingCtx := ctx
	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Migrate creates the post table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// FindAll returns every post ordered by id.
func (s *Store) FindAll(ctx context.Context) ([]*post.Post, error) {
	rows, err := s.pool.Query(ctx, queryFindAll)
	if err != nil {
		return nil, fmt.Errorf("find all: %w", err)
	}
	posts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*post.Post, error) {
		return scanPost(row)
	})
	if err != nil {
		return nil, fmt.Errorf("find all: %w", err)
	}
	if posts == nil {
		posts = []*post.Post{}
	}
	return posts, nil
}

// FindByID returns the post with the given id, if any.
func (s *Store) FindByID(ctx context.Context, id int64) (*post.Post, bool, error) {
	return s.findOne(ctx, "find by id", queryFindByID, id)
}

// FindByTitle returns the lowest-id post whose title matches exactly.
func (s *Store) FindByTitle(ctx context.Context, title string) (*post.Post, bool, error) {
	return s.findOne(ctx, "find by title", queryFindByTitle, title)
}

func (s *Store) findOne(ctx context.Context, op, query string, arg any) (*post.Post, bool, error) {
	p, err := scanPost(s.pool.QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	return p, true, nil
}

// Save inserts or updates p.
func (s *Store) Save(ctx context.Context, p *post.Post) (*post.Post, error) {
	if p == nil {
		return nil, errors.New("save: post is nil")
	}

	if p.IsNew() {
		saved, err := scanPost(s.pool.QueryRow(ctx, queryInsert, p.UserID, p.Title, p.Body))
		if err != nil {
			return nil, fmt.Errorf("insert: %w", err)
		}
		return saved, nil
	}

	saved, err := scanPost(s.pool.QueryRow(ctx, queryUpdate, p.ID, p.UserID, p.Title, p.Body, p.VersionOrZero()))
	if err == nil {
		return saved, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("update: %w", err)
	}

	// zero rows: either the row is gone or its version moved on
	var exists bool
	if err := s.pool.QueryRow(ctx, queryExists, p.ID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("update: %w", err)
	}
	if !exists {
		return nil, store.ErrNotFound
	}
	return nil, store.ErrVersionConflict
}

// DeleteByID removes the post with the given id.
func (s *Store) DeleteByID(ctx context.Context, id int64) error {
	if _, err := s.pool.Exec(ctx, queryDelete, id); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	return nil
}

// Seed inserts posts with their ids and versions in one transaction and
// moves the id sequence past them.
func (s *Store) Seed(ctx context.Context, posts []*post.Post) error {
	if len(posts) == 0 {
		return nil
	}
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, p := range posts {
			if p.IsNew() {
				batch.Queue(queryInsert, p.UserID, p.Title, p.Body)
				continue
			}
			batch.Queue(querySeed, p.ID, p.UserID, p.Title, p.Body, p.Version)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		if _, err := tx.Exec(ctx, querySyncSerial); err != nil {
			return fmt.Errorf("seed: sync sequence: %w", err)
		}
		return nil
	})
}

// Close closes the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func scanPost(row pgx.Row) (*post.Post, error) {
	var p post.Post
	if err := row.Scan(&p.ID, &p.UserID, &p.Title, &p.Body, &p.Version); err != nil {
		return nil, err
	}
	return &p, nil
}

var (
	_ store.PostStore = (*Store)(nil)
	_ store.Seeder    = (*Store)(nil)
)
