package store

import "github.com/pineda/postd/pkg/post"

// DefaultSeed returns the sample rows loaded by `postd serve --seed`.
// Their versions are nil, as for rows written outside postd.
func DefaultSeed() []*post.Post {
	return []*post.Post{
		{ID: 1, UserID: 1, Title: "Hello, World!", Body: "This is my first post."},
		{ID: 2, UserID: 1, Title: "Second Post", Body: "This is my second post."},
	}
}
