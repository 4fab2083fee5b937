package post

// Post is one row of the post table.
type Post struct {
	// ID is assigned by the store on insert.
	ID int64 `json:"id"`
	// UserID references the owning user. No user entity exists in postd.
	UserID int64 `json:"userId"`
	// Title is required and must not be blank.
	Title string `json:"title"`
	// Body is required and must not be blank.
	Body string `json:"body"`
	// Version is the optimistic-concurrency token. Nil until the store
	// assigns one.
	Version *int64 `json:"version"`
}

// IsNew reports whether the post has not been persisted yet.
func (p *Post) IsNew() bool {
	return p.ID == 0
}

// VersionOrZero returns the version, treating nil as zero.
func (p *Post) VersionOrZero() int64 {
	if p.Version == nil {
		return 0
	}
	return *p.Version
}

// Clone returns a deep copy of p.
func (p *Post) Clone() *Post {
	if p == nil {
		return nil
	}
	c := *p
	if p.Version != nil {
		v := *p.Version
		c.Version = &v
	}
	return &c
}

// Int64 returns a pointer to v. Handy for building versions in literals.
func Int64(v int64) *int64 {
	return &v
}
