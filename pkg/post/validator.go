package post

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxTitleLength is the longest title a post may carry, in characters.
const MaxTitleLength = 255

// Validate runs the guard checks required before create and update.
// It returns a *ValidationError naming the first offending field.
func Validate(p *Post) error {
	if p == nil {
		return &ValidationError{Message: "post is required"}
	}
	if isBlank(p.Title) {
		return &ValidationError{Field: "title", Message: "must not be blank"}
	}
	if utf8.RuneCountInString(p.Title) > MaxTitleLength {
		return &ValidationError{Field: "title", Message: fmt.Sprintf("must be at most %d characters", MaxTitleLength)}
	}
	if isBlank(p.Body) {
		return &ValidationError{Field: "body", Message: "must not be blank"}
	}
	return nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
