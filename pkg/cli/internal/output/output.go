// Package output provides common output formatting utilities.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/pineda/postd/pkg/post"
)

// JSON writes indented JSON to w.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Table creates an aligned table writer for w.
// Remember to call Flush() when done writing.
func Table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// Warn prints a warning message to w.
func Warn(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "Warning: "+format+"\n", args...)
}

// Posts writes posts as a table.
func Posts(w io.Writer, posts []*post.Post) error {
	tw := Table(w)
	fmt.Fprintln(tw, "ID\tUSER\tVERSION\tTITLE")
	for _, p := range posts {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\n", p.ID, p.UserID, Version(p.Version), p.Title)
	}
	return tw.Flush()
}

// Post writes one post as key/value lines.
func Post(w io.Writer, p *post.Post) error {
	tw := Table(w)
	fmt.Fprintf(tw, "ID:\t%d\n", p.ID)
	fmt.Fprintf(tw, "User:\t%d\n", p.UserID)
	fmt.Fprintf(tw, "Version:\t%s\n", Version(p.Version))
	fmt.Fprintf(tw, "Title:\t%s\n", p.Title)
	fmt.Fprintf(tw, "Body:\t%s\n", p.Body)
	return tw.Flush()
}

// Version renders a nullable version.
func Version(v *int64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatInt(*v, 10)
}
