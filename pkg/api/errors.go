// Error mapping for the posts API. Store sentinels are converted into the
// typed errors of package post here, and unexpected failures are logged in
// full but reported to clients with a generic message.

package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/pineda/postd/pkg/httputil"
	"github.com/pineda/postd/pkg/post"
	"github.com/pineda/postd/pkg/store"
)

// Safe error messages for client responses.
const (
	// ErrMsgInternalError is returned for unexpected store failures.
	ErrMsgInternalError = "An internal error occurred"

	// ErrMsgInvalidJSON is returned for unparseable request bodies.
	ErrMsgInvalidJSON = "Invalid JSON in request body"

	// ErrMsgEmptyBody is returned when a body is required but missing.
	ErrMsgEmptyBody = "Request body is required"

	// ErrMsgInvalidID is returned when the path id is not an integer.
	ErrMsgInvalidID = "Post id must be an integer"
)

// storeError maps an error returned by the store for post id into the
// error written to the client.
func storeError(err error, id, version int64) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return &post.NotFoundError{ID: id}
	case errors.Is(err, store.ErrVersionConflict):
		return &post.ConflictError{ID: id, Version: version}
	default:
		return err
	}
}

// writeError writes err as a JSON error body. Errors without a known type
// are logged with operation and reported as internal errors.
func writeError(w http.ResponseWriter, log *slog.Logger, err error, operation string, details ...any) {
	resp := post.ToErrorResponse(err)
	if resp.StatusCode >= http.StatusInternalServerError {
		args := append([]any{"operation", operation, "error", err}, details...)
		log.Error("operation failed", args...)
		resp.Message = ErrMsgInternalError
	}
	httputil.WriteErrorResponse(w, resp)
}
