package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/pineda/postd/pkg/httputil"
	"github.com/pineda/postd/pkg/logging"
	"github.com/pineda/postd/pkg/post"
)

// handleListPosts returns every post, or only the exact title match when the
// title query parameter is present.
func (a *API) handleListPosts(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context(), a.log)
	query := r.URL.Query()

	if query.Has("title") {
		p, ok, err := a.store.FindByTitle(r.Context(), query.Get("title"))
		if err != nil {
			writeError(w, log, err, "find posts by title")
			return
		}
		posts := []*post.Post{}
		if ok {
			posts = append(posts, p)
		}
		httputil.WriteOK(w, posts)
		return
	}

	posts, err := a.store.FindAll(r.Context())
	if err != nil {
		writeError(w, log, err, "list posts")
		return
	}
	if posts == nil {
		posts = []*post.Post{}
	}
	httputil.WriteOK(w, posts)
}

func (a *API) handleGetPost(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context(), a.log)

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	p, found, err := a.store.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, log, err, "get post", "id", id)
		return
	}
	if !found {
		writeError(w, log, &post.NotFoundError{ID: id}, "get post")
		return
	}
	httputil.WriteOK(w, p)
}

// handleCreatePost stores a new post. Client-supplied id and version are
// ignored; the store assigns both.
func (a *API) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context(), a.log)

	var req post.Post
	if !a.decode(w, r, &req) {
		return
	}
	if err := post.Validate(&req); err != nil {
		writeError(w, log, err, "create post")
		return
	}

	req.ID = 0
	req.Version = nil
	saved, err := a.store.Save(r.Context(), &req)
	if err != nil {
		writeError(w, log, err, "create post")
		return
	}

	log.Info("post created", "id", saved.ID)
	httputil.WriteCreated(w, "/api/posts/"+strconv.FormatInt(saved.ID, 10), saved)
}

// handleUpdatePost replaces the post at the path id. The request version
// must match the stored one; userId 0 keeps the stored owner.
func (a *API) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context(), a.log)

	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req post.Post
	if !a.decode(w, r, &req) {
		return
	}
	if err := post.Validate(&req); err != nil {
		writeError(w, log, err, "update post", "id", id)
		return
	}

	existing, found, err := a.store.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, log, err, "update post", "id", id)
		return
	}
	if !found {
		writeError(w, log, &post.NotFoundError{ID: id}, "update post")
		return
	}

	next := &post.Post{
		ID:      id,
		UserID:  req.UserID,
		Title:   req.Title,
		Body:    req.Body,
		Version: req.Version,
	}
	if next.UserID == 0 {
		next.UserID = existing.UserID
	}

	saved, err := a.store.Save(r.Context(), next)
	if err != nil {
		writeError(w, log, storeError(err, id, next.VersionOrZero()), "update post", "id", id)
		return
	}

	log.Info("post updated", "id", id, "version", saved.VersionOrZero())
	httputil.WriteOK(w, saved)
}

func (a *API) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := a.store.DeleteByID(r.Context(), id); err != nil {
		writeError(w, logging.FromContext(r.Context(), a.log), err, "delete post", "id", id)
		return
	}
	httputil.WriteNoContent(w)
}

// pathID parses the {id} path value. It writes 400 and returns false when the
// value is not an integer. Zero and negative ids are passed on; no post has
// them, so lookups report 404 and deletes succeed.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		httputil.WriteErrorResponse(w, &post.ErrorResponse{
			Error:      "invalid_id",
			Message:    ErrMsgInvalidID,
			Field:      "id",
			StatusCode: http.StatusBadRequest,
		})
		return 0, false
	}
	return id, true
}

func (a *API) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	err := httputil.DecodeJSON(r, v, a.maxBody)
	if err == nil {
		return true
	}
	logging.FromContext(r.Context(), a.log).Debug("JSON parsing failed", "error", err)

	msg := ErrMsgInvalidJSON
	if errors.Is(err, httputil.ErrEmptyBody) {
		msg = ErrMsgEmptyBody
	}
	httputil.WriteBadRequest(w, "invalid_json", msg)
	return false
}
