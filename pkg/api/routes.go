package api

import "net/http"

func (a *API) registerRoutes(mux *http.ServeMux) {
	// Posts
	mux.HandleFunc("GET /api/posts", a.handleListPosts)
	mux.HandleFunc("POST /api/posts", a.handleCreatePost)
	mux.HandleFunc("GET /api/posts/{id}", a.handleGetPost)
	mux.HandleFunc("PUT /api/posts/{id}", a.handleUpdatePost)
	mux.HandleFunc("DELETE /api/posts/{id}", a.handleDeletePost)

	// Meta
	mux.HandleFunc("GET /api/openapi.yaml", handleOpenAPI)
	mux.HandleFunc("GET /health", a.handleHealth)
	mux.Handle("GET /metrics", a.metrics.Handler())
}
