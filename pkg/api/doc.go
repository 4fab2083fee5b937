// Package api serves the postd REST API.
//
// Routes:
//
//	GET    /api/posts           list posts, or ?title= for an exact match
//	POST   /api/posts           create a post
//	GET    /api/posts/{id}      get one post
//	PUT    /api/posts/{id}      replace a post (optimistic version check)
//	DELETE /api/posts/{id}      delete a post (idempotent)
//	GET    /api/openapi.yaml    the OpenAPI document
//	GET    /health              liveness
//	GET    /metrics             Prometheus metrics
//
// Errors are written as {"error","message","field","hint"} with the status
// taken from the typed errors in package post.
package api
