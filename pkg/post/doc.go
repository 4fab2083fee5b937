// Package post defines the Post entity served by postd.
//
// A Post is a user-authored text record with an integer id, an opaque owner
// reference, a title, a body and an optimistic-concurrency version:
//
//	{"id": 1, "userId": 1, "title": "Hello, World!", "body": "...", "version": null}
//
// The package also carries the guard checks run before any store mutation
// (see Validate) and the typed errors the HTTP layer maps to status codes:
//
//   - NotFoundError: no post exists for the requested id (404)
//   - ValidationError: a required field is blank (400)
//   - ConflictError: an update carried a stale version (409)
package post
