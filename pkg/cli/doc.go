// Package cli implements the postd command line.
//
// Commands:
//
//	postd serve      run the HTTP API
//	postd migrate    create the post table in Postgres
//	postd health     check a running server
//	postd posts ...  list, get, create, update and delete posts
//	postd version    print build information
//
// Every flag can also be set through a POSTD_ environment variable, e.g.
// POSTD_LOG_LEVEL=debug for --log-level. .env and .env.local in the working
// directory are loaded first.
package cli
