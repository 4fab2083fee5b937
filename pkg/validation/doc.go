// Package validation checks incoming requests against the postd OpenAPI
// document before they reach a handler.
//
// Path parameters, query parameters and JSON bodies are validated with
// kin-openapi. Requests for paths or methods the document does not describe
// pass through untouched so the router can answer them.
//
//	v, err := validation.New(specBytes)
//	if err != nil {
//	    return err
//	}
//	handler = v.Middleware()(handler)
//
// Blank-field guards are not expressed in the schema; they stay in package
// post so the same rules apply with validation disabled.
package validation
