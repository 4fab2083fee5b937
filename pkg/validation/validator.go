package validation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
)

// Error locations.
const (
	LocationBody    = "body"
	LocationPath    = "path"
	LocationQuery   = "query"
	LocationHeader  = "header"
	LocationRequest = "request"
)

const maxValidationBodySize = 10 << 20

// FieldError is one violation found in a request.
type FieldError struct {
	Field    string `json:"field,omitempty"`
	Location string `json:"location"`
	Message  string `json:"message"`
}

func (e *FieldError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s.%s: %s", e.Location, e.Field, e.Message)
	}
	return e.Message
}

// Result is the outcome of validating one request.
type Result struct {
	Valid  bool
	Errors []*FieldError
}

func (r *Result) add(fe *FieldError) {
	r.Valid = false
	r.Errors = append(r.Errors, fe)
}

// Message joins every error into one line.
func (r *Result) Message() string {
	parts := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		parts = append(parts, e.Error())
	}
	return strings.Join(parts, "; ")
}

// Validator validates requests against one OpenAPI document.
type Validator struct {
	doc    *openapi3.T
	router routers.Router
}

// New loads and validates an OpenAPI document and builds its router.
func New(spec []byte) (*Validator, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(spec)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}
	router, err := gorillamux.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("build openapi router: %w", err)
	}
	return &Validator{doc: doc, router: router}, nil
}

// Doc returns the loaded document.
func (v *Validator) Doc() *openapi3.T {
	return v.doc
}

// ValidateRequest validates r. The second result is false when the document
// has no operation for r, in which case the Result is empty and valid.
// The request body is buffered and restored so handlers can read it again.
func (v *Validator) ValidateRequest(r *http.Request) (*Result, bool) {
	result := &Result{Valid: true}

	route, pathParams, err := v.router.FindRoute(r)
	if err != nil {
		return result, false
	}

	if r.Body != nil && r.Body != http.NoBody {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxValidationBodySize))
		if err != nil {
			result.add(&FieldError{Location: LocationBody, Message: "failed to read request body"})
			return result, true
		}
		r.Body = io.NopCloser(bytes.NewReader(body))
		defer func() { r.Body = io.NopCloser(bytes.NewReader(body)) }()
	}

	input := &openapi3filter.RequestValidationInput{
		Request:    r,
		PathParams: pathParams,
		Route:      route,
		Options: &openapi3filter.Options{
			MultiError:         true,
			AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
		},
	}
	if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
		collect(err, result)
	}
	return result, true
}

func collect(err error, result *Result) {
	if multi, ok := err.(openapi3.MultiError); ok {
		for _, e := range multi {
			collect(e, result)
		}
		if result.Valid {
			result.add(&FieldError{Location: LocationRequest, Message: err.Error()})
		}
		return
	}

	if reqErr, ok := err.(*openapi3filter.RequestError); ok {
		fe := &FieldError{Location: LocationRequest, Message: reqErr.Error()}
		switch {
		case reqErr.Parameter != nil:
			fe.Field = reqErr.Parameter.Name
			fe.Location = reqErr.Parameter.In
		case reqErr.RequestBody != nil:
			fe.Location = LocationBody
		}
		if reqErr.Err != nil {
			fe.Message = reqErr.Err.Error()
		}
		var schemaErr *openapi3.SchemaError
		if errors.As(reqErr.Err, &schemaErr) {
			if path := jsonPath(schemaErr.JSONPointer()); path != "" {
				fe.Field = path
			}
			fe.Message = schemaErr.Reason
		}
		result.add(fe)
		return
	}

	result.add(&FieldError{Location: LocationRequest, Message: err.Error()})
}

// jsonPath turns ["title"] into "title" and ["tags","0"] into "tags.0".
func jsonPath(parts []string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ".")
}
