package validation

import (
	"net/http"

	"github.com/pineda/postd/pkg/httputil"
	"github.com/pineda/postd/pkg/post"
)

// Middleware rejects requests that violate the document with 400
// validation_error. A nil Validator passes everything through.
func (v *Validator) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if v == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			result, matched := v.ValidateRequest(r)
			if !matched || result.Valid {
				next.ServeHTTP(w, r)
				return
			}

			resp := &post.ErrorResponse{
				Error:      "validation_error",
				Message:    result.Message(),
				Hint:       "Check the request against GET /api/openapi.yaml.",
				StatusCode: http.StatusBadRequest,
			}
			if len(result.Errors) > 0 {
				resp.Field = result.Errors[0].Field
			}
			httputil.WriteErrorResponse(w, resp)
		})
	}
}
