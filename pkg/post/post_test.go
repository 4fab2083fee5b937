package post

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		post      *Post
		wantField string
	}{
		{"valid", &Post{UserID: 1, Title: "Hello", Body: "World"}, ""},
		{"empty title", &Post{Title: "", Body: "World"}, "title"},
		{"blank title", &Post{Title: "   ", Body: "World"}, "title"},
		{"empty body", &Post{Title: "Hello", Body: ""}, "body"},
		{"tab body", &Post{Title: "Hello", Body: "\t\n"}, "body"},
		{"both empty reports title", &Post{}, "title"},
		{"title at limit", &Post{Title: strings.Repeat("é", MaxTitleLength), Body: "World"}, ""},
		{"title too long", &Post{Title: strings.Repeat("x", MaxTitleLength+1), Body: "World"}, "title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := Validate(tt.post)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantField, verr.Field)
			assert.Equal(t, http.StatusBadRequest, verr.StatusCode())
		})
	}
}

func TestValidate_Nil(t *testing.T) {
	t.Parallel()
	var verr *ValidationError
	require.ErrorAs(t, Validate(nil), &verr)
	assert.Empty(t, verr.Field)
}

func TestPost_Clone(t *testing.T) {
	t.Parallel()

	orig := &Post{ID: 1, UserID: 2, Title: "t", Body: "b", Version: Int64(3)}
	c := orig.Clone()
	require.Equal(t, orig, c)

	*c.Version = 4
	assert.Equal(t, int64(3), *orig.Version)

	var nilPost *Post
	assert.Nil(t, nilPost.Clone())
}

func TestPost_VersionOrZero(t *testing.T) {
	t.Parallel()
	assert.Equal(t, int64(0), (&Post{}).VersionOrZero())
	assert.Equal(t, int64(7), (&Post{Version: Int64(7)}).VersionOrZero())
}

func TestToErrorResponse(t *testing.T) {
	t.Parallel()

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		resp := ToErrorResponse(&NotFoundError{ID: 999})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "not_found", resp.Error)
		assert.Contains(t, resp.Message, "999")
	})

	t.Run("wrapped validation", func(t *testing.T) {
		t.Parallel()
		err := fmt.Errorf("create: %w", &ValidationError{Field: "body", Message: "must not be blank"})
		resp := ToErrorResponse(err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "body", resp.Field)
	})

	t.Run("conflict", func(t *testing.T) {
		t.Parallel()
		resp := ToErrorResponse(&ConflictError{ID: 1, Version: 0})
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "version_conflict", resp.Error)
	})

	t.Run("unknown errors are not leaked", func(t *testing.T) {
		t.Parallel()
		resp := ToErrorResponse(errors.New("pq: password authentication failed"))
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.NotContains(t, resp.Message, "password")
	})
}
