package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_EmptySecret(t *testing.T) {
	t.Parallel()

	a := New("")
	assert.Nil(t, a)

	_, err := a.Issue("cli", time.Minute)
	assert.Error(t, err)
}

func TestIssueVerify(t *testing.T) {
	t.Parallel()

	a := New("s3cret")
	tok, err := a.Issue("alice", time.Hour)
	require.NoError(t, err)

	claims, err := a.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, DefaultIssuer, claims.Issuer)
}

func TestVerify_Rejects(t *testing.T) {
	t.Parallel()

	a := New("s3cret")
	other, err := New("different").Issue("mallory", time.Hour)
	require.NoError(t, err)

	expiredIssuer := New("s3cret")
	expiredIssuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := expiredIssuer.Issue("bob", time.Hour)
	require.NoError(t, err)

	wrongIss, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Issuer: "elsewhere"}).
		SignedString([]byte("s3cret"))
	require.NoError(t, err)

	tests := []struct {
		name string
		raw  string
		want error
	}{
		{"empty", "", ErrMissingToken},
		{"garbage", "not.a.jwt", ErrInvalidToken},
		{"wrong secret", other, ErrInvalidToken},
		{"expired", expired, ErrInvalidToken},
		{"wrong issuer", wrongIss, ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := a.Verify(tt.raw)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestBearerToken(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodPost, "/api/posts", nil)
	assert.Empty(t, BearerToken(r))

	r.Header.Set("Authorization", "Basic abc")
	assert.Empty(t, BearerToken(r))

	r.Header.Set("Authorization", "bearer abc.def")
	assert.Equal(t, "abc.def", BearerToken(r))
}

func TestRequireWrites(t *testing.T) {
	t.Parallel()

	a := New("s3cret")
	tok, err := a.Issue("cli", time.Hour)
	require.NoError(t, err)

	h := RequireWrites(a)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name   string
		method string
		token  string
		want   int
	}{
		{"read without token", http.MethodGet, "", http.StatusOK},
		{"write without token", http.MethodPost, "", http.StatusUnauthorized},
		{"write with bad token", http.MethodDelete, "nope", http.StatusUnauthorized},
		{"write with token", http.MethodPut, tok, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest(tt.method, "/api/posts/1", nil)
			if tt.token != "" {
				r.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, r)

			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusUnauthorized {
				assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "Bearer")
				assert.Contains(t, rec.Body.String(), `"unauthorized"`)
			}
		})
	}
}

func TestRequireWrites_Disabled(t *testing.T) {
	t.Parallel()

	h := RequireWrites(nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/posts/1", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
}
