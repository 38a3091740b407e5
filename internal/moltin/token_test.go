package moltin

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newAuthServer serves the token endpoint, counting grant requests and
// handing out tokens with the given lifetime.
func newAuthServer(t *testing.T, expiresIn int64, requests *int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/oauth/access_token", r.URL.Path)

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostFormValue("grant_type"))
		assert.Equal(t, "test-id", r.PostFormValue("client_id"))
		assert.Equal(t, "test-secret", r.PostFormValue("client_secret"))

		*requests++
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token": "token-%d", "expires_in": %d}`, *requests, expiresIn)
	}))
}

func TestTokenManager_ReusesUnexpiredToken(t *testing.T) {
	requests := 0
	server := newAuthServer(t, 3600, &requests)
	defer server.Close()

	tm := newTokenManager(server.Client(), server.URL, "test-id", "test-secret")

	first, err := tm.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token-1", first)

	second, err := tm.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)

	assert.Equal(t, 1, requests, "second call within the token lifetime must not re-authenticate")
}

func TestTokenManager_ReacquiresExpiredToken(t *testing.T) {
	requests := 0
	server := newAuthServer(t, 0, &requests)
	defer server.Close()

	tm := newTokenManager(server.Client(), server.URL, "test-id", "test-secret")

	for i := 0; i < 3; i++ {
		_, err := tm.Token(context.Background())
		require.NoError(t, err)
	}

	assert.Equal(t, 3, requests, "a token with expires_in=0 must never be reused")
}

func TestTokenManager_AuthFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	tm := newTokenManager(server.Client(), server.URL, "bad-id", "bad-secret")

	_, err := tm.Token(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestTokenManager_MalformedPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	tm := newTokenManager(server.Client(), server.URL, "test-id", "test-secret")

	_, err := tm.Token(context.Background())
	assert.Error(t, err)
}

func TestTokenManager_EmptyToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"expires_in": 3600}`))
	}))
	defer server.Close()

	tm := newTokenManager(server.Client(), server.URL, "test-id", "test-secret")

	_, err := tm.Token(context.Background())
	assert.Error(t, err)
}
