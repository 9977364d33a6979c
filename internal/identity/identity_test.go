package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPlatform(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/me" {
			http.NotFound(w, r)
			return
		}

		switch r.Header.Get("Authorization") {
		case "Bearer good":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"uid":"pi-123","username":"alice"}`))
		case "Bearer empty":
			w.Write([]byte(`{"username":"nobody"}`))
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	t.Cleanup(srv.Close)

	return srv
}

func TestVerify(t *testing.T) {
	srv := newPlatform(t)
	v := NewPlatformVerifier(srv.URL+"/", time.Second)

	id, err := v.Verify(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, "pi-123", id.UID)
	assert.Equal(t, "alice", id.Username)
}

func TestVerifyRejected(t *testing.T) {
	srv := newPlatform(t)
	v := NewPlatformVerifier(srv.URL, time.Second)

	for _, token := range []string{"bad", "empty", ""} {
		_, err := v.Verify(context.Background(), token)
		require.Error(t, err, token)
		assert.True(t, Error.Has(err), token)
	}
}

func TestVerifyUnreachable(t *testing.T) {
	v := NewPlatformVerifier("http://127.0.0.1:1", 200*time.Millisecond)

	_, err := v.Verify(context.Background(), "good")
	require.Error(t, err)
	assert.True(t, Error.Has(err))
}
