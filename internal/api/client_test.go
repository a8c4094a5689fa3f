package api

import (
	"context"
	"encoding/json/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cossomoj/booksmood/internal/errors"
	"github.com/Cossomoj/booksmood/internal/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Format: "json", Level: 8}) // above error, silent
}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, testLogger().Logger, WithRateLimit(1000, 1000))
}

func TestClient_AttachesBearerToken(t *testing.T) {
	var gotAuth, gotDevice, gotRequestID string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotDevice = r.Header.Get("X-Device-Id")
		gotRequestID = r.Header.Get("X-Request-Id")
		_, _ = w.Write([]byte(`[]`))
	}))
	client.deviceID = "dev-1"
	client.SetToken("tok123")

	_, err := client.Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok123", gotAuth)
	assert.Equal(t, "dev-1", gotDevice)
	assert.True(t, strings.HasPrefix(gotRequestID, "req-"), "got %q", gotRequestID)
}

func TestClient_AuthEndpointsOmitBearer(t *testing.T) {
	var gotAuth string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"access_token":"fresh","user":{"id":7}}`))
	}))
	client.SetToken("stale")

	result, err := client.TestAuth(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
	assert.Equal(t, "fresh", result.AccessToken)
	assert.Equal(t, int64(7), result.User.ID)
}

func TestClient_StatusCodeMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   *errors.Error
	}{
		{"not found", http.StatusNotFound, errors.ErrNotFound},
		{"unauthorized", http.StatusUnauthorized, errors.ErrUnauthorized},
		{"forbidden", http.StatusForbidden, errors.ErrForbidden},
		{"bad request", http.StatusBadRequest, errors.ErrValidation},
		{"server error", http.StatusInternalServerError, errors.ErrUnavailable},
		{"bad gateway", http.StatusBadGateway, errors.ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))

			_, err := client.Book(context.Background(), 1)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

type fakeReauth struct {
	calls int
	token string
	err   error
}

func (f *fakeReauth) Reauthorize(context.Context) (string, error) {
	f.calls++
	return f.token, f.err
}

func TestClient_RetriesOnceAfter401(t *testing.T) {
	var requests int
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"id":1,"title":"Метро","author":"Глуховский","duration_seconds":3600}`))
	}))
	client.SetToken("expired")

	reauth := &fakeReauth{token: "fresh"}
	client.SetReauthorizer(reauth)

	book, err := client.Book(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Метро", book.Title)
	assert.Equal(t, 1, reauth.calls)
	assert.Equal(t, 2, requests)
	assert.Equal(t, "fresh", client.Token())
}

func TestClient_SecondUnauthorizedIsTerminal(t *testing.T) {
	var requests int
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	client.SetToken("expired")

	reauth := &fakeReauth{token: "still-bad"}
	client.SetReauthorizer(reauth)

	_, err := client.Book(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnauthorized))
	assert.Equal(t, 1, reauth.calls, "exactly one re-auth cycle")
	assert.Equal(t, 2, requests, "exactly one retry")
}

func TestClient_ReauthFailureIsTerminal(t *testing.T) {
	var requests int
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests++
		w.WriteHeader(http.StatusUnauthorized)
	}))

	reauth := &fakeReauth{err: errors.Unauthorized("no identity")}
	client.SetReauthorizer(reauth)

	_, err := client.Book(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnauthorized))
	assert.Equal(t, 1, requests, "no retry without a fresh token")
}

func TestClient_No401RetryOnAuthEndpoints(t *testing.T) {
	var requests int
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	client.SetReauthorizer(&fakeReauth{token: "x"})

	_, err := client.TelegramAuth(context.Background(), "bad-init-data")
	require.Error(t, err)
	assert.Equal(t, 1, requests)
}

func TestClient_Books_Query(t *testing.T) {
	var gotQuery map[string][]string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_ = json.MarshalWrite(w, map[string]any{"books": []any{}, "total": 0})
	}))

	_, err := client.Books(context.Background(), 3, 20, 40)
	require.NoError(t, err)
	assert.Equal(t, []string{"20"}, gotQuery["limit"])
	assert.Equal(t, []string{"40"}, gotQuery["offset"])
	assert.Equal(t, []string{"3"}, gotQuery["category_id"])

	// Category 0 means unfiltered.
	_, err = client.Books(context.Background(), 0, 20, 0)
	require.NoError(t, err)
	_, ok := gotQuery["category_id"]
	assert.False(t, ok)
}

func TestClient_PushProgressBody(t *testing.T) {
	var got map[string]int
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.UnmarshalRead(r.Body, &got))
		_, _ = w.Write([]byte(`{"status":"success"}`))
	}))

	err := client.PushProgress(context.Background(), 9, 120, 3600)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"position": 120, "duration": 3600}, got)
}

func TestClient_PushProgressRejectsNegativePosition(t *testing.T) {
	var calls int
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))

	err := client.PushProgress(context.Background(), 9, -5, 3600)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrValidation))
	assert.Equal(t, 0, calls, "invalid payloads never reach the backend")
}

func TestClient_AddBookmarkRejectsEmptyTitle(t *testing.T) {
	var calls int
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))

	_, err := client.AddBookmark(context.Background(), 9, 120, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrValidation))
	assert.Equal(t, 0, calls)
}

func TestClient_AudioURL(t *testing.T) {
	client := New("http://api.local/", testLogger().Logger)

	assert.Equal(t, "http://api.local/api/books/5/audio", client.AudioURL(5))

	client.SetToken("t k")
	assert.Equal(t, "http://api.local/api/books/5/audio?token=t+k", client.AudioURL(5))
}
