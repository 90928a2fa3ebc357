package firebase

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/presencelab/beacon-bridge/internal/domain/repository"
)

// recordedRequest captures one request the fake RTDB saw.
type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Body   []byte
}

func newFakeRTDB(t *testing.T, status int, response string) (*Store, *[]recordedRequest) {
	t.Helper()

	var mu sync.Mutex
	var requests []recordedRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		requests = append(requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Body:   body,
		})
		mu.Unlock()
		w.WriteHeader(status)
		io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)

	return NewStore(srv.URL, "", time.Second), &requests
}

func TestStore_SetUsesPut(t *testing.T) {
	store, requests := newFakeRTDB(t, http.StatusOK, `{"on":true}`)

	err := store.Set(context.Background(), "/beacon", map[string]any{"on": true})
	require.NoError(t, err)

	require.Len(t, *requests, 1)
	req := (*requests)[0]
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "/beacon.json", req.Path)
	assert.JSONEq(t, `{"on":true}`, string(req.Body))
}

func TestStore_PushUsesPostAndReturnsServerKey(t *testing.T) {
	store, requests := newFakeRTDB(t, http.StatusOK, `{"name":"-Nabc123"}`)

	key, err := store.Push(context.Background(), "/logs", map[string]any{"body": "hi"})
	require.NoError(t, err)
	assert.Equal(t, "-Nabc123", key)

	require.Len(t, *requests, 1)
	assert.Equal(t, http.MethodPost, (*requests)[0].Method)
	assert.Equal(t, "/logs.json", (*requests)[0].Path)
}

func TestStore_Get(t *testing.T) {
	store, _ := newFakeRTDB(t, http.StatusOK, `{"on":true,"expiresAt":1700000000000}`)

	var doc map[string]any
	err := store.Get(context.Background(), "/beacon", &doc)
	require.NoError(t, err)
	assert.Equal(t, true, doc["on"])
}

func TestStore_GetNullIsNotFound(t *testing.T) {
	store, _ := newFakeRTDB(t, http.StatusOK, `null`)

	var doc map[string]any
	err := store.Get(context.Background(), "/beacon", &doc)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestStore_NonOKStatusIsError(t *testing.T) {
	store, _ := newFakeRTDB(t, http.StatusUnauthorized, `{"error":"Permission denied"}`)

	err := store.Set(context.Background(), "/beacon", map[string]any{"on": true})
	assert.Error(t, err)
}

func TestStore_AuthTokenAppended(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	store := NewStore(srv.URL, "tok123", time.Second)
	require.NoError(t, store.Set(context.Background(), "/beacon", map[string]any{}))
	assert.Equal(t, "auth=tok123", gotQuery)
}

func TestStore_BreakerOpensAfterRepeatedFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	store := NewStore(srv.URL, "", time.Second)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		assert.Error(t, store.Set(ctx, "/beacon", map[string]any{}))
	}

	// The breaker is now open; calls fail fast without touching the server.
	err := store.Set(ctx, "/beacon", map[string]any{})
	require.Error(t, err)
	assert.ErrorContains(t, err, "breaker open")
}

func TestStore_PushDecodesMalformedResponse(t *testing.T) {
	store, _ := newFakeRTDB(t, http.StatusOK, `not json`)

	_, err := store.Push(context.Background(), "/logs", map[string]any{})
	assert.Error(t, err)
}
