package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/eventra/service-event-creation/internal/domain/draft"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordedRequest struct {
	Method      string
	Path        string
	ContentType string
	Body        []byte
}

func newFakeS3(t *testing.T, status int) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var (
		mu       sync.Mutex
		requests []recordedRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		requests = append(requests, recordedRequest{
			Method:      r.Method,
			Path:        r.URL.Path,
			ContentType: r.Header.Get("Content-Type"),
			Body:        body,
		})
		mu.Unlock()

		if status != http.StatusOK {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><Error><Code>AccessDenied</Code><Message>Access Denied</Message></Error>`))
			return
		}
		w.Header().Set("ETag", `"abc"`)
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	return srv, &requests
}

func newTestStore(t *testing.T, endpoint string) *S3ImageStore {
	t.Helper()
	store, err := NewS3ImageStore(S3Config{
		Bucket:          "event-images",
		Region:          "ap-south-1",
		Endpoint:        endpoint,
		AccessKeyID:     "test",
		SecretAccessKey: "test",
	}, zap.NewNop())
	require.NoError(t, err)
	return store
}

func TestS3ImageStore_Put(t *testing.T) {
	srv, requests := newFakeS3(t, http.StatusOK)
	store := newTestStore(t, srv.URL)

	img := draft.Image{Filename: "poster.png", ContentType: "image/png", Data: []byte("\x89PNG fake")}
	require.NoError(t, store.Put(context.Background(), "events/e1/poster.png", img))

	require.Len(t, *requests, 1)
	got := (*requests)[0]
	assert.Equal(t, http.MethodPut, got.Method)
	assert.Equal(t, "/event-images/events/e1/poster.png", got.Path)
	assert.Equal(t, "image/png", got.ContentType)
	assert.Equal(t, img.Data, got.Body)
}

func TestS3ImageStore_PutDenied(t *testing.T) {
	srv, _ := newFakeS3(t, http.StatusForbidden)
	store := newTestStore(t, srv.URL)

	err := store.Put(context.Background(), "events/e1/poster.png", draft.Image{Data: []byte("x")})
	assert.Error(t, err)
}

func TestS3ImageStore_Delete(t *testing.T) {
	srv, requests := newFakeS3(t, http.StatusOK)
	store := newTestStore(t, srv.URL)

	require.NoError(t, store.Delete(context.Background(), "events/e1/poster.png"))
	require.Len(t, *requests, 1)
	assert.Equal(t, http.MethodDelete, (*requests)[0].Method)
}

func TestNewS3ImageStore_RequiresBucket(t *testing.T) {
	_, err := NewS3ImageStore(S3Config{}, zap.NewNop())
	assert.Error(t, err)
}
