package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoWithContext_StampsHeaders(t *testing.T) {
	var gotUA, gotID, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotID = r.Header.Get("X-Request-ID")
		gotAccept = r.Header.Get("Accept")
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := NewClient(2*time.Second, "agriwise-test/1.0")
	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	resp, err := c.DoWithContext(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusTeapot, resp.StatusCode)
	assert.JSONEq(t, `{"ok":true}`, string(resp.Body))
	assert.Equal(t, "agriwise-test/1.0", gotUA)
	assert.Equal(t, "application/json", gotAccept)
	assert.Equal(t, resp.RequestID, gotID)
	_, err = uuid.Parse(gotID)
	assert.NoError(t, err)
	assert.Greater(t, resp.Duration, time.Duration(0))
}

func TestDoWithContext_KeepsCallerRequestID(t *testing.T) {
	var gotID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = r.Header.Get("X-Request-ID")
	}))
	defer srv.Close()

	c := NewClientWith(srv.Client(), "")
	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	req.Header.Set("X-Request-ID", "fixed-id")

	resp, err := c.DoWithContext(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", gotID)
	assert.Equal(t, "fixed-id", resp.RequestID)
}

func TestDoWithContext_Cancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(time.Second, "")
	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	_, err := c.DoWithContext(ctx, req)
	assert.ErrorIs(t, err, context.Canceled)
}
