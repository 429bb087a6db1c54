package social

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"artmarket/internal/config"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(config.GraphConfig{
		BaseURL:            srv.URL + "/",
		Version:            "v19.0",
		PageID:             "page1",
		PageAccessToken:    "tok",
		InstagramAccountID: "ig1",
		Timeout:            5 * time.Second,
	})
}

func TestPostPhoto(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v19.0/page1/photos", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "https://cdn.example.com/a.jpg", r.PostForm.Get("url"))
		assert.Equal(t, "New work", r.PostForm.Get("caption"))
		assert.Equal(t, "tok", r.PostForm.Get("access_token"))
		_, _ = w.Write([]byte(`{"id":"photo1","post_id":"page1_post1"}`))
	})

	id, err := c.PostPhoto(context.Background(), "https://cdn.example.com/a.jpg", "New work")
	require.NoError(t, err)
	assert.Equal(t, "page1_post1", id)
}

func TestPublishInstagram(t *testing.T) {
	var calls []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.URL.Path)
		require.NoError(t, r.ParseForm())
		switch r.URL.Path {
		case "/v19.0/ig1/media":
			assert.Equal(t, "https://cdn.example.com/a.jpg", r.PostForm.Get("image_url"))
			_, _ = w.Write([]byte(`{"id":"container9"}`))
		case "/v19.0/ig1/media_publish":
			assert.Equal(t, "container9", r.PostForm.Get("creation_id"))
			_, _ = w.Write([]byte(`{"id":"media42"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	id, err := c.PublishInstagram(context.Background(), "https://cdn.example.com/a.jpg", "New work")
	require.NoError(t, err)
	assert.Equal(t, "media42", id)
	assert.Equal(t, []string{"/v19.0/ig1/media", "/v19.0/ig1/media_publish"}, calls)
}

func TestGraphErrorBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid OAuth access token.","type":"OAuthException","code":190,"fbtrace_id":"Abc"}}`))
	})

	_, err := c.PostPhoto(context.Background(), "https://cdn.example.com/a.jpg", "x")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, 190, apiErr.Code)
	assert.Equal(t, "OAuthException", apiErr.Type)
	assert.Equal(t, "graph api 400 (OAuthException, code 190): Invalid OAuth access token.", apiErr.Error())
}

func TestGraphNonJSONError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})

	_, err := c.PublishInstagram(context.Background(), "https://cdn.example.com/a.jpg", "x")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "bad gateway", apiErr.Message)
}

func TestNotConfigured(t *testing.T) {
	c := NewClient(config.GraphConfig{PageAccessToken: "tok"})
	assert.False(t, c.FacebookEnabled())
	assert.False(t, c.InstagramEnabled())

	_, err := c.PostPhoto(context.Background(), "u", "c")
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = c.PublishInstagram(context.Background(), "u", "c")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
