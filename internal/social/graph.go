// Package social publishes listings to a Facebook page and an Instagram
// business account through the Graph API.
package social

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"artmarket/internal/config"
)

var ErrNotConfigured = errors.New("graph api network not configured")

// APIError is an error body returned by the Graph API.
type APIError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"message"`
	Type       string `json:"type"`
	Code       int    `json:"code"`
	TraceID    string `json:"fbtrace_id"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("graph api %d (%s, code %d): %s", e.StatusCode, e.Type, e.Code, e.Message)
}

// Client calls the Graph API with a page access token.
type Client struct {
	http      *http.Client
	baseURL   string
	version   string
	token     string
	pageID    string
	igAccount string
}

// NewClient builds a Client whose requests are traced with otelhttp.
func NewClient(cfg config.GraphConfig) *Client {
	return &Client{
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		version:   cfg.Version,
		token:     cfg.PageAccessToken,
		pageID:    cfg.PageID,
		igAccount: cfg.InstagramAccountID,
	}
}

func (c *Client) FacebookEnabled() bool  { return c.token != "" && c.pageID != "" }
func (c *Client) InstagramEnabled() bool { return c.token != "" && c.igAccount != "" }

// PostPhoto publishes a photo post on the page and returns the post ID.
func (c *Client) PostPhoto(ctx context.Context, imageURL, caption string) (string, error) {
	if !c.FacebookEnabled() {
		return "", ErrNotConfigured
	}
	var out struct {
		ID     string `json:"id"`
		PostID string `json:"post_id"`
	}
	err := c.post(ctx, c.pageID+"/photos", url.Values{
		"url":     {imageURL},
		"caption": {caption},
	}, &out)
	if err != nil {
		return "", err
	}
	if out.PostID != "" {
		return out.PostID, nil
	}
	return out.ID, nil
}

// PublishInstagram creates a media container for the image and publishes it.
func (c *Client) PublishInstagram(ctx context.Context, imageURL, caption string) (string, error) {
	if !c.InstagramEnabled() {
		return "", ErrNotConfigured
	}
	var container struct {
		ID string `json:"id"`
	}
	if err := c.post(ctx, c.igAccount+"/media", url.Values{
		"image_url": {imageURL},
		"caption":   {caption},
	}, &container); err != nil {
		return "", fmt.Errorf("create media container: %w", err)
	}

	var published struct {
		ID string `json:"id"`
	}
	if err := c.post(ctx, c.igAccount+"/media_publish", url.Values{
		"creation_id": {container.ID},
	}, &published); err != nil {
		return "", fmt.Errorf("publish media %s: %w", container.ID, err)
	}
	return published.ID, nil
}

func (c *Client) post(ctx context.Context, path string, form url.Values, out any) error {
	form.Set("access_token", c.token)
	endpoint := c.baseURL + "/" + c.version + "/" + path

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read graph response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var envelope struct {
			Error *APIError `json:"error"`
		}
		if json.Unmarshal(body, &envelope) == nil && envelope.Error != nil {
			envelope.Error.StatusCode = resp.StatusCode
			return envelope.Error
		}
		return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode graph response: %w", err)
	}
	return nil
}
