// Package imagecdn uploads images to an external image host and returns
// their public links.
package imagecdn

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/Tantanok221/douren/internal/apperror"
)

const (
	httpTimeout = 30 * time.Second

	// MaxUploadSize caps accepted image payloads at 10 MB.
	MaxUploadSize = 10 << 20
)

// Client talks to the image host's upload endpoint.
type Client struct {
	endpoint   string
	token      string
	httpClient *http.Client
}

// New creates an image host client. The token is sent as a Bearer
// credential on every upload.
func New(endpoint, token string) *Client {
	return &Client{
		endpoint:   endpoint,
		token:      token,
		httpClient: &http.Client{Timeout: httpTimeout},
	}
}

// Upload sends the image as a multipart form and returns the hosted link.
func (c *Client) Upload(ctx context.Context, filename string, image io.Reader) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return "", fmt.Errorf("creating form file: %w", err)
	}
	if _, err := io.Copy(part, io.LimitReader(image, MaxUploadSize)); err != nil {
		return "", fmt.Errorf("reading image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("closing multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &buf)
	if err != nil {
		return "", fmt.Errorf("building upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apperror.Upstream("image host unreachable", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", apperror.Upstream("reading image host response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", apperror.Upstream(
			fmt.Sprintf("image host returned status %d", resp.StatusCode), nil)
	}

	var result struct {
		Data struct {
			Link string `json:"link"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", apperror.Upstream("decoding image host response", err)
	}
	if result.Data.Link == "" {
		return "", apperror.Upstream("image host returned no link", nil)
	}

	return result.Data.Link, nil
}
