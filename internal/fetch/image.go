package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxImageBytes caps a single image download; anything larger is aborted
// mid-stream rather than buffered.
const maxImageBytes = 20 * 1024 * 1024

// ImageConfig configures the image downloader.
type ImageConfig struct {
	UserAgent string
	Timeout   time.Duration
}

// HTTPImage downloads candidate images with a plain HTTP client.
type HTTPImage struct {
	client    *http.Client
	userAgent string
}

// NewHTTPImage constructs an image downloader.
func NewHTTPImage(cfg ImageConfig) *HTTPImage {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPImage{
		client:    &http.Client{Timeout: timeout},
		userAgent: cfg.UserAgent,
	}
}

// Download fetches one image URL and returns its bytes and Content-Type.
func (d *HTTPImage) Download(ctx context.Context, rawURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build image request: %w", err)
	}
	if d.userAgent != "" {
		req.Header.Set("User-Agent", d.userAgent)
	}
	req.Header.Set("Accept", "image/avif,image/webp,image/png,image/*,*/*;q=0.8")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("download image %s: status %d", rawURL, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("read image body: %w", err)
	}
	if len(data) > maxImageBytes {
		return nil, "", fmt.Errorf("image %s exceeds %d byte cap", rawURL, maxImageBytes)
	}

	return data, resp.Header.Get("Content-Type"), nil
}
