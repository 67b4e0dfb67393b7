package images

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// Uploader pushes an image to the third-party host and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, filename string, data io.Reader) (string, error)
}

// HostUploader posts multipart form data to an image host endpoint that
// answers with {"data":{"url":"..."}}.
type HostUploader struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

func NewHostUploader(endpoint, apiKey string) *HostUploader {
	return &HostUploader{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (u *HostUploader) Upload(ctx context.Context, filename string, data io.Reader) (string, error) {
	if u.endpoint == "" {
		return "", fmt.Errorf("image host not configured")
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	if u.apiKey != "" {
		if err := form.WriteField("key", u.apiKey); err != nil {
			return "", fmt.Errorf("build upload form: %w", err)
		}
	}
	part, err := form.CreateFormFile("image", filename)
	if err != nil {
		return "", fmt.Errorf("build upload form: %w", err)
	}
	if _, err := io.Copy(part, data); err != nil {
		return "", fmt.Errorf("copy image data: %w", err)
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("finish upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := u.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("image host returned status %d", resp.StatusCode)
	}

	var parsed struct {
		Data struct {
			URL string `json:"url"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode image host response: %w", err)
	}
	if parsed.Data.URL == "" {
		return "", fmt.Errorf("image host response missing url")
	}
	return parsed.Data.URL, nil
}
