package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/anvaya-ai/anvaya/internal/domain"
)

// HTTPClient hands files to the external file-ingestion service over
// multipart POST and expects a {name, uri} reply.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    baseURL,
		httpClient: &http.Client{},
	}
}

type ingestResponse struct {
	Name  string `json:"name"`
	URI   string `json:"uri"`
	Error string `json:"error,omitempty"`
}

func (c *HTTPClient) Ingest(ctx context.Context, filename, contentType string, r io.Reader) (domain.FileRef, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		part, err := mw.CreateFormFile("file", filename)
		if err != nil {
			_ = pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, r); err != nil {
			_ = pw.CloseWithError(err)
			return
		}
		_ = pw.CloseWithError(mw.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, pr)
	if err != nil {
		return domain.FileRef{}, fmt.Errorf("create ingest request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.FileRef{}, fmt.Errorf("ingest request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.FileRef{}, fmt.Errorf("read ingest response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return domain.FileRef{}, fmt.Errorf("ingest service returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var result ingestResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return domain.FileRef{}, fmt.Errorf("unmarshal ingest response: %w", err)
	}
	if result.Error != "" {
		return domain.FileRef{}, fmt.Errorf("ingest service error: %s", result.Error)
	}
	if result.URI == "" {
		return domain.FileRef{}, fmt.Errorf("ingest service returned no uri")
	}

	name := result.Name
	if name == "" {
		name = filename
	}
	return domain.FileRef{Name: name, URI: result.URI}, nil
}
