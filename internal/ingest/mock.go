package ingest

import (
	"context"
	"fmt"
	"io"

	"github.com/anvaya-ai/anvaya/internal/domain"
)

// MockClient is a file ingestor for testing. It discards content and mints
// predictable URIs.
type MockClient struct {
	IngestError error

	// Call tracking for assertions
	IngestCalls []string
}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (c *MockClient) Ingest(ctx context.Context, filename, contentType string, r io.Reader) (domain.FileRef, error) {
	c.IngestCalls = append(c.IngestCalls, filename)
	if c.IngestError != nil {
		return domain.FileRef{}, c.IngestError
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return domain.FileRef{}, err
	}
	return domain.FileRef{
		Name: filename,
		URI:  fmt.Sprintf("mock://files/%s", filename),
	}, nil
}
