package llm

import (
	"context"

	"github.com/anvaya-ai/anvaya/internal/domain"
)

// MockClient is a configurable oracle client for testing.
// Set the response fields to control what each method returns.
type MockClient struct {
	StakeholdersResponse   []domain.ExtractedStakeholder
	StakeholdersRaw        string
	StakeholdersError      error
	FactsResponse          []domain.ExtractedFact
	FactsRaw               string
	FactsError             error
	ContradictionsResponse []domain.DetectedContradiction
	ContradictionsRaw      string
	ContradictionsError    error
	SynthesizeResponse     string
	SynthesizeError        error
	// StreamDeltas are emitted through onDelta before the stakeholder result.
	StreamDeltas []string

	// Call tracking for assertions
	MapStakeholdersCalls    []domain.ExtractionInput
	MapFactsCalls           []domain.ExtractionInput
	FindContradictionsCalls [][]domain.FactForReview
	SynthesizeCalls         []domain.SynthesisInput
}

func NewMockClient() *MockClient {
	return &MockClient{
		StakeholdersResponse:   []domain.ExtractedStakeholder{},
		FactsResponse:          []domain.ExtractedFact{},
		ContradictionsResponse: []domain.DetectedContradiction{},
		SynthesizeResponse:     "# Mock document",
	}
}

func (c *MockClient) MapStakeholders(ctx context.Context, in domain.ExtractionInput) ([]domain.ExtractedStakeholder, string, error) {
	c.MapStakeholdersCalls = append(c.MapStakeholdersCalls, in)
	if c.StakeholdersError != nil {
		return nil, c.StakeholdersRaw, c.StakeholdersError
	}
	return c.StakeholdersResponse, c.StakeholdersRaw, nil
}

func (c *MockClient) MapStakeholdersStream(ctx context.Context, in domain.ExtractionInput, onDelta func(string)) ([]domain.ExtractedStakeholder, string, error) {
	if onDelta != nil {
		for _, d := range c.StreamDeltas {
			onDelta(d)
		}
	}
	return c.MapStakeholders(ctx, in)
}

func (c *MockClient) MapFacts(ctx context.Context, in domain.ExtractionInput) ([]domain.ExtractedFact, string, error) {
	c.MapFactsCalls = append(c.MapFactsCalls, in)
	if c.FactsError != nil {
		return nil, c.FactsRaw, c.FactsError
	}
	return c.FactsResponse, c.FactsRaw, nil
}

func (c *MockClient) FindContradictions(ctx context.Context, facts []domain.FactForReview) ([]domain.DetectedContradiction, string, error) {
	c.FindContradictionsCalls = append(c.FindContradictionsCalls, facts)
	if c.ContradictionsError != nil {
		return nil, c.ContradictionsRaw, c.ContradictionsError
	}
	return c.ContradictionsResponse, c.ContradictionsRaw, nil
}

func (c *MockClient) Synthesize(ctx context.Context, in domain.SynthesisInput) (string, error) {
	c.SynthesizeCalls = append(c.SynthesizeCalls, in)
	if c.SynthesizeError != nil {
		return "", c.SynthesizeError
	}
	return c.SynthesizeResponse, nil
}
