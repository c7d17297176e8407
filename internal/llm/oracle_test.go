package llm

import (
	"context"
	"strings"
	"testing"

	"github.com/anvaya-ai/anvaya/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubCompleter returns canned text for prompt-level tests.
type stubCompleter struct {
	response string
	prompts  []string
}

func (s *stubCompleter) complete(ctx context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.response, nil
}

func (s *stubCompleter) completeStream(ctx context.Context, prompt string, onDelta func(string)) (string, error) {
	if onDelta != nil {
		onDelta(s.response)
	}
	return s.complete(ctx, prompt)
}

func TestFactBlockUnknownStakeholder(t *testing.T) {
	id := uuid.New()
	block := factBlock([]domain.FactForReview{
		{ID: id, Source: "#finance", Content: "Budget is $40,000"},
	})

	assert.Contains(t, block, "stakeholder:Unknown")
	assert.Contains(t, block, id.String())
}

func TestContextBlockRendersChannelsAndFiles(t *testing.T) {
	block := contextBlock(domain.ExtractionInput{
		ProjectName:        "Checkout Revamp",
		ProjectDescription: "Rebuild checkout",
		Channels: []domain.ChannelMessages{
			{Channel: "#finance", Messages: []domain.ChatMessage{
				{Sender: "Marcus Chen", Text: "budget is $40k", SentAt: "2026-08-10"},
			}},
		},
		FileLinks: []domain.FileRef{{Name: "requirements.pdf", URI: "mock://files/requirements.pdf"}},
	})

	assert.Contains(t, block, "Channel: #finance")
	assert.Contains(t, block, "[2026-08-10] Marcus Chen: budget is $40k")
	assert.Contains(t, block, "requirements.pdf")
}

func TestFindContradictionsParsesFencedOutput(t *testing.T) {
	id1, id2 := uuid.New(), uuid.New()
	stub := &stubCompleter{
		response: "```json\n[{\"factIds\": [\"" + id1.String() + "\", \"" + id2.String() + "\"], \"context\": \"Budget figures disagree\"}]\n```",
	}
	client := &Client{tc: stub}

	detected, raw, err := client.FindContradictions(context.Background(), []domain.FactForReview{
		{ID: id1, Source: "#finance", Content: "Budget is $40,000"},
		{ID: id2, Source: "#product", Content: "Budget is $65,000"},
	})
	require.NoError(t, err)
	require.Len(t, detected, 1)
	assert.Equal(t, []string{id1.String(), id2.String()}, detected[0].FactIDs)
	assert.NotEmpty(t, raw)

	// Prompt must carry both fact ids for the model to reference.
	require.Len(t, stub.prompts, 1)
	assert.Contains(t, stub.prompts[0], id1.String())
	assert.Contains(t, stub.prompts[0], id2.String())
}

func TestMapStakeholdersUnparseableKeepsRaw(t *testing.T) {
	stub := &stubCompleter{response: "no json at all"}
	client := &Client{tc: stub}

	_, raw, err := client.MapStakeholders(context.Background(), domain.ExtractionInput{ProjectName: "X"})
	require.Error(t, err)
	assert.Equal(t, "no json at all", raw)
}

func TestSynthesizeIncludesDecisions(t *testing.T) {
	stub := &stubCompleter{response: "# Document"}
	client := &Client{tc: stub}

	_, err := client.Synthesize(context.Background(), domain.SynthesisInput{
		ProjectName: "Checkout Revamp",
		Decisions:   []string{"Budget is $40,000 (reasoning: contractual)"},
	})
	require.NoError(t, err)
	require.Len(t, stub.prompts, 1)
	assert.True(t, strings.Contains(stub.prompts[0], "Budget is $40,000"))
}
