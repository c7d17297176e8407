package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anvaya-ai/anvaya/internal/domain"
)

// textCompleter is the raw prompt-in, text-out surface of a model provider.
type textCompleter interface {
	complete(ctx context.Context, prompt string) (string, error)
	completeStream(ctx context.Context, prompt string, onDelta func(string)) (string, error)
}

// Client implements domain.OracleClient on top of a provider core. Prompt
// construction and recovery parsing live here so every provider behaves
// identically.
type Client struct {
	tc textCompleter
}

func (c *Client) MapStakeholders(ctx context.Context, in domain.ExtractionInput) ([]domain.ExtractedStakeholder, string, error) {
	prompt := fmt.Sprintf(stakeholderPrompt, contextBlock(in))

	raw, err := c.tc.complete(ctx, prompt)
	if err != nil {
		return nil, "", fmt.Errorf("map stakeholders: %w", err)
	}
	return parseStakeholders(raw)
}

func (c *Client) MapStakeholdersStream(ctx context.Context, in domain.ExtractionInput, onDelta func(string)) ([]domain.ExtractedStakeholder, string, error) {
	prompt := fmt.Sprintf(stakeholderPrompt, contextBlock(in))

	raw, err := c.tc.completeStream(ctx, prompt, onDelta)
	if err != nil {
		return nil, "", fmt.Errorf("map stakeholders: %w", err)
	}
	return parseStakeholders(raw)
}

func parseStakeholders(raw string) ([]domain.ExtractedStakeholder, string, error) {
	var out []domain.ExtractedStakeholder
	if err := DecodeLoose(raw, &out); err != nil {
		return nil, raw, err
	}
	return out, raw, nil
}

func (c *Client) MapFacts(ctx context.Context, in domain.ExtractionInput) ([]domain.ExtractedFact, string, error) {
	prompt := fmt.Sprintf(factPrompt, contextBlock(in))

	raw, err := c.tc.complete(ctx, prompt)
	if err != nil {
		return nil, "", fmt.Errorf("map facts: %w", err)
	}

	var out []domain.ExtractedFact
	if err := DecodeLoose(raw, &out); err != nil {
		return nil, raw, err
	}
	return out, raw, nil
}

func (c *Client) FindContradictions(ctx context.Context, facts []domain.FactForReview) ([]domain.DetectedContradiction, string, error) {
	prompt := fmt.Sprintf(contradictionPrompt, factBlock(facts))

	raw, err := c.tc.complete(ctx, prompt)
	if err != nil {
		return nil, "", fmt.Errorf("find contradictions: %w", err)
	}

	var out []domain.DetectedContradiction
	if err := DecodeLoose(raw, &out); err != nil {
		return nil, raw, err
	}
	return out, raw, nil
}

func (c *Client) Synthesize(ctx context.Context, in domain.SynthesisInput) (string, error) {
	decisions := "(none)"
	if len(in.Decisions) > 0 {
		var sb strings.Builder
		for _, d := range in.Decisions {
			sb.WriteString("- ")
			sb.WriteString(d)
			sb.WriteString("\n")
		}
		decisions = sb.String()
	}

	prompt := fmt.Sprintf(synthesisPrompt, in.ProjectName, in.ProjectDescription, factBlock(in.Facts), decisions)

	raw, err := c.tc.complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("synthesize: %w", err)
	}
	return raw, nil
}

// contextBlock renders the extraction input as prompt text. Channels are
// expected to be pre-filtered to relevant ones; this function formats, it
// does not filter.
func contextBlock(in domain.ExtractionInput) string {
	var sb strings.Builder

	sb.WriteString("Project: ")
	sb.WriteString(in.ProjectName)
	sb.WriteString("\nDescription: ")
	sb.WriteString(in.ProjectDescription)
	sb.WriteString("\n")

	for _, ch := range in.Channels {
		sb.WriteString("\nChannel: ")
		sb.WriteString(ch.Channel)
		sb.WriteString("\n")
		for _, msg := range ch.Messages {
			if msg.SentAt != "" {
				sb.WriteString("[")
				sb.WriteString(msg.SentAt)
				sb.WriteString("] ")
			}
			sb.WriteString(msg.Sender)
			sb.WriteString(": ")
			sb.WriteString(msg.Text)
			sb.WriteString("\n")
		}
	}

	if len(in.FileLinks) > 0 {
		sb.WriteString("\nUploaded files:\n")
		for _, f := range in.FileLinks {
			sb.WriteString("- ")
			sb.WriteString(f.Name)
			sb.WriteString(" (")
			sb.WriteString(f.URI)
			sb.WriteString(")\n")
		}
	}

	return sb.String()
}

func factBlock(facts []domain.FactForReview) string {
	var sb strings.Builder
	for _, f := range facts {
		stakeholder := f.Stakeholder
		if stakeholder == "" {
			stakeholder = "Unknown"
		}
		fmt.Fprintf(&sb, "- id:%s | source:%s | stakeholder:%s | claim:%s\n", f.ID, f.Source, stakeholder, f.Content)
	}
	return sb.String()
}
