package tree

import (
	"context"
	"fmt"
	"strings"

	"github.com/soundprediction/notegraph/pkg/nlp"
)

const leafPrompt = `Summarize the following content from a personal knowledge base.
Focus on: key entities (projects, tools, people), decisions made, relationships between concepts.
Keep technical terms and project names intact. Write in the same language as the content.
Length: ~300 words.

Content:
%s

Summary:`

const summaryPrompt = `Further summarize these summaries from a personal knowledge base.
Preserve: project names, tool names, key decisions, relationships between concepts.
Merge overlapping information. Write in the same language as the content.
Length: ~300 words.

Summaries:
%s

Consolidated summary:`

// LLMSummarizer implements Summarizer over a chat client. Each call is a
// single attempt; the builder treats any failure as fatal.
type LLMSummarizer struct {
	client nlp.Client
}

// NewLLMSummarizer wraps a chat client.
func NewLLMSummarizer(client nlp.Client) *LLMSummarizer {
	return &LLMSummarizer{client: client}
}

// SummarizeLeaves implements Summarizer.
func (s *LLMSummarizer) SummarizeLeaves(ctx context.Context, merged string) (string, error) {
	return s.complete(ctx, fmt.Sprintf(leafPrompt, merged))
}

// SummarizeSummaries implements Summarizer.
func (s *LLMSummarizer) SummarizeSummaries(ctx context.Context, merged string) (string, error) {
	return s.complete(ctx, fmt.Sprintf(summaryPrompt, merged))
}

func (s *LLMSummarizer) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := s.client.Chat(ctx, []nlp.Message{nlp.NewUserMessage(prompt)})
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(resp.Content)
	if text == "" {
		return "", fmt.Errorf("summarizer returned empty text")
	}
	return text, nil
}
