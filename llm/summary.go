package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/use-agent/docscout/models"
)

const summarySystemPrompt = "You are a helpful medical review analyst who provides concise, balanced summaries of patient reviews."

// Summarizer writes a short prose summary of a doctor's reviews.
type Summarizer struct {
	client *Client
	params Params
}

// NewSummarizer creates a Summarizer. A missing API key is reported as a
// MISSING_CREDENTIAL error so callers can fail at startup.
func NewSummarizer(client *Client, params Params) (*Summarizer, error) {
	if strings.TrimSpace(params.APIKey) == "" {
		return nil, models.NewScrapeError(models.ErrCodeMissingCredential, "LLM API key is not set (GROQ_API_KEY)", nil)
	}
	if client == nil {
		client = NewClient(nil)
	}
	return &Summarizer{client: client, params: params}, nil
}

// Summarize returns the LLM summary of reviews. It never fails: an empty
// list and a provider error both yield fixed placeholder text.
func (s *Summarizer) Summarize(ctx context.Context, reviews []models.Review) string {
	if len(reviews) == 0 {
		return models.NoReviewsSummary
	}
	out, err := s.client.Complete(ctx, summarySystemPrompt, summaryPrompt(reviews), s.params)
	if err != nil {
		slog.Warn("review summary failed", "error", err, "code", models.CodeOf(err))
		return fmt.Sprintf("Error generating summary. Showing %d reviews with basic analysis.", len(reviews))
	}
	return out
}

func summaryPrompt(reviews []models.Review) string {
	blocks := make([]string, len(reviews))
	for i, r := range reviews {
		blocks[i] = fmt.Sprintf("Review %d:\nRating: %s\nPatient: %s\nComment: %s",
			i+1, or(r.Rating, models.RatingUnavailable), or(r.PatientName, models.AnonymousReviewer), or(r.Text, "No comment"))
	}

	return `You are a medical review analyst. Analyze the following patient reviews for a doctor and provide a comprehensive summary in 3-4 sentences.

Focus on:
1. Overall patient satisfaction
2. Common positive points (if any)
3. Common concerns or negative points (if any)
4. Doctor's strengths based on reviews

Reviews:
` + strings.Join(blocks, "\n\n") + `

Provide a balanced, professional summary:`
}

func or(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
