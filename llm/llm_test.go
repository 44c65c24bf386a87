package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/docscout/models"
)

func testParams(baseURL string) Params {
	return Params{
		APIKey:      "k",
		Model:       "llama-3.1-8b-instant",
		BaseURL:     baseURL,
		Temperature: 0.3,
		MaxTokens:   300,
	}
}

func TestComplete(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"choices":[{"message":{"content":"  Patients are happy.  "}}]}`))
	}))
	defer srv.Close()

	out, err := NewClient(nil).Complete(context.Background(), "sys", "user", testParams(srv.URL+"/"))
	require.NoError(t, err)
	assert.Equal(t, "Patients are happy.", out)

	assert.Equal(t, "llama-3.1-8b-instant", got.Model)
	assert.Equal(t, 0.3, got.Temperature)
	assert.Equal(t, 300, got.MaxTokens)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
}

func TestComplete_ErrorCodes(t *testing.T) {
	tests := []struct {
		status int
		code   string
	}{
		{http.StatusUnauthorized, models.ErrCodeLLMAuthFailure},
		{http.StatusTooManyRequests, models.ErrCodeLLMRateLimited},
		{http.StatusInternalServerError, models.ErrCodeLLMFailure},
	}
	for _, tc := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tc.status)
			w.Write([]byte(`{"error":{"message":"nope"}}`))
		}))
		_, err := NewClient(nil).Complete(context.Background(), "s", "u", testParams(srv.URL))
		srv.Close()
		assert.Equal(t, tc.code, models.CodeOf(err), "status %d", tc.status)
	}
}

func TestNewSummarizer_MissingKey(t *testing.T) {
	_, err := NewSummarizer(nil, Params{})
	assert.Equal(t, models.ErrCodeMissingCredential, models.CodeOf(err))
}

func TestSummarize(t *testing.T) {
	var prompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		json.NewDecoder(r.Body).Decode(&req)
		prompt = req.Messages[1].Content
		w.Write([]byte(`{"choices":[{"message":{"content":"Mostly positive."}}]}`))
	}))
	defer srv.Close()

	s, err := NewSummarizer(nil, testParams(srv.URL))
	require.NoError(t, err)

	out := s.Summarize(context.Background(), []models.Review{
		{PatientName: "Ali", Rating: "N/A", Text: "Great doctor, very caring."},
		models.PlaceholderReview(),
	})
	assert.Equal(t, "Mostly positive.", out)
	assert.Contains(t, prompt, "Review 1:\nRating: N/A\nPatient: Ali\nComment: Great doctor, very caring.")
	assert.Contains(t, prompt, "Review 2:")
	assert.True(t, strings.HasSuffix(prompt, "Provide a balanced, professional summary:"))
}

func TestSummarize_Degrades(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	s, err := NewSummarizer(nil, testParams(srv.URL))
	require.NoError(t, err)

	assert.Equal(t, models.NoReviewsSummary, s.Summarize(context.Background(), nil))
	assert.Equal(t, "Error generating summary. Showing 2 reviews with basic analysis.",
		s.Summarize(context.Background(), []models.Review{{}, {}}))
}
