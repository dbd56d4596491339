// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package verify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSearcher struct {
	results []SearchResult
	err     error
	queries []string
}

func (f *fakeSearcher) Search(_ context.Context, query string) ([]SearchResult, error) {
	f.queries = append(f.queries, query)

	return f.results, f.err
}

// newChatServer answers every chat completion with content and records the
// last prompt it received.
func newChatServer(t *testing.T, content string, lastPrompt *string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req openai.ChatCompletionRequest
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &req))

		if lastPrompt != nil && len(req.Messages) > 0 {
			*lastPrompt = req.Messages[len(req.Messages)-1].Content
		}

		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			ID:    "chatcmpl-1",
			Model: req.Model,
			Choices: []openai.ChatCompletionChoice{{
				Message:      openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content},
				FinishReason: "stop",
			}},
		})
	}))
	t.Cleanup(srv.Close)

	return srv
}

func TestOpenAIVerifier(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected Verification
	}{
		{
			name: "verified",
			content: "Here you go:\n```json\n" +
				`{"found_address": "Hinjewadi Phase 3, Pune 411057", "source_url": "https://www.tcs.com/contact",` +
				` "is_match": true, "confidence": 0.9, "explanation": "Matches the official site"}` + "\n```",
			expected: Verification{
				Status:       StatusVerified,
				Confidence:   0.9,
				SourceURL:    "https://www.tcs.com/contact",
				Explanation:  "Matches the official site",
				FoundAddress: "Hinjewadi Phase 3, Pune 411057",
			},
		},
		{
			name:     "at the verified boundary is uncertain",
			content:  `{"confidence": 0.7, "explanation": "Only the city matches"}`,
			expected: Verification{Status: StatusUncertain, Confidence: 0.7, Explanation: "Only the city matches"},
		},
		{
			name:     "no json",
			content:  "I cannot tell.",
			expected: Verification{Status: StatusError, Explanation: "Failed to parse AI response"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var lastPrompt string

			srv := newChatServer(t, tt.content, &lastPrompt)
			searcher := &fakeSearcher{results: []SearchResult{
				{Title: "TCS Pune", Link: "https://www.tcs.com/contact", Snippet: "Hinjewadi Phase 3, Pune"},
			}}

			v, err := NewOpenAIVerifier(Config{APIKey: "test-key", BaseURL: srv.URL}, searcher)
			require.NoError(t, err)

			got := v.Verify(context.Background(), "TATA CONSULTANCY SERVICES", "Hinjewadi, Pune, India")
			assert.Equal(t, tt.expected, got)

			assert.Equal(t, []string{"TATA CONSULTANCY SERVICES official website address"}, searcher.queries)
			assert.Contains(t, lastPrompt, "Address Found by Geocoder: Hinjewadi, Pune, India")
			assert.Contains(t, lastPrompt, "Source: https://www.tcs.com/contact\nSnippet: Hinjewadi Phase 3, Pune")
		})
	}
}

func TestOpenAIVerifierSearchFailureStillAsks(t *testing.T) {
	srv := newChatServer(t, `{"confidence": 0.2, "explanation": "no evidence"}`, nil)

	v, err := NewOpenAIVerifier(Config{APIKey: "test-key", BaseURL: srv.URL}, &fakeSearcher{err: errors.New("blocked")})
	require.NoError(t, err)

	got := v.Verify(context.Background(), "ACME", "Somewhere")
	assert.Equal(t, StatusUncertain, got.Status)
}

func TestOpenAIVerifierAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "bad key", "type": "invalid_request_error"}}`))
	}))
	defer srv.Close()

	v, err := NewOpenAIVerifier(Config{APIKey: "test-key", BaseURL: srv.URL}, nil)
	require.NoError(t, err)

	got := v.Verify(context.Background(), "ACME", "Somewhere")
	assert.Equal(t, StatusError, got.Status)
	assert.True(t, strings.HasPrefix(got.Explanation, "AI verification error:"), got.Explanation)
}

func TestNewWithoutKeyIsDisabled(t *testing.T) {
	v := New(Config{}, nil)
	assert.Equal(t, Disabled{}, v)

	got := v.Verify(context.Background(), "ACME", "Somewhere")
	assert.Equal(t, StatusSkipped, got.Status)

	_, err := NewOpenAIVerifier(Config{}, nil)
	require.Error(t, err)
}

func TestVerificationNote(t *testing.T) {
	v := Verification{Status: StatusVerified, Explanation: "matches", SourceURL: "https://example.com"}
	assert.Equal(t, "AI verification: verified (matches) source: https://example.com", v.Note())
	assert.Equal(t, "AI verification: skipped", Verification{Status: StatusSkipped}.Note())
}
