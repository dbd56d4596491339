// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package verify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// Config configures the OpenAI verifier.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// OpenAIVerifier asks a chat model to compare a geocoded address with what
// a web search says about the company.
type OpenAIVerifier struct {
	client   *openai.Client
	model    string
	timeout  time.Duration
	searcher Searcher
}

// New returns an OpenAI verifier, or Disabled when no API key is set.
func New(cfg Config, searcher Searcher) Verifier {
	v, err := NewOpenAIVerifier(cfg, searcher)
	if err != nil {
		return Disabled{}
	}

	return v
}

// NewOpenAIVerifier creates a verifier backed by the OpenAI chat API.
func NewOpenAIVerifier(cfg Config, searcher Searcher) (*OpenAIVerifier, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	if cfg.HTTPClient != nil {
		clientConfig.HTTPClient = cfg.HTTPClient
	}

	if cfg.Model == "" {
		cfg.Model = openai.GPT4oMini
	}

	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &OpenAIVerifier{
		client:   openai.NewClientWithConfig(clientConfig),
		model:    cfg.Model,
		timeout:  cfg.Timeout,
		searcher: searcher,
	}, nil
}

var jsonObjectRegex = regexp.MustCompile(`(?s)\{.*\}`)

type modelAnswer struct {
	FoundAddress string  `json:"found_address"`
	SourceURL    string  `json:"source_url"`
	IsMatch      bool    `json:"is_match"`
	Confidence   float64 `json:"confidence"`
	Explanation  string  `json:"explanation"`
}

func prompt(company, address, webContext string) string {
	return fmt.Sprintf(`Company: %s
Address Found by Geocoder: %s

Web Search Context:
%s
Tasks:
1. Find the official website or most reliable source for the company's address.
2. Extract the address from the context.
3. Compare the address you found with the geocoded address.
4. Rate your confidence (0-1) that the geocoded address is correct.

Return a JSON object:
{
    "found_address": "string",
    "source_url": "string",
    "is_match": boolean,
    "confidence": float,
    "explanation": "string"
}`, company, address, webContext)
}

// Verify implements Verifier.
func (v *OpenAIVerifier) Verify(ctx context.Context, company, address string) Verification {
	var webContext string

	if v.searcher != nil {
		results, err := v.searcher.Search(ctx, company+" official website address")
		if err != nil {
			log.Printf("⚠️ web search for %q: %v", company, err)
		}

		webContext = searchContext(results)
	}

	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	resp, err := v.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: v.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You verify company postal addresses using only the evidence provided.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt(company, address, webContext),
			},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return Verification{Status: StatusError, Explanation: fmt.Sprintf("AI verification error: %v", err)}
	}

	if len(resp.Choices) == 0 {
		return Verification{Status: StatusError, Explanation: "no response from model"}
	}

	return parseAnswer(resp.Choices[0].Message.Content)
}

func parseAnswer(content string) Verification {
	var a modelAnswer

	raw := jsonObjectRegex.FindString(content)
	if raw == "" || json.Unmarshal([]byte(raw), &a) != nil {
		return Verification{Status: StatusError, Explanation: "Failed to parse AI response"}
	}

	status := StatusUncertain
	if a.Confidence > verifiedAbove {
		status = StatusVerified
	}

	return Verification{
		Status:       status,
		Confidence:   a.Confidence,
		SourceURL:    strings.TrimSpace(a.SourceURL),
		Explanation:  a.Explanation,
		FoundAddress: a.FoundAddress,
	}
}
