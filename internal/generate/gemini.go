// Package generate calls the Gemini API to produce code from a natural
// language prompt.
package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nhasan/codenest/internal/apperror"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com"
	modelPath      = "/v1beta/models/gemini-pro:generateContent"

	maxPromptLength = 4000
)

// Client is a thin HTTP client for the Gemini generateContent endpoint.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API host. Used in tests.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(url, "/") }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// NewClient creates a Gemini client with the given API key.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Request/response shapes follow the generateContent wire format; only the
// fields this client reads or writes are declared.

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// GenerateCode asks the model for code in the given language matching the
// prompt. The returned string is the raw model text, which the instruction
// steers toward code with no surrounding explanation.
func (c *Client) GenerateCode(ctx context.Context, language, prompt string) (string, error) {
	language = strings.TrimSpace(language)
	prompt = strings.TrimSpace(prompt)
	if language == "" {
		return "", apperror.ValidationFailed("language", "language is required")
	}
	if prompt == "" {
		return "", apperror.ValidationFailed("prompt", "prompt is required")
	}
	if len(prompt) > maxPromptLength {
		return "", apperror.ValidationFailed("prompt", fmt.Sprintf("prompt exceeds %d characters", maxPromptLength))
	}

	instruction := fmt.Sprintf(
		"Generate code in %s. Here's what I want to do:\n%s\nProvide only the code without any explanations.",
		language, prompt,
	)

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: instruction}}}},
	})
	if err != nil {
		return "", fmt.Errorf("generate: encoding request: %w", err)
	}

	url := c.baseURL + modelPath + "?key=" + c.apiKey
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("generate: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("generate: calling model: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Read a little of the body for the log line; the caller only sees
		// the status.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("generate: model returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("generate: decoding response: %w", err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("generate: model returned no candidates")
	}

	return strings.TrimSpace(out.Candidates[0].Content.Parts[0].Text), nil
}
