// Package content calls the external text-generation collaborator. Every
// operation can fail or time out; callers substitute fixed defaults and never
// surface these errors to the user.
package content

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 10 * time.Second

// Client talks to the generation API over HTTP.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient constructs a Client for the given endpoint. A non-positive
// timeout falls back to ten seconds.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

type generateRequest struct {
	Prompt string `json:"prompt"`
}

type generateResponse struct {
	Text string `json:"text"`
}

// Motivation produces the once-a-day welcome-home message addressed to the
// student by name.
func (c *Client) Motivation(ctx context.Context, name string) (string, error) {
	prompt := fmt.Sprintf(
		"The student %s just came home from school. They are tired but need to start their personal study path. "+
			"Write a 15-word maximum motivational notification message. Make it feel like a warm welcome home that transitions into focused energy.",
		name,
	)
	text, err := c.generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	// Generated text sometimes arrives wrapped in quotes.
	return strings.ReplaceAll(text, `"`, ""), nil
}

// Encouragement produces a one-sentence encouraging line for the current
// focus subject.
func (c *Client) Encouragement(ctx context.Context, focus string) (string, error) {
	prompt := fmt.Sprintf(
		"User is focusing on: %s. Give a one-sentence, calm, encouraging quote for a student. Be brief.",
		focus,
	)
	return c.generate(ctx, prompt)
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	if c == nil || c.baseURL == "" {
		return "", fmt.Errorf("content: client not configured")
	}

	payload, err := json.Marshal(generateRequest{Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("content: failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/generate", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("content: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("content: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("content: unexpected status %d", resp.StatusCode)
	}

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("content: failed to decode response: %w", err)
	}

	text := strings.TrimSpace(decoded.Text)
	if text == "" {
		return "", fmt.Errorf("content: empty generation result")
	}
	return text, nil
}
