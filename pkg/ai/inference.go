package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 60 * time.Second

// InferenceClient calls a Hugging Face style inference endpoint: a prompt
// goes up as {"inputs": ...} and an array of {"generated_text": ...}
// objects comes back. The response shape is duck-typed upstream, so
// anything that does not decode into that array yields ErrNoGeneration
// rather than a hard failure.
type InferenceClient struct {
	apiURL     string
	token      string
	httpClient *http.Client
}

// NewInferenceClient builds a Generator for the given model URL.
// token may be empty for endpoints that do not require authentication.
// timeout bounds the single upstream call; zero selects the default.
func NewInferenceClient(apiURL, token string, timeout time.Duration) *InferenceClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &InferenceClient{
		apiURL: strings.TrimSpace(apiURL),
		token:  strings.TrimSpace(token),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type inferenceRequest struct {
	Inputs string `json:"inputs"`
}

type generation struct {
	GeneratedText string `json:"generated_text"`
}

// Generate implements Generator with a single upstream call, no retries.
func (c *InferenceClient) Generate(ctx context.Context, prompt string) (string, error) {
	if c.apiURL == "" {
		return "", fmt.Errorf("inference API URL required")
	}
	body, err := json.Marshal(inferenceRequest{Inputs: prompt})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("text generation request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return "", fmt.Errorf("text generation API error: %d, %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var generations []generation
	if err := json.NewDecoder(resp.Body).Decode(&generations); err != nil {
		return "", ErrNoGeneration
	}
	if len(generations) == 0 {
		return "", ErrNoGeneration
	}
	text := strings.TrimSpace(generations[0].GeneratedText)
	if text == "" {
		return "", ErrNoGeneration
	}
	return text, nil
}
