package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/domo-app/domo-server/config"
	"github.com/domo-app/domo-server/internal/apperr"
	"github.com/domo-app/domo-server/pkg/metrics"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-3.5-turbo"
)

// Client is a minimal chat-completions client. Every call carries the
// request context and the configured timeout; a model that never
// answers must not wedge the request that asked.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewClient(cfg config.AIConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		model:      model,
		httpClient: &http.Client{Timeout: cfg.Timeout()},
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete sends one system+user exchange and returns the assistant's
// message content.
func (c *Client) Complete(ctx context.Context, operation, userMessage string) (string, error) {
	start := time.Now()
	content, err := c.complete(ctx, userMessage)
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.RecordAdvisorCall(operation, status, time.Since(start))
	return content, err
}

func (c *Client) complete(ctx context.Context, userMessage string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: "You are a helpful assistant."},
			{Role: "user", Content: userMessage},
		},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apperr.ExternalService("model call failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", apperr.ExternalService(fmt.Sprintf("model returned status %d", resp.StatusCode), nil)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", apperr.ExternalService("failed to decode model response", err)
	}
	if len(parsed.Choices) == 0 {
		return "", apperr.ExternalService("model returned no choices", nil)
	}
	return parsed.Choices[0].Message.Content, nil
}
