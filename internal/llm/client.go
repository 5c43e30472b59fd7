// Package llm talks to an OpenAI-compatible chat-completions endpoint.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jkirui/shellbot-agent/config"
)

// DefaultSystemPrompt instructs the model to answer with a JSON array of
// commands, or an empty array when nothing needs to run.
const DefaultSystemPrompt = `You are an automation agent with full control of a server. A user sends you
messages through a chat channel; analyze the intent and reply with the shell
commands that carry it out.

Reply with a JSON array. Each element has:
- "command": the shell command to run (string)
- "description": a short explanation of what the command does (string)

Reply with the JSON array only, no other text. If the message requires no
commands, reply with an empty array [].

Example:
[
  {"command": "df -h", "description": "check disk space"},
  {"command": "free -m", "description": "check memory usage"}
]`

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

// Client is a chat-completions client bound to one model and system prompt.
type Client struct {
	baseURL      string
	apiKey       string
	model        string
	systemPrompt string
	maxTokens    int
	http         *http.Client
	logger       *zap.Logger
}

// NewClient builds a client from config. The request timeout bounds the
// whole model call; command execution has its own budget.
func NewClient(cfg *config.Config, logger *zap.Logger) *Client {
	systemPrompt := cfg.LLMSystemPrompt
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}

	timeout := cfg.LLMTimeout
	if timeout <= 0 {
		timeout = 300 * time.Second
	}

	return &Client{
		baseURL:      strings.TrimRight(cfg.LLMBaseURL, "/"),
		apiKey:       cfg.LLMAPIKey,
		model:        cfg.LLMModel,
		systemPrompt: systemPrompt,
		maxTokens:    cfg.LLMMaxTokens,
		http:         &http.Client{Timeout: timeout},
		logger:       logger,
	}
}

// Chat sends the user message with the system prompt and returns the first
// choice's content. A missing content field is returned as an empty string,
// not an error; HTTP and decode failures are errors.
func (c *Client) Chat(ctx context.Context, userMessage string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages: []message{
			{Role: "system", Content: c.systemPrompt},
			{Role: "user", Content: userMessage},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := c.baseURL + "/chat/completions"
	c.logger.Info("querying model", zap.String("model", c.model))
	c.logger.Debug("model request", zap.String("url", url))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("model request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read model response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("model API error %s: %s", resp.Status, string(body))
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode model response: %w", err)
	}

	if len(parsed.Choices) == 0 {
		return "", nil
	}
	return parsed.Choices[0].Message.Content, nil
}
