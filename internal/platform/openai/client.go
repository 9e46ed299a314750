package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mikesamcali-dev/memoryconnector-backend/internal/platform/logger"
)

// Usage reports token consumption for a single API call.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Client is the OpenAI API surface used by the enrichment pipeline.
type Client interface {
	// GenerateJSON runs a chat completion constrained to a JSON object response
	// and returns the raw content string for the caller to parse.
	GenerateJSON(ctx context.Context, system string, user string) (string, Usage, error)

	// GenerateText runs a plain chat completion with no response format.
	GenerateText(ctx context.Context, system string, user string) (string, Usage, error)

	// Embed returns the embedding vector for a single input.
	Embed(ctx context.Context, input string) ([]float32, Usage, error)

	Model() string
	EmbedModel() string
}

type client struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	model      string
	embedModel string
	maxTokens  int
	httpClient *http.Client
	maxRetries int
}

func NewClient(log *logger.Logger) (Client, error) {
	apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	if apiKey == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY")
	}

	baseURL := strings.TrimSpace(os.Getenv("OPENAI_BASE_URL"))
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	baseURL = strings.TrimRight(baseURL, "/")

	model := strings.TrimSpace(os.Getenv("OPENAI_MODEL"))
	if model == "" {
		model = "gpt-4o-mini"
	}

	embedModel := strings.TrimSpace(os.Getenv("OPENAI_EMBED_MODEL"))
	if embedModel == "" {
		embedModel = "text-embedding-3-small"
	}

	timeoutSec := 60
	if v := os.Getenv("OPENAI_TIMEOUT_SECONDS"); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed > 0 {
			timeoutSec = parsed
		}
	}

	maxRetries := 3
	if v := os.Getenv("OPENAI_MAX_RETRIES"); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed >= 0 {
			maxRetries = parsed
		}
	}

	maxTokens := 2000
	if v := os.Getenv("OPENAI_MAX_TOKENS"); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed > 0 {
			maxTokens = parsed
		}
	}

	return &client{
		log:        log.With("service", "OpenAIClient"),
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		embedModel: embedModel,
		maxTokens:  maxTokens,
		httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
		maxRetries: maxRetries,
	}, nil
}

func (c *client) Model() string      { return c.model }
func (c *client) EmbedModel() string { return c.embedModel }

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	MaxTokens      int           `json:"max_tokens"`
	ResponseFormat *respFormat   `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type respFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage Usage `json:"usage"`
}

func (c *client) GenerateJSON(ctx context.Context, system string, user string) (string, Usage, error) {
	return c.chat(ctx, system, user, &respFormat{Type: "json_object"})
}

func (c *client) GenerateText(ctx context.Context, system string, user string) (string, Usage, error) {
	return c.chat(ctx, system, user, nil)
}

func (c *client) chat(ctx context.Context, system string, user string, format *respFormat) (string, Usage, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature:    0.2,
		MaxTokens:      c.maxTokens,
		ResponseFormat: format,
	}

	var out chatResponse
	if err := c.post(ctx, "/v1/chat/completions", reqBody, &out); err != nil {
		return "", Usage{}, err
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return "", out.Usage, fmt.Errorf("empty completion content")
	}
	return out.Choices[0].Message.Content, out.Usage, nil
}

type embedRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Usage Usage `json:"usage"`
}

func (c *client) Embed(ctx context.Context, input string) ([]float32, Usage, error) {
	reqBody := embedRequest{Model: c.embedModel, Input: input}

	var out embedResponse
	if err := c.post(ctx, "/v1/embeddings", reqBody, &out); err != nil {
		return nil, Usage{}, err
	}
	if len(out.Data) == 0 {
		return nil, out.Usage, fmt.Errorf("empty embedding response")
	}
	return out.Data[0].Embedding, out.Usage, nil
}

func (c *client) post(ctx context.Context, path string, body any, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * 2 * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		respBody, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("openai %s: status %d: %s", path, resp.StatusCode, truncate(string(respBody), 200))
			c.log.Warn("OpenAI request retryable failure", "path", path, "status", resp.StatusCode, "attempt", attempt)
			continue
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("openai %s: status %d: %s", path, resp.StatusCode, truncate(string(respBody), 200))
		}

		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode openai response: %w", err)
		}
		return nil
	}
	return lastErr
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
