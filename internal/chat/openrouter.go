package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultOpenRouterURL is the OpenRouter API base.
	DefaultOpenRouterURL = "https://openrouter.ai/api/v1"
	// DefaultModel is the model asked for when none is configured.
	DefaultModel = "moonshotai/kimi-k2"

	maxErrorBody = 64 * 1024
)

var (
	ErrAuthFailed  = errors.New("provider rejected the API key")
	ErrRateLimited = errors.New("provider rate limit exceeded")
)

// Provider streams one assistant reply for the given system prompt and
// conversation. onDelta receives each text fragment in order; returning an
// error from it aborts the stream.
type Provider interface {
	Name() string
	Stream(ctx context.Context, system string, msgs []Message, onDelta func(string) error) error
}

// OpenRouter is a Provider backed by the OpenRouter chat completions API.
type OpenRouter struct {
	apiKey   string
	baseURL  string
	model    string
	siteURL  string
	siteName string
	http     *http.Client
}

func NewOpenRouter(apiKey, model string) *OpenRouter {
	if model == "" {
		model = DefaultModel
	}
	return &OpenRouter{
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: DefaultOpenRouterURL,
		model:   model,
		http:    &http.Client{},
	}
}

// WithBaseURL overrides the API base, mostly for tests.
func (c *OpenRouter) WithBaseURL(url string) *OpenRouter {
	c.baseURL = strings.TrimRight(url, "/")
	return c
}

// WithTimeout bounds the whole request including the stream body.
func (c *OpenRouter) WithTimeout(timeout time.Duration) *OpenRouter {
	c.http.Timeout = timeout
	return c
}

// WithSite sets the attribution headers OpenRouter shows on its dashboard.
func (c *OpenRouter) WithSite(url, name string) *OpenRouter {
	c.siteURL, c.siteName = url, name
	return c
}

func (c *OpenRouter) Name() string { return "openrouter" }

func (c *OpenRouter) Model() string { return c.model }

type completionRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Code    any    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type apiErrorResponse struct {
	Error struct {
		Code    any    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *OpenRouter) Stream(ctx context.Context, system string, msgs []Message, onDelta func(string) error) error {
	if c.apiKey == "" {
		return ErrNotConfigured
	}

	all := make([]Message, 0, len(msgs)+1)
	if system != "" {
		all = append(all, Message{Role: "system", Content: system})
	}
	all = append(all, msgs...)

	body, err := json.Marshal(completionRequest{Model: c.model, Messages: all, Stream: true})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	if c.siteURL != "" {
		req.Header.Set("HTTP-Referer", c.siteURL)
	}
	if c.siteName != "" {
		req.Header.Set("X-Title", c.siteName)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return providerError(resp.StatusCode, data)
	}

	return readCompletionStream(ctx, resp.Body, onDelta)
}

func readCompletionStream(ctx context.Context, body io.Reader, onDelta func(string) error) error {
	reader := NewSSEReader(body)
	var got strings.Builder

	for {
		if err := ctx.Err(); err != nil {
			return &StreamError{Partial: got.String(), Err: err}
		}

		_, data, err := reader.ReadEvent()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return &StreamError{Partial: got.String(), Err: err}
		}
		if bytes.Equal(bytes.TrimSpace(data), []byte("[DONE]")) {
			return nil
		}

		var chunk streamChunk
		if err := json.Unmarshal(data, &chunk); err != nil {
			continue
		}
		if chunk.Error != nil {
			return &StreamError{Partial: got.String(), Err: errors.New(chunk.Error.Message)}
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		if delta := chunk.Choices[0].Delta.Content; delta != "" {
			got.WriteString(delta)
			if err := onDelta(delta); err != nil {
				return err
			}
		}
		if chunk.Choices[0].FinishReason != "" {
			return nil
		}
	}
}

func providerError(status int, body []byte) error {
	var parsed apiErrorResponse
	msg := strings.TrimSpace(string(body))
	code := ""
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		msg = parsed.Error.Message
		if parsed.Error.Code != nil {
			code = fmt.Sprint(parsed.Error.Code)
		}
	}

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrAuthFailed, msg)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", ErrRateLimited, msg)
	}
	return &APIError{Status: status, Code: code, Message: msg}
}
