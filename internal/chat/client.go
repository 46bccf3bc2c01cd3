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
)

// SSE event names used by POST /chat.
const (
	EventDelta = "delta"
	EventDone  = "done"
	EventError = "error"
)

// Request is the POST /chat body.
type Request struct {
	Messages []Message `json:"messages"`
}

// DeltaEvent carries a reply fragment.
type DeltaEvent struct {
	Text string `json:"text"`
}

// ErrorEvent is sent when the reply fails after streaming started.
type ErrorEvent struct {
	Error string `json:"error"`
}

// ErrorResponse is the JSON body of a failed POST /chat.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Client consumes the POST /chat stream from the terminal side.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: &http.Client{}}
}

// Stream posts msgs and calls onText with the accumulated reply after each
// fragment. It returns nil once the server signals completion.
func (c *Client) Stream(ctx context.Context, msgs []Message, onText func(full string)) error {
	body, err := json.Marshal(Request{Messages: msgs})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		var er ErrorResponse
		msg := strings.TrimSpace(string(data))
		if json.Unmarshal(data, &er) == nil && er.Error != "" {
			msg = er.Error
			if er.Details != "" {
				msg = er.Details
			}
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}

	reader := NewSSEReader(resp.Body)
	var full strings.Builder
	for {
		event, data, err := reader.ReadEvent()
		if err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return &StreamError{Partial: full.String(), Err: err}
		}
		switch event {
		case EventDelta, "":
			var d DeltaEvent
			if err := json.Unmarshal(data, &d); err != nil || d.Text == "" {
				continue
			}
			full.WriteString(d.Text)
			onText(full.String())
		case EventDone:
			return nil
		case EventError:
			var e ErrorEvent
			_ = json.Unmarshal(data, &e)
			if e.Error == "" {
				e.Error = "unknown error"
			}
			return &StreamError{Partial: full.String(), Err: errors.New(e.Error)}
		}
	}
}

// ErrorText renders err the way the terminal prints a failed reply.
func ErrorText(err error) string {
	var se *StreamError
	if errors.As(err, &se) {
		err = se.Err
	}
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Message
	}
	return err.Error()
}
