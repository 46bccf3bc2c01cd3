// Package chat streams digital-twin replies: the provider adapters that talk
// to hosted models, the Twin service behind POST /chat, and the Client the
// terminal uses to consume that endpoint.
package chat

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Zachkp/crtfolio/internal/transcript"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

var (
	// ErrNotConfigured means the provider credential is missing.
	ErrNotConfigured = errors.New("chat provider credential is not set")
	// ErrEmptyHistory means there is no user message to answer.
	ErrEmptyHistory = errors.New("no user message to reply to")
)

// APIError is a non-2xx response from a provider or from POST /chat.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("chat error [%s] (HTTP %d): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("chat error (HTTP %d): %s", e.Status, e.Message)
}

// StreamError is a failure after part of the reply already arrived.
type StreamError struct {
	Partial string
	Err     error
}

func (e *StreamError) Error() string {
	if e.Partial != "" {
		return fmt.Sprintf("stream interrupted after %d chars: %v", len(e.Partial), e.Err)
	}
	return fmt.Sprintf("stream error: %v", e.Err)
}

func (e *StreamError) Unwrap() error { return e.Err }

// CapHistory keeps at most the last turns user/assistant pairs, starting at a
// user message. turns <= 0 disables the cap.
func CapHistory(msgs []Message, turns int) []Message {
	if turns > 0 && len(msgs) > turns*2 {
		msgs = msgs[len(msgs)-turns*2:]
	}
	for len(msgs) > 0 && msgs[0].Role != RoleUser {
		msgs = msgs[1:]
	}
	return msgs
}

// FromTranscript converts transcript entries to chat messages. Input lines
// become user turns and output lines assistant turns; the prompt marker is
// stripped and blank entries are skipped.
func FromTranscript(entries []transcript.Entry) []Message {
	msgs := make([]Message, 0, len(entries))
	for _, e := range entries {
		text := strings.TrimSpace(strings.TrimPrefix(e.Text, "> "))
		if text == "" {
			continue
		}
		role := RoleAssistant
		if e.Kind == transcript.Input {
			role = RoleUser
		}
		msgs = append(msgs, Message{Role: role, Content: text})
	}
	return msgs
}

// validate checks that msgs ends with a user turn worth answering.
func validate(msgs []Message) error {
	if len(msgs) == 0 || msgs[len(msgs)-1].Role != RoleUser {
		return ErrEmptyHistory
	}
	for _, m := range msgs {
		if m.Role != RoleUser && m.Role != RoleAssistant {
			return fmt.Errorf("invalid role %q", m.Role)
		}
	}
	return nil
}
