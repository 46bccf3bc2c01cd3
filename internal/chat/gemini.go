package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/genai"
)

// DefaultGeminiModel is used when the gemini provider has no model set.
const DefaultGeminiModel = "gemini-2.5-flash"

// Gemini is a Provider backed by the Gemini API. The client is created on
// first use so a missing key only fails the request that needs it.
type Gemini struct {
	apiKey string
	model  string

	once   sync.Once
	client *genai.Client
	err    error
}

func NewGemini(apiKey, model string) *Gemini {
	if model == "" {
		model = DefaultGeminiModel
	}
	return &Gemini{apiKey: strings.TrimSpace(apiKey), model: model}
}

func (g *Gemini) Name() string { return "gemini" }

func (g *Gemini) connect(ctx context.Context) (*genai.Client, error) {
	g.once.Do(func() {
		g.client, g.err = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  g.apiKey,
			Backend: genai.BackendGeminiAPI,
		})
	})
	return g.client, g.err
}

func (g *Gemini) Stream(ctx context.Context, system string, msgs []Message, onDelta func(string) error) error {
	if g.apiKey == "" {
		return ErrNotConfigured
	}
	client, err := g.connect(ctx)
	if err != nil {
		return fmt.Errorf("gemini client: %w", err)
	}

	contents := make([]*genai.Content, 0, len(msgs))
	for _, m := range msgs {
		role := genai.Role(genai.RoleUser)
		if m.Role == RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}

	var cfg *genai.GenerateContentConfig
	if system != "" {
		cfg = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		}
	}

	var got strings.Builder
	for resp, err := range client.Models.GenerateContentStream(ctx, g.model, contents, cfg) {
		if err != nil {
			if got.Len() == 0 {
				return fmt.Errorf("gemini: %w", err)
			}
			return &StreamError{Partial: got.String(), Err: err}
		}
		delta := resp.Text()
		if delta == "" {
			continue
		}
		got.WriteString(delta)
		if err := onDelta(delta); err != nil {
			return err
		}
	}
	return nil
}
