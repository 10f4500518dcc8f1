package genclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

// Turn is one prior message in the conversation.
type Turn struct {
	Role    string
	Content string
}

// Request is one generation call.
type Request struct {
	Prompt            string
	SystemInstruction string
	History           []Turn
}

// Provider performs a single, unretried generation attempt.
type Provider interface {
	Generate(ctx context.Context, model string, req Request) (string, error)
}

// GenAIProvider calls the Gemini API through google.golang.org/genai.
type GenAIProvider struct {
	client *genai.Client
}

// NewGenAIProvider builds a provider from cfg. It does not contact the API.
func NewGenAIProvider(ctx context.Context, cfg Config) (*GenAIProvider, error) {
	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		// The SDK may echo configuration back; keep the key out of the message.
		return nil, fmt.Errorf("genclient:provider - failed to create client: %s", strings.ReplaceAll(err.Error(), cfg.APIKey, "[REDACTED]"))
	}
	return &GenAIProvider{client: client}, nil
}

// Generate sends the history followed by the prompt as user content.
func (p *GenAIProvider) Generate(ctx context.Context, model string, req Request) (string, error) {
	contents := make([]*genai.Content, 0, len(req.History)+1)
	for _, t := range req.History {
		if strings.TrimSpace(t.Content) == "" {
			continue
		}
		contents = append(contents, genai.NewContentFromText(t.Content, roleFor(t.Role)))
	}
	contents = append(contents, genai.NewContentFromText(req.Prompt, genai.RoleUser))

	var cfg *genai.GenerateContentConfig
	if req.SystemInstruction != "" {
		cfg = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(req.SystemInstruction, genai.RoleUser),
		}
	}

	resp, err := p.client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("genclient:provider - empty response from model %s", model)
	}
	return text, nil
}

func roleFor(role string) genai.Role {
	switch strings.ToLower(role) {
	case "assistant", "model", "bot":
		return genai.RoleModel
	default:
		return genai.RoleUser
	}
}
