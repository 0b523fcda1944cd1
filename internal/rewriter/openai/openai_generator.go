package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"resumetailor/internal/config"
	"resumetailor/internal/port"
	"resumetailor/internal/rewriter"
)

const (
	openaiURL = "https://api.openai.com/v1/chat/completions"
	groqURL   = "https://api.groq.com/openai/v1/chat/completions"
)

func init() {
	rewriter.RegisterProvider("openai", func(cfg *config.GeneratorProviderConfig) (port.RewriteGenerator, error) {
		return NewGenerator(cfg, openaiURL, "gpt-4o-mini"), nil
	})
	rewriter.RegisterProvider("groq", func(cfg *config.GeneratorProviderConfig) (port.RewriteGenerator, error) {
		return NewGenerator(cfg, groqURL, "llama-3.3-70b-versatile"), nil
	})
}

// Generator implements port.RewriteGenerator against any OpenAI-compatible
// Chat Completions endpoint.
type Generator struct {
	name     string
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewGenerator creates a generator. cfg.Endpoint and cfg.DefaultModel
// override the given defaults.
func NewGenerator(cfg *config.GeneratorProviderConfig, defaultEndpoint, defaultModel string) *Generator {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	model := cfg.DefaultModel
	if model == "" {
		model = defaultModel
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	name := cfg.Provider
	if name == "" {
		name = "openai"
	}
	return &Generator{
		name:     name,
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (g *Generator) Generate(ctx context.Context, input port.GenerateInput) (*port.GenerateOutput, error) {
	prompt := rewriter.BuildRewritePrompt(input)

	reqBody := map[string]interface{}{
		"model":       g.model,
		"temperature": 0.3,
		"max_tokens":  4096,
		"messages": []map[string]interface{}{
			{"role": "system", "content": rewriter.SystemPrompt},
			{"role": "user", "content": prompt},
		},
		"response_format": map[string]interface{}{
			"type": "json_object",
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling %s API: %w", g.name, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, rewriter.ResponseError(g.name, resp, respBody)
	}

	return parseResponse(respBody, g.model, prompt)
}

// apiResponse models the Chat Completions API response.
type apiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func parseResponse(body []byte, model, prompt string) (*port.GenerateOutput, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from API: no choices")
	}

	if resp.Choices[0].FinishReason == "length" {
		return nil, fmt.Errorf("output truncated (finish_reason: length): response exceeded output token limit")
	}

	suggestions, err := rewriter.ParseSuggestions(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	return &port.GenerateOutput{
		Rewrites:      suggestions.RewriteSet(),
		MissingSkills: suggestions.MissingSkills,
		ModelUsed:     model,
		PromptUsed:    prompt,
	}, nil
}
