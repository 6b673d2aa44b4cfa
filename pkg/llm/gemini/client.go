package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/artem13815/freelance/pkg/llm"
)

const (
	defaultModel          = "gemini-2.5-flash"
	defaultEmbeddingModel = "gemini-embedding-001"

	// Thinking tokens count against MaxOutputTokens; thinking is disabled below this budget.
	thinkingMinOutputTokens = 1024
)

// models is the subset of *genai.Models the client relies on.
type models interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

// Client implements llm.ChatModel and llm.Embedder on top of the Gemini API.
type Client struct {
	models         models
	modelName      string
	embeddingModel string
	dimensions     int32
}

// New creates a Client configured for the Gemini API backend.
// dimensions requests a reduced output dimensionality when positive.
func New(ctx context.Context, apiKey, model, embeddingModel string, dimensions int) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newWithModels(client.Models, model, embeddingModel, dimensions), nil
}

func newWithModels(m models, model, embeddingModel string, dimensions int) *Client {
	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	if embeddingModel = strings.TrimSpace(embeddingModel); embeddingModel == "" {
		embeddingModel = defaultEmbeddingModel
	}
	return &Client{models: m, modelName: model, embeddingModel: embeddingModel, dimensions: int32(dimensions)}
}

// Ask sends the prompt with the system instruction and returns the joined text parts of the reply.
func (c *Client) Ask(ctx context.Context, systemPrompt, userPrompt string, opts ...llm.Option) (string, error) {
	userPrompt = strings.TrimSpace(userPrompt)
	if userPrompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	o := llm.Apply(opts...)
	cfg := &genai.GenerateContentConfig{Temperature: o.Temperature}
	if strings.TrimSpace(systemPrompt) != "" {
		cfg.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}
	if o.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(o.MaxTokens)
		if o.MaxTokens < thinkingMinOutputTokens {
			cfg.ThinkingConfig = &genai.ThinkingConfig{ThinkingBudget: genai.Ptr[int32](0)}
		}
	}

	resp, err := c.models.GenerateContent(ctx, c.modelName, genai.Text(userPrompt), cfg)
	if err != nil {
		return "", providerError("generate content", err)
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", fmt.Errorf("%w: gemini api returned empty response", llm.ErrProvider)
	}
	return output, nil
}

// Embed returns the embedding of text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	var cfg *genai.EmbedContentConfig
	if c.dimensions > 0 {
		cfg = &genai.EmbedContentConfig{OutputDimensionality: genai.Ptr(c.dimensions)}
	}

	resp, err := c.models.EmbedContent(ctx, c.embeddingModel, genai.Text(text), cfg)
	if err != nil {
		return nil, providerError("embed content", err)
	}
	if resp == nil || len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil || len(resp.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("%w: gemini api returned empty embedding", llm.ErrProvider)
	}
	return resp.Embeddings[0].Values, nil
}

func (c *Client) Model() string {
	if c == nil {
		return ""
	}
	return c.modelName
}

func (c *Client) EmbeddingModel() string {
	if c == nil {
		return ""
	}
	return c.embeddingModel
}

func providerError(op string, err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: %s: %d %s: %s", llm.ErrProvider, op, apiErr.Code, apiErr.Status, apiErr.Message)
	}
	return fmt.Errorf("%w: %s: %v", llm.ErrProvider, op, err)
}
