package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/artem13815/freelance/pkg/llm"
)

const (
	defaultBaseURL        = "https://openrouter.ai/api/v1"
	defaultChatModel      = "openai/gpt-4o-mini"
	defaultEmbeddingModel = "openai/text-embedding-3-small"
)

// Client is a minimal OpenRouter (OpenAI-compatible) client for chat completions and embeddings.
type Client struct {
	APIKey         string
	BaseURL        string
	Model          string
	EmbeddingModel string
	AppTitle       string
	Referer        string
	httpDo         *http.Client
}

func New(apiKey, baseURL, model, embeddingModel, appTitle, referer string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		APIKey:         apiKey,
		BaseURL:        baseURL,
		Model:          model,
		EmbeddingModel: embeddingModel,
		AppTitle:       appTitle,
		Referer:        referer,
		httpDo: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionsRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature *float32  `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type chatChoice struct {
	Index   int `json:"index"`
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	FinishReason string `json:"finish_reason"`
}

type chatCompletionsResponse struct {
	ID      string       `json:"id"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
}

type embeddingsRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embeddingsResponse struct {
	Model string `json:"model"`
	Data  []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// ChatModelName returns the configured chat model or the default one.
func (c *Client) ChatModelName() string {
	if c.Model == "" {
		return defaultChatModel
	}
	return c.Model
}

// EmbeddingModelName returns the configured embedding model or the default one.
func (c *Client) EmbeddingModelName() string {
	if c.EmbeddingModel == "" {
		return defaultEmbeddingModel
	}
	return c.EmbeddingModel
}

// Ask sends a system instruction and a user prompt and returns the model reply.
func (c *Client) Ask(ctx context.Context, systemPrompt, userPrompt string, opts ...llm.Option) (string, error) {
	o := llm.Apply(opts...)
	reqBody := chatCompletionsRequest{
		Model: c.ChatModelName(),
		Messages: []message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: o.Temperature,
		MaxTokens:   o.MaxTokens,
	}
	var out chatCompletionsResponse
	if err := c.post(ctx, "chat/completions", reqBody, &out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned by model", llm.ErrProvider)
	}
	return out.Choices[0].Message.Content, nil
}

// Embed returns the embedding vector of text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	var out embeddingsResponse
	if err := c.post(ctx, "embeddings", embeddingsRequest{Model: c.EmbeddingModelName(), Input: text}, &out); err != nil {
		return nil, err
	}
	if len(out.Data) == 0 || len(out.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("%w: empty embedding returned by model", llm.ErrProvider)
	}
	return out.Data[0].Embedding, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	if c.APIKey == "" {
		return fmt.Errorf("%w: openrouter api key is empty", llm.ErrProvider)
	}
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/%s", c.BaseURL, path)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)
	if c.Referer != "" {
		httpReq.Header.Set("HTTP-Referer", c.Referer)
	}
	if c.AppTitle != "" {
		httpReq.Header.Set("X-Title", c.AppTitle)
	}

	resp, err := c.httpDo.Do(httpReq)
	if err != nil {
		return errors.Join(llm.ErrProvider, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errMap map[string]any
		_ = json.NewDecoder(resp.Body).Decode(&errMap)
		return fmt.Errorf("%w: openrouter http %d: %v", llm.ErrProvider, resp.StatusCode, errMap)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode openrouter response: %v", llm.ErrProvider, err)
	}
	return nil
}
