package llm

import (
	"context"
	"errors"
)

// ErrProvider marks failures of an upstream embedding or generation provider.
var ErrProvider = errors.New("llm provider error")

// ChatModel is a minimal abstraction for chat-based LLMs used by the domain.
type ChatModel interface {
	Ask(ctx context.Context, systemPrompt, userPrompt string, opts ...Option) (string, error)
}

// Embedder turns a text into one fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Options are per-call generation parameters. Zero values mean provider default.
type Options struct {
	Temperature *float32
	MaxTokens   int
}

type Option func(*Options)

func WithTemperature(t float32) Option {
	return func(o *Options) { o.Temperature = &t }
}

func WithMaxTokens(n int) Option {
	return func(o *Options) { o.MaxTokens = n }
}

// Apply folds opts into an Options value.
func Apply(opts ...Option) Options {
	var o Options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
