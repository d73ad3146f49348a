// Package llm abstracts the chat-completion capability the optional deep
// proofread stage needs, so any OpenAI-compatible backend (DeepSeek, a local
// server) can be plugged in and tests can substitute a scripted fake.
package llm

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
)

// Client is the minimal chat interface used by the deep proofread stage.
type Client interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// New builds an OpenAI-compatible client against baseURL. An empty baseURL
// keeps the library default endpoint.
func New(baseURL, apiKey string) Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(cfg)
}
