package llm

import (
	"github.com/sashabaranov/go-openai"

	"github.com/julienb/mentor-go/internal/config"
)

// NewClient creates a new OpenAI-compatible client pointed at the configured endpoint
func NewClient(cfg config.LLMConfig) *openai.Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL

	return openai.NewClientWithConfig(clientCfg)
}
