package llm

import (
	"context"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/julienb/mentor-go/internal/config"
	"github.com/julienb/mentor-go/internal/history"
)

// Completer sends a full message list to the completion endpoint and normalizes
// the outcome into either the reply text or a Fault. One attempt per call, no
// retries, no streaming.
type Completer struct {
	client      Client
	model       string
	maxTokens   int
	temperature float32
	timeout     time.Duration
}

// NewCompleter wraps client with the model name and fixed sampling parameters.
func NewCompleter(client Client, cfg config.LLMConfig) *Completer {
	return &Completer{
		client:      client,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		timeout:     time.Duration(cfg.TimeoutSeconds) * time.Second,
	}
}

// Complete blocks until the endpoint answers or the timeout elapses. On success
// the non-empty completion text is returned with a nil Fault.
func (c *Completer) Complete(ctx context.Context, msgs []history.Message) (string, *Fault) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	outbound := make([]openai.ChatCompletionMessage, 0, len(msgs))
	for _, m := range msgs {
		outbound = append(outbound, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    outbound,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		Stream:      false,
	})
	if err != nil {
		return "", classify(err)
	}

	if len(resp.Choices) == 0 {
		return "", &Fault{Kind: FaultMalformed}
	}
	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", &Fault{Kind: FaultEmpty}
	}
	return content, nil
}
