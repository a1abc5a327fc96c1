// Package llm is the boundary between the HTTP handlers and the external
// generative-AI providers. Providers live under internal/platform.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Role tags a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one role-tagged chat message.
type Message struct {
	Role    Role
	Content string
}

// CompletionRequest is a text completion call.
type CompletionRequest struct {
	Messages    []Message
	MaxTokens   int
	Temperature float32
}

// ImageRequest is an image generation call.
type ImageRequest struct {
	Prompt  string
	Size    string
	Quality string
}

// TextCompleter returns the raw text of a chat completion.
type TextCompleter interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// ImageGenerator returns a URL the generated image can be fetched from.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, req ImageRequest) (string, error)
}

// ErrImageGenerationDisabled is returned when no image provider is configured.
var ErrImageGenerationDisabled = errors.New("image generation is not configured")

// UpstreamError wraps any failure of a provider call.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return e.Err.Error()
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Options are the per-call defaults applied by the Gateway.
type Options struct {
	// Timeout bounds every provider call. Zero disables it.
	Timeout      time.Duration
	MaxTokens    int
	Temperature  float32
	ImageSize    string
	ImageQuality string
}

// DefaultOptions mirror the parameters the service has always used.
func DefaultOptions() Options {
	return Options{
		Timeout:      45 * time.Second,
		MaxTokens:    5000,
		Temperature:  0.8,
		ImageSize:    "1024x1024",
		ImageQuality: "standard",
	}
}

// Gateway sends prompts to the configured providers. It makes exactly one
// attempt per call and is safe for concurrent use.
type Gateway struct {
	text   TextCompleter
	images ImageGenerator
	opts   Options
}

// NewGateway creates a Gateway. images may be nil, in which case image calls
// fail with ErrImageGenerationDisabled.
func NewGateway(text TextCompleter, images ImageGenerator, opts Options) *Gateway {
	return &Gateway{text: text, images: images, opts: opts}
}

// Chat sends a system persona and a user prompt and returns the raw completion.
func (g *Gateway) Chat(ctx context.Context, system, user string) (string, error) {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	text, err := g.text.Complete(ctx, CompletionRequest{
		Messages: []Message{
			{Role: RoleSystem, Content: system},
			{Role: RoleUser, Content: user},
		},
		MaxTokens:   g.opts.MaxTokens,
		Temperature: g.opts.Temperature,
	})
	if err != nil {
		return "", &UpstreamError{Op: "chat completion", Err: err}
	}
	return text, nil
}

// Image generates an image for prompt and returns its URL.
func (g *Gateway) Image(ctx context.Context, prompt string) (string, error) {
	if g.images == nil {
		return "", &UpstreamError{Op: "image generation", Err: ErrImageGenerationDisabled}
	}

	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	url, err := g.images.GenerateImage(ctx, ImageRequest{
		Prompt:  prompt,
		Size:    g.opts.ImageSize,
		Quality: g.opts.ImageQuality,
	})
	if err != nil {
		return "", &UpstreamError{Op: "image generation", Err: err}
	}
	if url == "" {
		return "", &UpstreamError{Op: "image generation", Err: fmt.Errorf("provider returned no image URL")}
	}
	return url, nil
}

func (g *Gateway) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.opts.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, g.opts.Timeout)
}
