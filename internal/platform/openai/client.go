package openai

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strings"

	gopenai "github.com/sashabaranov/go-openai"

	"chefrelay/internal/llm"
)

const (
	DefaultTextModel  = gopenai.GPT4o
	DefaultImageModel = gopenai.CreateImageModelDallE3
)

// Config configures a Client.
type Config struct {
	APIKey string
	// BaseURL points the client at an OpenAI-compatible server. Empty uses the public API.
	BaseURL    string
	TextModel  string
	ImageModel string
	HTTPClient *http.Client
}

// Client is a client for the OpenAI chat completion and image APIs.
type Client struct {
	api        *gopenai.Client
	textModel  string
	imageModel string
}

// NewClient creates a new OpenAI client.
func NewClient(cfg Config) *Client {
	clientConfig := gopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if cfg.HTTPClient != nil {
		clientConfig.HTTPClient = cfg.HTTPClient
	}

	textModel := cfg.TextModel
	if textModel == "" {
		textModel = DefaultTextModel
	}
	imageModel := cfg.ImageModel
	if imageModel == "" {
		imageModel = DefaultImageModel
	}

	return &Client{
		api:        gopenai.NewClientWithConfig(clientConfig),
		textModel:  textModel,
		imageModel: imageModel,
	}
}

// Complete sends the messages to the chat completion endpoint and returns the
// first choice, trimmed.
func (c *Client) Complete(ctx context.Context, req llm.CompletionRequest) (string, error) {
	messages := make([]gopenai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, gopenai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}

	// The request field is omitempty, so an explicit zero must be nudged to be sent.
	temperature := req.Temperature
	if temperature == 0 {
		temperature = math.SmallestNonzeroFloat32
	}

	resp, err := c.api.CreateChatCompletion(ctx, gopenai.ChatCompletionRequest{
		Model:       c.textModel,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from %s", c.textModel)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// GenerateImage requests a single image and returns its URL.
func (c *Client) GenerateImage(ctx context.Context, req llm.ImageRequest) (string, error) {
	resp, err := c.api.CreateImage(ctx, gopenai.ImageRequest{
		Prompt:         req.Prompt,
		Model:          c.imageModel,
		N:              1,
		Size:           req.Size,
		Quality:        req.Quality,
		ResponseFormat: gopenai.CreateImageResponseFormatURL,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Data) == 0 {
		return "", fmt.Errorf("no image data in response from %s", c.imageModel)
	}
	return resp.Data[0].URL, nil
}
