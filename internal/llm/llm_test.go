package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCompleter struct {
	received CompletionRequest
	deadline bool
	text     string
	err      error
}

func (m *mockCompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	m.received = req
	_, m.deadline = ctx.Deadline()
	return m.text, m.err
}

type mockImages struct {
	received ImageRequest
	url      string
	err      error
}

func (m *mockImages) GenerateImage(ctx context.Context, req ImageRequest) (string, error) {
	m.received = req
	return m.url, m.err
}

func TestGatewayChat(t *testing.T) {
	text := &mockCompleter{text: "```json\n{}\n```"}
	g := NewGateway(text, nil, DefaultOptions())

	out, err := g.Chat(context.Background(), "persona", "prompt")
	require.NoError(t, err)
	assert.Equal(t, "```json\n{}\n```", out)

	assert.Equal(t, []Message{
		{Role: RoleSystem, Content: "persona"},
		{Role: RoleUser, Content: "prompt"},
	}, text.received.Messages)
	assert.Equal(t, 5000, text.received.MaxTokens)
	assert.InDelta(t, 0.8, text.received.Temperature, 0.0001)
	assert.True(t, text.deadline)
}

func TestGatewayChat_NoTimeout(t *testing.T) {
	text := &mockCompleter{}
	opts := DefaultOptions()
	opts.Timeout = 0
	g := NewGateway(text, nil, opts)

	_, err := g.Chat(context.Background(), "s", "u")
	require.NoError(t, err)
	assert.False(t, text.deadline)
}

func TestGatewayChat_WrapsErrors(t *testing.T) {
	cause := errors.New("insufficient_quota")
	g := NewGateway(&mockCompleter{err: cause}, nil, DefaultOptions())

	_, err := g.Chat(context.Background(), "s", "u")

	var uerr *UpstreamError
	require.True(t, errors.As(err, &uerr))
	assert.Equal(t, "insufficient_quota", uerr.Error())
	assert.True(t, errors.Is(err, cause))
}

func TestGatewayChat_DeadlineIsUpstreamError(t *testing.T) {
	g := NewGateway(&mockCompleter{err: context.DeadlineExceeded}, nil, Options{Timeout: time.Millisecond})

	_, err := g.Chat(context.Background(), "s", "u")

	var uerr *UpstreamError
	require.True(t, errors.As(err, &uerr))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestGatewayImage(t *testing.T) {
	images := &mockImages{url: "https://img.example/1.png"}
	g := NewGateway(&mockCompleter{}, images, DefaultOptions())

	url, err := g.Image(context.Background(), "a paella")
	require.NoError(t, err)
	assert.Equal(t, "https://img.example/1.png", url)
	assert.Equal(t, ImageRequest{Prompt: "a paella", Size: "1024x1024", Quality: "standard"}, images.received)
}

func TestGatewayImage_Disabled(t *testing.T) {
	g := NewGateway(&mockCompleter{}, nil, DefaultOptions())

	_, err := g.Image(context.Background(), "a paella")

	var uerr *UpstreamError
	require.True(t, errors.As(err, &uerr))
	assert.True(t, errors.Is(err, ErrImageGenerationDisabled))
}

func TestGatewayImage_EmptyURL(t *testing.T) {
	g := NewGateway(&mockCompleter{}, &mockImages{}, DefaultOptions())

	_, err := g.Image(context.Background(), "a paella")

	var uerr *UpstreamError
	assert.True(t, errors.As(err, &uerr))
}
