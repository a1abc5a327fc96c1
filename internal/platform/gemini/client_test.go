package gemini

import (
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chefrelay/internal/llm"
)

func TestSplitMessages(t *testing.T) {
	system, parts := splitMessages([]llm.Message{
		{Role: llm.RoleSystem, Content: "You are a chef."},
		{Role: llm.RoleUser, Content: "Make soup."},
		{Role: llm.RoleSystem, Content: "Answer in JSON."},
	})

	assert.Equal(t, "You are a chef.\nAnswer in JSON.", system)
	assert.Equal(t, []genai.Part{genai.Text("Make soup.")}, parts)
}

func TestResponseText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{
				genai.Text("```json\n"),
				genai.Text("{\"title\":\"Soup\"}\n```\n"),
			}},
		}},
	}

	text, err := responseText(resp)
	require.NoError(t, err)
	assert.Equal(t, "```json\n{\"title\":\"Soup\"}\n```", text)
}

func TestResponseText_Empty(t *testing.T) {
	_, err := responseText(&genai.GenerateContentResponse{})
	assert.Error(t, err)

	_, err = responseText(nil)
	assert.Error(t, err)

	_, err = responseText(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []genai.Part{genai.Blob{MIMEType: "image/png"}}}}},
	})
	assert.Error(t, err)
}
