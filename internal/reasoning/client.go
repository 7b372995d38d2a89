// Package reasoning wraps the external text-generation collaborator used in
// two roles: the instructor that designs quiz scenarios and the auditor that
// grades answers against the source text. The core never depends on the raw
// model response shape; everything goes through DecodeObject.
package reasoning

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	// ModelName is the Gemini model used for both roles.
	ModelName = "gemini-2.0-flash"

	callTimeout = 90 * time.Second
)

// Client wraps the Gemini client.
type Client struct {
	client *genai.Client
}

// NewClient creates a reasoning client from GEMINI_API_KEY. A missing key is
// a configuration error: the reasoning service is the one collaborator the
// quiz workflows cannot degrade around.
func NewClient(ctx context.Context) (*Client, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{client: client}, nil
}

// Close closes the underlying client.
func (c *Client) Close() {
	c.client.Close()
}

// Run sends a task prompt to the model under the given role description and
// returns the raw text of the first candidate. The response may contain
// prose or markdown fencing around a JSON object; callers extract structure
// with DecodeObject and fall back on failure.
func (c *Client) Run(ctx context.Context, role, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	model := c.client.GenerativeModel(ModelName)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(role)},
	}
	model.SetTemperature(0.2)
	model.SetTopK(40)
	model.SetTopP(0.95)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no content generated")
	}

	var raw string
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			raw += string(text)
		}
	}
	if raw == "" {
		return "", fmt.Errorf("no text parts in response")
	}
	return raw, nil
}
