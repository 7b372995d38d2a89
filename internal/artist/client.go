// Package artist calls the Hugging Face Inference API to synthesize a
// technical diagram when the source document supplies no image evidence.
package artist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// DefaultModel is used when HF_IMAGE_MODEL is not set.
	DefaultModel = "stabilityai/stable-diffusion-xl-base-1.0"

	baseURL     = "https://api-inference.huggingface.co/models/"
	callTimeout = 60 * time.Second

	// promptTemplate frames the caller's visual query as an engineering
	// schematic so generated images match the quiz aesthetic.
	promptTemplate = "technical schematic drawing of %s, blueprint style, white on blue background, high detail, engineering diagram, no text"
)

// Client holds the configuration for the image-synthesis service.
type Client struct {
	token string
	model string
	http  *http.Client
}

// NewClient creates a client from HF_TOKEN and HF_IMAGE_MODEL. It returns
// nil when HF_TOKEN is missing, which disables synthetic generation: the
// evidence resolver then falls straight through to the placeholder tier.
func NewClient() *Client {
	token := os.Getenv("HF_TOKEN")
	if token == "" {
		log.Warn().Msg("HF_TOKEN not set; image generation disabled")
		return nil
	}

	model := os.Getenv("HF_IMAGE_MODEL")
	if model == "" {
		model = DefaultModel
	}

	return &Client{
		token: token,
		model: model,
		http:  &http.Client{Timeout: callTimeout},
	}
}

// Generate renders the visual query through the fixed schematic prompt and
// returns raw image bytes plus their media type (e.g. "image/jpeg"). Every
// failure mode (network, quota, non-image response) is an error; the caller
// degrades to its placeholder tier.
func (c *Client) Generate(ctx context.Context, visualQuery string) ([]byte, string, error) {
	if c == nil {
		return nil, "", fmt.Errorf("artist client not configured")
	}

	payload := struct {
		Inputs string `json:"inputs"`
	}{
		Inputs: fmt.Sprintf(promptTemplate, visualQuery),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+c.model, bytes.NewReader(body))
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("image generation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, "", fmt.Errorf("image generation returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	mediaType := resp.Header.Get("Content-Type")
	if i := strings.IndexByte(mediaType, ';'); i >= 0 {
		mediaType = strings.TrimSpace(mediaType[:i])
	}
	if !strings.HasPrefix(mediaType, "image/") {
		return nil, "", fmt.Errorf("unexpected content type %q from image generation", mediaType)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read generated image: %w", err)
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("empty image response")
	}
	return data, mediaType, nil
}
