// Package ocr adapts Google Cloud Vision text detection for pages whose
// native text extraction comes up short. It is an optional subsystem:
// without credentials the ingestor runs native-text-only.
package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	vision "cloud.google.com/go/vision/apiv1"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

const callTimeout = 60 * time.Second

// Client wraps a Vision image annotator.
type Client struct {
	annotator *vision.ImageAnnotatorClient
}

// NewClient builds a Vision client from GOOGLE_APPLICATION_CREDENTIALS. It
// returns (nil, nil) when credentials are absent so ingestion can proceed
// without the OCR fallback.
func NewClient(ctx context.Context) (*Client, error) {
	creds := strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	if creds == "" {
		log.Warn().Msg("GOOGLE_APPLICATION_CREDENTIALS not set; OCR fallback disabled")
		return nil, nil
	}

	annotator, err := vision.NewImageAnnotatorClient(ctx, option.WithCredentialsFile(creds))
	if err != nil {
		return nil, fmt.Errorf("vision client: %w", err)
	}
	return &Client{annotator: annotator}, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	return c.annotator.Close()
}

// Recognize runs text detection over raw image bytes and joins the detected
// fragments in reading order. An empty result is not an error.
func (c *Client) Recognize(ctx context.Context, img []byte) (string, error) {
	if len(img) == 0 {
		return "", nil
	}

	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	vimg, err := vision.NewImageFromReader(bytes.NewReader(img))
	if err != nil {
		return "", fmt.Errorf("vision image: %w", err)
	}

	annotations, err := c.annotator.DetectTexts(ctx, vimg, nil, 0)
	if err != nil {
		return "", fmt.Errorf("vision detect: %w", err)
	}
	if len(annotations) == 0 {
		return "", nil
	}

	// The first annotation is the full detected block; the rest are the
	// individual fragments in approximate reading order.
	if full := annotations[0].GetDescription(); full != "" {
		return full, nil
	}

	parts := make([]string, 0, len(annotations)-1)
	for _, a := range annotations[1:] {
		if d := a.GetDescription(); d != "" {
			parts = append(parts, d)
		}
	}
	return strings.Join(parts, " "), nil
}
