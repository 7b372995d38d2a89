// Package evidence decides which image accompanies a quiz question. The
// priority is strict: a real image from the selected page beats a generated
// one, and the placeholder tier never fails.
package evidence

import (
	"context"
	"encoding/base64"
	"fmt"
	"math/rand"

	"github.com/rs/zerolog/log"

	"skillsync/internal/assets"
	"skillsync/internal/models"
)

// Provenance labels returned alongside the image reference.
const (
	SourceGenerated   = "AI reconstruction"
	SourceUnavailable = "image unavailable"
)

// PlaceholderURL is the terminal fallback when no document image exists and
// generation fails.
const PlaceholderURL = "https://placehold.co/600x400?text=No+Image"

// StaticPrefix is the URL prefix under which the asset store is served.
const StaticPrefix = "/static/"

// Generator is the image-synthesis collaborator, returning image bytes and
// their media type. A nil Generator skips the generation tier entirely.
type Generator interface {
	Generate(ctx context.Context, visualQuery string) ([]byte, string, error)
}

// Resolver implements the three-tier image policy over the asset store.
type Resolver struct {
	assets    *assets.Store
	generator Generator
}

// NewResolver builds a resolver. generator may be nil.
func NewResolver(store *assets.Store, generator Generator) *Resolver {
	return &Resolver{assets: store, generator: generator}
}

// Resolve returns an image reference for the given zero-based page.
// Document evidence wins when present; otherwise a fresh image is generated
// from the visual query. The placeholder is the tier of last resort and this
// method never fails.
func (r *Resolver) Resolve(ctx context.Context, page int, visualQuery string) models.ImageRef {
	if names := r.assets.ByPage(page); len(names) > 0 {
		name := names[rand.Intn(len(names))]
		log.Info().Int("page", page).Str("file", name).Msg("serving document evidence")
		return models.ImageRef{
			URL:    StaticPrefix + name,
			Source: fmt.Sprintf("manual evidence (page %d)", page+1),
		}
	}

	if r.generator != nil {
		if visualQuery == "" {
			visualQuery = "schematic diagram"
		}
		log.Info().Str("visual_query", visualQuery).Msg("no document evidence, generating diagram")
		data, mediaType, err := r.generator.Generate(ctx, visualQuery)
		if err == nil && len(data) > 0 {
			if mediaType == "" {
				mediaType = "image/png"
			}
			return models.ImageRef{
				URL:    "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data),
				Source: SourceGenerated,
			}
		}
		log.Warn().Err(err).Msg("image generation failed, falling back to placeholder")
	}

	return models.ImageRef{
		URL:    PlaceholderURL,
		Source: SourceUnavailable,
	}
}
