// Package ingest turns an uploaded PDF into addressable content units: one
// sanitized text chunk per page with enough content, and embedded images
// persisted to the asset store keyed by page number. An OCR fallback covers
// scanned pages; all per-page and per-image failures are isolated.
package ingest

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"skillsync/internal/assets"
	"skillsync/internal/index"
	"skillsync/internal/models"
)

const (
	// ocrTriggerChars: below this much native text a page is treated as
	// possibly scanned and OCR is attempted.
	ocrTriggerChars = 50
	// minChunkChars: pages with less sanitized text than this are not
	// indexed (near-empty pages are noise, not grounding material).
	minChunkChars = 20
	// minImageBytes filters decorative icons and logos from diagrams.
	minImageBytes = 3072
)

// TextRecognizer is the optional OCR collaborator.
type TextRecognizer interface {
	Recognize(ctx context.Context, img []byte) (string, error)
}

// Result summarizes one ingestion.
type Result struct {
	Chunks          int
	PagesWithImages int
	Info            string
}

// Ingestor owns the upload-to-index pipeline. Each Ingest call fully
// replaces the process-wide chunk list and image map.
type Ingestor struct {
	assets     *assets.Store
	index      *index.Store
	recognizer TextRecognizer
	open       func(path string) (PageSource, error)
}

// NewIngestor wires the pipeline. recognizer may be nil.
func NewIngestor(store *assets.Store, idx *index.Store, recognizer TextRecognizer) *Ingestor {
	return &Ingestor{
		assets:     store,
		index:      idx,
		recognizer: recognizer,
		open:       OpenPDF,
	}
}

// Ingest parses the document at path and rebuilds the content index and
// asset store from it. It returns an error only when the document cannot be
// opened at all; every failure past that point degrades instead.
func (in *Ingestor) Ingest(ctx context.Context, path string) (Result, error) {
	src, err := in.open(path)
	if err != nil {
		return Result{}, err
	}
	defer src.Close()

	// Clear before writing so a new document never resolves against a
	// prior document's images.
	if err := in.assets.Clear(); err != nil {
		log.Warn().Err(err).Msg("failed to clear asset store before ingestion")
	}

	return in.run(ctx, src)
}

func (in *Ingestor) run(ctx context.Context, src PageSource) (Result, error) {
	numPages := src.NumPages()
	log.Info().Int("pages", numPages).Msg("scanning document")

	var chunks []models.Chunk
	for page := 0; page < numPages; page++ {
		text, err := src.Text(page)
		if err != nil {
			log.Warn().Err(err).Int("page", page).Msg("native text extraction failed")
			text = ""
		}

		pageImages := src.Images(page)

		if len(text) < ocrTriggerChars && in.recognizer != nil {
			if recognized := in.tryOCR(ctx, page, pageImages); recognized != "" {
				text = recognized
			}
		}

		if clean := Sanitize(text); len(clean) > minChunkChars {
			chunks = append(chunks, models.Chunk{Text: clean, Page: page})
		}

		for idx, img := range pageImages {
			if len(img.Data) < minImageBytes {
				continue
			}
			if _, err := in.assets.Save(page, idx, img.Type, img.Data); err != nil {
				log.Warn().Err(err).Int("page", page).Int("index", idx).Msg("failed to persist extracted image")
				continue
			}
		}
	}

	in.index.Replace(chunks)
	if err := in.index.RebuildIndex(ctx); err != nil {
		log.Warn().Err(err).Msg("similarity index rebuild failed; continuing without it")
	}

	res := Result{
		Chunks:          len(chunks),
		PagesWithImages: in.assets.PagesWithImages(),
	}
	res.Info = fmt.Sprintf("Indexed %d chunks; images found on %d pages.", res.Chunks, res.PagesWithImages)
	log.Info().Int("chunks", res.Chunks).Int("pages_with_images", res.PagesWithImages).Msg("ingestion complete")
	return res, nil
}

// tryOCR runs text recognition over the page's dominant embedded image. A
// scanned page is typically one full-page raster, so the largest image is
// the best rasterization available without re-rendering the page. OCR is
// best-effort: every failure returns "".
func (in *Ingestor) tryOCR(ctx context.Context, page int, images []PageImage) string {
	var largest *PageImage
	for i := range images {
		if largest == nil || len(images[i].Data) > len(largest.Data) {
			largest = &images[i]
		}
	}
	if largest == nil {
		return ""
	}

	log.Info().Int("page", page).Msg("page looks scanned, attempting OCR")
	recognized, err := in.recognizer.Recognize(ctx, largest.Data)
	if err != nil {
		log.Warn().Err(err).Int("page", page).Msg("OCR failed, keeping native text")
		return ""
	}
	return recognized
}
