package ingest

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/rs/zerolog/log"
)

// PageImage is one embedded raster image as extracted, with its native
// encoding preserved (Type is the file extension, e.g. "jpg" or "png").
type PageImage struct {
	Data []byte
	Type string
}

// PageSource yields per-page text and embedded images for one document.
type PageSource interface {
	NumPages() int
	Text(page int) (string, error)
	Images(page int) []PageImage
	Close() error
}

// pdfSource reads text through ledongthuc/pdf and embedded images through
// pdfcpu. Images are ripped once at open time; text is parsed lazily per
// page so a malformed page cannot block the rest of the document.
type pdfSource struct {
	file   *os.File
	reader *pdf.Reader
	images map[int][]PageImage
}

// OpenPDF opens a PDF as a PageSource. An unparseable document is the one
// hard ingestion failure; image-extraction trouble only degrades the image
// map.
func OpenPDF(path string) (PageSource, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}

	images, err := extractImages(path)
	if err != nil {
		log.Warn().Err(err).Msg("image extraction failed; continuing text-only")
		images = nil
	}

	return &pdfSource{file: f, reader: reader, images: images}, nil
}

func (s *pdfSource) NumPages() int {
	return s.reader.NumPage()
}

// Text extracts native text for a zero-based page. The underlying parser
// panics on some malformed content streams; that is converted to an error so
// one bad page never aborts ingestion.
func (s *pdfSource) Text(page int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("text extraction failed on page %d: %v", page, r)
		}
	}()

	p := s.reader.Page(page + 1)
	if p.V.IsNull() {
		return "", nil
	}
	return p.GetPlainText(nil)
}

func (s *pdfSource) Images(page int) []PageImage {
	return s.images[page]
}

func (s *pdfSource) Close() error {
	return s.file.Close()
}

// extractImages rips every embedded raster image, keyed by zero-based page.
// Per-image failures are skipped.
func extractImages(path string) (map[int][]PageImage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	pages, err := api.ExtractImagesRaw(f, nil, conf)
	if err != nil {
		return nil, fmt.Errorf("failed to extract images: %w", err)
	}

	out := make(map[int][]PageImage)
	for _, byObj := range pages {
		for _, img := range objOrdered(byObj) {
			if img.Thumb {
				continue
			}
			data, err := io.ReadAll(img)
			if err != nil || len(data) == 0 {
				log.Warn().Err(err).Int("page", img.PageNr).Msg("skipping unreadable embedded image")
				continue
			}
			page := img.PageNr - 1
			out[page] = append(out[page], PageImage{Data: data, Type: img.FileType})
		}
	}
	return out, nil
}

// objOrdered flattens one page's extracted images in object-number order so
// every re-ingestion of the same document assigns the same storage keys.
func objOrdered(byObj map[int]model.Image) []model.Image {
	nrs := make([]int, 0, len(byObj))
	for nr := range byObj {
		nrs = append(nrs, nr)
	}
	sort.Ints(nrs)

	out := make([]model.Image, 0, len(nrs))
	for _, nr := range nrs {
		out = append(out, byObj[nr])
	}
	return out
}
