package ingest

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"skillsync/internal/assets"
	"skillsync/internal/index"
)

// fakeSource feeds synthetic page data through the ingestion pipeline.
type fakeSource struct {
	texts  []string
	images map[int][]PageImage
}

func (f *fakeSource) NumPages() int { return len(f.texts) }
func (f *fakeSource) Text(page int) (string, error) {
	return f.texts[page], nil
}
func (f *fakeSource) Images(page int) []PageImage { return f.images[page] }
func (f *fakeSource) Close() error                { return nil }

type fakeRecognizer struct {
	out   string
	err   error
	calls int
}

func (r *fakeRecognizer) Recognize(_ context.Context, _ []byte) (string, error) {
	r.calls++
	return r.out, r.err
}

func newTestIngestor(t *testing.T, recognizer TextRecognizer) (*Ingestor, *assets.Store, *index.Store) {
	t.Helper()
	store, err := assets.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	idx := index.NewStore(nil)
	return NewIngestor(store, idx, recognizer), store, idx
}

// The three-page scenario: a text-and-image page, an icon-only page and an
// empty page exercise the chunk threshold, the image size filter and the
// page join key at once.
func TestIngestThreePageScenario(t *testing.T) {
	in, store, idx := newTestIngestor(t, nil)

	src := &fakeSource{
		texts: []string{
			strings.Repeat("Relief valve maintenance procedure. ", 6), // ~200 chars
			"",
			"",
		},
		images: map[int][]PageImage{
			0: {{Data: bytes.Repeat([]byte{0xAB}, 10*1024), Type: "jpg"}},
			1: {{Data: bytes.Repeat([]byte{0xCD}, 1024), Type: "png"}}, // below threshold
		},
	}

	res, err := in.run(context.Background(), src)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if res.Chunks != 1 {
		t.Errorf("chunks = %d, want 1", res.Chunks)
	}
	if idx.Len() != 1 {
		t.Errorf("index length = %d, want 1", idx.Len())
	}

	if got := store.ByPage(0); len(got) != 1 || got[0] != "p0_img0.jpg" {
		t.Errorf("page 0 images = %v, want [p0_img0.jpg]", got)
	}
	if got := store.ByPage(1); got != nil {
		t.Errorf("page 1 images = %v, want none (below size threshold)", got)
	}
	if got := store.ByPage(2); got != nil {
		t.Errorf("page 2 images = %v, want none", got)
	}

	chunk := idx.SelectContext()
	if chunk.Page != 0 {
		t.Errorf("selected chunk page = %d, want 0", chunk.Page)
	}
	if strings.Contains(chunk.Text, "\n") {
		t.Errorf("chunk text still contains newlines: %q", chunk.Text)
	}
}

func TestIngestChunkMinimality(t *testing.T) {
	in, _, idx := newTestIngestor(t, nil)

	src := &fakeSource{
		texts: []string{
			"short",                  // below threshold
			"   \n\t  ",              // whitespace only
			strings.Repeat("长文字 ", 20), // enough content
		},
	}

	if _, err := in.run(context.Background(), src); err != nil {
		t.Fatalf("run: %v", err)
	}

	if idx.Len() != 1 {
		t.Fatalf("index length = %d, want 1", idx.Len())
	}
	chunk := idx.SelectContext()
	if chunk.Page != 2 {
		t.Errorf("kept chunk page = %d, want 2", chunk.Page)
	}
	if strings.TrimSpace(chunk.Text) == "" {
		t.Error("kept chunk is whitespace-only")
	}
}

func TestIngestIdempotentReingestion(t *testing.T) {
	in, store, idx := newTestIngestor(t, nil)

	src := &fakeSource{
		texts: []string{strings.Repeat("pressure gauge calibration ", 4), ""},
		images: map[int][]PageImage{
			0: {
				{Data: bytes.Repeat([]byte{0x01}, 4096), Type: "jpg"},
				{Data: bytes.Repeat([]byte{0x02}, 8192), Type: "png"},
			},
		},
	}

	first, err := in.run(context.Background(), src)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}

	// Simulate a fresh upload of the same document.
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	second, err := in.run(context.Background(), src)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if first.Chunks != second.Chunks {
		t.Errorf("chunk counts differ: %d vs %d", first.Chunks, second.Chunks)
	}
	if first.PagesWithImages != second.PagesWithImages {
		t.Errorf("image coverage differs: %d vs %d", first.PagesWithImages, second.PagesWithImages)
	}
	if got := store.ByPage(0); len(got) != 2 {
		t.Errorf("page 0 images after re-ingestion = %v, want 2 entries", got)
	}
	if idx.Len() != second.Chunks {
		t.Errorf("index length = %d, want %d", idx.Len(), second.Chunks)
	}
}

func TestIngestOCRFallbackUsed(t *testing.T) {
	rec := &fakeRecognizer{out: strings.Repeat("recognized scan text ", 3)}
	in, _, idx := newTestIngestor(t, rec)

	src := &fakeSource{
		texts: []string{""}, // scanned page: no native text
		images: map[int][]PageImage{
			0: {{Data: bytes.Repeat([]byte{0xEE}, 64*1024), Type: "jpg"}},
		},
	}

	if _, err := in.run(context.Background(), src); err != nil {
		t.Fatalf("run: %v", err)
	}

	if rec.calls != 1 {
		t.Fatalf("recognizer calls = %d, want 1", rec.calls)
	}
	if idx.Len() != 1 {
		t.Fatalf("index length = %d, want 1 (OCR text should become the chunk)", idx.Len())
	}
	if chunk := idx.SelectContext(); !strings.Contains(chunk.Text, "recognized scan text") {
		t.Errorf("chunk text = %q, want OCR output", chunk.Text)
	}
}

func TestIngestOCRFailureIsSilent(t *testing.T) {
	rec := &fakeRecognizer{err: errors.New("ocr backend down")}
	in, store, idx := newTestIngestor(t, rec)

	src := &fakeSource{
		texts: []string{""},
		images: map[int][]PageImage{
			0: {{Data: bytes.Repeat([]byte{0xEE}, 64*1024), Type: "jpg"}},
		},
	}

	res, err := in.run(context.Background(), src)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if res.Chunks != 0 {
		t.Errorf("chunks = %d, want 0 when OCR fails on a textless page", res.Chunks)
	}
	// Image extraction is independent of the OCR outcome.
	if got := store.ByPage(0); len(got) != 1 {
		t.Errorf("page 0 images = %v, want 1 entry", got)
	}
	if idx.SelectContext().Text != index.DefaultContext {
		t.Error("empty index should fall back to the default context")
	}
}

func TestIngestNotTriggeredOCRWithEnoughText(t *testing.T) {
	rec := &fakeRecognizer{out: "should not be used"}
	in, _, _ := newTestIngestor(t, rec)

	src := &fakeSource{
		texts: []string{strings.Repeat("native text with plenty of content ", 3)},
	}

	if _, err := in.run(context.Background(), src); err != nil {
		t.Fatalf("run: %v", err)
	}
	if rec.calls != 0 {
		t.Errorf("recognizer calls = %d, want 0 for a text-rich page", rec.calls)
	}
}

func TestIngestUnreadableDocument(t *testing.T) {
	in, _, idx := newTestIngestor(t, nil)
	in.open = func(string) (PageSource, error) {
		return nil, errors.New("failed to open document: not a PDF")
	}

	// Seed prior state to verify it survives a failed ingestion.
	seed := &fakeSource{texts: []string{strings.Repeat("prior document content ", 3)}}
	if _, err := in.run(context.Background(), seed); err != nil {
		t.Fatalf("seed run: %v", err)
	}

	if _, err := in.Ingest(context.Background(), "/nonexistent.pdf"); err == nil {
		t.Fatal("Ingest should fail for an unreadable document")
	}
	if idx.Len() != 1 {
		t.Errorf("index length = %d, want prior state kept on failed ingestion", idx.Len())
	}
}
