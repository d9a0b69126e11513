package document

import (
	"context"
	"errors"
	"hash/fnv"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"handbook-rag/internal/adapter/vectorstore/memory"
	"handbook-rag/internal/domain/entity"
)

// fakeExtractor treats the input bytes as plain text, with form feeds as
// page breaks. Content starting with "corrupt" fails like a bad PDF.
type fakeExtractor struct{}

func (fakeExtractor) ExtractPages(data []byte) ([]entity.PageText, error) {
	text := string(data)
	if strings.HasPrefix(text, "corrupt") {
		return nil, &entity.ExtractionError{Err: errors.New("not a parseable PDF")}
	}
	var pages []entity.PageText
	for i, part := range strings.Split(text, "\f") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		pages = append(pages, entity.PageText{Page: i + 1, Text: part})
	}
	if len(pages) == 0 {
		return nil, &entity.ExtractionError{Err: errors.New("no extractable text")}
	}
	return pages, nil
}

// fakeEmbedder returns a deterministic vector per input text.
type fakeEmbedder struct {
	fail bool
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := f.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if f.fail {
		return nil, &entity.EmbeddingError{Err: errors.New("service unavailable")}
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = hashVector(text)
	}
	return vectors, nil
}

func hashVector(text string) []float32 {
	vec := make([]float32, 8)
	for i := range vec {
		h := fnv.New32a()
		io.WriteString(h, text)
		h.Write([]byte{byte(i)})
		vec[i] = float32(h.Sum32()%1000) / 1000
	}
	return vec
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestKB(t *testing.T, embedder EmbeddingService, seedDir string) *KnowledgeBase {
	t.Helper()
	chunker, err := NewChunker(50, 10)
	require.NoError(t, err)
	return NewKnowledgeBase(memory.New(), embedder, fakeExtractor{}, chunker, seedDir, time.Minute, testLogger())
}

func TestIngestRegistersDocument(t *testing.T) {
	kb := newTestKB(t, &fakeEmbedder{}, t.TempDir())
	ctx := context.Background()

	content := strings.Repeat("regulatory text ", 20) // well past one chunk
	doc, err := kb.Ingest(ctx, []byte(content), "handbook.pdf", entity.OriginUploaded)
	require.NoError(t, err)

	// chunk count must match what the chunker independently produces
	chunker, err := NewChunker(50, 10)
	require.NoError(t, err)
	pages, err := fakeExtractor{}.ExtractPages([]byte(content))
	require.NoError(t, err)
	expected := len(chunker.ChunkPages(doc.ID, "handbook.pdf", pages))
	require.Greater(t, expected, 1)

	assert.Equal(t, "handbook.pdf", doc.ID)
	assert.Equal(t, entity.OriginUploaded, doc.Origin)
	assert.Equal(t, expected, doc.TotalChunks)

	st := kb.Status()
	assert.True(t, st.Ready)
	require.Len(t, st.Documents, 1)
	assert.Equal(t, expected, st.TotalChunks)
}

func TestIngestRejectsNonPDF(t *testing.T) {
	kb := newTestKB(t, &fakeEmbedder{}, t.TempDir())

	_, err := kb.Ingest(context.Background(), []byte("plain text"), "notes.txt", entity.OriginUploaded)
	assert.ErrorIs(t, err, entity.ErrNotPDF)
	assert.False(t, kb.Status().Ready)
}

func TestIngestEmbedFailureRollsBack(t *testing.T) {
	kb := newTestKB(t, &fakeEmbedder{fail: true}, t.TempDir())

	_, err := kb.Ingest(context.Background(), []byte("some content here"), "a.pdf", entity.OriginUploaded)
	require.Error(t, err)

	var ingestErr *entity.IngestionError
	require.ErrorAs(t, err, &ingestErr)
	assert.Equal(t, entity.StageEmbed, ingestErr.Stage)

	var embedErr *entity.EmbeddingError
	assert.ErrorAs(t, err, &embedErr)

	st := kb.Status()
	assert.False(t, st.Ready)
	assert.Empty(t, st.Documents)
	assert.Zero(t, st.TotalChunks)
}

func TestIngestExtractionFailure(t *testing.T) {
	kb := newTestKB(t, &fakeEmbedder{}, t.TempDir())

	_, err := kb.Ingest(context.Background(), []byte("corrupt garbage"), "bad.pdf", entity.OriginUploaded)
	require.Error(t, err)

	var ingestErr *entity.IngestionError
	require.ErrorAs(t, err, &ingestErr)
	assert.Equal(t, entity.StageExtract, ingestErr.Stage)
	assert.False(t, kb.Status().Ready)
}

func TestReingestReplacesDocument(t *testing.T) {
	kb := newTestKB(t, &fakeEmbedder{}, t.TempDir())
	ctx := context.Background()

	_, err := kb.Ingest(ctx, []byte(strings.Repeat("first version ", 30)), "a.pdf", entity.OriginUploaded)
	require.NoError(t, err)

	second, err := kb.Ingest(ctx, []byte("short second version"), "a.pdf", entity.OriginUploaded)
	require.NoError(t, err)

	st := kb.Status()
	require.Len(t, st.Documents, 1)
	assert.Equal(t, second.TotalChunks, st.TotalChunks)
}

func TestConcurrentIngest(t *testing.T) {
	kb := newTestKB(t, &fakeEmbedder{}, t.TempDir())
	ctx := context.Background()

	var wg sync.WaitGroup
	files := map[string]string{
		"a.pdf": strings.Repeat("alpha content ", 25),
		"b.pdf": strings.Repeat("bravo content ", 25),
	}
	errs := make(chan error, len(files))
	for name, content := range files {
		wg.Add(1)
		go func(name, content string) {
			defer wg.Done()
			_, err := kb.Ingest(ctx, []byte(content), name, entity.OriginUploaded)
			errs <- err
		}(name, content)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	st := kb.Status()
	require.Len(t, st.Documents, 2)

	sum := 0
	for _, doc := range st.Documents {
		sum += doc.TotalChunks
	}
	assert.Equal(t, sum, st.TotalChunks)
}

func TestReloadSeedDocumentsPartialFailure(t *testing.T) {
	seedDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(seedDir, "good-one.pdf"), []byte(strings.Repeat("one ", 40)), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(seedDir, "good-two.pdf"), []byte(strings.Repeat("two ", 40)), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(seedDir, "broken.pdf"), []byte("corrupt bytes"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(seedDir, "readme.txt"), []byte("not a pdf"), 0o644))

	kb := newTestKB(t, &fakeEmbedder{}, seedDir)

	result, err := kb.ReloadSeedDocuments(context.Background())
	require.NoError(t, err)

	assert.Len(t, result.Loaded, 2)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "broken.pdf", result.Failures[0].Filename)
	assert.Contains(t, result.Failures[0].Reason, entity.StageExtract)

	st := kb.Status()
	assert.True(t, st.Ready)
	assert.Len(t, st.Documents, 2)
}

func TestReloadDropsStaleSeedKeepsUploads(t *testing.T) {
	seedDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(seedDir, "stays.pdf"), []byte("seed that stays"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(seedDir, "goes.pdf"), []byte("seed that goes"), 0o644))

	kb := newTestKB(t, &fakeEmbedder{}, seedDir)
	ctx := context.Background()

	_, err := kb.Ingest(ctx, []byte("user upload content"), "user.pdf", entity.OriginUploaded)
	require.NoError(t, err)

	_, err = kb.ReloadSeedDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, kb.Status().Documents, 3)

	require.NoError(t, os.Remove(filepath.Join(seedDir, "goes.pdf")))

	result, err := kb.ReloadSeedDocuments(ctx)
	require.NoError(t, err)
	assert.Len(t, result.Loaded, 1)
	assert.Empty(t, result.Failures)

	st := kb.Status()
	ids := make([]string, 0, len(st.Documents))
	for _, doc := range st.Documents {
		ids = append(ids, doc.ID)
	}
	assert.ElementsMatch(t, []string{"stays.pdf", "user.pdf"}, ids)
}

func TestSeedFilesMissingDirIsEmpty(t *testing.T) {
	kb := newTestKB(t, &fakeEmbedder{}, filepath.Join(t.TempDir(), "nope"))

	names, err := kb.SeedFiles()
	require.NoError(t, err)
	assert.Empty(t, names)
}
