package ingestion

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractText_PlainText(t *testing.T) {
	data := []byte("\xef\xbb\xbf张三\r\n\r\n\r\n\r\n核心技能\r\n• Go    Rust\r\n")

	text, meta, err := ExtractText("resume.txt", data)
	require.NoError(t, err)
	assert.Equal(t, "张三\n\n核心技能\n- Go Rust", text)
	assert.Equal(t, "resume.txt", meta.Name)
	assert.Contains(t, meta.MediaType, MediaTypeText)
	assert.Equal(t, len(data), meta.Size)
	assert.Len(t, meta.Hash, 64)
	assert.Equal(t, 4, meta.Lines)
	assert.Equal(t, len([]rune(text)), meta.Chars)
}

func TestExtractText_Unsupported(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

	_, _, err := ExtractText("photo.png", png)
	var unsupported *UnsupportedFormatError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "image/png", unsupported.MediaType)
}

func TestExtractText_Empty(t *testing.T) {
	_, _, err := ExtractText("empty.txt", nil)
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestExtractText_MalformedPDF(t *testing.T) {
	_, _, err := ExtractText("broken.pdf", []byte("%PDF-1.4\nthis is not really a pdf\n%%EOF"))
	var extraction *ExtractionError
	require.ErrorAs(t, err, &extraction)
	assert.Equal(t, "PDF", extraction.Format)
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "jd.txt")
	require.NoError(t, os.WriteFile(path, []byte("# Backend Engineer\n\nGo   required"), 0o644))

	text, meta, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# Backend Engineer\n\nGo required", text)
	assert.Equal(t, "jd.txt", meta.Name)

	_, _, err = ReadFile(filepath.Join(dir, "missing.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file not found")
}

func TestMetadata_HashStable(t *testing.T) {
	a := NewMetadata("a", MediaTypeText, 1, "same")
	b := NewMetadata("b", MediaTypeText, 1, "same")
	c := NewMetadata("c", MediaTypeText, 1, "other")

	assert.Equal(t, a.Hash, b.Hash)
	assert.NotEqual(t, a.Hash, c.Hash)
	assert.Equal(t, 1, a.Lines)
	assert.Zero(t, NewMetadata("empty", MediaTypeText, 0, "").Lines)
}
