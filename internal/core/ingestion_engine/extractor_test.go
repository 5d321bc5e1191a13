package ingestion_engine

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testExtractor() *Extractor {
	return NewExtractor(200, "png", "soffice", "antiword", "pdftoppm")
}

func TestExtractUnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.xyz")
	require.NoError(t, os.WriteFile(path, []byte("payload"), 0o600))

	_, err := testExtractor().Extract(context.Background(), path, ModeNormal)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestExtractMissingFile(t *testing.T) {
	_, err := testExtractor().Extract(context.Background(), filepath.Join(t.TempDir(), "absent.txt"), ModeNormal)
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestExtractTxt(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("first line\n\n  second line  \n\t\n"), 0o600))

	items, err := testExtractor().Extract(context.Background(), path, ModeNormal)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, ContentItem{Kind: KindText, Payload: "first line"}, items[0])
	assert.Equal(t, ContentItem{Kind: KindText, Payload: "second line"}, items[1])
}

func TestExtractImagePNG(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scan.png")

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 60), G: uint8(y * 60), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	items, err := testExtractor().Extract(context.Background(), path, ModeNormal)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, KindImage, items[0].Kind)

	raw, err := base64.StdEncoding.DecodeString(items[0].Payload)
	require.NoError(t, err)
	decoded, format, err := image.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, image.Rect(0, 0, 4, 4), decoded.Bounds())
}

func TestExtractImageCorruptFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.png")
	require.NoError(t, os.WriteFile(path, []byte("<svg></svg>"), 0o600))

	_, err := testExtractor().Extract(context.Background(), path, ModeNormal)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrExtraction))
}

func TestExtractDocMissingAntiword(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "legacy.doc")
	require.NoError(t, os.WriteFile(path, []byte{0xD0, 0xCF, 0x11, 0xE0}, 0o600))

	e := NewExtractor(200, "png", "soffice", "definitely-absent-antiword", "pdftoppm")
	_, err := e.Extract(context.Background(), path, ModeNormal)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrToolMissing))
	assert.Contains(t, err.Error(), "definitely-absent-antiword")
}

func TestExtractQualityMissingConverters(t *testing.T) {
	dir := t.TempDir()

	t.Run("office converter", func(t *testing.T) {
		path := filepath.Join(dir, "report.docx")
		require.NoError(t, os.WriteFile(path, []byte("PK"), 0o600))

		e := NewExtractor(200, "png", "definitely-absent-soffice", "antiword", "pdftoppm")
		_, err := e.Extract(context.Background(), path, ModeQuality)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrToolMissing))
	})

	t.Run("rasterizer", func(t *testing.T) {
		path := filepath.Join(dir, "report.pdf")
		require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o600))

		e := NewExtractor(200, "png", "soffice", "antiword", "definitely-absent-pdftoppm")
		_, err := e.Extract(context.Background(), path, ModeQuality)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrToolMissing))
	})
}

const slideTemplate = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"
       xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">
  <p:cSld><p:spTree>
    <p:sp><p:txBody>
      <a:p><a:r><a:t>%TITLE%</a:t></a:r></a:p>
      <a:p><a:r><a:t>%BODY%</a:t></a:r></a:p>
      <a:p><a:r><a:t> </a:t></a:r></a:p>
    </p:txBody></p:sp>
  </p:spTree></p:cSld>
</p:sld>`

func writeTestPptx(t *testing.T, path string, slides map[string][2]string) {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, texts := range slides {
		w, err := zw.Create(name)
		require.NoError(t, err)
		content := strings.ReplaceAll(slideTemplate, "%TITLE%", texts[0])
		content = strings.ReplaceAll(content, "%BODY%", texts[1])
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
}

func TestExtractPptxSlideOrderAndGrouping(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deck.pptx")

	// slide10 written alongside slide2 to prove numeric, not lexical, order.
	writeTestPptx(t, path, map[string][2]string{
		"ppt/slides/slide2.xml":  {"Second slide", "more detail"},
		"ppt/slides/slide1.xml":  {"First slide", "intro"},
		"ppt/slides/slide10.xml": {"Tenth slide", "closing"},
		"ppt/media/image1.png":   {"not", "a slide"},
	})

	items, err := testExtractor().Extract(context.Background(), path, ModeNormal)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, ContentItem{Kind: KindText, Payload: "First slide\nintro"}, items[0])
	assert.Equal(t, ContentItem{Kind: KindText, Payload: "Second slide\nmore detail"}, items[1])
	assert.Equal(t, ContentItem{Kind: KindText, Payload: "Tenth slide\nclosing"}, items[2])
}

func TestParseMode(t *testing.T) {
	cases := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModeNormal, false},
		{"normal", ModeNormal, false},
		{"quality", ModeQuality, false},
		{"QUALITY", ModeQuality, false},
		{"fast", "", true},
	}
	for _, tc := range cases {
		got, err := ParseMode(tc.in)
		if tc.wantErr {
			assert.Error(t, err, "input %q", tc.in)
			continue
		}
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

func TestFormatForPath(t *testing.T) {
	for ext, want := range map[string]fileFormat{
		"report.PDF": formatPDF,
		"a.docx":     formatDocx,
		"a.doc":      formatDoc,
		"a.txt":      formatTxt,
		"a.ppt":      formatPpt,
		"a.pptx":     formatPptx,
		"a.jpeg":     formatImage,
		"a.svg":      formatImage,
	} {
		got, ok := formatForPath(ext)
		require.True(t, ok, ext)
		assert.Equal(t, want, got, ext)
	}

	_, ok := formatForPath("archive.tar.gz")
	assert.False(t, ok)
}
