package ingestion_engine

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"log"
	"os"
	"strings"

	"code.sajari.com/docconv"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"

	_ "image/gif"
)

func init() {
	// gif/jpeg/png register themselves on import; the extended formats come
	// from x/image and need explicit registration.
	image.RegisterFormat("bmp", "BM", bmp.Decode, bmp.DecodeConfig)
	image.RegisterFormat("tiff", "II\x2A\x00", tiff.Decode, tiff.DecodeConfig)
	image.RegisterFormat("tiff", "MM\x00\x2A", tiff.Decode, tiff.DecodeConfig)
	image.RegisterFormat("webp", "RIFF????WEBPVP8", webp.Decode, webp.DecodeConfig)
}

// Extractor turns an input file into an ordered sequence of ContentItems.
// A single call produces either all-Text or all-Image items, never a mix.
type Extractor struct {
	DPI         int
	ImageFormat string // "png" or "jpeg"

	SofficePath  string
	AntiwordPath string
	PdftoppmPath string
}

func NewExtractor(dpi int, imageFormat, sofficePath, antiwordPath, pdftoppmPath string) *Extractor {
	if dpi <= 0 {
		dpi = 200
	}
	if imageFormat == "" {
		imageFormat = "png"
	}
	return &Extractor{
		DPI:          dpi,
		ImageFormat:  strings.ToLower(imageFormat),
		SofficePath:  sofficePath,
		AntiwordPath: antiwordPath,
		PdftoppmPath: pdftoppmPath,
	}
}

// Extract processes PDF, DOCX, DOC, TXT, PPT, PPTX and image files.
//
// ModeNormal extracts text whenever the format allows it; ModeQuality
// converts everything to page images via the office converter and a PDF
// rasterizer.
func (e *Extractor) Extract(ctx context.Context, filePath string, mode Mode) ([]ContentItem, error) {
	if _, err := os.Stat(filePath); err != nil {
		return nil, fmt.Errorf("file not found: %s: %w", filePath, err)
	}

	format, ok := formatForPath(filePath)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filePath)
	}

	if mode == ModeQuality {
		return e.renderPages(ctx, filePath, format)
	}

	switch format {
	case formatPDF:
		return e.extractPDF(filePath)
	case formatDocx:
		return e.extractDocx(filePath)
	case formatDoc:
		return e.extractDoc(ctx, filePath)
	case formatTxt:
		return e.extractTxt(filePath)
	case formatPpt, formatPptx:
		return e.extractSlides(ctx, filePath, format)
	case formatImage:
		return e.extractImage(filePath)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filePath)
	}
}

// extractDocx yields one Text item per non-empty paragraph; docconv emits
// each paragraph on its own line.
func (e *Extractor) extractDocx(filePath string) ([]ContentItem, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open docx: %w", err)
	}
	defer f.Close()

	body, _, err := docconv.ConvertDocx(f)
	if err != nil {
		return nil, fmt.Errorf("%w: docx %s: %v", ErrExtraction, filePath, err)
	}
	return textItemsFromLines(body), nil
}

// extractDoc extracts legacy .doc files through the antiword binary.
func (e *Extractor) extractDoc(ctx context.Context, filePath string) ([]ContentItem, error) {
	out, err := e.runTool(ctx, e.AntiwordPath, filePath)
	if err != nil {
		return nil, err
	}
	return textItemsFromLines(string(out)), nil
}

func (e *Extractor) extractTxt(filePath string) ([]ContentItem, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read txt: %w", err)
	}
	return textItemsFromLines(string(data)), nil
}

// extractImage decodes the file and re-encodes it to the configured image
// format, returning exactly one base64 Image item. Formats with no native
// decoder (notably SVG) fail extraction.
func (e *Extractor) extractImage(filePath string) ([]ContentItem, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: decode image %s: %v", ErrExtraction, filePath, err)
	}

	b64, err := e.encodeImage(img)
	if err != nil {
		return nil, err
	}
	return []ContentItem{{Kind: KindImage, Payload: b64}}, nil
}

// encodeImage encodes img to the extractor's configured format and returns
// the base64 string.
func (e *Extractor) encodeImage(img image.Image) (string, error) {
	var buf bytes.Buffer
	switch e.ImageFormat {
	case "png":
		if err := png.Encode(&buf, img); err != nil {
			return "", fmt.Errorf("%w: encode png: %v", ErrExtraction, err)
		}
	case "jpeg", "jpg":
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
			return "", fmt.Errorf("%w: encode jpeg: %v", ErrExtraction, err)
		}
	default:
		return "", fmt.Errorf("%w: unknown image format %q", ErrExtraction, e.ImageFormat)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// textItemsFromLines splits text into trimmed non-empty lines, one Text item
// each, preserving order.
func textItemsFromLines(text string) []ContentItem {
	var items []ContentItem
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		items = append(items, ContentItem{Kind: KindText, Payload: line})
	}
	if len(items) == 0 {
		log.Printf("extractor: no textual content extracted")
	}
	return items
}
