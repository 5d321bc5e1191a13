package ingestion_engine

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/docuqa/docuqa/internal/core"
)

// NoImagesSentinel is returned when a resolve call receives no Image items.
// An all-text quality scan with zero pages is a legitimate degenerate case,
// not an error.
const NoImagesSentinel = "No images provided for processing."

const ocrInstruction = `You are an assistant specialized in reading and extracting structured information from images of technical and contractual documents.

Your task:
- Perform a precise reading of the provided document image.
- Extract text accurately, including any tables, labels, and structured data.
- Return only the extracted content.`

// ImageResolver fans page images out to concurrent vision-model calls and
// reassembles the per-page texts in original page order.
type ImageResolver struct {
	vision      core.VisionProvider
	workers     int
	maxTokens   int
	imageFormat string
}

func NewImageResolver(vision core.VisionProvider, workers, maxTokens int, imageFormat string) *ImageResolver {
	if workers <= 0 {
		workers = 10
	}
	if maxTokens <= 0 {
		maxTokens = 1000
	}
	if imageFormat == "" {
		imageFormat = "png"
	}
	return &ImageResolver{vision: vision, workers: workers, maxTokens: maxTokens, imageFormat: imageFormat}
}

// Resolve runs one vision completion per Image item, at most `workers` in
// flight at once, and joins the results with newlines ordered by the image's
// original position — never by completion order. A failing image does not
// abort the batch: its slot carries an inline error marker instead.
func (r *ImageResolver) Resolve(ctx context.Context, items []ContentItem, hint string) string {
	var images []string
	for _, item := range items {
		if item.Kind == KindImage {
			images = append(images, item.Payload)
		}
	}

	if len(images) == 0 {
		log.Println("reader: no images provided for processing")
		return NoImagesSentinel
	}

	log.Printf("reader: processing %d images with %d workers", len(images), r.workers)

	instruction := buildOCRInstruction(hint)
	results := make([]string, len(images))

	g := &errgroup.Group{}
	g.SetLimit(r.workers)
	for idx, img := range images {
		idx, img := idx, img
		g.Go(func() error {
			// Slots are index-keyed and never shared, so completions can
			// land in any order without extra synchronization.
			results[idx] = r.resolveOne(ctx, instruction, img, idx+1)
			return nil
		})
	}
	_ = g.Wait()

	log.Println("reader: finished processing all images")
	return strings.Join(results, "\n")
}

// resolveOne processes a single image; failures are contained and reported
// inline so the batch always completes.
func (r *ImageResolver) resolveOne(ctx context.Context, instruction, imageB64 string, index int) string {
	log.Printf("reader: starting processing of image %d", index)

	data, err := base64.StdEncoding.DecodeString(imageB64)
	if err != nil {
		log.Printf("reader: error decoding image %d: %v", index, err)
		return fmt.Sprintf("Error processing image %d: %v", index, err)
	}

	text, err := r.vision.DescribeImage(ctx, instruction, data, r.imageFormat, r.maxTokens)
	if err != nil {
		log.Printf("reader: error processing image %d: %v", index, err)
		return fmt.Sprintf("Error processing image %d: %v", index, err)
	}

	log.Printf("reader: finished processing of image %d", index)
	return text
}

// buildOCRInstruction appends the caller-supplied document hint, when given,
// to the fixed OCR task instruction.
func buildOCRInstruction(hint string) string {
	if hint == "" {
		return ocrInstruction
	}
	return ocrInstruction +
		"\nAdditional informations about the document: " + hint +
		"\nUse this to guide your final output."
}
