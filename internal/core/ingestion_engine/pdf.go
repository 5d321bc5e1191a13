package ingestion_engine

import (
	"fmt"
	"log"
	"os"

	"github.com/unidoc/unipdf/v3/common/license"
	"github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"
)

func init() {
	if key := os.Getenv("UNIDOC_LICENSE_KEY"); key != "" {
		if err := license.SetMeteredKey(key); err != nil {
			log.Printf("extractor: failed to set unidoc license key: %v", err)
		}
	}
}

// extractPDF yields one Text item per non-empty line, in page then line
// order.
func (e *Extractor) extractPDF(filePath string) ([]ContentItem, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	pdfReader, err := model.NewPdfReader(f)
	if err != nil {
		return nil, fmt.Errorf("%w: read pdf %s: %v", ErrExtraction, filePath, err)
	}

	numPages, err := pdfReader.GetNumPages()
	if err != nil {
		return nil, fmt.Errorf("%w: pdf page count %s: %v", ErrExtraction, filePath, err)
	}

	var items []ContentItem
	for i := 1; i <= numPages; i++ {
		page, err := pdfReader.GetPage(i)
		if err != nil {
			return nil, fmt.Errorf("%w: pdf page %d of %s: %v", ErrExtraction, i, filePath, err)
		}

		ex, err := extractor.New(page)
		if err != nil {
			return nil, fmt.Errorf("%w: pdf extractor page %d: %v", ErrExtraction, i, err)
		}

		text, err := ex.ExtractText()
		if err != nil {
			return nil, fmt.Errorf("%w: pdf text page %d: %v", ErrExtraction, i, err)
		}
		items = append(items, textItemsFromLines(text)...)
	}
	return items, nil
}
