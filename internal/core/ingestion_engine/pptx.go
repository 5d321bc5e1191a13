package ingestion_engine

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const drawingMLNamespace = "http://schemas.openxmlformats.org/drawingml/2006/main"

var slideNamePattern = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// extractSlides yields one Text item per slide that has any shape text,
// shape texts newline-joined, in slide order. Legacy .ppt files are first
// converted to .pptx with the office converter inside a scoped temp dir.
func (e *Extractor) extractSlides(ctx context.Context, filePath string, format fileFormat) ([]ContentItem, error) {
	if format == formatPpt {
		tmpDir, err := os.MkdirTemp("", "docuqa-ppt-")
		if err != nil {
			return nil, fmt.Errorf("create temp dir: %w", err)
		}
		defer os.RemoveAll(tmpDir)

		converted, err := e.convertOffice(ctx, filePath, tmpDir, "pptx")
		if err != nil {
			return nil, err
		}
		return readSlideTexts(converted)
	}
	return readSlideTexts(filePath)
}

// readSlideTexts walks the OOXML package directly. docconv would flatten
// all slides into one string; the per-slide grouping matters downstream.
func readSlideTexts(filePath string) ([]ContentItem, error) {
	zr, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: open pptx %s: %v", ErrExtraction, filePath, err)
	}
	defer zr.Close()

	type slideFile struct {
		num  int
		file *zip.File
	}
	var slides []slideFile
	for _, f := range zr.File {
		m := slideNamePattern.FindStringSubmatch(path.Clean(f.Name))
		if m == nil {
			continue
		}
		n, _ := strconv.Atoi(m[1])
		slides = append(slides, slideFile{num: n, file: f})
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].num < slides[j].num })

	var items []ContentItem
	for _, s := range slides {
		text, err := slideText(s.file)
		if err != nil {
			return nil, fmt.Errorf("%w: slide %d of %s: %v", ErrExtraction, s.num, filePath, err)
		}
		if text == "" {
			continue
		}
		items = append(items, ContentItem{Kind: KindText, Payload: text})
	}
	return items, nil
}

// slideText concatenates the slide's text runs, one line per DrawingML
// paragraph, skipping empty paragraphs.
func slideText(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	dec := xml.NewDecoder(rc)
	var (
		lines   []string
		current strings.Builder
		inPara  bool
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != drawingMLNamespace {
				continue
			}
			switch t.Name.Local {
			case "p":
				inPara = true
				current.Reset()
			case "t":
				var run string
				if err := dec.DecodeElement(&run, &t); err != nil {
					return "", err
				}
				current.WriteString(run)
			}
		case xml.EndElement:
			if inPara && t.Name.Space == drawingMLNamespace && t.Name.Local == "p" {
				if line := strings.TrimSpace(current.String()); line != "" {
					lines = append(lines, line)
				}
				inPara = false
			}
		}
	}
	return strings.Join(lines, "\n"), nil
}
