package ingestion_engine

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// renderPages implements quality mode: every page of the document becomes
// one base64 Image item at the configured DPI. Non-PDF inputs are first
// converted to PDF with the office converter inside a temp dir that is
// removed on every exit path; PDF inputs render directly.
func (e *Extractor) renderPages(ctx context.Context, filePath string, format fileFormat) ([]ContentItem, error) {
	tmpDir, err := os.MkdirTemp("", "docuqa-render-")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	pdfPath := filePath
	if format != formatPDF {
		pdfPath, err = e.convertOffice(ctx, filePath, tmpDir, "pdf")
		if err != nil {
			return nil, err
		}
	}

	return e.rasterizePDF(ctx, pdfPath, tmpDir)
}

// convertOffice converts any supported document to targetExt using the
// office converter (headless), returning the converted file's path inside
// outDir.
func (e *Extractor) convertOffice(ctx context.Context, inputPath, outDir, targetExt string) (string, error) {
	_, err := e.runTool(ctx, e.SofficePath,
		"--headless",
		"--convert-to", targetExt,
		"--outdir", outDir,
		inputPath,
	)
	if err != nil {
		return "", err
	}

	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	converted := filepath.Join(outDir, base+"."+targetExt)
	if _, err := os.Stat(converted); err != nil {
		return "", fmt.Errorf("%w: converter produced no %s for %s", ErrExtraction, targetExt, inputPath)
	}
	return converted, nil
}

// rasterizePDF renders each page of pdfPath into workDir at the configured
// DPI and returns the pages as base64 Image items in page order.
func (e *Extractor) rasterizePDF(ctx context.Context, pdfPath, workDir string) ([]ContentItem, error) {
	formatFlag, ext := "-png", "png"
	if e.ImageFormat == "jpeg" || e.ImageFormat == "jpg" {
		formatFlag, ext = "-jpeg", "jpg"
	}

	prefix := filepath.Join(workDir, "page")
	_, err := e.runTool(ctx, e.PdftoppmPath,
		"-r", strconv.Itoa(e.DPI),
		formatFlag,
		pdfPath,
		prefix,
	)
	if err != nil {
		return nil, err
	}

	pages, err := filepath.Glob(prefix + "-*." + ext)
	if err != nil {
		return nil, fmt.Errorf("list rendered pages: %w", err)
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: rasterizer produced no pages for %s", ErrExtraction, pdfPath)
	}
	sortPageFiles(pages)

	items := make([]ContentItem, 0, len(pages))
	for _, p := range pages {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read rendered page %s: %w", p, err)
		}
		items = append(items, ContentItem{
			Kind:    KindImage,
			Payload: base64.StdEncoding.EncodeToString(data),
		})
	}
	log.Printf("extractor: rendered %d pages from %s at %d dpi", len(items), filepath.Base(pdfPath), e.DPI)
	return items, nil
}

// sortPageFiles orders rasterizer output by page number. The rasterizer
// zero-pads inconsistently across versions, so lexical order is not enough.
func sortPageFiles(files []string) {
	sort.Slice(files, func(i, j int) bool {
		return pageNumber(files[i]) < pageNumber(files[j])
	})
}

func pageNumber(file string) int {
	name := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	idx := strings.LastIndex(name, "-")
	if idx < 0 {
		return 0
	}
	n, err := strconv.Atoi(name[idx+1:])
	if err != nil {
		return 0
	}
	return n
}

// runTool runs an external converter, distinguishing a missing binary from
// a failed conversion.
func (e *Extractor) runTool(ctx context.Context, tool string, args ...string) ([]byte, error) {
	path, err := exec.LookPath(tool)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrToolMissing, tool)
	}

	cmd := exec.CommandContext(ctx, path, args...)
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("%w: %s exited %d: %s", ErrExtraction, tool, exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
		}
		return nil, fmt.Errorf("%w: run %s: %v", ErrExtraction, tool, err)
	}
	return []byte(stdout.String()), nil
}
