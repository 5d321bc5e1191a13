package ingestion_engine

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ContentKind tags what a ContentItem carries.
type ContentKind int

const (
	KindText ContentKind = iota
	KindImage
)

// ContentItem is the atomic unit produced by extraction. For KindText the
// payload is one logical line, paragraph or slide block; for KindImage it is
// a base64-encoded raster image. Items keep document order, which downstream
// reassembly depends on.
type ContentItem struct {
	Kind    ContentKind
	Payload string
}

// Mode selects the extraction strategy for a document.
type Mode string

const (
	// ModeNormal extracts native text whenever the format allows it.
	ModeNormal Mode = "normal"
	// ModeQuality renders every page to an image for vision-model OCR.
	ModeQuality Mode = "quality"
)

// ParseMode validates a caller-supplied processing mode, defaulting to
// ModeNormal for the empty string.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(s)) {
	case "":
		return ModeNormal, nil
	case ModeNormal:
		return ModeNormal, nil
	case ModeQuality:
		return ModeQuality, nil
	default:
		return "", fmt.Errorf("invalid processing mode %q", s)
	}
}

// fileFormat is the closed set of recognized input formats. Dispatching on
// the enum keeps the unsupported case a single default arm instead of a
// string comparison per branch.
type fileFormat int

const (
	formatPDF fileFormat = iota
	formatDocx
	formatDoc
	formatTxt
	formatPpt
	formatPptx
	formatImage
)

// formatForPath maps a file extension to its format. The second return is
// false for anything outside the recognized set.
func formatForPath(path string) (fileFormat, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return formatPDF, true
	case ".docx":
		return formatDocx, true
	case ".doc":
		return formatDoc, true
	case ".txt":
		return formatTxt, true
	case ".ppt":
		return formatPpt, true
	case ".pptx":
		return formatPptx, true
	case ".png", ".jpg", ".jpeg", ".bmp", ".gif", ".webp", ".tiff", ".svg":
		return formatImage, true
	default:
		return 0, false
	}
}
