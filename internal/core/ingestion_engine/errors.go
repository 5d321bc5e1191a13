package ingestion_engine

import "errors"

var (
	// ErrInvalidChunking is returned before any chunk is produced when the
	// window could never advance.
	ErrInvalidChunking = errors.New("chunk_size must be greater than overlap")

	// ErrUnsupportedFormat is returned for file extensions outside the
	// recognized set.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrToolMissing is returned when an external converter binary is not
	// installed or not in PATH.
	ErrToolMissing = errors.New("external converter not found")

	// ErrExtraction is returned when a converter or parser fails on a file
	// of a recognized format.
	ErrExtraction = errors.New("extraction failed")
)
