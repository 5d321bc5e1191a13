package ingestion_engine

import "fmt"

// Chunk splits text into windows of at most chunkSize characters where each
// window shares its first overlap characters with the tail of the previous
// one. The final window may be shorter. Empty text yields no chunks; text
// shorter than chunkSize yields exactly one. Sizes count runes, not bytes,
// so a window boundary never splits a multi-byte character.
func Chunk(text string, chunkSize, overlap int) ([]string, error) {
	if chunkSize <= overlap {
		return nil, fmt.Errorf("chunk_size=%d overlap=%d: %w", chunkSize, overlap, ErrInvalidChunking)
	}

	runes := []rune(text)
	var chunks []string
	for start := 0; start < len(runes); start += chunkSize - overlap {
		end := start + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks, nil
}
