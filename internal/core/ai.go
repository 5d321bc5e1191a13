package core

import "context"

type EmbeddingProvider interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

type LLMProvider interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error)
}

// VisionProvider runs one vision-capable completion over a single image.
// instruction is the system-level task description; imageData is the raw
// (decoded) image bytes and imageFormat its encoding ("png", "jpeg", ...).
type VisionProvider interface {
	DescribeImage(ctx context.Context, instruction string, imageData []byte, imageFormat string, maxTokens int) (string, error)
}
