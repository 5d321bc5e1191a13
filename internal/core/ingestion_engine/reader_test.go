package ingestion_engine

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeVision answers with a canned text per image payload and can be told to
// fail specific payloads. Delays vary per call to shake out ordering bugs.
type fakeVision struct {
	mu       sync.Mutex
	calls    int
	failOn   map[string]bool
	delays   []time.Duration
	lastHint string
}

func (f *fakeVision) DescribeImage(ctx context.Context, instruction string, imageData []byte, imageFormat string, maxTokens int) (string, error) {
	f.mu.Lock()
	n := f.calls
	f.calls++
	f.lastHint = instruction
	f.mu.Unlock()

	if len(f.delays) > 0 {
		time.Sleep(f.delays[n%len(f.delays)])
	}

	payload := string(imageData)
	if f.failOn[payload] {
		return "", fmt.Errorf("model refused")
	}
	return "text of " + payload, nil
}

func imageItem(payload string) ContentItem {
	return ContentItem{Kind: KindImage, Payload: base64.StdEncoding.EncodeToString([]byte(payload))}
}

func TestResolveNoImages(t *testing.T) {
	r := NewImageResolver(&fakeVision{}, 4, 100, "png")

	out := r.Resolve(context.Background(), nil, "")
	assert.Equal(t, NoImagesSentinel, out)

	out = r.Resolve(context.Background(), []ContentItem{{Kind: KindText, Payload: "only text"}}, "")
	assert.Equal(t, NoImagesSentinel, out)
}

func TestResolveKeepsImageOrder(t *testing.T) {
	vision := &fakeVision{delays: []time.Duration{30 * time.Millisecond, 1 * time.Millisecond, 15 * time.Millisecond}}
	r := NewImageResolver(vision, 3, 100, "png")

	items := []ContentItem{
		imageItem("page1"),
		imageItem("page2"),
		imageItem("page3"),
		imageItem("page4"),
		imageItem("page5"),
	}

	out := r.Resolve(context.Background(), items, "")
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 5)
	for i, line := range lines {
		assert.Equal(t, fmt.Sprintf("text of page%d", i+1), line)
	}
}

func TestResolveContainsPerImageFailure(t *testing.T) {
	vision := &fakeVision{failOn: map[string]bool{"page3": true}}
	r := NewImageResolver(vision, 2, 100, "png")

	items := []ContentItem{
		imageItem("page1"),
		imageItem("page2"),
		imageItem("page3"),
		imageItem("page4"),
		imageItem("page5"),
	}

	out := r.Resolve(context.Background(), items, "")
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "text of page1", lines[0])
	assert.Equal(t, "text of page2", lines[1])
	assert.Contains(t, lines[2], "Error processing image 3:")
	assert.Equal(t, "text of page4", lines[3])
	assert.Equal(t, "text of page5", lines[4])
}

func TestResolveBadBase64Contained(t *testing.T) {
	r := NewImageResolver(&fakeVision{}, 2, 100, "png")

	items := []ContentItem{
		imageItem("page1"),
		{Kind: KindImage, Payload: "!!not-base64!!"},
	}

	out := r.Resolve(context.Background(), items, "")
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "text of page1", lines[0])
	assert.Contains(t, lines[1], "Error processing image 2:")
}

func TestResolveHintReachesInstruction(t *testing.T) {
	vision := &fakeVision{}
	r := NewImageResolver(vision, 1, 100, "png")

	r.Resolve(context.Background(), []ContentItem{imageItem("page1")}, "quarterly sales contract")
	assert.Contains(t, vision.lastHint, "quarterly sales contract")

	r.Resolve(context.Background(), []ContentItem{imageItem("page1")}, "")
	assert.NotContains(t, vision.lastHint, "Additional informations")
}
