package text

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// ErrBadChunkConfig is returned for window configurations that could make
// the chunker loop forever or emit empty windows.
var ErrBadChunkConfig = errors.New("chunk overlap must be non-negative and smaller than chunk size")

type ChunkType string

const (
	ChunkTypeProse ChunkType = "prose"
	ChunkTypeCode  ChunkType = "code"
)

const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// Chunker splits raw document text into overlapping windows, preferring to
// cut at sentence boundaries so chunks stay coherent for embedding.
type Chunker struct {
	size    int
	overlap int
}

func NewChunker(size, overlap int) (*Chunker, error) {
	if size <= 0 || overlap < 0 || overlap >= size {
		return nil, ErrBadChunkConfig
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Chunk walks the text in windows of the configured size. For every window
// except the last, it searches backward for the last sentence-terminating
// period or newline; if that cut point lies in the back half of the window
// the chunk is truncated there instead of at the hard boundary. The start
// pointer then advances to end-overlap so adjacent chunks share context;
// the advance is floored at the previous chunk end so a soft cut landing
// inside the overlap region cannot walk the window backward.
func (c *Chunker) Chunk(text string) []string {
	if text == "" {
		return nil
	}

	var chunks []string
	start := 0

	for start < len(text) {
		end := runeFloor(text, start, start+c.size)
		chunkEnd := end
		if chunkEnd > len(text) {
			chunkEnd = len(text)
		}

		if end < len(text) {
			window := text[start:end]
			lastPeriod := strings.LastIndexByte(window, '.')
			lastNewline := strings.LastIndexByte(window, '\n')
			cut := lastPeriod
			if lastNewline > cut {
				cut = lastNewline
			}
			// Only honor the soft cut when it keeps at least half the window.
			if cut > c.size/2 {
				chunkEnd = start + cut + 1
				end = chunkEnd
			}
		}

		chunks = append(chunks, strings.TrimSpace(text[start:chunkEnd]))

		next := runeCeil(text, end-c.overlap)
		if next <= start {
			next = chunkEnd
		}
		start = next
	}

	return chunks
}

// runeFloor backs end off to the nearest rune boundary at or before it, so
// a hard window cut never splits a multi-byte rune. Positions past the text
// or at an ASCII boundary are returned unchanged.
func runeFloor(text string, start, end int) int {
	if end >= len(text) {
		return end
	}
	for end > start && !utf8.RuneStart(text[end]) {
		end--
	}
	if end == start {
		return start + 1
	}
	return end
}

// runeCeil advances pos to the nearest rune boundary at or after it.
func runeCeil(text string, pos int) int {
	for pos > 0 && pos < len(text) && !utf8.RuneStart(text[pos]) {
		pos++
	}
	return pos
}

// Size reports the configured window size in characters.
func (c *Chunker) Size() int { return c.size }

// Overlap reports the configured overlap in characters.
func (c *Chunker) Overlap() int { return c.overlap }
