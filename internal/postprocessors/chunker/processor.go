// Package chunker provides a sentence-boundary text chunker with overlap.
package chunker

import (
	"unicode/utf8"

	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/core/ports/driven"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// Ensure Processor implements the interface.
var _ driven.Chunker = (*Processor)(nil)

// Processor splits document content into chunks that end on sentence
// boundaries where possible. The trailing Overlap characters of each chunk
// recur at the start of the next one.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Threshold returns the content length above which documents are chunked.
func (p *Processor) Threshold() int {
	return p.chunkSize
}

// Overlap returns the configured overlap.
func (p *Processor) Overlap() int {
	return p.overlap
}

// Split divides content into chunks. Content no longer than the chunk size
// produces no chunks. A trailing chunk shorter than the overlap is kept as-is.
func (p *Processor) Split(documentID, content string) []domain.Chunk {
	n := len(content)
	if n <= p.chunkSize {
		return nil
	}

	ends := sentenceEnds(content)
	chunks := make([]domain.Chunk, 0, n/(p.chunkSize-p.overlap)+1)

	start, prevEnd := 0, 0
	for start < n {
		end := n
		if start+p.chunkSize < n {
			end = lastBoundary(ends, prevEnd, start+p.chunkSize)
			if end == 0 {
				// No sentence ends in range; cut hard on a rune boundary.
				end = runeFloor(content, start+p.chunkSize)
				if end <= prevEnd {
					end = runeCeil(content, prevEnd+1)
				}
			}
		}

		chunks = append(chunks, domain.Chunk{
			DocumentID:  documentID,
			Index:       len(chunks),
			Content:     content[start:end],
			StartOffset: start,
			EndOffset:   end,
		})

		if end >= n {
			break
		}

		next := runeFloor(content, end-p.overlap)
		if next <= start {
			next = end
		}
		start, prevEnd = next, end
	}

	return chunks
}

// sentenceEnds returns the exclusive offsets at which sentences end: after a
// terminator followed by whitespace, or after a newline.
func sentenceEnds(content string) []int {
	var ends []int
	for i := 0; i < len(content); i++ {
		switch content[i] {
		case '\n':
			ends = append(ends, i+1)
		case '.', '!', '?':
			if i+1 < len(content) && isSpace(content[i+1]) {
				ends = append(ends, i+1)
			}
		}
	}
	return ends
}

// lastBoundary returns the largest boundary b with after < b <= limit, or 0.
func lastBoundary(ends []int, after, limit int) int {
	best := 0
	for _, b := range ends {
		if b > limit {
			break
		}
		if b > after {
			best = b
		}
	}
	return best
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// runeFloor moves i back to the start of the rune containing it.
func runeFloor(s string, i int) int {
	if i <= 0 {
		return 0
	}
	if i >= len(s) {
		return len(s)
	}
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}

// runeCeil moves i forward to the next rune start.
func runeCeil(s string, i int) int {
	if i >= len(s) {
		return len(s)
	}
	for i < len(s) && !utf8.RuneStart(s[i]) {
		i++
	}
	return i
}
