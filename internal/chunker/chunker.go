package chunker

import (
	"fmt"
	"strings"
)

// Chunker splits normalized text into fixed-size character windows with
// a configured overlap between consecutive windows.
type Chunker struct {
	size    int
	overlap int
}

// New rejects window parameters that cannot make forward progress.
func New(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunker: size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("chunker: overlap must be in [0, size), got %d with size %d", overlap, size)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Split normalizes whitespace and emits overlapping windows. Windows
// advance by size-overlap runes; the final window may be shorter and
// iteration stops once a window reaches the end of the text.
func (c *Chunker) Split(text string) []string {
	cleaned := []rune(strings.Join(strings.Fields(text), " "))
	if len(cleaned) == 0 {
		return nil
	}

	var chunks []string
	start := 0
	for start < len(cleaned) {
		end := min(start+c.size, len(cleaned))
		chunks = append(chunks, string(cleaned[start:end]))
		if end == len(cleaned) {
			break
		}
		start = end - c.overlap
	}
	return chunks
}
