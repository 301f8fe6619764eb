package kb

import (
	"strings"
)

// Chunker splits document text into overlapping chunks that respect
// sentence boundaries where possible.
type Chunker struct {
	size    int
	overlap int
}

// NewChunker creates a Chunker. size and overlap are in runes; a
// non-positive size falls back to 500, overlap is clamped below size.
func NewChunker(size, overlap int) *Chunker {
	if size <= 0 {
		size = 500
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size / 4
	}
	return &Chunker{size: size, overlap: overlap}
}

// sentence boundary markers, strongest first.
var separators = []string{"\n\n", "。", "！", "？", "\n"}

// Split slices text into chunks of at most size runes, overlapping by
// overlap runes. Splits prefer sentence boundaries; a single oversized
// sentence is split mid-sentence.
func (c *Chunker) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len([]rune(text)) <= c.size {
		return []string{text}
	}

	sentences := splitSentences(text)
	var chunks []string
	var current []rune
	fresh := 0

	flush := func() {
		chunk := strings.TrimSpace(string(current))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		if c.overlap > 0 && len(current) > c.overlap {
			current = append([]rune(nil), current[len(current)-c.overlap:]...)
		} else {
			current = nil
		}
		fresh = 0
	}

	for _, sentence := range sentences {
		runes := []rune(sentence)
		// hard-split sentences longer than a whole chunk
		for len(runes) > c.size {
			if fresh > 0 {
				flush()
			}
			current = append(current[:0], runes[:c.size]...)
			fresh = c.size
			runes = runes[c.size:]
			flush()
		}
		if len(current)+len(runes) > c.size && fresh > 0 {
			flush()
		}
		if len(current)+len(runes) > c.size {
			// only overlap remains; drop enough of it to fit
			keep := c.size - len(runes)
			if keep < 0 {
				keep = 0
			}
			current = current[len(current)-keep:]
		}
		current = append(current, runes...)
		fresh += len(runes)
	}
	if fresh > 0 {
		if chunk := strings.TrimSpace(string(current)); chunk != "" {
			chunks = append(chunks, chunk)
		}
	}
	return chunks
}

// splitSentences cuts text after each separator, keeping the separator
// with its sentence.
func splitSentences(text string) []string {
	parts := []string{text}
	for _, sep := range separators {
		var next []string
		for _, part := range parts {
			segments := strings.SplitAfter(part, sep)
			for _, seg := range segments {
				if seg != "" {
					next = append(next, seg)
				}
			}
		}
		parts = next
	}
	return parts
}
