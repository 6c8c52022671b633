// Package chunking provides fixed-size text chunking with overlap for RAG indexing.
package chunking

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ChunkParams configures the chunking algorithm.
type ChunkParams struct {
	Size    int
	Overlap int
	MinSize int
}

// DefaultChunkParams returns sensible defaults for code chunking.
func DefaultChunkParams() ChunkParams {
	return ChunkParams{
		Size:    1500,
		Overlap: 200,
		MinSize: 50,
	}
}

// Chunk represents a single text chunk with its byte offset and line range in the original content.
type Chunk struct {
	content   string
	offset    int
	startLine int
	endLine   int
}

// Content returns the chunk text.
func (c Chunk) Content() string { return c.content }

// Offset returns the byte offset of this chunk in the original content.
func (c Chunk) Offset() int { return c.offset }

// StartLine returns the 1-based line number where this chunk begins in the original content.
func (c Chunk) StartLine() int { return c.startLine }

// EndLine returns the 1-based line number where this chunk ends in the original content.
func (c Chunk) EndLine() int { return c.endLine }

// TextChunks holds the result of splitting content into fixed-size chunks.
type TextChunks struct {
	chunks []Chunk
}

// All returns all chunks.
func (t TextChunks) All() []Chunk { return t.chunks }

// NewTextChunks splits content into fixed-size chunks with the given parameters.
// Size, Overlap, and MinSize are measured in runes (Unicode code points), while
// the returned Chunk.Offset is a byte offset into the original string.
//
// The algorithm uses three tiers:
//   - Tier 1: accumulate whole lines until the next line would exceed Size
//   - Tier 2: for lines exceeding Size, split on whitespace boundaries
//   - Tier 3: for tokens exceeding Size, split on rune boundaries
func NewTextChunks(content string, params ChunkParams) (TextChunks, error) {
	if params.Overlap >= params.Size {
		return TextChunks{}, fmt.Errorf("overlap (%d) must be less than size (%d)", params.Overlap, params.Size)
	}
	if content == "" {
		return TextChunks{}, nil
	}

	acc := accumulator{params: params}
	for _, line := range lineSegments(content) {
		acc.add(line)
	}
	acc.flush()

	numberChunkLines(content, acc.chunks)
	return TextChunks{chunks: acc.chunks}, nil
}

// accumulator gathers whole lines into chunks, tracking the byte offset
// of the pending chunk within the original content.
type accumulator struct {
	params       ChunkParams
	chunks       []Chunk
	pending      []string
	pendingRunes int
	offset       int
}

func (a *accumulator) add(line string) {
	lineRunes := utf8.RuneCountInString(line)

	// Tier 2/3: a single line longer than Size gets its own splits.
	if lineRunes > a.params.Size {
		a.flush()
		for _, sub := range splitLongLine(line, a.params.Size, a.params.Overlap) {
			a.emit(sub.content, a.offset+sub.offset)
		}
		a.offset += len(line)
		return
	}

	if a.pendingRunes+lineRunes > a.params.Size && a.pendingRunes > 0 {
		a.flushWithOverlap()
	}

	a.pending = append(a.pending, line)
	a.pendingRunes += lineRunes
}

// emit records a chunk unless it falls below MinSize.
func (a *accumulator) emit(text string, offset int) {
	if utf8.RuneCountInString(text) >= a.params.MinSize {
		a.chunks = append(a.chunks, Chunk{content: text, offset: offset})
	}
}

// flush emits the pending lines as one chunk and advances the offset
// past them.
func (a *accumulator) flush() {
	if a.pendingRunes == 0 {
		return
	}
	text := strings.Join(a.pending, "")
	a.emit(text, a.offset)
	a.offset += len(text)
	a.pending = nil
	a.pendingRunes = 0
}

// flushWithOverlap emits the pending chunk, then re-seeds the pending
// lines with the trailing lines that fit the overlap budget, winding the
// offset back over them.
func (a *accumulator) flushWithOverlap() {
	text := strings.Join(a.pending, "")
	a.emit(text, a.offset)
	a.offset += len(text)

	a.pending, a.pendingRunes = overlapLines(a.pending, a.params.Overlap)
	a.offset -= byteLen(a.pending)
}

// numberChunkLines computes 1-based start and end line numbers for each
// chunk from its byte offset. A newline position index makes the lookup
// independent of chunk ordering.
func numberChunkLines(content string, chunks []Chunk) {
	var newlines []int
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			newlines = append(newlines, i)
		}
	}

	for i := range chunks {
		chunks[i].startLine = lineAt(newlines, chunks[i].offset)

		end := chunks[i].startLine + strings.Count(chunks[i].content, "\n")
		if strings.HasSuffix(chunks[i].content, "\n") {
			end--
		}
		chunks[i].endLine = end
	}
}

// lineAt returns the 1-based line number for the given byte offset using
// binary search over newline positions.
func lineAt(positions []int, offset int) int {
	lo, hi := 0, len(positions)
	for lo < hi {
		mid := lo + (hi-lo)/2
		if positions[mid] < offset {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo + 1
}

// lineSegments splits content into lines, preserving the trailing \n on
// each line. The last segment is included even without a trailing \n.
func lineSegments(content string) []string {
	var lines []string
	for len(content) > 0 {
		idx := strings.IndexByte(content, '\n')
		if idx < 0 {
			lines = append(lines, content)
			break
		}
		lines = append(lines, content[:idx+1])
		content = content[idx+1:]
	}
	return lines
}

// overlapLines walks backward through lines and returns the trailing lines
// whose total rune count fits within the overlap budget.
func overlapLines(lines []string, overlap int) ([]string, int) {
	if overlap == 0 {
		return nil, 0
	}

	total := 0
	start := len(lines)
	for i := len(lines) - 1; i >= 0; i-- {
		r := utf8.RuneCountInString(lines[i])
		if total+r > overlap {
			break
		}
		total += r
		start = i
	}
	if start == len(lines) {
		return nil, 0
	}

	carried := make([]string, len(lines)-start)
	copy(carried, lines[start:])
	return carried, total
}

// byteLen returns the total byte length of the given strings.
func byteLen(lines []string) int {
	n := 0
	for _, l := range lines {
		n += len(l)
	}
	return n
}

// subChunk is a chunk-within-a-line with a byte offset relative to the line start.
type subChunk struct {
	content string
	offset  int
}

// splitLongLine splits a line that exceeds Size using whitespace boundaries (Tier 2),
// falling back to rune boundaries (Tier 3) for tokens exceeding Size.
func splitLongLine(line string, size, overlap int) []subChunk {
	tokens := splitWhitespace(line)
	if len(tokens) <= 1 {
		return splitRunes(line, size, overlap)
	}
	return splitTokens(tokens, size, overlap)
}

// splitWhitespace splits a string into tokens at whitespace boundaries,
// keeping the whitespace attached to the preceding token.
func splitWhitespace(s string) []string {
	runes := []rune(s)
	var tokens []string
	start := 0
	for i := 0; i < len(runes); i++ {
		if runes[i] == ' ' || runes[i] == '\t' {
			continue
		}
		if i > 0 && (runes[i-1] == ' ' || runes[i-1] == '\t') && i > start {
			tokens = append(tokens, string(runes[start:i]))
			start = i
		}
	}
	if start < len(runes) {
		tokens = append(tokens, string(runes[start:]))
	}
	return tokens
}

// splitTokens accumulates whitespace tokens into chunks of at most size runes (Tier 2).
// Tokens exceeding size are split via splitRunes (Tier 3).
func splitTokens(tokens []string, size, overlap int) []subChunk {
	var result []subChunk
	var pending []string
	pendingRunes := 0
	byteOff := 0

	emitPending := func() {
		text := strings.Join(pending, "")
		result = append(result, subChunk{content: text, offset: byteOff})
		byteOff += len(text)
		pending = nil
		pendingRunes = 0
	}

	for _, tok := range tokens {
		tokRunes := utf8.RuneCountInString(tok)

		if tokRunes > size {
			if pendingRunes > 0 {
				emitPending()
			}
			for _, sub := range splitRunes(tok, size, overlap) {
				result = append(result, subChunk{content: sub.content, offset: byteOff + sub.offset})
			}
			byteOff += len(tok)
			continue
		}

		if pendingRunes+tokRunes > size && pendingRunes > 0 {
			emitPending()
		}

		pending = append(pending, tok)
		pendingRunes += tokRunes
	}

	if pendingRunes > 0 {
		emitPending()
	}

	return result
}

// splitRunes splits content into chunks of at most size runes with overlap (Tier 3).
func splitRunes(content string, size, overlap int) []subChunk {
	runes := []rune(content)
	step := size - overlap

	var result []subChunk
	for i := 0; i < len(runes); i += step {
		end := min(i+size, len(runes))
		slice := runes[i:end]
		if i > 0 && len(slice) <= overlap {
			break
		}
		result = append(result, subChunk{content: string(slice), offset: len(string(runes[:i]))})
	}
	return result
}
