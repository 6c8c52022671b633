package chunking

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustChunks(t *testing.T, content string, params ChunkParams) []Chunk {
	t.Helper()
	chunks, err := NewTextChunks(content, params)
	require.NoError(t, err)
	return chunks.All()
}

func TestTextChunks_BasicFixedSize(t *testing.T) {
	result := mustChunks(t, strings.Repeat("A", 300), ChunkParams{Size: 100, Overlap: 0, MinSize: 1})

	require.Len(t, result, 3)
	for _, c := range result {
		assert.Len(t, c.Content(), 100)
	}
}

func TestTextChunks_Overlap(t *testing.T) {
	result := mustChunks(t, "AAAAABBBBBCCCCC", ChunkParams{Size: 10, Overlap: 5, MinSize: 1})

	require.Len(t, result, 2)
	assert.Equal(t, "AAAAABBBBB", result[0].Content())
	assert.Equal(t, "BBBBBCCCCC", result[1].Content())
}

func TestTextChunks_MinSizeFiltering(t *testing.T) {
	result := mustChunks(t, "hello", ChunkParams{Size: 100, Overlap: 0, MinSize: 10})
	assert.Empty(t, result)
}

func TestTextChunks_EmptyContent(t *testing.T) {
	result := mustChunks(t, "", ChunkParams{Size: 100, Overlap: 0, MinSize: 1})
	assert.Empty(t, result)
}

func TestTextChunks_OverlapMustBeLessThanSize(t *testing.T) {
	_, err := NewTextChunks("some content", ChunkParams{Size: 10, Overlap: 10, MinSize: 1})
	require.Error(t, err)
}

func TestDefaultChunkParams(t *testing.T) {
	params := DefaultChunkParams()

	assert.Equal(t, 1500, params.Size)
	assert.Equal(t, 200, params.Overlap)
	assert.Equal(t, 50, params.MinSize)
}

func TestTextChunks_ByteOffsets(t *testing.T) {
	result := mustChunks(t, strings.Repeat("X", 200), ChunkParams{Size: 100, Overlap: 0, MinSize: 1})

	require.Len(t, result, 2)
	assert.Equal(t, 0, result[0].Offset())
	assert.Equal(t, 100, result[1].Offset())
}

func TestTextChunks_OverlapByteOffsets(t *testing.T) {
	result := mustChunks(t, strings.Repeat("Z", 25), ChunkParams{Size: 10, Overlap: 5, MinSize: 1})

	require.Len(t, result, 4)
	for i, wantOff := range []int{0, 5, 10, 15} {
		assert.Equal(t, wantOff, result[i].Offset(), "chunk %d", i)
	}
}

func TestTextChunks_LineNumbers(t *testing.T) {
	// Four 6-byte lines; Size 12 fits exactly two lines per chunk.
	content := "line1\nline2\nline3\nline4\n"
	result := mustChunks(t, content, ChunkParams{Size: 12, Overlap: 0, MinSize: 1})

	require.Len(t, result, 2)
	assert.Equal(t, 1, result[0].StartLine())
	assert.Equal(t, 2, result[0].EndLine())
	assert.Equal(t, 3, result[1].StartLine())
	assert.Equal(t, 4, result[1].EndLine())
}

func TestTextChunks_MultiByteRunes(t *testing.T) {
	// Size counts runes, not bytes: 30 three-byte runes chunk by 10s.
	content := strings.Repeat("日", 30)
	result := mustChunks(t, content, ChunkParams{Size: 10, Overlap: 0, MinSize: 1})

	require.Len(t, result, 3)
	for i, c := range result {
		assert.Equal(t, 10, len([]rune(c.Content())), "chunk %d", i)
		assert.Equal(t, i*30, c.Offset(), "chunk %d byte offset", i)
	}
}
