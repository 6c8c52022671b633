package search

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func repeatedDocs(n int, text string) []Document {
	docs := make([]Document, n)
	for i := range docs {
		docs[i] = NewDocument("id", text)
	}
	return docs
}

func TestNewTokenBudget_Valid(t *testing.T) {
	b, err := NewTokenBudget(100)
	require.NoError(t, err)
	require.Equal(t, "hello", b.Truncate("hello"))
}

func TestNewTokenBudget_Invalid(t *testing.T) {
	_, err := NewTokenBudget(0)
	require.Error(t, err)
	require.Contains(t, err.Error(), "maxChars")

	_, err = NewTokenBudget(-1)
	require.Error(t, err)
}

func TestDefaultTokenBudget(t *testing.T) {
	require.Equal(t, "hello", DefaultTokenBudget().Truncate("hello"))
}

func TestTokenBudget_Truncate(t *testing.T) {
	b, _ := NewTokenBudget(5)

	tests := []struct {
		name string
		text string
		want string
	}{
		{"short", "hi", "hi"},
		{"exact", "hello", "hello"},
		{"long", "hello world", "hello"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, b.Truncate(tt.text))
		})
	}
}

func TestTokenBudget_Batches_Empty(t *testing.T) {
	b := DefaultTokenBudget()
	require.Nil(t, b.Batches(nil))
	require.Nil(t, b.Batches([]Document{}))
}

func TestTokenBudget_Batches_ByCount(t *testing.T) {
	// Budget large enough for all texts, so the 10-document cap is the limit.
	b, err := NewTokenBudget(100000)
	require.NoError(t, err)
	b = b.WithMaxBatchSize(10)

	batches := b.Batches(repeatedDocs(23, "x"))
	require.Len(t, batches, 3)
	require.Len(t, batches[0], 10)
	require.Len(t, batches[1], 10)
	require.Len(t, batches[2], 3)
}

func TestTokenBudget_Batches_DefaultsToSingleDocBatches(t *testing.T) {
	b, err := NewTokenBudget(100000)
	require.NoError(t, err)

	batches := b.Batches(repeatedDocs(4, "x"))
	require.Len(t, batches, 4)
	for i, batch := range batches {
		require.Len(t, batch, 1, "batch %d", i)
	}
}

func TestTokenBudget_Batches_ByChars(t *testing.T) {
	// 25 chars budget. Each doc is 10 chars, so 2 fit per batch.
	b, _ := NewTokenBudget(25)
	b = b.WithMaxBatchSize(10)

	batches := b.Batches(repeatedDocs(5, strings.Repeat("a", 10)))
	require.Len(t, batches, 3)
	require.Len(t, batches[0], 2)
	require.Len(t, batches[1], 2)
	require.Len(t, batches[2], 1)
}

func TestTokenBudget_Batches_LargeDocOwnBatch(t *testing.T) {
	// 20 char budget. A 50-char doc exceeds budget but gets its own batch.
	b, _ := NewTokenBudget(20)
	b = b.WithMaxBatchSize(10)

	docs := []Document{
		NewDocument("a", strings.Repeat("x", 5)),
		NewDocument("b", strings.Repeat("y", 50)),
		NewDocument("c", strings.Repeat("z", 5)),
	}

	batches := b.Batches(docs)
	require.Len(t, batches, 3)
	require.Len(t, batches[0], 1, "small doc alone because next would overflow")
	require.Len(t, batches[1], 1, "large doc alone")
	require.Len(t, batches[2], 1, "trailing small doc")
}

func TestTokenBudget_Batches_TruncatedSizeMeasured(t *testing.T) {
	// Budget 25 chars. Docs are 50 chars but truncated to 25 for measurement.
	// One doc fills the budget, so each is alone.
	b, _ := NewTokenBudget(25)
	b = b.WithMaxBatchSize(10)

	batches := b.Batches(repeatedDocs(3, strings.Repeat("a", 50)))
	require.Len(t, batches, 3)
	for i, batch := range batches {
		require.Len(t, batch, 1, "batch %d", i)
	}
}

func TestTokenBudget_WithMaxBatchSize_Clamped(t *testing.T) {
	b := DefaultTokenBudget().WithMaxBatchSize(0)

	batches := b.Batches(repeatedDocs(2, "x"))
	require.Len(t, batches, 2, "batch size clamps to one document")
}

func TestTokenBudget_Batches_SingleDoc(t *testing.T) {
	batches := DefaultTokenBudget().Batches([]Document{NewDocument("id", "hello")})
	require.Len(t, batches, 1)
	require.Len(t, batches[0], 1)
}
