// Package enrichment provides task handlers for enrichment operations.
package enrichment

// MaxDiffLength caps commit diffs sent to the LLM (~25k tokens).
const MaxDiffLength = 100_000

const diffTruncationNotice = "\n\n[diff truncated due to size]"

// TruncateDiff cuts a diff down to maxLength, appending a marker so the
// model knows the tail is missing.
func TruncateDiff(diff string, maxLength int) string {
	if len(diff) <= maxLength {
		return diff
	}
	return diff[:maxLength-len(diffTruncationNotice)] + diffTruncationNotice
}
