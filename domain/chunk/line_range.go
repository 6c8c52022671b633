// Package chunk provides domain types for chunk-level metadata.
package chunk

// LineRange pins a chunk enrichment to the 1-based start and end lines it
// covers in its source file. Immutable value object.
type LineRange struct {
	id           int64
	enrichmentID int64
	startLine    int
	endLine      int
}

// NewLineRange creates a LineRange for a not-yet-persisted enrichment.
func NewLineRange(enrichmentID int64, startLine, endLine int) LineRange {
	return ReconstructLineRange(0, enrichmentID, startLine, endLine)
}

// ReconstructLineRange recreates a LineRange from persistence.
func ReconstructLineRange(id, enrichmentID int64, startLine, endLine int) LineRange {
	return LineRange{
		id:           id,
		enrichmentID: enrichmentID,
		startLine:    startLine,
		endLine:      endLine,
	}
}

// ID returns the database identifier, zero before persistence.
func (r LineRange) ID() int64 { return r.id }

// EnrichmentID returns the associated enrichment's ID.
func (r LineRange) EnrichmentID() int64 { return r.enrichmentID }

// StartLine returns the 1-based first line.
func (r LineRange) StartLine() int { return r.startLine }

// EndLine returns the 1-based last line.
func (r LineRange) EndLine() int { return r.endLine }
