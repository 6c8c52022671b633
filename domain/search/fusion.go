package search

import "sort"

// Fusion combines ranked lists from multiple retrieval modes using
// Reciprocal Rank Fusion: score(d) = sum over lists of 1/(k + rank(d)),
// with ranks starting at 1.
type Fusion struct {
	k float64 // RRF constant (typically 60)
}

// NewFusion creates a Fusion with the default RRF constant.
func NewFusion() Fusion {
	return Fusion{k: 60.0}
}

// NewFusionWithK creates a Fusion with a custom RRF constant.
func NewFusionWithK(k float64) Fusion {
	if k <= 0 {
		k = 60.0
	}
	return Fusion{k: k}
}

// Fuse combines ranked result lists. Each input list must be sorted by its
// own score, best first; the top document of a list contributes 1/(k+1).
// Ties in the fused score are broken by the order a document was first
// seen, so the caller's list order (keyword, code, text) is meaningful.
func (f Fusion) Fuse(lists ...[]FusionRequest) []FusionResult {
	if len(lists) == 0 {
		return []FusionResult{}
	}

	scores := make(map[string]float64)
	originals := make(map[string][]float64)
	var order []string

	for listIdx, list := range lists {
		for i, req := range list {
			id := req.ID()

			rank := float64(i + 1)
			if _, seen := scores[id]; !seen {
				order = append(order, id)
				originals[id] = make([]float64, len(lists))
			}
			scores[id] += 1.0 / (f.k + rank)
			originals[id][listIdx] = req.Score()
		}
	}

	results := make([]FusionResult, 0, len(order))
	for _, id := range order {
		results = append(results, NewFusionResult(id, scores[id], originals[id]))
	}

	// Stable sort keeps first-seen order for equal fused scores.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score() > results[j].Score()
	})

	return results
}

// FuseTopK combines multiple ranked result lists and returns the top K results.
func (f Fusion) FuseTopK(topK int, lists ...[]FusionRequest) []FusionResult {
	results := f.Fuse(lists...)

	if topK <= 0 || topK >= len(results) {
		return results
	}

	return results[:topK]
}

// K returns the RRF constant used by this service.
func (f Fusion) K() float64 {
	return f.k
}
