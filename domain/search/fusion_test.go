package search

import (
	"math"
	"testing"
)

func TestFusion_Fuse_SingleList(t *testing.T) {
	fusion := NewFusion() // k = 60

	list := []FusionRequest{
		NewFusionRequest("a", 0.9),
		NewFusionRequest("b", 0.7),
		NewFusionRequest("c", 0.5),
	}

	results := fusion.Fuse(list)

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	// Ranks are 1-based, so the top document scores 1/(60+1).
	expectedScores := []float64{1.0 / 61.0, 1.0 / 62.0, 1.0 / 63.0}
	expectedIDs := []string{"a", "b", "c"}

	for i, r := range results {
		if r.ID() != expectedIDs[i] {
			t.Errorf("result[%d]: expected ID %q, got %q", i, expectedIDs[i], r.ID())
		}
		if math.Abs(r.Score()-expectedScores[i]) > 1e-10 {
			t.Errorf("result[%d]: expected score %f, got %f", i, expectedScores[i], r.Score())
		}
	}
}

func TestFusion_Fuse_TwoLists(t *testing.T) {
	fusion := NewFusion()

	list1 := []FusionRequest{
		NewFusionRequest("a", 0.9),
		NewFusionRequest("b", 0.7),
	}
	list2 := []FusionRequest{
		NewFusionRequest("b", 0.8),
		NewFusionRequest("c", 0.6),
	}

	results := fusion.Fuse(list1, list2)

	// "b" is rank 2 in list1 and rank 1 in list2: 1/62 + 1/61.
	// "a" is rank 1 in list1 only: 1/61.
	// "c" is rank 2 in list2 only: 1/62.
	scores := make(map[string]float64)
	for _, r := range results {
		scores[r.ID()] = r.Score()
	}

	expectedB := 1.0/62.0 + 1.0/61.0
	if math.Abs(scores["b"]-expectedB) > 1e-10 {
		t.Errorf("b: expected score %f, got %f", expectedB, scores["b"])
	}

	expectedA := 1.0 / 61.0
	if math.Abs(scores["a"]-expectedA) > 1e-10 {
		t.Errorf("a: expected score %f, got %f", expectedA, scores["a"])
	}

	expectedC := 1.0 / 62.0
	if math.Abs(scores["c"]-expectedC) > 1e-10 {
		t.Errorf("c: expected score %f, got %f", expectedC, scores["c"])
	}

	// b should be first (highest score)
	if results[0].ID() != "b" {
		t.Errorf("expected first result to be 'b', got %q", results[0].ID())
	}
}

func TestFusion_Fuse_TieBreakByListOrder(t *testing.T) {
	fusion := NewFusion()

	// Every document holds the same rank in its own list, so all fused
	// scores are equal. The output must follow the order the lists were
	// given, not map iteration order.
	keyword := []FusionRequest{NewFusionRequest("kw", 3.2)}
	code := []FusionRequest{NewFusionRequest("code", 0.8)}
	text := []FusionRequest{NewFusionRequest("text", 0.7)}

	for range 20 {
		results := fusion.Fuse(keyword, code, text)
		if len(results) != 3 {
			t.Fatalf("expected 3 results, got %d", len(results))
		}
		got := []string{results[0].ID(), results[1].ID(), results[2].ID()}
		want := []string{"kw", "code", "text"}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("tied results out of order: got %v, want %v", got, want)
			}
		}
	}
}

func TestFusion_FuseTopK(t *testing.T) {
	fusion := NewFusion()

	list := []FusionRequest{
		NewFusionRequest("a", 0.9),
		NewFusionRequest("b", 0.7),
		NewFusionRequest("c", 0.5),
	}

	results := fusion.FuseTopK(2, list)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].ID() != "a" {
		t.Errorf("expected first result 'a', got %q", results[0].ID())
	}
	if results[1].ID() != "b" {
		t.Errorf("expected second result 'b', got %q", results[1].ID())
	}
}

func TestFusion_Fuse_EmptyInput(t *testing.T) {
	fusion := NewFusion()
	results := fusion.Fuse()
	if len(results) != 0 {
		t.Fatalf("expected 0 results, got %d", len(results))
	}
}

func TestFusion_CustomK(t *testing.T) {
	fusion := NewFusionWithK(10)
	if fusion.K() != 10.0 {
		t.Errorf("expected K=10, got %f", fusion.K())
	}

	list := []FusionRequest{
		NewFusionRequest("a", 0.9),
	}
	results := fusion.Fuse(list)

	// rank 1 with k=10: 1/(10+1)
	expected := 1.0 / 11.0
	if math.Abs(results[0].Score()-expected) > 1e-10 {
		t.Errorf("expected score %f, got %f", expected, results[0].Score())
	}
}

func TestFusion_InvalidK(t *testing.T) {
	fusion := NewFusionWithK(-5)
	if fusion.K() != 60.0 {
		t.Errorf("expected default K=60 for invalid input, got %f", fusion.K())
	}
}
