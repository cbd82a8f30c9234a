package service

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/confdesk/review-engine/internal/domain"
)

func reviewerWithLoad(id string, load int) domain.Reviewer {
	r := domain.Reviewer{ID: id}
	for i := 0; i < load; i++ {
		r.Assignments = append(r.Assignments, domain.Assignment{SubmissionID: "sub"})
	}
	return r
}

func TestSelectReviewersExcludesAtCapacity(t *testing.T) {
	candidates := []domain.Reviewer{
		reviewerWithLoad("r1", 2),
		reviewerWithLoad("r2", 0),
		reviewerWithLoad("r3", 1),
	}

	ids := SelectReviewers(rand.New(rand.NewSource(1)), candidates, 2, 3)
	if len(ids) != 2 {
		t.Fatalf("expected 2 ids, got %d", len(ids))
	}
	for _, id := range ids {
		if id == "r1" {
			t.Fatalf("reviewer at capacity was selected")
		}
	}
}

func TestSelectReviewersDegradesGracefully(t *testing.T) {
	candidates := []domain.Reviewer{
		reviewerWithLoad("r1", 0),
		reviewerWithLoad("r2", 0),
	}

	ids := SelectReviewers(rand.New(rand.NewSource(1)), candidates, 2, 3)
	if len(ids) != 2 {
		t.Fatalf("expected exactly 2 ids, got %d", len(ids))
	}
}

func TestSelectReviewersPrefersLeastLoaded(t *testing.T) {
	candidates := []domain.Reviewer{
		reviewerWithLoad("busy1", 1),
		reviewerWithLoad("busy2", 1),
		reviewerWithLoad("idle1", 0),
		reviewerWithLoad("idle2", 0),
	}

	ids := SelectReviewers(rand.New(rand.NewSource(7)), candidates, 2, 2)
	if len(ids) != 2 {
		t.Fatalf("expected 2 ids, got %d", len(ids))
	}
	for _, id := range ids {
		if id != "idle1" && id != "idle2" {
			t.Fatalf("expected idle reviewers to win, got %v", ids)
		}
	}
}

func TestSelectReviewersDeterministicWithFixedSeed(t *testing.T) {
	candidates := []domain.Reviewer{
		reviewerWithLoad("r1", 0),
		reviewerWithLoad("r2", 0),
		reviewerWithLoad("r3", 0),
		reviewerWithLoad("r4", 0),
		reviewerWithLoad("r5", 0),
	}

	first := SelectReviewers(rand.New(rand.NewSource(42)), candidates, 2, 3)
	second := SelectReviewers(rand.New(rand.NewSource(42)), candidates, 2, 3)

	if len(first) != 3 || len(second) != 3 {
		t.Fatalf("expected 3 ids per run, got %d and %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("same seed produced different selections: %v vs %v", first, second)
		}
	}
}

func TestSelectReviewersRandomTieBreak(t *testing.T) {
	candidates := []domain.Reviewer{
		reviewerWithLoad("r1", 0),
		reviewerWithLoad("r2", 0),
		reviewerWithLoad("r3", 0),
		reviewerWithLoad("r4", 0),
		reviewerWithLoad("r5", 0),
	}

	rnd := rand.New(rand.NewSource(99))
	seen := make(map[string]int)
	for i := 0; i < 200; i++ {
		ids := SelectReviewers(rnd, candidates, 2, 3)
		key := ids[0] + ids[1] + ids[2]
		seen[key]++
	}

	if len(seen) < 2 {
		t.Fatalf("selection order never varied over 200 trials")
	}
	for _, id := range []string{"r1", "r2", "r3", "r4", "r5"} {
		picked := false
		for key := range seen {
			if strings.Contains(key, id) {
				picked = true
				break
			}
		}
		if !picked {
			t.Fatalf("reviewer %s was never selected across trials", id)
		}
	}
}
