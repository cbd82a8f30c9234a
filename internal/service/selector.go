package service

import (
	"math/rand"
	"sort"

	"github.com/confdesk/review-engine/internal/domain"
)

type rankedCandidate struct {
	id       string
	load     int
	tiebreak float64
}

// SelectReviewers picks up to target reviewer ids from candidates. Reviewers
// at or above maxLoad are excluded; the rest are ordered by current load with
// a random tie-break among equally loaded reviewers, so assignments spread
// evenly over time. Pure given a fixed rnd and candidate snapshot.
func SelectReviewers(rnd *rand.Rand, candidates []domain.Reviewer, maxLoad, target int) []string {
	ranked := make([]rankedCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Load() >= maxLoad {
			continue
		}
		ranked = append(ranked, rankedCandidate{
			id:       c.ID,
			load:     c.Load(),
			tiebreak: rnd.Float64(),
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].load != ranked[j].load {
			return ranked[i].load < ranked[j].load
		}
		return ranked[i].tiebreak < ranked[j].tiebreak
	})

	if len(ranked) > target {
		ranked = ranked[:target]
	}

	ids := make([]string, len(ranked))
	for i, c := range ranked {
		ids[i] = c.id
	}
	return ids
}
