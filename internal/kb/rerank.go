package kb

import (
	"sort"
)

// rrfK dampens the rank contribution in reciprocal rank fusion.
const rrfK = 60.0

// FuseHits merges vector and keyword result lists with reciprocal rank
// fusion, deduplicating by chunk ID. Hits appearing in both lists rank
// above hits from a single list.
func FuseHits(topK int, lists ...[]SearchHit) []SearchHit {
	type fused struct {
		hit   SearchHit
		score float64
	}
	byID := make(map[string]*fused)

	for _, list := range lists {
		for rank, hit := range list {
			contribution := 1.0 / (rrfK + float64(rank+1))
			if f, ok := byID[hit.Chunk.ID]; ok {
				f.score += contribution
				if hit.Score > f.hit.Score {
					f.hit.Score = hit.Score
				}
				f.hit.Source = "hybrid"
			} else {
				byID[hit.Chunk.ID] = &fused{hit: hit, score: contribution}
			}
		}
	}

	merged := make([]fused, 0, len(byID))
	for _, f := range byID {
		merged = append(merged, *f)
	}
	sort.SliceStable(merged, func(i, j int) bool { return merged[i].score > merged[j].score })

	if topK > 0 && len(merged) > topK {
		merged = merged[:topK]
	}
	out := make([]SearchHit, len(merged))
	for i, f := range merged {
		out[i] = f.hit
	}
	return out
}
