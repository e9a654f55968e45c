package pipeline

// SelectBest picks the single primary image from the per-type candidate map.
// Tiers are tried in the profile's priority order; the first candidate whose
// score meets its tier floor wins. When no tier matches, the highest-scoring
// candidate overall is returned as long as it clears the absolute fallback
// floor. The boolean result is false when nothing qualifies.
func SelectBest(p Profile, candidates map[ImageType]Candidate) (Candidate, bool) {
	if len(candidates) == 0 {
		return Candidate{}, false
	}

	for _, tier := range p.Tiers {
		c, ok := candidates[tier.Type]
		if ok && c.Score >= tier.Floor {
			return c, true
		}
	}

	best := Candidate{Score: -1}
	for _, c := range candidates {
		if c.Score > best.Score {
			best = c
		}
	}
	if best.Score >= p.FallbackFloor {
		return best, true
	}
	return Candidate{}, false
}
