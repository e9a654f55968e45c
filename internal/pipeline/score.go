package pipeline

import (
	"strings"
)

// faviconMarkers flag URLs that are almost certainly browser icons even when
// they arrive through a non-favicon tier.
var faviconMarkers = []string{"favicon", "apple-touch-icon", ".ico"}

// Score computes the 0-100 quality score for a candidate under a profile.
// It is a pure function of the candidate's dimensions, byte size, type tag,
// URL, alt text, and the owning entity's name; intermediate totals may go
// negative but the result is always clamped to [0, 100].
func Score(p Profile, c Candidate, entityName string) int {
	score := 0

	for _, tier := range p.DimensionTiers {
		if c.Width >= tier.Width && c.Height >= tier.Height {
			score += tier.Bonus
			break
		}
	}

	if c.Height > 0 {
		ratio := float64(c.Width) / float64(c.Height)
		if ratio >= p.AspectMin && ratio <= p.AspectMax {
			score += p.AspectBonus
		}
	}

	score += p.TypeBonus[c.Type]

	hay := strings.ToLower(c.URL + " " + c.Alt)
	score += keywordBonus(p, hay, entityName)

	for _, kw := range p.NegKeywords {
		if strings.Contains(hay, kw) {
			score -= p.NegPenalty
		}
	}

	score += sizeBonus(p, c.ByteSize)

	if c.Width < p.MinWidth || c.Height < p.MinHeight {
		score -= p.SubFloorPenalty
	}
	if c.Type != TypeFavicon && looksLikeFavicon(c.URL) {
		score -= p.FaviconPenalty
	}

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func keywordBonus(p Profile, hay, entityName string) int {
	bonus := 0
	for _, kw := range p.Keywords {
		if strings.Contains(hay, kw) {
			bonus += p.KeywordBonus
		}
	}
	// tokens of the entity's own name count as positive signals too
	for _, tok := range strings.Fields(strings.ToLower(entityName)) {
		if len(tok) > 3 && strings.Contains(hay, tok) {
			bonus += p.KeywordBonus
		}
	}
	if bonus > p.KeywordCap {
		bonus = p.KeywordCap
	}
	return bonus
}

func sizeBonus(p Profile, n int) int {
	switch {
	case n > p.OversizeBytes:
		return -p.OversizePenalty
	case n >= p.SizeIdealMin && n <= p.SizeIdealMax:
		return p.SizeBonus
	case n >= 10*1024:
		return p.SizeModestBonus
	default:
		return 0
	}
}

func looksLikeFavicon(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	for _, marker := range faviconMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
