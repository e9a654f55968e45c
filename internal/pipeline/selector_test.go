package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectBestPrefersHigherTierEvenWithLowerScore(t *testing.T) {
	p := InstitutionProfile()
	candidates := map[ImageType]Candidate{
		TypeOGImage: {URL: "https://a.edu/og.jpg", Type: TypeOGImage, Score: 65},
		TypeHero:    {URL: "https://a.edu/hero.jpg", Type: TypeHero, Score: 90},
	}

	best, ok := SelectBest(p, candidates)
	assert.True(t, ok)
	assert.Equal(t, TypeOGImage, best.Type)
}

func TestSelectBestSkipsTierBelowFloor(t *testing.T) {
	p := InstitutionProfile()
	candidates := map[ImageType]Candidate{
		TypeOGImage:      {Type: TypeOGImage, Score: 50},      // floor is 60
		TypeTwitterImage: {Type: TypeTwitterImage, Score: 58}, // floor is 55
	}

	best, ok := SelectBest(p, candidates)
	assert.True(t, ok)
	assert.Equal(t, TypeTwitterImage, best.Type)
}

func TestSelectBestFallsBackToBestOverall(t *testing.T) {
	p := InstitutionProfile()
	candidates := map[ImageType]Candidate{
		TypeOGImage: {Type: TypeOGImage, Score: 20},
		TypeHero:    {Type: TypeHero, Score: 30}, // below hero floor, above fallback 25
		TypeLogo:    {Type: TypeLogo, Score: 28},
	}

	best, ok := SelectBest(p, candidates)
	assert.True(t, ok)
	assert.Equal(t, TypeHero, best.Type)
}

func TestSelectBestRejectsEverythingBelowFallbackFloor(t *testing.T) {
	p := InstitutionProfile()
	candidates := map[ImageType]Candidate{
		TypeFavicon: {Type: TypeFavicon, Score: 10},
		TypeLogo:    {Type: TypeLogo, Score: 24},
	}

	_, ok := SelectBest(p, candidates)
	assert.False(t, ok)
}

func TestSelectBestEmptyInput(t *testing.T) {
	_, ok := SelectBest(InstitutionProfile(), nil)
	assert.False(t, ok)

	_, ok = SelectBest(InstitutionProfile(), map[ImageType]Candidate{})
	assert.False(t, ok)
}

func TestSelectBestRaisingScoreNeverLowersOutcome(t *testing.T) {
	p := ScholarshipProfile()
	candidates := map[ImageType]Candidate{
		TypeOGImage: {Type: TypeOGImage, Score: 24},
	}

	_, okBefore := SelectBest(p, candidates)
	candidates[TypeOGImage] = Candidate{Type: TypeOGImage, Score: 25}
	_, okAfter := SelectBest(p, candidates)

	assert.True(t, okAfter)
	assert.True(t, okBefore || okAfter)
}
