package pipeline

// DimensionTier awards Bonus when a candidate is at least Width x Height.
type DimensionTier struct {
	Width  int
	Height int
	Bonus  int
}

// Tier is one ordered extraction pass over the page DOM.
type Tier struct {
	Type ImageType
	// MetaSelectors are tried first; the candidate URL is the content attr.
	MetaSelectors []string
	// LinkSelectors locate <link> elements; the candidate URL is the href attr.
	LinkSelectors []string
	// ImgKeywords matches <img> elements whose alt, src, or class contains
	// any of the keywords.
	ImgKeywords []string
	// Floor is the minimum score a candidate of this type needs to be
	// auto-selected.
	Floor int
	// MaxMatches bounds how many DOM matches are downloaded per tier.
	MaxMatches int
}

// Profile carries one entity kind's full calibration: validation floors,
// scoring weights, keyword lists, extraction tiers, and selection thresholds.
// Institution and scholarship sites have materially different imagery, so the
// two profiles stay separate rather than being merged into one (the numbers
// are empirically tuned and live here as configuration, not contract).
type Profile struct {
	Kind EntityKind

	// Validation floors applied before scoring.
	MinImageBytes int
	MinWidth      int
	MinHeight     int

	// Scoring weights.
	DimensionTiers  []DimensionTier
	AspectMin       float64
	AspectMax       float64
	AspectBonus     int
	TypeBonus       map[ImageType]int
	Keywords        []string
	KeywordBonus    int
	KeywordCap      int
	NegKeywords     []string
	NegPenalty      int
	SizeIdealMin    int
	SizeIdealMax    int
	SizeBonus       int
	SizeModestBonus int
	OversizeBytes   int
	OversizePenalty int
	SubFloorPenalty int
	FaviconPenalty  int

	// Extraction and selection.
	Tiers         []Tier
	LogoType      ImageType
	FallbackFloor int

	// Output.
	CanvasWidth      int
	CanvasHeight     int
	JPEGQuality      int
	HighQualityFloor int
	StoragePrefix    string
}

// PriorityFloor returns the selection floor for an image type, or -1 when the
// type is not part of this profile's priority list.
func (p Profile) PriorityFloor(t ImageType) int {
	for _, tier := range p.Tiers {
		if tier.Type == t {
			return tier.Floor
		}
	}
	return -1
}

// InstitutionProfile is tuned for college and university sites, which tend to
// carry large hero photography and well-formed Open Graph tags.
func InstitutionProfile() Profile {
	return Profile{
		Kind:          KindInstitution,
		MinImageBytes: 1024,
		MinWidth:      100,
		MinHeight:     100,
		DimensionTiers: []DimensionTier{
			{Width: 800, Height: 600, Bonus: 40},
			{Width: 600, Height: 400, Bonus: 30},
			{Width: 400, Height: 300, Bonus: 20},
			{Width: 200, Height: 150, Bonus: 10},
		},
		AspectMin:   1.2,
		AspectMax:   2.0,
		AspectBonus: 10,
		TypeBonus: map[ImageType]int{
			TypeOGImage:      30,
			TypeTwitterImage: 25,
			TypeHero:         20,
			TypeLogo:         10,
			TypeFavicon:      -15,
		},
		Keywords: []string{
			"campus", "university", "college", "aerial", "quad",
			"library", "hall", "building", "students",
		},
		KeywordBonus: 3,
		KeywordCap:   15,
		NegKeywords: []string{
			"headshot", "stock", "ceo", "staff", "portrait", "placeholder",
		},
		NegPenalty:      20,
		SizeIdealMin:    50 * 1024,
		SizeIdealMax:    5 * 1024 * 1024,
		SizeBonus:       15,
		SizeModestBonus: 5,
		OversizeBytes:   10 * 1024 * 1024,
		OversizePenalty: 10,
		SubFloorPenalty: 20,
		FaviconPenalty:  15,
		Tiers: []Tier{
			{
				Type: TypeOGImage,
				MetaSelectors: []string{
					`meta[property="og:image"]`,
					`meta[property="og:image:url"]`,
				},
				Floor:      60,
				MaxMatches: 2,
			},
			{
				Type: TypeTwitterImage,
				MetaSelectors: []string{
					`meta[name="twitter:image"]`,
					`meta[name="twitter:image:src"]`,
				},
				Floor:      55,
				MaxMatches: 2,
			},
			{
				Type: TypeHero,
				ImgKeywords: []string{
					"campus", "university", "hero", "banner", "aerial", "building",
				},
				Floor:      50,
				MaxMatches: 3,
			},
			{
				Type:        TypeLogo,
				ImgKeywords: []string{"logo", "seal", "crest"},
				Floor:       40,
				MaxMatches:  3,
			},
			{
				Type: TypeFavicon,
				LinkSelectors: []string{
					`link[rel="apple-touch-icon"]`,
					`link[rel="icon"]`,
					`link[rel="shortcut icon"]`,
				},
				Floor:      30,
				MaxMatches: 2,
			},
		},
		LogoType:         TypeLogo,
		FallbackFloor:    25,
		CanvasWidth:      400,
		CanvasHeight:     300,
		JPEGQuality:      85,
		HighQualityFloor: 70,
		StoragePrefix:    "institutions",
	}
}

// ScholarshipProfile is relaxed relative to the institution profile:
// scholarship organization sites carry sparser, lower-resolution imagery, so
// floors sit much lower and the negative-keyword penalty is heavier to keep
// corporate headshots off scholarship cards.
func ScholarshipProfile() Profile {
	return Profile{
		Kind:          KindScholarship,
		MinImageBytes: 1024,
		MinWidth:      150,
		MinHeight:     200,
		DimensionTiers: []DimensionTier{
			{Width: 800, Height: 600, Bonus: 35},
			{Width: 500, Height: 350, Bonus: 25},
			{Width: 300, Height: 200, Bonus: 15},
		},
		AspectMin:   1.0,
		AspectMax:   3.0,
		AspectBonus: 10,
		TypeBonus: map[ImageType]int{
			TypeOGImage:      25,
			TypeTwitterImage: 20,
			TypeHero:         15,
			TypeOrgLogo:      10,
			TypeFavicon:      -10,
		},
		Keywords: []string{
			"scholarship", "award", "grant", "graduation", "student",
			"education", "foundation",
		},
		KeywordBonus: 5,
		KeywordCap:   25,
		NegKeywords: []string{
			"headshot", "stock", "ceo", "staff", "team", "boardroom",
		},
		NegPenalty:      25,
		SizeIdealMin:    50 * 1024,
		SizeIdealMax:    5 * 1024 * 1024,
		SizeBonus:       15,
		SizeModestBonus: 5,
		OversizeBytes:   10 * 1024 * 1024,
		OversizePenalty: 10,
		SubFloorPenalty: 15,
		FaviconPenalty:  15,
		Tiers: []Tier{
			{
				Type: TypeOGImage,
				MetaSelectors: []string{
					`meta[property="og:image"]`,
					`meta[property="og:image:url"]`,
				},
				Floor:      25,
				MaxMatches: 2,
			},
			{
				Type: TypeTwitterImage,
				MetaSelectors: []string{
					`meta[name="twitter:image"]`,
					`meta[name="twitter:image:src"]`,
				},
				Floor:      20,
				MaxMatches: 2,
			},
			{
				Type: TypeHero,
				ImgKeywords: []string{
					"scholarship", "award", "graduation", "hero", "banner", "students",
				},
				Floor:      20,
				MaxMatches: 3,
			},
			{
				Type:        TypeOrgLogo,
				ImgKeywords: []string{"logo", "seal", "crest", "foundation", "organization"},
				Floor:       15,
				MaxMatches:  3,
			},
			{
				Type: TypeFavicon,
				LinkSelectors: []string{
					`link[rel="apple-touch-icon"]`,
					`link[rel="icon"]`,
					`link[rel="shortcut icon"]`,
				},
				Floor:      10,
				MaxMatches: 2,
			},
		},
		LogoType:         TypeOrgLogo,
		FallbackFloor:    5,
		CanvasWidth:      400,
		CanvasHeight:     300,
		JPEGQuality:      85,
		HighQualityFloor: 60,
		StoragePrefix:    "scholarships",
	}
}
