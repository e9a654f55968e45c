package pipeline

import (
	"bytes"
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/campusmatch/image-pipeline/internal/imaging"
	"github.com/campusmatch/image-pipeline/internal/metrics"
)

// Extractor walks a fetched page's DOM through the profile's ordered selector
// tiers and returns the best validated, scored candidate per image type.
type Extractor struct {
	images ImageFetcher
	logger *zap.Logger
}

// NewExtractor builds an Extractor.
func NewExtractor(images ImageFetcher, logger *zap.Logger) *Extractor {
	return &Extractor{images: images, logger: logger}
}

// Extract parses pageHTML and evaluates the profile's tiers in priority
// order, stopping once a tier yields a candidate at or above its floor.
// The logo tier is always evaluated so a secondary branding image can be
// stored next to the primary. Parse failures return an empty map; every
// per-candidate error is logged and swallowed.
func (e *Extractor) Extract(
	ctx context.Context,
	p Profile,
	baseURL string,
	pageHTML []byte,
	entityName string,
) map[ImageType]Candidate {
	found := make(map[ImageType]Candidate)

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(pageHTML))
	if err != nil {
		e.logger.Warn("page parse failed",
			zap.String("url", baseURL),
			zap.Error(err),
		)
		return found
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		e.logger.Warn("base url unparseable", zap.String("url", baseURL), zap.Error(err))
		return found
	}

	accepted := false
	for _, tier := range p.Tiers {
		if ctx.Err() != nil {
			break
		}
		if accepted && tier.Type != p.LogoType {
			continue
		}

		best, ok := e.bestForTier(ctx, p, tier, doc, base, entityName)
		if !ok {
			continue
		}
		found[tier.Type] = best
		if best.Score >= tier.Floor {
			accepted = true
		}
	}

	return found
}

func (e *Extractor) bestForTier(
	ctx context.Context,
	p Profile,
	tier Tier,
	doc *goquery.Document,
	base *url.URL,
	entityName string,
) (Candidate, bool) {
	refs := collectTierRefs(tier, doc)

	best := Candidate{Score: -1}
	for _, ref := range refs {
		resolved, ok := resolveImageURL(base, ref.src)
		if !ok {
			continue
		}
		cand, err := e.downloadAndScore(ctx, p, tier.Type, resolved, ref.alt, entityName)
		if err != nil {
			e.logger.Debug("candidate discarded",
				zap.String("url", resolved),
				zap.String("type", string(tier.Type)),
				zap.Error(err),
			)
			continue
		}
		if cand.Score > best.Score {
			best = cand
		}
	}

	if best.Score < 0 {
		return Candidate{}, false
	}
	return best, true
}

type imageRef struct {
	src string
	alt string
}

// collectTierRefs gathers at most tier.MaxMatches candidate URLs from the DOM.
func collectTierRefs(tier Tier, doc *goquery.Document) []imageRef {
	maxMatches := tier.MaxMatches
	if maxMatches <= 0 {
		maxMatches = 3
	}
	refs := make([]imageRef, 0, maxMatches)
	seen := make(map[string]struct{})

	add := func(src, alt string) bool {
		src = strings.TrimSpace(src)
		if src == "" || strings.HasPrefix(src, "data:") {
			return len(refs) < maxMatches
		}
		if _, dup := seen[src]; dup {
			return len(refs) < maxMatches
		}
		seen[src] = struct{}{}
		refs = append(refs, imageRef{src: src, alt: alt})
		return len(refs) < maxMatches
	}

	for _, sel := range tier.MetaSelectors {
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			content, _ := s.Attr("content")
			return add(content, "")
		})
		if len(refs) >= maxMatches {
			return refs
		}
	}

	for _, sel := range tier.LinkSelectors {
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			href, _ := s.Attr("href")
			return add(href, "")
		})
		if len(refs) >= maxMatches {
			return refs
		}
	}

	if len(tier.ImgKeywords) > 0 {
		doc.Find("img").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			src, _ := s.Attr("src")
			alt, _ := s.Attr("alt")
			class, _ := s.Attr("class")
			if !matchesAnyKeyword(tier.ImgKeywords, alt, src, class) {
				return true
			}
			return add(src, alt)
		})
	}

	return refs
}

func matchesAnyKeyword(keywords []string, fields ...string) bool {
	for _, f := range fields {
		lower := strings.ToLower(f)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				return true
			}
		}
	}
	return false
}

func resolveImageURL(base *url.URL, raw string) (string, bool) {
	ref, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	abs := base.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return "", false
	}
	return abs.String(), true
}

func (e *Extractor) downloadAndScore(
	ctx context.Context,
	p Profile,
	imageType ImageType,
	imageURL string,
	alt string,
	entityName string,
) (Candidate, error) {
	data, contentType, err := e.images.Download(ctx, imageURL)
	if err != nil {
		return Candidate{}, err
	}

	dims, err := imaging.Validate(data, contentType, imaging.Limits{
		MinBytes: p.MinImageBytes,
	})
	if err != nil {
		return Candidate{}, err
	}

	cand := Candidate{
		URL:      imageURL,
		Alt:      alt,
		Type:     imageType,
		Width:    dims.Width,
		Height:   dims.Height,
		ByteSize: len(data),
		Data:     data,
	}
	cand.Score = Score(p, cand, entityName)
	metrics.ObserveCandidate(string(p.Kind), string(imageType))
	return cand, nil
}
