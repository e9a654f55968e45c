package fetch

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// HeuristicDetector decides whether a fetched page looks like a JS shell
// that needs headless rendering before image extraction.
type HeuristicDetector struct {
	minHTMLBytes int
	selectors    []string
}

// NewHeuristicDetector constructs a detector with the configured thresholds.
// selectors lists CSS selectors the plain HTML must contain; an empty list
// disables the selector check.
func NewHeuristicDetector(minBytes int, selectors []string) *HeuristicDetector {
	kept := make([]string, 0, len(selectors))
	for _, sel := range selectors {
		if sel = strings.TrimSpace(sel); sel != "" {
			kept = append(kept, sel)
		}
	}
	return &HeuristicDetector{
		minHTMLBytes: minBytes,
		selectors:    kept,
	}
}

// NeedsJS reports whether the body is too thin to trust.
func (d *HeuristicDetector) NeedsJS(body []byte) bool {
	if d == nil {
		return false
	}
	if d.minHTMLBytes > 0 && len(body) < d.minHTMLBytes {
		return true
	}
	return d.missingSelectors(body)
}

func (d *HeuristicDetector) missingSelectors(body []byte) bool {
	if len(d.selectors) == 0 || len(body) == 0 {
		return false
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return true
	}
	for _, sel := range d.selectors {
		if doc.Find(sel).Length() == 0 {
			return true
		}
	}
	return false
}
