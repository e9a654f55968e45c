package fetch

import (
	"context"

	"go.uber.org/zap"

	"github.com/campusmatch/image-pipeline/internal/pipeline"
)

// Renderer is the headless fallback a Promoting fetcher escalates to.
type Renderer interface {
	Render(ctx context.Context, rawURL string) ([]byte, error)
}

// Promoting wraps a plain page fetcher and promotes thin-looking responses
// to a headless render. When the renderer is nil or the render fails, the
// plain body is returned as-is.
type Promoting struct {
	plain    pipeline.PageFetcher
	detector *HeuristicDetector
	renderer Renderer
	logger   *zap.Logger
}

// NewPromoting builds the fallback chain. renderer may be nil.
func NewPromoting(plain pipeline.PageFetcher, detector *HeuristicDetector, renderer Renderer, logger *zap.Logger) *Promoting {
	return &Promoting{
		plain:    plain,
		detector: detector,
		renderer: renderer,
		logger:   logger,
	}
}

// Fetch retrieves the page, escalating to headless rendering when the plain
// body looks like an unrendered JS shell.
func (p *Promoting) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	body, err := p.plain.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	if p.renderer == nil || p.detector == nil || !p.detector.NeedsJS(body) {
		return body, nil
	}

	rendered, err := p.renderer.Render(ctx, rawURL)
	if err != nil {
		p.logger.Warn("headless render failed, using plain body",
			zap.String("url", rawURL),
			zap.Error(err),
		)
		return body, nil
	}
	p.logger.Debug("page promoted to headless render",
		zap.String("url", rawURL),
		zap.Int("plain_bytes", len(body)),
		zap.Int("rendered_bytes", len(rendered)),
	)
	return rendered, nil
}
