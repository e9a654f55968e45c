// Package fetch provides the outbound HTTP side of the pipeline: page
// fetching (plain and headless-rendered) and candidate image downloads.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

// PageConfig configures the plain HTML fetcher.
type PageConfig struct {
	UserAgent string
	Timeout   time.Duration
	// MaxBytes caps the accepted response body; larger pages are rejected
	// rather than parsed.
	MaxBytes int64
}

// CollyPage fetches entity homepages through a Colly collector.
type CollyPage struct {
	baseCollector *colly.Collector
	maxBytes      int64
	logger        *zap.Logger
}

// NewCollyPage constructs a configured Colly-based page fetcher.
func NewCollyPage(cfg PageConfig, logger *zap.Logger) (*CollyPage, error) {
	base := colly.NewCollector(
		colly.Async(true),
		colly.UserAgent(cfg.UserAgent),
	)
	base.AllowURLRevisit = true
	base.WithTransport(&http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          32,
		MaxIdleConnsPerHost:   4,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: cfg.Timeout,
		ForceAttemptHTTP2:     true,
	})
	base.SetRequestTimeout(cfg.Timeout)

	return &CollyPage{
		baseCollector: base,
		maxBytes:      cfg.MaxBytes,
		logger:        logger,
	}, nil
}

type pageResult struct {
	body []byte
	err  error
}

// Fetch retrieves one page and returns its raw HTML body.
func (f *CollyPage) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	collector := f.baseCollector.Clone()
	resultCh := make(chan pageResult, 1)
	var once sync.Once
	send := func(res pageResult) {
		once.Do(func() {
			resultCh <- res
		})
	}

	collector.OnResponse(func(r *colly.Response) {
		if f.maxBytes > 0 && int64(len(r.Body)) > f.maxBytes {
			send(pageResult{err: fmt.Errorf("page body %d bytes exceeds cap %d", len(r.Body), f.maxBytes)})
			return
		}
		send(pageResult{body: append([]byte{}, r.Body...)})
	})

	collector.OnError(func(_ *colly.Response, err error) {
		if err == nil {
			err = errors.New("unknown colly error")
		}
		send(pageResult{err: err})
	})

	if err := collector.Visit(rawURL); err != nil {
		return nil, err
	}
	collector.Wait()

	select {
	case res := <-resultCh:
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return res.body, res.err
	default:
		return nil, errors.New("page fetch produced no result")
	}
}
