package pipeline

import (
	"context"
	"time"
)

// EntityStore persists entity rows and their extraction state.
type EntityStore interface {
	Get(ctx context.Context, id int64) (Entity, error)
	ListByIDs(ctx context.Context, ids []int64) ([]Entity, error)
	// ListEligible returns entities with a website whose status is pending,
	// failed, or unset; force widens the filter to every entity with a
	// website. limit <= 0 means no cap.
	ListEligible(ctx context.Context, force bool, limit int) ([]Entity, error)
	SetStatus(ctx context.Context, id int64, status Status) error
	// SaveSuccess persists the winning image URLs, score, terminal status,
	// and extraction date in one update.
	SaveSuccess(ctx context.Context, id int64, primaryURL string, score int, logoURL string, at time.Time) error
	// MarkFailed stamps the terminal failed status and extraction date
	// without touching image fields.
	MarkFailed(ctx context.Context, id int64, at time.Time) error
	// ClearImages nulls the image fields and resets status to pending.
	ClearImages(ctx context.Context, id int64) error
	Stats(ctx context.Context) (map[Status]int, error)
}

// ObjectStore writes, lists, and deletes stored image objects.
type ObjectStore interface {
	// Put uploads data publicly readable with a long cache lifetime and
	// returns the CDN-fronted URL.
	Put(ctx context.Context, key string, contentType string, data []byte) (string, error)
	List(ctx context.Context, prefix string) ([]string, error)
	Delete(ctx context.Context, key string) error
}

// PageFetcher fetches the raw HTML of an entity's website.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// ImageFetcher downloads one candidate image.
type ImageFetcher interface {
	Download(ctx context.Context, url string) (data []byte, contentType string, err error)
}

// Publisher pushes per-entity completion events.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) (string, error)
}

// Hasher computes digests used to compare image content.
type Hasher interface {
	Hash(data []byte) (string, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}
