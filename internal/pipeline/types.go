// Package pipeline defines the core types and interfaces of the entity image
// extraction engine: candidate discovery, quality scoring, selection,
// standardization, upload, and the per-entity status machine.
package pipeline

import "time"

// EntityKind distinguishes the two parallel entity tables.
type EntityKind string

// Entity kinds handled by the pipeline.
const (
	KindInstitution EntityKind = "institution"
	KindScholarship EntityKind = "scholarship"
)

// Status is the persisted extraction lifecycle state of an entity.
type Status string

// Status values persisted in the entity row. A NULL column reads as pending.
const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusSuccess    Status = "success"
	StatusFailed     Status = "failed"
)

// ImageType tags where on the page a candidate was discovered.
type ImageType string

// Candidate image types, in rough priority order.
const (
	TypeOGImage      ImageType = "og_image"
	TypeTwitterImage ImageType = "twitter_image"
	TypeHero         ImageType = "hero"
	TypeLogo         ImageType = "logo"
	TypeOrgLogo      ImageType = "org_logo"
	TypeFavicon      ImageType = "favicon"
)

// Entity is the pipeline's view of one institution or scholarship row.
type Entity struct {
	ID                int64
	Name              string
	Website           string // empty means no website on record
	PrimaryImageURL   string
	PrimaryImageScore int
	LogoImageURL      string
	Status            Status
	ExtractedAt       *time.Time
}

// Candidate is an image discovered on a page. It is never persisted; only
// the winning candidate's derived URL and score reach the database.
type Candidate struct {
	URL      string
	Alt      string
	Type     ImageType
	Width    int
	Height   int
	ByteSize int
	Score    int
	Data     []byte
}

// OutcomeKind is the closed set of per-entity processing results.
type OutcomeKind string

// Outcome kinds. Everything except OutcomeSuccess maps to StatusFailed.
const (
	OutcomeSuccess      OutcomeKind = "success"
	OutcomeNoWebsite    OutcomeKind = "no_website"
	OutcomeNoImages     OutcomeKind = "no_images_found"
	OutcomeUploadFailed OutcomeKind = "upload_failed"
	OutcomeFailed       OutcomeKind = "failed"
)

// Outcome is the result of processing one entity.
type Outcome struct {
	Kind       OutcomeKind `json:"status"`
	EntityKind EntityKind  `json:"entity_kind"`
	EntityID   int64       `json:"entity_id"`
	ImageURL   string      `json:"image_url,omitempty"`
	LogoURL    string      `json:"logo_url,omitempty"`
	Score      int         `json:"score,omitempty"`
	Reason     string      `json:"reason,omitempty"`
}

// BatchStats aggregates one batch run.
type BatchStats struct {
	RunID          string    `json:"run_id"`
	TotalProcessed int       `json:"total_processed"`
	Successful     int       `json:"successful"`
	Failed         int       `json:"failed"`
	NoWebsite      int       `json:"no_website"`
	HighQuality    int       `json:"high_quality"`
	Results        []Outcome `json:"results"`
	Errors         []string  `json:"errors,omitempty"`
}

// BatchOptions selects which entities a batch run processes.
type BatchOptions struct {
	IDs            []int64 `json:"ids,omitempty"`
	Limit          int     `json:"limit,omitempty"`
	ForceReprocess bool    `json:"force_reprocess,omitempty"`
}
