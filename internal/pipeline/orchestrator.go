package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/campusmatch/image-pipeline/internal/imaging"
	"github.com/campusmatch/image-pipeline/internal/metrics"
)

// Orchestrator drives the per-entity state machine:
// PENDING -> PROCESSING -> {SUCCESS, FAILED}. A FAILED entity may be retried
// by a later run; PROCESSING is never a terminal state, even on panic.
type Orchestrator struct {
	profile   Profile
	entities  EntityStore
	objects   ObjectStore
	pages     PageFetcher
	extractor *Extractor
	publisher Publisher
	hasher    Hasher
	clock     Clock
	logger    *zap.Logger
	topic     string
}

// NewOrchestrator wires the pipeline components for one entity kind.
// publisher may be nil when completion events are disabled.
func NewOrchestrator(
	profile Profile,
	entities EntityStore,
	objects ObjectStore,
	pages PageFetcher,
	extractor *Extractor,
	publisher Publisher,
	hasher Hasher,
	clock Clock,
	logger *zap.Logger,
	topic string,
) *Orchestrator {
	return &Orchestrator{
		profile:   profile,
		entities:  entities,
		objects:   objects,
		pages:     pages,
		extractor: extractor,
		publisher: publisher,
		hasher:    hasher,
		clock:     clock,
		logger:    logger,
		topic:     topic,
	}
}

// Profile exposes the orchestrator's calibration profile.
func (o *Orchestrator) Profile() Profile {
	return o.profile
}

// Process runs the full extract-score-select-standardize-upload-persist
// sequence for one entity. Every terminal path stamps the extraction date
// and leaves the row in SUCCESS or FAILED; errors never propagate to the
// caller as panics or batch aborts.
func (o *Orchestrator) Process(ctx context.Context, entity Entity) (outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("entity processing panicked",
				zap.Int64("entity_id", entity.ID),
				zap.Any("panic", r),
			)
			outcome = o.fail(ctx, entity, OutcomeFailed, fmt.Sprintf("panic: %v", r))
		}
	}()

	if entity.Website == "" {
		return o.fail(ctx, entity, OutcomeNoWebsite, "")
	}

	// delete prior objects first so a re-run never leaves orphans behind
	o.DeleteImages(ctx, entity)

	if err := o.entities.SetStatus(ctx, entity.ID, StatusProcessing); err != nil {
		return o.fail(ctx, entity, OutcomeFailed, fmt.Sprintf("set processing: %v", err))
	}

	candidates := o.discover(ctx, entity)

	best, ok := SelectBest(o.profile, candidates)
	if !ok {
		return o.fail(ctx, entity, OutcomeNoImages, "")
	}

	primaryURL, err := o.uploadStandardized(ctx, entity, best, primaryPrefix(o.profile, entity))
	if err != nil {
		o.logger.Warn("primary upload failed",
			zap.Int64("entity_id", entity.ID),
			zap.String("image_url", best.URL),
			zap.Error(err),
		)
		return o.fail(ctx, entity, OutcomeUploadFailed, err.Error())
	}

	logoURL := o.uploadLogoIfDistinct(ctx, entity, best, candidates)

	now := o.clock.Now()
	if err := o.entities.SaveSuccess(ctx, entity.ID, primaryURL, best.Score, logoURL, now); err != nil {
		return o.fail(ctx, entity, OutcomeFailed, fmt.Sprintf("persist result: %v", err))
	}

	outcome = Outcome{
		Kind:       OutcomeSuccess,
		EntityKind: o.profile.Kind,
		EntityID:   entity.ID,
		ImageURL:   primaryURL,
		LogoURL:    logoURL,
		Score:      best.Score,
	}
	metrics.ObserveEntity(string(o.profile.Kind), string(OutcomeSuccess))
	metrics.ObserveScore(string(o.profile.Kind), best.Score)
	o.publish(ctx, outcome)
	return outcome
}

// discover fetches the entity's page and extracts scored candidates. Fetch
// errors degrade to "no candidates", never to a raised error.
func (o *Orchestrator) discover(ctx context.Context, entity Entity) map[ImageType]Candidate {
	pageHTML, err := o.pages.Fetch(ctx, entity.Website)
	if err != nil {
		o.logger.Warn("page fetch failed",
			zap.Int64("entity_id", entity.ID),
			zap.String("website", entity.Website),
			zap.Error(err),
		)
		return map[ImageType]Candidate{}
	}
	return o.extractor.Extract(ctx, o.profile, entity.Website, pageHTML, entity.Name)
}

func (o *Orchestrator) uploadStandardized(
	ctx context.Context,
	entity Entity,
	cand Candidate,
	prefix string,
) (string, error) {
	jpegBytes, err := imaging.Standardize(
		cand.Data,
		o.profile.CanvasWidth,
		o.profile.CanvasHeight,
		o.profile.JPEGQuality,
	)
	if err != nil {
		return "", fmt.Errorf("standardize image: %w", err)
	}

	key := objectKey(prefix, entity, cand.Score, cand.Type)
	publicURL, err := o.objects.Put(ctx, key, "image/jpeg", jpegBytes)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	metrics.ObserveUpload(string(o.profile.Kind), len(jpegBytes))
	return publicURL, nil
}

// uploadLogoIfDistinct stores a secondary branding image when the logo tier
// produced a candidate whose content differs from the primary. Failure here
// never changes the overall outcome.
func (o *Orchestrator) uploadLogoIfDistinct(
	ctx context.Context,
	entity Entity,
	primary Candidate,
	candidates map[ImageType]Candidate,
) string {
	logo, ok := candidates[o.profile.LogoType]
	if !ok || logo.URL == primary.URL {
		return ""
	}
	if o.hasher != nil {
		logoHash, errA := o.hasher.Hash(logo.Data)
		primaryHash, errB := o.hasher.Hash(primary.Data)
		if errA == nil && errB == nil && logoHash == primaryHash {
			return ""
		}
	}

	logoURL, err := o.uploadStandardized(ctx, entity, logo, logoPrefix(o.profile, entity))
	if err != nil {
		o.logger.Warn("logo upload failed",
			zap.Int64("entity_id", entity.ID),
			zap.String("image_url", logo.URL),
			zap.Error(err),
		)
		return ""
	}
	return logoURL
}

// DeleteImages removes every stored object under the entity's primary and
// logo prefixes. Listing or deletion failures are logged and skipped; the
// cleanup is best-effort and a missing prefix is a successful no-op.
func (o *Orchestrator) DeleteImages(ctx context.Context, entity Entity) bool {
	for _, prefix := range []string{
		primaryPrefix(o.profile, entity),
		logoPrefix(o.profile, entity),
	} {
		keys, err := o.objects.List(ctx, prefix)
		if err != nil {
			o.logger.Warn("list objects failed",
				zap.String("prefix", prefix),
				zap.Error(err),
			)
			continue
		}
		for _, key := range keys {
			if err := o.objects.Delete(ctx, key); err != nil {
				o.logger.Warn("delete object failed",
					zap.String("key", key),
					zap.Error(err),
				)
			}
		}
	}
	return true
}

// fail records a terminal failed outcome: status FAILED, extraction date
// stamped, image fields untouched.
func (o *Orchestrator) fail(ctx context.Context, entity Entity, kind OutcomeKind, reason string) Outcome {
	if err := o.entities.MarkFailed(ctx, entity.ID, o.clock.Now()); err != nil {
		o.logger.Error("mark failed errored",
			zap.Int64("entity_id", entity.ID),
			zap.Error(err),
		)
	}
	outcome := Outcome{
		Kind:       kind,
		EntityKind: o.profile.Kind,
		EntityID:   entity.ID,
		Reason:     reason,
	}
	metrics.ObserveEntity(string(o.profile.Kind), string(kind))
	o.publish(ctx, outcome)
	return outcome
}

func (o *Orchestrator) publish(ctx context.Context, outcome Outcome) {
	if o.publisher == nil {
		return
	}
	if _, err := o.publisher.Publish(ctx, o.topic, outcome); err != nil {
		o.logger.Warn("publish outcome failed",
			zap.Int64("entity_id", outcome.EntityID),
			zap.Error(err),
		)
	}
}
