// Package app initializes and holds long-lived application services, acting
// as the dependency injection container for the CLI and HTTP server.
package app

import (
	"context"
	"fmt"

	"cloud.google.com/go/pubsub"
	gstorage "cloud.google.com/go/storage"
	"go.uber.org/zap"

	"github.com/campusmatch/image-pipeline/internal/api"
	"github.com/campusmatch/image-pipeline/internal/clock/system"
	"github.com/campusmatch/image-pipeline/internal/config"
	"github.com/campusmatch/image-pipeline/internal/fetch"
	"github.com/campusmatch/image-pipeline/internal/hash/sha256"
	"github.com/campusmatch/image-pipeline/internal/id/uuid"
	"github.com/campusmatch/image-pipeline/internal/metrics"
	"github.com/campusmatch/image-pipeline/internal/pipeline"
	pubmemory "github.com/campusmatch/image-pipeline/internal/publisher/memory"
	pubgcp "github.com/campusmatch/image-pipeline/internal/publisher/pubsub"
	"github.com/campusmatch/image-pipeline/internal/storage/gcs"
	"github.com/campusmatch/image-pipeline/internal/storage/local"
	"github.com/campusmatch/image-pipeline/internal/storage/memory"
	"github.com/campusmatch/image-pipeline/internal/storage/s3"
	"github.com/campusmatch/image-pipeline/internal/store/postgres"
)

// topicEvent tags completion-event messages.
const topicEvent = "image-extraction"

// App holds the shared, long-lived services of the pipeline. It is built
// once at startup and handed to the commands that need it.
type App struct {
	cfg    config.Config
	logger *zap.Logger

	objects   pipeline.ObjectStore
	publisher pipeline.Publisher

	institutions *postgres.EntityStore
	scholarships *postgres.EntityStore

	renderer     *fetch.ChromedpRenderer
	gcsClient    *gstorage.Client
	pubsubClient *pubsub.Client
	pubsubPub    *pubgcp.Publisher

	kinds map[string]api.Kind
}

// New builds every service the pipeline needs, failing fast when a critical
// dependency cannot be initialized.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	metrics.Init()

	a := &App{cfg: cfg, logger: logger}

	if err := a.initObjectStore(ctx); err != nil {
		return nil, err
	}
	if err := a.initEntityStores(ctx); err != nil {
		return nil, err
	}
	if err := a.initPublisher(ctx); err != nil {
		return nil, err
	}
	if err := a.initPipelines(); err != nil {
		return nil, err
	}

	logger.Info("application services initialized",
		zap.String("storage_provider", cfg.Storage.Provider),
		zap.Bool("headless_enabled", cfg.Headless.Enabled),
		zap.Bool("pubsub_enabled", cfg.PubSub.Enabled),
	)
	return a, nil
}

// Logger returns the shared zap logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Config returns the loaded service configuration.
func (a *App) Config() config.Config {
	return a.cfg
}

// Kinds exposes the per-kind pipelines keyed by their API URL segment.
func (a *App) Kinds() map[string]api.Kind {
	return a.kinds
}

func (a *App) initObjectStore(ctx context.Context) error {
	switch a.cfg.Storage.Provider {
	case "s3":
		store, err := s3.New(ctx, s3.Config{
			Bucket:        a.cfg.Storage.Bucket,
			Region:        a.cfg.Storage.Region,
			PublicBaseURL: a.cfg.Storage.PublicBaseURL,
			Endpoint:      a.cfg.Storage.Endpoint,
			AccessKey:     a.cfg.Storage.AccessKey,
			SecretKey:     a.cfg.Storage.SecretKey,
			PathStyle:     a.cfg.Storage.PathStyle,
		})
		if err != nil {
			return fmt.Errorf("init s3 storage: %w", err)
		}
		a.objects = store
	case "gcs":
		client, err := gstorage.NewClient(ctx)
		if err != nil {
			return fmt.Errorf("init gcs client: %w", err)
		}
		store, err := gcs.New(client, gcs.Config{
			Bucket:        a.cfg.Storage.Bucket,
			PublicBaseURL: a.cfg.Storage.PublicBaseURL,
		})
		if err != nil {
			return fmt.Errorf("init gcs storage: %w", err)
		}
		a.gcsClient = client
		a.objects = store
	case "local":
		store, err := local.New(local.Config{BaseDir: a.cfg.Storage.LocalDir})
		if err != nil {
			return fmt.Errorf("init local storage: %w", err)
		}
		a.objects = store
	case "memory":
		a.objects = memory.New()
	default:
		return fmt.Errorf("unknown storage provider: %s", a.cfg.Storage.Provider)
	}
	return nil
}

func (a *App) initEntityStores(ctx context.Context) error {
	pgCfg := postgres.Config{
		DSN:             a.cfg.DB.DSN,
		MaxConns:        a.cfg.DB.MaxConns,
		MinConns:        a.cfg.DB.MinConns,
		MaxConnLifetime: a.cfg.DB.MaxConnLifetime,
	}

	institutions, err := postgres.NewEntityStore(ctx, pgCfg, tableSpec(a.cfg.Institutions))
	if err != nil {
		return fmt.Errorf("init institutions store: %w", err)
	}
	scholarships, err := postgres.NewEntityStore(ctx, pgCfg, tableSpec(a.cfg.Scholarships))
	if err != nil {
		institutions.Close()
		return fmt.Errorf("init scholarships store: %w", err)
	}

	a.institutions = institutions
	a.scholarships = scholarships
	return nil
}

func tableSpec(cfg config.TableConfig) postgres.TableSpec {
	return postgres.TableSpec{
		Table:         cfg.Table,
		IDColumn:      cfg.IDColumn,
		NameColumn:    cfg.NameColumn,
		WebsiteColumn: cfg.WebsiteColumn,
	}
}

func (a *App) initPublisher(ctx context.Context) error {
	if !a.cfg.PubSub.Enabled {
		a.publisher = pubmemory.New()
		return nil
	}
	client, err := pubsub.NewClient(ctx, a.cfg.PubSub.ProjectID)
	if err != nil {
		return fmt.Errorf("init pubsub client: %w", err)
	}
	a.pubsubClient = client
	a.pubsubPub = pubgcp.New(client.Topic(a.cfg.PubSub.TopicName))
	a.publisher = a.pubsubPub
	return nil
}

func (a *App) initPipelines() error {
	pages, err := fetch.NewCollyPage(fetch.PageConfig{
		UserAgent: a.cfg.HTTP.UserAgent,
		Timeout:   a.cfg.PageTimeout(),
		MaxBytes:  a.cfg.HTTP.MaxPageBytes,
	}, a.logger)
	if err != nil {
		return fmt.Errorf("init page fetcher: %w", err)
	}

	var pageFetcher pipeline.PageFetcher = pages
	if a.cfg.Headless.Enabled {
		renderer, err := fetch.NewChromedpRenderer(fetch.RendererConfig{
			UserAgent:   a.cfg.HTTP.UserAgent,
			MaxParallel: a.cfg.Headless.MaxParallel,
			NavTimeout:  a.cfg.HeadlessNavTimeout(),
			DomainQPS:   a.cfg.Headless.DomainQPS,
		}, a.logger)
		if err != nil {
			return fmt.Errorf("init renderer: %w", err)
		}
		a.renderer = renderer
		detector := fetch.NewHeuristicDetector(a.cfg.Headless.MinHTMLBytes, a.cfg.MustSelectorList())
		pageFetcher = fetch.NewPromoting(pages, detector, renderer, a.logger)
	}

	images := fetch.NewHTTPImage(fetch.ImageConfig{
		UserAgent: a.cfg.HTTP.UserAgent,
		Timeout:   a.cfg.ImageTimeout(),
	})
	extractor := pipeline.NewExtractor(images, a.logger)

	hasher := sha256.New()
	clk := system.New()
	idGen := uuid.New()
	batchCfg := pipeline.BatchConfig{
		Delay:        a.cfg.BatchDelay(),
		DelayEvery:   a.cfg.Batch.DelayEvery,
		DefaultLimit: a.cfg.Batch.DefaultLimit,
	}

	a.kinds = make(map[string]api.Kind, 2)
	for segment, bundle := range map[string]struct {
		profile pipeline.Profile
		store   *postgres.EntityStore
	}{
		"institutions": {profile: pipeline.InstitutionProfile(), store: a.institutions},
		"scholarships": {profile: pipeline.ScholarshipProfile(), store: a.scholarships},
	} {
		orch := pipeline.NewOrchestrator(
			bundle.profile,
			bundle.store,
			a.objects,
			pageFetcher,
			extractor,
			a.publisher,
			hasher,
			clk,
			a.logger.With(zap.String("kind", string(bundle.profile.Kind))),
			topicEvent,
		)
		batch := pipeline.NewBatch(orch, bundle.store, batchCfg, idGen, clk, a.logger)
		a.kinds[segment] = api.Kind{
			Batch:     batch,
			Processor: orch,
			Store:     bundle.store,
		}
	}
	return nil
}

// Close gracefully shuts down all services in the container.
func (a *App) Close() {
	if a.renderer != nil {
		if err := a.renderer.Close(); err != nil {
			a.logger.Warn("close renderer", zap.Error(err))
		}
	}
	if a.pubsubPub != nil {
		a.pubsubPub.Stop()
	}
	if a.pubsubClient != nil {
		if err := a.pubsubClient.Close(); err != nil {
			a.logger.Warn("close pubsub client", zap.Error(err))
		}
	}
	if a.gcsClient != nil {
		if err := a.gcsClient.Close(); err != nil {
			a.logger.Warn("close gcs client", zap.Error(err))
		}
	}
	if a.institutions != nil {
		a.institutions.Close()
	}
	if a.scholarships != nil {
		a.scholarships.Close()
	}
	_ = a.logger.Sync()
}
