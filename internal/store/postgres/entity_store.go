// Package postgres provides Postgres-backed persistence for entity rows.
package postgres

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campusmatch/image-pipeline/internal/pipeline"
)

var validIdentifier = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Config controls the Postgres connection pool.
type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

// TableSpec maps one entity kind onto its table and per-kind column names.
// The image-extraction columns share names across both tables.
type TableSpec struct {
	Table         string
	IDColumn      string
	NameColumn    string
	WebsiteColumn string
}

func (t TableSpec) validate() error {
	for _, ident := range []string{t.Table, t.IDColumn, t.NameColumn, t.WebsiteColumn} {
		if !validIdentifier.MatchString(ident) {
			return fmt.Errorf("invalid identifier %q", ident)
		}
	}
	return nil
}

type pgxIface interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
	Close()
}

// EntityStore reads and updates one entity table's image-extraction state.
type EntityStore struct {
	pool pgxIface
	spec TableSpec
}

// NewEntityStore connects a pool and builds a store for the given table.
func NewEntityStore(ctx context.Context, cfg Config, spec TableSpec) (*EntityStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	if err := spec.validate(); err != nil {
		return nil, err
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &EntityStore{pool: pool, spec: spec}, nil
}

// NewEntityStoreWithPool constructs a store from an existing pool (primarily for testing).
func NewEntityStoreWithPool(pool pgxIface, spec TableSpec) (*EntityStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if err := spec.validate(); err != nil {
		return nil, err
	}
	return &EntityStore{pool: pool, spec: spec}, nil
}

// Close releases the underlying pool resources.
func (s *EntityStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

func (s *EntityStore) selectColumns() string {
	return fmt.Sprintf(
		`%s, %s, COALESCE(%s, ''), COALESCE(primary_image_url, ''),
COALESCE(primary_image_quality_score, 0), COALESCE(logo_image_url, ''),
COALESCE(image_extraction_status, 'pending'), image_extraction_date`,
		s.spec.IDColumn, s.spec.NameColumn, s.spec.WebsiteColumn,
	)
}

func scanEntity(row pgx.Row) (pipeline.Entity, error) {
	var e pipeline.Entity
	err := row.Scan(
		&e.ID,
		&e.Name,
		&e.Website,
		&e.PrimaryImageURL,
		&e.PrimaryImageScore,
		&e.LogoImageURL,
		&e.Status,
		&e.ExtractedAt,
	)
	return e, err
}

// Get loads one entity row by primary key.
func (s *EntityStore) Get(ctx context.Context, id int64) (pipeline.Entity, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		s.selectColumns(), s.spec.Table, s.spec.IDColumn)
	entity, err := scanEntity(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		return pipeline.Entity{}, fmt.Errorf("get entity %d: %w", id, err)
	}
	return entity, nil
}

// ListByIDs loads the rows for an explicit ID list, in ID order. Missing IDs
// are silently skipped.
func (s *EntityStore) ListByIDs(ctx context.Context, ids []int64) ([]pipeline.Entity, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ANY($1) ORDER BY %s`,
		s.selectColumns(), s.spec.Table, s.spec.IDColumn, s.spec.IDColumn)
	rows, err := s.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("list entities by id: %w", err)
	}
	return collectEntities(rows)
}

// ListEligible selects rows with a website whose status permits processing.
// force widens the filter to every row with a website; limit <= 0 means no cap.
func (s *EntityStore) ListEligible(ctx context.Context, force bool, limit int) ([]pipeline.Entity, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s IS NOT NULL AND %s <> ''`,
		s.selectColumns(), s.spec.Table, s.spec.WebsiteColumn, s.spec.WebsiteColumn)
	if !force {
		query += ` AND (image_extraction_status IS NULL OR image_extraction_status IN ('pending', 'failed'))`
	}
	query += fmt.Sprintf(` ORDER BY %s`, s.spec.IDColumn)

	var args []any
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list eligible entities: %w", err)
	}
	return collectEntities(rows)
}

func collectEntities(rows pgx.Rows) ([]pipeline.Entity, error) {
	defer rows.Close()
	var entities []pipeline.Entity
	for rows.Next() {
		entity, err := scanEntity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entity: %w", err)
		}
		entities = append(entities, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entities: %w", err)
	}
	return entities, nil
}

// SetStatus updates the extraction status without touching other fields.
func (s *EntityStore) SetStatus(ctx context.Context, id int64, status pipeline.Status) error {
	query := fmt.Sprintf(`UPDATE %s SET image_extraction_status = $1 WHERE %s = $2`,
		s.spec.Table, s.spec.IDColumn)
	tag, err := s.pool.Exec(ctx, query, string(status), id)
	if err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("entity %d not found", id)
	}
	return nil
}

// SaveSuccess persists the winning URLs, score, terminal status, and
// extraction date in one update.
func (s *EntityStore) SaveSuccess(ctx context.Context, id int64, primaryURL string, score int, logoURL string, at time.Time) error {
	query := fmt.Sprintf(`
UPDATE %s SET
	primary_image_url = $1,
	primary_image_quality_score = $2,
	logo_image_url = NULLIF($3, ''),
	image_extraction_status = $4,
	image_extraction_date = $5
WHERE %s = $6`, s.spec.Table, s.spec.IDColumn)
	tag, err := s.pool.Exec(ctx, query, primaryURL, score, logoURL, string(pipeline.StatusSuccess), at, id)
	if err != nil {
		return fmt.Errorf("save success: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("entity %d not found", id)
	}
	return nil
}

// MarkFailed stamps the terminal failed status and extraction date, leaving
// image fields as they were.
func (s *EntityStore) MarkFailed(ctx context.Context, id int64, at time.Time) error {
	query := fmt.Sprintf(`
UPDATE %s SET
	image_extraction_status = $1,
	image_extraction_date = $2
WHERE %s = $3`, s.spec.Table, s.spec.IDColumn)
	tag, err := s.pool.Exec(ctx, query, string(pipeline.StatusFailed), at, id)
	if err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("entity %d not found", id)
	}
	return nil
}

// ClearImages nulls the image fields and resets the row to pending.
func (s *EntityStore) ClearImages(ctx context.Context, id int64) error {
	query := fmt.Sprintf(`
UPDATE %s SET
	primary_image_url = NULL,
	primary_image_quality_score = NULL,
	logo_image_url = NULL,
	image_extraction_status = $1,
	image_extraction_date = NULL
WHERE %s = $2`, s.spec.Table, s.spec.IDColumn)
	tag, err := s.pool.Exec(ctx, query, string(pipeline.StatusPending), id)
	if err != nil {
		return fmt.Errorf("clear images: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("entity %d not found", id)
	}
	return nil
}

// Stats counts rows per extraction status. NULL statuses count as pending.
func (s *EntityStore) Stats(ctx context.Context) (map[pipeline.Status]int, error) {
	query := fmt.Sprintf(
		`SELECT COALESCE(image_extraction_status, 'pending'), COUNT(*) FROM %s GROUP BY 1`,
		s.spec.Table)
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[pipeline.Status]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		stats[pipeline.Status(status)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stats: %w", err)
	}
	return stats, nil
}
