package store

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/prospectly/leadgen-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses; pgxmock satisfies it.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS leads (
	id            UUID PRIMARY KEY,
	place_id      TEXT NOT NULL UNIQUE,
	name          TEXT NOT NULL,
	address       TEXT,
	phone         TEXT,
	website       TEXT,
	category      TEXT,
	rating        DOUBLE PRECISION,
	reviews_count INTEGER NOT NULL DEFAULT 0,
	latitude      DOUBLE PRECISION,
	longitude     DOUBLE PRECISION,
	status        TEXT NOT NULL DEFAULT 'new',
	enriched      BOOLEAN NOT NULL DEFAULT FALSE,
	validated     BOOLEAN NOT NULL DEFAULT FALSE,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS ai_analysis (
	id                   UUID PRIMARY KEY,
	lead_id              UUID NOT NULL REFERENCES leads(id) ON DELETE CASCADE,
	business_description TEXT,
	services             JSONB NOT NULL DEFAULT '[]',
	target_market        TEXT,
	company_size         TEXT,
	relevance_score      DOUBLE PRECISION NOT NULL DEFAULT 0,
	recommendation       TEXT NOT NULL,
	reasoning            TEXT,
	raw_response         TEXT,
	created_at           TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_leads_status ON leads(status);
CREATE INDEX IF NOT EXISTS idx_leads_validated ON leads(validated);
CREATE INDEX IF NOT EXISTS idx_ai_analysis_lead_id ON ai_analysis(lead_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) ExistsByPlaceID(ctx context.Context, placeID string) (bool, error) {
	var one int
	err := s.pool.QueryRow(ctx,
		`SELECT 1 FROM leads WHERE place_id = $1`, placeID,
	).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, eris.Wrap(err, "postgres: exists by place id")
	}
	return true, nil
}

func (s *PostgresStore) InsertLead(ctx context.Context, lead *model.Lead) (string, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	status := lead.Status
	if status == "" {
		status = model.LeadStatusNew
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO leads (id, place_id, name, address, phone, website, category, rating,
		                    reviews_count, latitude, longitude, status, enriched, validated,
		                    created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		id, lead.PlaceID, lead.Name, lead.Address, lead.Phone, lead.Website, lead.Category,
		lead.Rating, lead.ReviewsCount, lead.Latitude, lead.Longitude,
		string(status), lead.Enriched, lead.Validated, now, now,
	)
	if err != nil {
		if isPgUniqueViolation(err) {
			return "", eris.Wrapf(ErrDuplicate, "postgres: place id %s", lead.PlaceID)
		}
		return "", eris.Wrap(err, "postgres: insert lead")
	}

	lead.ID = id
	lead.Status = status
	lead.CreatedAt = now
	lead.UpdatedAt = now
	return id, nil
}

func (s *PostgresStore) GetLead(ctx context.Context, id string) (*model.Lead, error) {
	row := s.pool.QueryRow(ctx, selectLeadPostgres+` WHERE id = $1`, id)
	lead, err := scanLeadPostgres(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "postgres: lead %s", id)
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get lead")
	}
	return lead, nil
}

func (s *PostgresStore) ListLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error) {
	query := selectLeadPostgres + ` WHERE 1=1`
	var args []any

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += ` AND status = $` + strconv.Itoa(len(args))
	}
	if filter.Validated != nil {
		args = append(args, *filter.Validated)
		query += ` AND validated = $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query += ` LIMIT $` + strconv.Itoa(len(args))

	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	return s.queryLeads(ctx, query, args...)
}

func (s *PostgresStore) ListUnvalidated(ctx context.Context, limit int) ([]model.Lead, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.queryLeads(ctx,
		selectLeadPostgres+` WHERE validated = FALSE ORDER BY created_at ASC LIMIT $1`, limit)
}

func (s *PostgresStore) UpdateLeadStatus(ctx context.Context, id string, status model.LeadStatus, enriched, validated *bool) error {
	query := `UPDATE leads SET status = $1, updated_at = $2`
	args := []any{string(status), time.Now().UTC()}

	if enriched != nil {
		args = append(args, *enriched)
		query += `, enriched = $` + strconv.Itoa(len(args))
	}
	if validated != nil {
		args = append(args, *validated)
		query += `, validated = $` + strconv.Itoa(len(args))
	}
	args = append(args, id)
	query += ` WHERE id = $` + strconv.Itoa(len(args))

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return eris.Wrapf(err, "postgres: update lead status %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "postgres: lead %s", id)
	}
	return nil
}

func (s *PostgresStore) DeleteLead(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete lead %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "postgres: lead %s", id)
	}
	return nil
}

func (s *PostgresStore) InsertAnalysis(ctx context.Context, analysis *model.Analysis) (string, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	services, err := json.Marshal(analysis.Services)
	if err != nil {
		return "", eris.Wrap(err, "postgres: marshal services")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO ai_analysis (id, lead_id, business_description, services, target_market,
		                          company_size, relevance_score, recommendation, reasoning,
		                          raw_response, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		id, analysis.LeadID, analysis.BusinessDescription, string(services),
		analysis.TargetMarket, analysis.CompanySize, analysis.RelevanceScore,
		string(analysis.Recommendation), analysis.Reasoning, analysis.RawResponse, now,
	)
	if err != nil {
		if isPgForeignKeyViolation(err) {
			return "", eris.Wrapf(ErrNotFound, "postgres: lead %s", analysis.LeadID)
		}
		return "", eris.Wrap(err, "postgres: insert analysis")
	}

	analysis.ID = id
	analysis.CreatedAt = now
	return id, nil
}

func (s *PostgresStore) ListAnalyses(ctx context.Context, leadID string) ([]model.Analysis, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, lead_id, business_description, services, target_market, company_size,
		        relevance_score, recommendation, reasoning, raw_response, created_at
		 FROM ai_analysis WHERE lead_id = $1 ORDER BY created_at DESC`,
		leadID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list analyses")
	}
	defer rows.Close()

	var analyses []model.Analysis
	for rows.Next() {
		var a model.Analysis
		var servicesJSON []byte
		if err := rows.Scan(&a.ID, &a.LeadID, &a.BusinessDescription, &servicesJSON,
			&a.TargetMarket, &a.CompanySize, &a.RelevanceScore, &a.Recommendation,
			&a.Reasoning, &a.RawResponse, &a.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan analysis")
		}
		if err := json.Unmarshal(servicesJSON, &a.Services); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal services")
		}
		analyses = append(analyses, a)
	}
	return analyses, eris.Wrap(rows.Err(), "postgres: list analyses iterate")
}

// helpers

const selectLeadPostgres = `SELECT id, place_id, name, address, phone, website, category, rating,
       reviews_count, latitude, longitude, status, enriched, validated, created_at, updated_at
FROM leads`

func (s *PostgresStore) queryLeads(ctx context.Context, query string, args ...any) ([]model.Lead, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list leads")
	}
	defer rows.Close()

	var leads []model.Lead
	for rows.Next() {
		lead, err := scanLeadPostgres(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan lead")
		}
		leads = append(leads, *lead)
	}
	return leads, eris.Wrap(rows.Err(), "postgres: list leads iterate")
}

func scanLeadPostgres(row pgx.Row) (*model.Lead, error) {
	var l model.Lead
	err := row.Scan(&l.ID, &l.PlaceID, &l.Name, &l.Address, &l.Phone, &l.Website, &l.Category,
		&l.Rating, &l.ReviewsCount, &l.Latitude, &l.Longitude,
		&l.Status, &l.Enriched, &l.Validated, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func isPgUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isPgForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

