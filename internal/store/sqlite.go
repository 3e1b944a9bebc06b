package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/prospectly/leadgen-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL
// mode. Foreign keys are enabled so analysis rows cascade with their lead.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS leads (
	id            TEXT PRIMARY KEY,
	place_id      TEXT NOT NULL UNIQUE,
	name          TEXT NOT NULL,
	address       TEXT,
	phone         TEXT,
	website       TEXT,
	category      TEXT,
	rating        REAL,
	reviews_count INTEGER NOT NULL DEFAULT 0,
	latitude      REAL,
	longitude     REAL,
	status        TEXT NOT NULL DEFAULT 'new',
	enriched      INTEGER NOT NULL DEFAULT 0,
	validated     INTEGER NOT NULL DEFAULT 0,
	created_at    DATETIME NOT NULL,
	updated_at    DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS ai_analysis (
	id                   TEXT PRIMARY KEY,
	lead_id              TEXT NOT NULL REFERENCES leads(id) ON DELETE CASCADE,
	business_description TEXT,
	services             TEXT NOT NULL DEFAULT '[]',
	target_market        TEXT,
	company_size         TEXT,
	relevance_score      REAL NOT NULL DEFAULT 0,
	recommendation       TEXT NOT NULL,
	reasoning            TEXT,
	raw_response         TEXT,
	created_at           DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_leads_status ON leads(status);
CREATE INDEX IF NOT EXISTS idx_leads_validated ON leads(validated);
CREATE INDEX IF NOT EXISTS idx_ai_analysis_lead_id ON ai_analysis(lead_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ExistsByPlaceID(ctx context.Context, placeID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM leads WHERE place_id = ?`, placeID,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, eris.Wrap(err, "sqlite: exists by place id")
	}
	return true, nil
}

func (s *SQLiteStore) InsertLead(ctx context.Context, lead *model.Lead) (string, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	status := lead.Status
	if status == "" {
		status = model.LeadStatusNew
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO leads (id, place_id, name, address, phone, website, category, rating,
		                    reviews_count, latitude, longitude, status, enriched, validated,
		                    created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, lead.PlaceID, lead.Name, lead.Address, lead.Phone, lead.Website, lead.Category,
		lead.Rating, lead.ReviewsCount, lead.Latitude, lead.Longitude,
		string(status), lead.Enriched, lead.Validated, now, now,
	)
	if err != nil {
		if isSQLiteUniqueViolation(err) {
			return "", eris.Wrapf(ErrDuplicate, "sqlite: place id %s", lead.PlaceID)
		}
		return "", eris.Wrap(err, "sqlite: insert lead")
	}

	lead.ID = id
	lead.Status = status
	lead.CreatedAt = now
	lead.UpdatedAt = now
	return id, nil
}

func (s *SQLiteStore) GetLead(ctx context.Context, id string) (*model.Lead, error) {
	row := s.db.QueryRowContext(ctx, selectLeadSQLite+` WHERE id = ?`, id)
	lead, err := scanLeadSQLite(row)
	if err == sql.ErrNoRows {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: lead %s", id)
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get lead")
	}
	return lead, nil
}

func (s *SQLiteStore) ListLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error) {
	query := selectLeadSQLite + ` WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.Validated != nil {
		query += ` AND validated = ?`
		args = append(args, *filter.Validated)
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	return s.queryLeads(ctx, query, args...)
}

func (s *SQLiteStore) ListUnvalidated(ctx context.Context, limit int) ([]model.Lead, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.queryLeads(ctx,
		selectLeadSQLite+` WHERE validated = 0 ORDER BY created_at ASC LIMIT ?`, limit)
}

func (s *SQLiteStore) UpdateLeadStatus(ctx context.Context, id string, status model.LeadStatus, enriched, validated *bool) error {
	query := `UPDATE leads SET status = ?, updated_at = ?`
	args := []any{string(status), time.Now().UTC()}

	if enriched != nil {
		query += `, enriched = ?`
		args = append(args, *enriched)
	}
	if validated != nil {
		query += `, validated = ?`
		args = append(args, *validated)
	}
	query += ` WHERE id = ?`
	args = append(args, id)

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update lead status %s", id)
	}
	return checkRowsAffected(res, id)
}

func (s *SQLiteStore) DeleteLead(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM leads WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete lead %s", id)
	}
	return checkRowsAffected(res, id)
}

func (s *SQLiteStore) InsertAnalysis(ctx context.Context, analysis *model.Analysis) (string, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	services, err := json.Marshal(analysis.Services)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: marshal services")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO ai_analysis (id, lead_id, business_description, services, target_market,
		                          company_size, relevance_score, recommendation, reasoning,
		                          raw_response, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, analysis.LeadID, analysis.BusinessDescription, string(services),
		analysis.TargetMarket, analysis.CompanySize, analysis.RelevanceScore,
		string(analysis.Recommendation), analysis.Reasoning, analysis.RawResponse, now,
	)
	if err != nil {
		if isSQLiteForeignKeyViolation(err) {
			return "", eris.Wrapf(ErrNotFound, "sqlite: lead %s", analysis.LeadID)
		}
		return "", eris.Wrap(err, "sqlite: insert analysis")
	}

	analysis.ID = id
	analysis.CreatedAt = now
	return id, nil
}

func (s *SQLiteStore) ListAnalyses(ctx context.Context, leadID string) ([]model.Analysis, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, lead_id, business_description, services, target_market, company_size,
		        relevance_score, recommendation, reasoning, raw_response, created_at
		 FROM ai_analysis WHERE lead_id = ? ORDER BY created_at DESC`,
		leadID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list analyses")
	}
	defer rows.Close()

	var analyses []model.Analysis
	for rows.Next() {
		var a model.Analysis
		var servicesJSON string
		if err := rows.Scan(&a.ID, &a.LeadID, &a.BusinessDescription, &servicesJSON,
			&a.TargetMarket, &a.CompanySize, &a.RelevanceScore, &a.Recommendation,
			&a.Reasoning, &a.RawResponse, &a.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan analysis")
		}
		if err := json.Unmarshal([]byte(servicesJSON), &a.Services); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal services")
		}
		analyses = append(analyses, a)
	}
	return analyses, eris.Wrap(rows.Err(), "sqlite: list analyses iterate")
}

// helpers

const selectLeadSQLite = `SELECT id, place_id, name, address, phone, website, category, rating,
       reviews_count, latitude, longitude, status, enriched, validated, created_at, updated_at
FROM leads`

func (s *SQLiteStore) queryLeads(ctx context.Context, query string, args ...any) ([]model.Lead, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list leads")
	}
	defer rows.Close()

	var leads []model.Lead
	for rows.Next() {
		lead, err := scanLeadSQLite(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan lead")
		}
		leads = append(leads, *lead)
	}
	return leads, eris.Wrap(rows.Err(), "sqlite: list leads iterate")
}

type scannable interface {
	Scan(dest ...any) error
}

func scanLeadSQLite(row scannable) (*model.Lead, error) {
	var l model.Lead
	var address, phone, website, category sql.NullString
	err := row.Scan(&l.ID, &l.PlaceID, &l.Name, &address, &phone, &website, &category,
		&l.Rating, &l.ReviewsCount, &l.Latitude, &l.Longitude,
		&l.Status, &l.Enriched, &l.Validated, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	l.Address = address.String
	l.Phone = phone.String
	l.Website = website.String
	l.Category = category.String
	return &l, nil
}

func checkRowsAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "sqlite: lead %s", id)
	}
	return nil
}

func isSQLiteUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isSQLiteForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
