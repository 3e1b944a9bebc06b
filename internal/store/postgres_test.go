package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prospectly/leadgen-cli/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func leadColumns() []string {
	return []string{"id", "place_id", "name", "address", "phone", "website", "category",
		"rating", "reviews_count", "latitude", "longitude", "status", "enriched",
		"validated", "created_at", "updated_at"}
}

func TestPostgresStore_ExistsByPlaceID_Missing(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT 1 FROM leads WHERE place_id = \$1`).
		WithArgs("place-404").
		WillReturnError(pgx.ErrNoRows)

	exists, err := s.ExistsByPlaceID(context.Background(), "place-404")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ExistsByPlaceID_Found(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT 1 FROM leads WHERE place_id = \$1`).
		WithArgs("place-1").
		WillReturnRows(pgxmock.NewRows([]string{"?column?"}).AddRow(1))

	exists, err := s.ExistsByPlaceID(context.Background(), "place-1")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_InsertLead_Duplicate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO leads`).
		WithArgs(pgxmock.AnyArg(), "place-dup", "Dup", "", "", "", "",
			(*float64)(nil), 0, (*float64)(nil), (*float64)(nil),
			"new", false, false, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := s.InsertLead(context.Background(), &model.Lead{PlaceID: "place-dup", Name: "Dup"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicate))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetLead_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`FROM leads WHERE id = \$1`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetLead(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListUnvalidated(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`WHERE validated = FALSE ORDER BY created_at ASC LIMIT \$1`).
		WithArgs(25).
		WillReturnRows(pgxmock.NewRows(leadColumns()).
			AddRow("id-1", "place-1", "One", "", "", "", "",
				(*float64)(nil), 0, (*float64)(nil), (*float64)(nil),
				"new", false, false, now, now))

	leads, err := s.ListUnvalidated(context.Background(), 25)
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, "One", leads[0].Name)
	assert.Equal(t, model.LeadStatusNew, leads[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateLeadStatus_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE leads SET status = \$1`).
		WithArgs("qualified", pgxmock.AnyArg(), "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.UpdateLeadStatus(context.Background(), "missing", model.LeadStatusQualified, nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_InsertAnalysis_MissingLead(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO ai_analysis`).
		WithArgs(pgxmock.AnyArg(), "missing-lead", "", pgxmock.AnyArg(), "", "", 0.0,
			"DISQUALIFY", "", "", pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23503"})

	_, err := s.InsertAnalysis(context.Background(), &model.Analysis{
		LeadID:         "missing-lead",
		Recommendation: model.RecommendDisqualify,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_DeleteLead(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`DELETE FROM leads WHERE id = \$1`).
		WithArgs("id-del").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	require.NoError(t, s.DeleteLead(context.Background(), "id-del"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
