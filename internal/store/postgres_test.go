package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haven-labs/haven-cli/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	return NewPostgresWithPool(mock), mock
}

func TestPostgres_SaveEvaluation(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO deals`).
		WithArgs(pgxmock.AnyArg(), "123 Main St", "45501", 150_000.0, "buy", 34.5, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	deal, err := s.SaveEvaluation(context.Background(), testEvaluation())
	require.NoError(t, err)
	assert.NotEmpty(t, deal.ID)
	assert.Equal(t, model.LabelBuy, deal.Label)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetDeal(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	resultJSON, err := json.Marshal(testEvaluation())
	require.NoError(t, err)

	rows := pgxmock.NewRows([]string{"id", "address", "zipcode", "list_price", "label", "rank_score", "result", "created_at"}).
		AddRow("deal-1", "123 Main St", "45501", 150_000.0, "buy", 34.5, resultJSON, time.Now().UTC())

	mock.ExpectQuery(`SELECT id, address, zipcode, list_price, label, rank_score, result, created_at FROM deals WHERE id = \$1`).
		WithArgs("deal-1").
		WillReturnRows(rows)

	deal, err := s.GetDeal(context.Background(), "deal-1")
	require.NoError(t, err)
	assert.Equal(t, "deal-1", deal.ID)
	assert.Equal(t, model.LabelBuy, deal.Label)
	require.NotNil(t, deal.Result)
	assert.InDelta(t, 1.77, deal.Result.Finance.DSCR, 1e-9)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetDeal_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, address, zipcode, list_price, label, rank_score, result, created_at FROM deals`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetDeal(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deal not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_ListDeals_FilterArgs(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	resultJSON, err := json.Marshal(testEvaluation())
	require.NoError(t, err)

	rows := pgxmock.NewRows([]string{"id", "address", "zipcode", "list_price", "label", "rank_score", "result", "created_at"}).
		AddRow("deal-1", "123 Main St", "45501", 150_000.0, "buy", 34.5, resultJSON, time.Now().UTC())

	mock.ExpectQuery(`SELECT id, address, zipcode, list_price, label, rank_score, result, created_at FROM deals WHERE true AND label = \$1 ORDER BY rank_score DESC`).
		WithArgs("buy", 100).
		WillReturnRows(rows)

	deals, err := s.ListDeals(context.Background(), DealFilter{Label: model.LabelBuy})
	require.NoError(t, err)
	require.Len(t, deals, 1)
	assert.Equal(t, model.LabelBuy, deals[0].Label)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_SaveListings(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO listings`).
		WithArgs(pgxmock.AnyArg(), "1 Oak St", "Springfield", "OH", "45501", "single_family",
			120_000.0, 1_200.0, 3.0, 2.0, 0, 0.0, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	saved, err := s.SaveListings(context.Background(), []model.Listing{testListing("1 Oak St", "45501", 120_000)})
	require.NoError(t, err)
	assert.Equal(t, 1, saved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_SearchListings(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	rows := pgxmock.NewRows([]string{"id", "address", "city", "state", "zipcode", "property_type",
		"list_price", "sqft", "bedrooms", "bathrooms", "year_built", "days_on_market", "imported_at"}).
		AddRow("l-1", "1 Oak St", "Springfield", "OH", "45501", "single_family",
			120_000.0, 1_200.0, 3.0, 2.0, 1965, 12.0, time.Now().UTC())

	mock.ExpectQuery(`FROM listings WHERE true AND zipcode = \$1 AND list_price <= \$2`).
		WithArgs("45501", 200_000.0, 500).
		WillReturnRows(rows)

	listings, err := s.SearchListings(context.Background(), ListingFilter{Zipcode: "45501", MaxPrice: 200_000})
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, model.PropertySingleFamily, listings[0].PropertyType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Migrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS listings`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
