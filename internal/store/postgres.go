package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/haven-labs/haven-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store needs. pgxmock's pool
// interface satisfies it, which keeps the Postgres store unit-testable.
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

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
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

// NewPostgresWithPool wraps an existing pool. Used by tests.
func NewPostgresWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS listings (
	id             TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	address        TEXT NOT NULL,
	city           TEXT NOT NULL DEFAULT '',
	state          TEXT NOT NULL DEFAULT '',
	zipcode        TEXT NOT NULL,
	property_type  TEXT NOT NULL DEFAULT 'single_family',
	list_price     DOUBLE PRECISION NOT NULL,
	sqft           DOUBLE PRECISION NOT NULL DEFAULT 0,
	bedrooms       DOUBLE PRECISION NOT NULL DEFAULT 0,
	bathrooms      DOUBLE PRECISION NOT NULL DEFAULT 0,
	year_built     INTEGER NOT NULL DEFAULT 0,
	days_on_market DOUBLE PRECISION NOT NULL DEFAULT 0,
	imported_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE(address, zipcode)
);

CREATE TABLE IF NOT EXISTS deals (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	address    TEXT NOT NULL,
	zipcode    TEXT NOT NULL,
	list_price DOUBLE PRECISION NOT NULL,
	label      TEXT NOT NULL,
	rank_score DOUBLE PRECISION NOT NULL,
	result     JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_listings_zipcode ON listings(zipcode);
CREATE INDEX IF NOT EXISTS idx_listings_list_price ON listings(list_price);
CREATE INDEX IF NOT EXISTS idx_deals_label ON deals(label);
CREATE INDEX IF NOT EXISTS idx_deals_zipcode ON deals(zipcode);
CREATE INDEX IF NOT EXISTS idx_deals_rank_score ON deals(rank_score DESC);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) SaveListings(ctx context.Context, listings []model.Listing) (int, error) {
	now := time.Now().UTC()
	saved := 0
	for _, l := range listings {
		id := l.ID
		if id == "" {
			id = uuid.New().String()
		}
		_, err := s.pool.Exec(ctx,
			`INSERT INTO listings
			 (id, address, city, state, zipcode, property_type, list_price, sqft, bedrooms, bathrooms, year_built, days_on_market, imported_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			 ON CONFLICT (address, zipcode) DO UPDATE SET
			   list_price = $7, sqft = $8, bedrooms = $9, bathrooms = $10,
			   days_on_market = $12, imported_at = $13`,
			id, l.Address, l.City, l.State, l.Zipcode, string(l.PropertyType),
			l.ListPrice, l.Sqft, l.Bedrooms, l.Bathrooms, l.YearBuilt, l.DaysOnMarket, now,
		)
		if err != nil {
			return saved, eris.Wrapf(err, "postgres: save listing %s", l.Address)
		}
		saved++
	}
	return saved, nil
}

func (s *PostgresStore) SearchListings(ctx context.Context, filter ListingFilter) ([]model.Listing, error) {
	query := `SELECT id, address, city, state, zipcode, property_type, list_price, sqft, bedrooms, bathrooms, year_built, days_on_market, imported_at
	          FROM listings WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Zipcode != "" {
		query += fmt.Sprintf(` AND zipcode = $%d`, argIdx)
		args = append(args, filter.Zipcode)
		argIdx++
	}
	if filter.MinPrice > 0 {
		query += fmt.Sprintf(` AND list_price >= $%d`, argIdx)
		args = append(args, filter.MinPrice)
		argIdx++
	}
	if filter.MaxPrice > 0 {
		query += fmt.Sprintf(` AND list_price <= $%d`, argIdx)
		args = append(args, filter.MaxPrice)
		argIdx++
	}
	query += ` ORDER BY list_price ASC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 500
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: search listings")
	}
	defer rows.Close()

	var listings []model.Listing
	for rows.Next() {
		var l model.Listing
		var propType string
		if err := rows.Scan(&l.ID, &l.Address, &l.City, &l.State, &l.Zipcode, &propType,
			&l.ListPrice, &l.Sqft, &l.Bedrooms, &l.Bathrooms, &l.YearBuilt, &l.DaysOnMarket, &l.ImportedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan listing")
		}
		l.PropertyType = model.PropertyType(propType)
		listings = append(listings, l)
	}
	return listings, eris.Wrap(rows.Err(), "postgres: search listings iterate")
}

func (s *PostgresStore) SaveEvaluation(ctx context.Context, eval *model.DealEvaluation) (*model.Deal, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	resultJSON, err := json.Marshal(eval)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal evaluation")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO deals (id, address, zipcode, list_price, label, rank_score, result, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, eval.Address, eval.Zipcode, eval.ListPrice, string(eval.Label), eval.RankScore, resultJSON, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert deal")
	}

	return &model.Deal{
		ID:        id,
		Address:   eval.Address,
		Zipcode:   eval.Zipcode,
		ListPrice: eval.ListPrice,
		Label:     eval.Label,
		RankScore: eval.RankScore,
		Result:    eval,
		CreatedAt: now,
	}, nil
}

func (s *PostgresStore) GetDeal(ctx context.Context, dealID string) (*model.Deal, error) {
	var d model.Deal
	var label string
	var resultJSON []byte

	err := s.pool.QueryRow(ctx,
		`SELECT id, address, zipcode, list_price, label, rank_score, result, created_at FROM deals WHERE id = $1`,
		dealID,
	).Scan(&d.ID, &d.Address, &d.Zipcode, &d.ListPrice, &label, &d.RankScore, &resultJSON, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eris.Errorf("deal not found: %s", dealID)
		}
		return nil, eris.Wrapf(err, "postgres: get deal %s", dealID)
	}
	d.Label = model.Label(label)

	d.Result = &model.DealEvaluation{}
	if err := json.Unmarshal(resultJSON, d.Result); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal deal result")
	}
	return &d, nil
}

func (s *PostgresStore) ListDeals(ctx context.Context, filter DealFilter) ([]model.Deal, error) {
	query := `SELECT id, address, zipcode, list_price, label, rank_score, result, created_at FROM deals WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Label != "" {
		query += fmt.Sprintf(` AND label = $%d`, argIdx)
		args = append(args, string(filter.Label))
		argIdx++
	}
	if filter.Zipcode != "" {
		query += fmt.Sprintf(` AND zipcode = $%d`, argIdx)
		args = append(args, filter.Zipcode)
		argIdx++
	}
	query += ` ORDER BY rank_score DESC, created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list deals")
	}
	defer rows.Close()

	var deals []model.Deal
	for rows.Next() {
		var d model.Deal
		var label string
		var resultJSON []byte
		if err := rows.Scan(&d.ID, &d.Address, &d.Zipcode, &d.ListPrice, &label, &d.RankScore, &resultJSON, &d.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan deal")
		}
		d.Label = model.Label(label)
		d.Result = &model.DealEvaluation{}
		if err := json.Unmarshal(resultJSON, d.Result); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal deal result")
		}
		deals = append(deals, d)
	}
	return deals, eris.Wrap(rows.Err(), "postgres: list deals iterate")
}
