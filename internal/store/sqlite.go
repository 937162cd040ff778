package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/haven-labs/haven-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS listings (
	id            TEXT PRIMARY KEY,
	address       TEXT NOT NULL,
	city          TEXT NOT NULL DEFAULT '',
	state         TEXT NOT NULL DEFAULT '',
	zipcode       TEXT NOT NULL,
	property_type TEXT NOT NULL DEFAULT 'single_family',
	list_price    REAL NOT NULL,
	sqft          REAL NOT NULL DEFAULT 0,
	bedrooms      REAL NOT NULL DEFAULT 0,
	bathrooms     REAL NOT NULL DEFAULT 0,
	year_built    INTEGER NOT NULL DEFAULT 0,
	days_on_market REAL NOT NULL DEFAULT 0,
	imported_at   DATETIME NOT NULL DEFAULT (datetime('now')),
	UNIQUE(address, zipcode)
);

CREATE TABLE IF NOT EXISTS deals (
	id         TEXT PRIMARY KEY,
	address    TEXT NOT NULL,
	zipcode    TEXT NOT NULL,
	list_price REAL NOT NULL,
	label      TEXT NOT NULL,
	rank_score REAL NOT NULL,
	result     TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_listings_zipcode ON listings(zipcode);
CREATE INDEX IF NOT EXISTS idx_listings_list_price ON listings(list_price);
CREATE INDEX IF NOT EXISTS idx_deals_label ON deals(label);
CREATE INDEX IF NOT EXISTS idx_deals_zipcode ON deals(zipcode);
CREATE INDEX IF NOT EXISTS idx_deals_rank_score ON deals(rank_score);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveListings(ctx context.Context, listings []model.Listing) (int, error) {
	if len(listings) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin save listings")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO listings
		 (id, address, city, state, zipcode, property_type, list_price, sqft, bedrooms, bathrooms, year_built, days_on_market, imported_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(address, zipcode) DO UPDATE SET
		   list_price = excluded.list_price, sqft = excluded.sqft,
		   bedrooms = excluded.bedrooms, bathrooms = excluded.bathrooms,
		   days_on_market = excluded.days_on_market, imported_at = excluded.imported_at`,
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare save listings")
	}
	defer stmt.Close()

	now := time.Now().UTC()
	saved := 0
	for _, l := range listings {
		id := l.ID
		if id == "" {
			id = uuid.New().String()
		}
		if _, err := stmt.ExecContext(ctx,
			id, l.Address, l.City, l.State, l.Zipcode, string(l.PropertyType),
			l.ListPrice, l.Sqft, l.Bedrooms, l.Bathrooms, l.YearBuilt, l.DaysOnMarket, now,
		); err != nil {
			return 0, eris.Wrapf(err, "sqlite: save listing %s", l.Address)
		}
		saved++
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit save listings")
	}
	return saved, nil
}

func (s *SQLiteStore) SearchListings(ctx context.Context, filter ListingFilter) ([]model.Listing, error) {
	query := `SELECT id, address, city, state, zipcode, property_type, list_price, sqft, bedrooms, bathrooms, year_built, days_on_market, imported_at
	          FROM listings WHERE 1=1`
	var args []any

	if filter.Zipcode != "" {
		query += ` AND zipcode = ?`
		args = append(args, filter.Zipcode)
	}
	if filter.MinPrice > 0 {
		query += ` AND list_price >= ?`
		args = append(args, filter.MinPrice)
	}
	if filter.MaxPrice > 0 {
		query += ` AND list_price <= ?`
		args = append(args, filter.MaxPrice)
	}
	query += ` ORDER BY list_price ASC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 500
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: search listings")
	}
	defer rows.Close()

	var listings []model.Listing
	for rows.Next() {
		var l model.Listing
		var propType string
		if err := rows.Scan(&l.ID, &l.Address, &l.City, &l.State, &l.Zipcode, &propType,
			&l.ListPrice, &l.Sqft, &l.Bedrooms, &l.Bathrooms, &l.YearBuilt, &l.DaysOnMarket, &l.ImportedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan listing")
		}
		l.PropertyType = model.PropertyType(propType)
		listings = append(listings, l)
	}
	return listings, eris.Wrap(rows.Err(), "sqlite: search listings iterate")
}

func (s *SQLiteStore) SaveEvaluation(ctx context.Context, eval *model.DealEvaluation) (*model.Deal, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	resultJSON, err := json.Marshal(eval)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal evaluation")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO deals (id, address, zipcode, list_price, label, rank_score, result, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, eval.Address, eval.Zipcode, eval.ListPrice, string(eval.Label), eval.RankScore, string(resultJSON), now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert deal")
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

func (s *SQLiteStore) GetDeal(ctx context.Context, dealID string) (*model.Deal, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, address, zipcode, list_price, label, rank_score, result, created_at FROM deals WHERE id = ?`,
		dealID,
	)
	return scanDeal(row)
}

func (s *SQLiteStore) ListDeals(ctx context.Context, filter DealFilter) ([]model.Deal, error) {
	query := `SELECT id, address, zipcode, list_price, label, rank_score, result, created_at FROM deals WHERE 1=1`
	var args []any

	if filter.Label != "" {
		query += ` AND label = ?`
		args = append(args, string(filter.Label))
	}
	if filter.Zipcode != "" {
		query += ` AND zipcode = ?`
		args = append(args, filter.Zipcode)
	}
	query += ` ORDER BY rank_score DESC, created_at DESC`

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

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list deals")
	}
	defer rows.Close()

	var deals []model.Deal
	for rows.Next() {
		d, err := scanDeal(rows)
		if err != nil {
			return nil, err
		}
		deals = append(deals, *d)
	}
	return deals, eris.Wrap(rows.Err(), "sqlite: list deals iterate")
}

// helpers

type scannable interface {
	Scan(dest ...any) error
}

func scanDeal(row scannable) (*model.Deal, error) {
	var d model.Deal
	var label, resultJSON string

	err := row.Scan(&d.ID, &d.Address, &d.Zipcode, &d.ListPrice, &label, &d.RankScore, &resultJSON, &d.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.New("deal not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan deal")
	}
	d.Label = model.Label(label)

	d.Result = &model.DealEvaluation{}
	if err := json.Unmarshal([]byte(resultJSON), d.Result); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal deal result")
	}
	return &d, nil
}
