// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // database/sql driver
	"github.com/google/uuid"
	"github.com/jcodagnone/addrlookup/model"
	"github.com/jcodagnone/addrlookup/spatial"
)

// DuckDB keeps the registry in a DuckDB table. Every record also stores the
// H3 cell of its point for proximity queries.
type DuckDB struct {
	db  *sql.DB
	now func() time.Time
}

// NewDuckDB wraps an open DuckDB connection. Call CreateSchema before use.
func NewDuckDB(db *sql.DB) *DuckDB {
	return &DuckDB{db: db, now: time.Now}
}

// OpenDuckDB opens (or creates) the registry database at path. An empty
// path is an in-memory database.
func OpenDuckDB(path string) (*DuckDB, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("opening registry database: %w", err)
	}

	r := NewDuckDB(db)
	if err := r.CreateSchema(); err != nil {
		db.Close()

		return nil, fmt.Errorf("creating registry schema: %w", err)
	}

	return r, nil
}

// DB returns the underlying database connection.
func (r *DuckDB) DB() *sql.DB {
	return r.db
}

func (r *DuckDB) CreateSchema() error {
	_, err := r.db.Exec(`
		CREATE SEQUENCE IF NOT EXISTS address_registry_seq START 1;

		CREATE TABLE IF NOT EXISTS address_registry (
			row_id INTEGER PRIMARY KEY DEFAULT nextval('address_registry_seq'),
			id VARCHAR NOT NULL UNIQUE,
			company_raw VARCHAR NOT NULL,
			company_normalized VARCHAR NOT NULL,
			site_hint VARCHAR NOT NULL,
			street_1 VARCHAR NOT NULL,
			street_2 VARCHAR NOT NULL,
			city VARCHAR NOT NULL,
			state_region VARCHAR NOT NULL,
			postal_code VARCHAR NOT NULL,
			country VARCHAR NOT NULL,
			country_name VARCHAR NOT NULL,
			lat DOUBLE,
			lng DOUBLE,
			formatted_address VARCHAR NOT NULL,
			source VARCHAR NOT NULL,
			confidence DOUBLE NOT NULL,
			geocoder_place_id VARCHAR NOT NULL,
			qa_status VARCHAR NOT NULL,
			notes VARCHAR NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			h3_res7 UBIGINT
		);

		CREATE INDEX IF NOT EXISTS address_registry_name_idx ON address_registry(company_normalized);
	`)

	return err
}

const baseSelect = `
	SELECT id, company_raw, company_normalized, site_hint, street_1, street_2,
	       city, state_region, postal_code, country, country_name, lat, lng,
	       formatted_address, source, confidence, geocoder_place_id, qa_status,
	       notes, created_at, updated_at
	FROM address_registry
`

// exactWhere mirrors matchesExact.
const exactWhere = `
	WHERE upper(trim(company_normalized)) = upper(trim(?))
	  AND (trim(?) = '' OR trim(city) = '' OR upper(trim(city)) = upper(trim(?)))
	  AND (trim(?) = '' OR trim(country) = '' OR upper(trim(country)) = upper(trim(?)))
`

func (r *DuckDB) list(query string, args ...any) ([]*model.AddressRecord, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*model.AddressRecord

	for rows.Next() {
		rec := &model.AddressRecord{}

		var lat, lng sql.NullFloat64

		var source, qaStatus string

		err := rows.Scan(
			&rec.ID, &rec.CompanyRaw, &rec.CompanyNormalized, &rec.SiteHint,
			&rec.Street1, &rec.Street2, &rec.City, &rec.StateRegion,
			&rec.PostalCode, &rec.Country, &rec.CountryName, &lat, &lng,
			&rec.FormattedAddress, &source, &rec.Confidence, &rec.PlaceID, &qaStatus,
			&rec.Notes, &rec.CreatedAt, &rec.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}

		if lat.Valid && lng.Valid {
			rec.Point = spatial.NewPoint(lat.Float64, lng.Float64)
		}

		rec.Source = model.Source(source)
		rec.QAStatus = model.QAStatus(qaStatus)

		records = append(records, rec)
	}

	return records, rows.Err()
}

func (r *DuckDB) first(query string, args ...any) (*model.AddressRecord, error) {
	records, err := r.list(query+" ORDER BY row_id LIMIT 1", args...)
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, ErrNotFound
	}

	return records[0], nil
}

func (r *DuckDB) FindExact(name, city, country string) (*model.AddressRecord, error) {
	return r.first(baseSelect+exactWhere, name, city, city, country, country)
}

func (r *DuckDB) FindByPlaceID(placeID string) (*model.AddressRecord, error) {
	if placeID == "" {
		return nil, ErrNotFound
	}

	return r.first(baseSelect+" WHERE geocoder_place_id = ?", placeID)
}

func (r *DuckDB) Candidates(country string) ([]*model.AddressRecord, error) {
	return r.list(baseSelect+`
		WHERE trim(company_normalized) <> ''
		  AND (trim(?) = '' OR trim(country) = '' OR upper(trim(country)) = upper(trim(?)))
		ORDER BY row_id`, country, country)
}

func (r *DuckDB) Insert(rec *model.AddressRecord) error {
	prepareInsert(rec, uuid.NewString(), r.now().UTC())

	var lat, lng sql.NullFloat64

	var cell sql.NullInt64

	if rec.Point != nil {
		lat = sql.NullFloat64{Float64: rec.Point.Lat, Valid: true}
		lng = sql.NullFloat64{Float64: rec.Point.Lng, Valid: true}

		if rec.Point.Valid() {
			c, err := rec.Point.Cell(NearbyResolution)
			if err != nil {
				log.Printf("⚠️ no H3 cell for %s: %v", rec.CompanyNormalized, err)
			} else {
				cell = sql.NullInt64{Int64: int64(c), Valid: true}
			}
		}
	}

	_, err := r.db.Exec(`
		INSERT INTO address_registry(
			id, company_raw, company_normalized, site_hint, street_1, street_2,
			city, state_region, postal_code, country, country_name, lat, lng,
			formatted_address, source, confidence, geocoder_place_id, qa_status,
			notes, created_at, updated_at, h3_res7
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ID, rec.CompanyRaw, rec.CompanyNormalized, rec.SiteHint, rec.Street1, rec.Street2,
		rec.City, rec.StateRegion, rec.PostalCode, rec.Country, rec.CountryName, lat, lng,
		rec.FormattedAddress, string(rec.Source), rec.Confidence, rec.PlaceID, string(rec.QAStatus),
		rec.Notes, rec.CreatedAt, rec.UpdatedAt, cell,
	)
	if err != nil {
		return fmt.Errorf("inserting %s: %w", rec.CompanyNormalized, err)
	}

	return nil
}

func (r *DuckDB) Update(name string, u Update) error {
	var (
		sets []string
		args []any
	)

	if u.Confidence != nil {
		sets = append(sets, "confidence = ?")
		args = append(args, *u.Confidence)
	}

	if u.QAStatus != nil {
		sets = append(sets, "qa_status = ?")
		args = append(args, string(*u.QAStatus))
	}

	if u.Notes != nil {
		sets = append(sets, "notes = ?")
		args = append(args, *u.Notes)
	}

	sets = append(sets, "updated_at = ?")
	args = append(args, r.now().UTC(), name)

	res, err := r.db.Exec(`
		UPDATE address_registry SET `+strings.Join(sets, ", ")+`
		WHERE row_id = (
			SELECT min(row_id) FROM address_registry WHERE upper(trim(company_normalized)) = upper(trim(?))
		)`, args...)
	if err != nil {
		return fmt.Errorf("updating %s: %w", name, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating %s: %w", name, err)
	}

	if n == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *DuckDB) All(limit int) ([]*model.AddressRecord, error) {
	if limit > 0 {
		return r.list(baseSelect+" ORDER BY row_id LIMIT ?", limit)
	}

	return r.list(baseSelect + " ORDER BY row_id")
}

func (r *DuckDB) LowConfidence(threshold float64) ([]*model.AddressRecord, error) {
	return r.list(baseSelect+" WHERE confidence < ? AND NOT isnan(confidence) ORDER BY row_id", threshold)
}

func (r *DuckDB) Nearby(p *spatial.Point, k int) ([]*model.AddressRecord, error) {
	if !p.Valid() {
		return nil, errors.New("invalid point")
	}

	cells, err := p.Neighborhood(NearbyResolution, k)
	if err != nil {
		return nil, err
	}

	placeholders := make([]string, len(cells))
	args := make([]any, len(cells))

	for i, c := range cells {
		placeholders[i] = "?"
		args[i] = int64(c)
	}

	return r.list(baseSelect+" WHERE h3_res7 IN ("+strings.Join(placeholders, ", ")+") ORDER BY row_id", args...)
}

func (r *DuckDB) Stats() (Stats, error) {
	s := Stats{Sources: map[string]int{}}

	err := r.db.QueryRow(`
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE qa_status = 'auto'),
		       COUNT(*) FILTER (WHERE qa_status = 'review')
		FROM address_registry
	`).Scan(&s.Total, &s.AutoCount, &s.ReviewCount)
	if err != nil {
		return s, err
	}

	rows, err := r.db.Query(`
		SELECT CASE WHEN source = '' THEN 'unknown' ELSE source END AS src, COUNT(*)
		FROM address_registry
		GROUP BY src
	`)
	if err != nil {
		return s, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			src string
			n   int
		)

		if err := rows.Scan(&src, &n); err != nil {
			return s, err
		}

		s.Sources[src] = n
	}

	return s, rows.Err()
}

func (r *DuckDB) Close() error {
	return r.db.Close()
}
