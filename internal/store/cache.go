// Package store provides a SQLite-backed cache for the region catalog and the
// local prediction history.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/theirongolddev/realtyai/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// tsLayout has fixed-width fractions so stored timestamps sort lexically.
const tsLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Cache provides SQLite-backed storage.
type Cache struct {
	db *sql.DB
}

// Open opens or creates the cache database at the given path.
func Open(dbPath string) (*Cache, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// SaveRegions replaces the cached region catalog.
func (c *Cache) SaveRegions(names []string) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM regions"); err != nil {
		return err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	stmt, err := tx.Prepare("INSERT OR IGNORE INTO regions (name, position, fetched_at) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for i, name := range names {
		if _, err := stmt.Exec(name, i, now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// LoadRegions returns the cached catalog in its original order and when it was
// fetched. An empty cache returns no names and a zero time.
func (c *Cache) LoadRegions() ([]string, time.Time, error) {
	rows, err := c.db.Query("SELECT name, fetched_at FROM regions ORDER BY position")
	if err != nil {
		return nil, time.Time{}, err
	}
	defer func() { _ = rows.Close() }()

	var (
		names     []string
		fetchedAt time.Time
	)
	for rows.Next() {
		var name, at string
		if err := rows.Scan(&name, &at); err != nil {
			return nil, time.Time{}, err
		}
		names = append(names, name)
		if t, err := time.Parse(time.RFC3339, at); err == nil {
			fetchedAt = t
		}
	}
	return names, fetchedAt, rows.Err()
}

// SavePrediction stores a prediction, assigning an ID and timestamp when unset.
// It returns the stored record.
func (c *Cache) SavePrediction(p model.Prediction) (model.Prediction, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}

	balcony := 0
	if p.Balcony {
		balcony = 1
	}

	_, err := c.db.Exec(`INSERT OR REPLACE INTO predictions
		(id, created_at, source, title, property_type, location, city, bhk,
		 total_area, price_per_sqft, bathroom, balcony, price_lakhs, price_crores)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.CreatedAt.UTC().Format(tsLayout), p.Source, p.Title, p.PropertyType,
		p.Location, p.City, p.BHK, p.TotalArea, p.PricePerSqft, p.Bathroom, balcony,
		p.PriceLakhs, p.PriceCrores,
	)
	if err != nil {
		return p, fmt.Errorf("saving prediction: %w", err)
	}
	return p, nil
}

// RecentPredictions returns up to limit predictions, newest first.
func (c *Cache) RecentPredictions(limit int) ([]model.Prediction, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := c.db.Query(`SELECT
		id, created_at, source, title, property_type, location, city, bhk,
		total_area, price_per_sqft, bathroom, balcony, price_lakhs, price_crores
		FROM predictions ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.Prediction
	for rows.Next() {
		var (
			p                   model.Prediction
			createdAt           string
			title, propertyType sql.NullString
			balcony             int
		)
		err := rows.Scan(&p.ID, &createdAt, &p.Source, &title, &propertyType, &p.Location, &p.City,
			&p.BHK, &p.TotalArea, &p.PricePerSqft, &p.Bathroom, &balcony, &p.PriceLakhs, &p.PriceCrores)
		if err != nil {
			return nil, err
		}
		p.CreatedAt, _ = time.Parse(tsLayout, createdAt)
		p.Title = title.String
		p.PropertyType = propertyType.String
		p.Balcony = balcony != 0
		out = append(out, p)
	}
	return out, rows.Err()
}

// PredictionStats aggregates the whole prediction history.
func (c *Cache) PredictionStats() (model.PredictionStats, error) {
	var (
		st               model.PredictionStats
		minP, maxP, mean sql.NullFloat64
		latest           sql.NullString
	)
	err := c.db.QueryRow(`SELECT COUNT(*), MIN(price_lakhs), MAX(price_lakhs), AVG(price_lakhs),
		COUNT(DISTINCT city), MAX(created_at) FROM predictions`).
		Scan(&st.Count, &minP, &maxP, &mean, &st.Cities, &latest)
	if err != nil {
		return st, err
	}
	st.MinLakhs, st.MaxLakhs, st.MeanLakhs = minP.Float64, maxP.Float64, mean.Float64
	if latest.Valid {
		st.Latest, _ = time.Parse(tsLayout, latest.String)
	}
	return st, nil
}

// DeletePrediction removes one prediction by ID.
func (c *Cache) DeletePrediction(id string) error {
	_, err := c.db.Exec("DELETE FROM predictions WHERE id = ?", id)
	return err
}

// ClearPredictions removes the whole prediction history.
func (c *Cache) ClearPredictions() (int64, error) {
	res, err := c.db.Exec("DELETE FROM predictions")
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
