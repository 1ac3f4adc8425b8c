package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"estimahome/ml"

	_ "github.com/mattn/go-sqlite3"
)

// Store keeps the history of served estimates.
type Store struct {
	database *sql.DB
}

// PredictionRecord is one served estimate.
type PredictionRecord struct {
	ID        string             `json:"id"`
	Features  ml.HousingFeatures `json:"features"`
	LogPrice  float64            `json:"log_price"`
	Price     float64            `json:"price"`
	Source    string             `json:"source"`
	CreatedAt time.Time          `json:"created_at"`
}

// Open opens (creating if needed) the SQLite database at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("database path is required")
	}
	database, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	query := `
    CREATE TABLE IF NOT EXISTS predictions (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        prediction_id TEXT NOT NULL UNIQUE,
        features TEXT NOT NULL,
        median_income REAL,
        log_price REAL NOT NULL,
        price REAL NOT NULL,
        source VARCHAR(20),
        created_at DATETIME NOT NULL
    );
    CREATE INDEX IF NOT EXISTS idx_predictions_created_at ON predictions(created_at);
    `
	if _, err := database.Exec(query); err != nil {
		database.Close()
		return nil, err
	}
	return &Store{database: database}, nil
}

func (s *Store) SavePrediction(ctx context.Context, record PredictionRecord) error {
	if s == nil || s.database == nil {
		return errors.New("database not initialized")
	}
	if record.ID == "" {
		return errors.New("prediction id required")
	}
	features, err := json.Marshal(record.Features)
	if err != nil {
		return err
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	_, err = s.database.ExecContext(ctx, `
        INSERT INTO predictions (
            prediction_id, features, median_income, log_price, price, source, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		string(features),
		record.Features.MedianIncome,
		record.LogPrice,
		record.Price,
		record.Source,
		record.CreatedAt.UTC(),
	)
	return err
}

// RecentPredictions returns up to limit records, newest first.
func (s *Store) RecentPredictions(ctx context.Context, limit int) ([]PredictionRecord, error) {
	if s == nil || s.database == nil {
		return nil, errors.New("database not initialized")
	}
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.database.QueryContext(ctx, `
        SELECT prediction_id, features, log_price, price, source, created_at
        FROM predictions
        ORDER BY created_at DESC, id DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]PredictionRecord, 0)
	for rows.Next() {
		var (
			r        PredictionRecord
			features string
			source   sql.NullString
		)
		if err := rows.Scan(&r.ID, &features, &r.LogPrice, &r.Price, &source, &r.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(features), &r.Features); err != nil {
			return nil, err
		}
		if source.Valid {
			r.Source = source.String
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *Store) Close() error {
	if s == nil || s.database == nil {
		return nil
	}
	return s.database.Close()
}
