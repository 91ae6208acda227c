package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"vgsales_dashboard/internal/dataset"
)

// ErrNoSnapshot is returned when the store holds no matching snapshot.
var ErrNoSnapshot = errors.New("no snapshot stored")

type Store struct {
	db *sql.DB
}

// Snapshot describes one normalized load of the sales dataset.
type Snapshot struct {
	ID           int64     `json:"id"`
	CollectedAt  time.Time `json:"collected_at"`
	Source       string    `json:"source"`
	Rows         int       `json:"rows"`
	Kept         int       `json:"kept"`
	MissingYear  int       `json:"missing_year"`
	MissingGenre int       `json:"missing_genre"`
}

func Open(path string) (*Store, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	st := &Store{db: db}
	if err := st.Init(); err != nil {
		db.Close()
		return nil, err
	}
	return st, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Init() error {
	schema := `
CREATE TABLE IF NOT EXISTS snapshots (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  collected_at TEXT NOT NULL,
  source TEXT NOT NULL,
  rows_read INTEGER NOT NULL,
  rows_kept INTEGER NOT NULL,
  missing_year INTEGER NOT NULL,
  missing_genre INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS games (
  snapshot_id INTEGER NOT NULL,
  position INTEGER NOT NULL,
  title TEXT NOT NULL,
  platform TEXT NOT NULL,
  year INTEGER NOT NULL,
  genre TEXT NOT NULL,
  publisher TEXT,
  developer TEXT,
  rating TEXT,
  na_sales REAL NOT NULL,
  eu_sales REAL NOT NULL,
  jp_sales REAL NOT NULL,
  other_sales REAL NOT NULL,
  global_sales REAL NOT NULL,
  PRIMARY KEY (snapshot_id, position),
  FOREIGN KEY(snapshot_id) REFERENCES snapshots(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_games_genre ON games(snapshot_id, genre);
`
	_, err := s.db.Exec(schema)
	return err
}

// SaveTable stores t as a new snapshot in one transaction and returns its id.
func (s *Store) SaveTable(ctx context.Context, snapshot Snapshot, t *dataset.Table) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO snapshots (collected_at, source, rows_read, rows_kept, missing_year, missing_genre) VALUES (?, ?, ?, ?, ?, ?)`,
		snapshot.CollectedAt.UTC().Format(time.RFC3339),
		snapshot.Source,
		snapshot.Rows,
		t.Len(),
		snapshot.MissingYear,
		snapshot.MissingGenre,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO games (snapshot_id, position, title, platform, year, genre, publisher, developer, rating, na_sales, eu_sales, jp_sales, other_sales, global_sales)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for i := 0; i < t.Len(); i++ {
		r := t.At(i)
		if _, err := stmt.ExecContext(ctx,
			id,
			i,
			r.Title,
			r.Platform,
			r.Year,
			r.Genre,
			nullString(r.Publisher),
			nullString(r.Developer),
			nullString(r.Rating),
			r.NA,
			r.EU,
			r.JP,
			r.Other,
			r.Global,
		); err != nil {
			return 0, fmt.Errorf("insert game %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *Store) GetLatestSnapshot(ctx context.Context) (Snapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, collected_at, source, rows_read, rows_kept, missing_year, missing_genre
		 FROM snapshots
		 ORDER BY collected_at DESC, id DESC
		 LIMIT 1`,
	)
	return scanSnapshot(row)
}

func (s *Store) ListSnapshots(ctx context.Context) ([]Snapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, collected_at, source, rows_read, rows_kept, missing_year, missing_genre
		 FROM snapshots
		 ORDER BY collected_at DESC, id DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		snapshot, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, snapshot)
	}
	return out, rows.Err()
}

// LoadTable rebuilds the table stored under snapshotID in its original order.
func (s *Store) LoadTable(ctx context.Context, snapshotID int64) (*dataset.Table, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT title, platform, year, genre, publisher, developer, rating, na_sales, eu_sales, jp_sales, other_sales, global_sales
		 FROM games
		 WHERE snapshot_id = ?
		 ORDER BY position ASC`,
		snapshotID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []dataset.GameRecord
	for rows.Next() {
		var r dataset.GameRecord
		var publisher, developer, rating sql.NullString
		if err := rows.Scan(
			&r.Title,
			&r.Platform,
			&r.Year,
			&r.Genre,
			&publisher,
			&developer,
			&rating,
			&r.NA,
			&r.EU,
			&r.JP,
			&r.Other,
			&r.Global,
		); err != nil {
			return nil, err
		}
		r.Publisher = publisher.String
		r.Developer = developer.String
		r.Rating = rating.String
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return dataset.NewTable(records), nil
}

// LoadLatest returns the most recent snapshot and its table.
func (s *Store) LoadLatest(ctx context.Context) (Snapshot, *dataset.Table, error) {
	snapshot, err := s.GetLatestSnapshot(ctx)
	if err != nil {
		return Snapshot{}, nil, err
	}
	t, err := s.LoadTable(ctx, snapshot.ID)
	if err != nil {
		return Snapshot{}, nil, err
	}
	return snapshot, t, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row scanner) (Snapshot, error) {
	var snapshot Snapshot
	var collected string
	if err := row.Scan(
		&snapshot.ID,
		&collected,
		&snapshot.Source,
		&snapshot.Rows,
		&snapshot.Kept,
		&snapshot.MissingYear,
		&snapshot.MissingGenre,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Snapshot{}, ErrNoSnapshot
		}
		return Snapshot{}, err
	}
	parsed, err := time.Parse(time.RFC3339, collected)
	if err != nil {
		return Snapshot{}, fmt.Errorf("parse collected_at: %w", err)
	}
	snapshot.CollectedAt = parsed
	return snapshot, nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func nullString(value string) sql.NullString {
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}
