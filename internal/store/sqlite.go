package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mdeeno/motoieum/internal/domain"
)

// SQLite is the local single-file backend.
type SQLite struct {
	Pool *sql.DB
}

func OpenSQLite(path string) (*SQLite, error) {
	if path == "" {
		return nil, eris.New("store: sqlite path is empty")
	}
	// modernc sqlite uses DSN like: file:foo.db?_pragma=busy_timeout(5000)
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)

	pool, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "store: open sqlite")
	}

	pool.SetMaxOpenConns(1) // sqlite typically wants 1 writer
	pool.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := pool.PingContext(ctx); err != nil {
		_ = pool.Close()
		return nil, eris.Wrap(err, "store: ping sqlite")
	}

	return &SQLite{Pool: pool}, nil
}

func (s *SQLite) Close() error {
	if s == nil || s.Pool == nil {
		return nil
	}
	return s.Pool.Close()
}

// Migrate creates the listing table. Schema versions are tracked in PRAGMA user_version.
func (s *SQLite) Migrate(ctx context.Context, table string) error {
	if err := checkTable(table); err != nil {
		return err
	}
	tx, err := s.Pool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRowContext(ctx, `PRAGMA user_version;`).Scan(&v); err != nil {
		return err
	}

	// ---- Schema v1 ----
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  title TEXT NOT NULL,
  price TEXT NOT NULL,
  year TEXT NOT NULL DEFAULT '',
  mileage TEXT NOT NULL DEFAULT '',
  location TEXT NOT NULL DEFAULT '',
  source TEXT NOT NULL,
  external_link TEXT NOT NULL,
  image_url TEXT,
  status TEXT NOT NULL,
  created_at TEXT NOT NULL
);
`, table)); err != nil {
		return eris.Wrapf(err, "store: create %s", table)
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`
CREATE UNIQUE INDEX IF NOT EXISTS idx_%s_external_link
ON %s(external_link);
`, table, table)); err != nil {
		return eris.Wrapf(err, "store: index %s", table)
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`
CREATE INDEX IF NOT EXISTS idx_%s_created_at
ON %s(created_at);
`, table, table)); err != nil {
		return err
	}

	if v < 1 {
		if _, err := tx.ExecContext(ctx, `PRAGMA user_version = 1;`); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLite) FindByField(ctx context.Context, table, field, value string) (Row, bool, error) {
	if err := checkLookup(table, field); err != nil {
		return Row{}, false, err
	}
	var r Row
	err := s.Pool.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT id FROM %s WHERE %s = ? LIMIT 1;`, table, field), value,
	).Scan(&r.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return Row{}, false, nil
	}
	if err != nil {
		return Row{}, false, eris.Wrapf(err, "store: find %s", table)
	}
	return r, true, nil
}

func (s *SQLite) Insert(ctx context.Context, table string, rec domain.ListingRecord) error {
	if err := checkTable(table); err != nil {
		return err
	}
	_, err := s.Pool.ExecContext(ctx, fmt.Sprintf(`
INSERT INTO %s(title, price, year, mileage, location, source, external_link, image_url, status, created_at)
VALUES(?,?,?,?,?,?,?,?,?,?);`, table),
		rec.Title,
		rec.Price,
		rec.Year,
		rec.Mileage,
		rec.Location,
		rec.Source,
		rec.ExternalLink,
		rec.ImageURL,
		rec.Status,
		time.Now().UTC().Format(time.RFC3339),
	)
	if isSQLiteUnique(err) {
		return ErrDuplicate
	}
	if err != nil {
		return eris.Wrapf(err, "store: insert %s", table)
	}
	return nil
}

func (s *SQLite) ListRecent(ctx context.Context, table string, limit int) ([]Listing, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	rows, err := s.Pool.QueryContext(ctx, fmt.Sprintf(`
SELECT id, title, price, year, mileage, location, source, external_link, image_url, status, created_at
FROM %s
ORDER BY id DESC
LIMIT ?;`, table), clampLimit(limit))
	if err != nil {
		return nil, eris.Wrapf(err, "store: list %s", table)
	}
	defer rows.Close()

	var out []Listing
	for rows.Next() {
		var l Listing
		var img sql.NullString
		var created string
		if err := rows.Scan(
			&l.ID,
			&l.Title,
			&l.Price,
			&l.Year,
			&l.Mileage,
			&l.Location,
			&l.Source,
			&l.ExternalLink,
			&img,
			&l.Status,
			&created,
		); err != nil {
			return nil, err
		}
		if img.Valid {
			v := img.String
			l.ImageURL = &v
		}
		l.CreatedAt, _ = time.Parse(time.RFC3339, created)
		out = append(out, l)
	}
	return out, rows.Err()
}

func isSQLiteUnique(err error) bool {
	var se *sqlite.Error
	if err == nil || !errors.As(err, &se) {
		return false
	}
	return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}
