package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/mdeeno/motoieum/internal/domain"
)

type Postgres struct {
	pool *pgxpool.Pool
}

func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	if dsn == "" {
		return nil, eris.New("store: postgres dsn is empty")
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, eris.Wrap(err, "store: create postgres pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "store: connect postgres")
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Close() error {
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}

func (p *Postgres) Migrate(ctx context.Context, table string) error {
	if err := checkTable(table); err != nil {
		return err
	}
	sql := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %[1]s (
		id BIGSERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		price TEXT NOT NULL,
		year VARCHAR(30) NOT NULL DEFAULT '',
		mileage VARCHAR(30) NOT NULL DEFAULT '',
		location TEXT NOT NULL DEFAULT '',
		source TEXT NOT NULL,
		external_link TEXT NOT NULL,
		image_url TEXT,
		status TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_%[1]s_external_link ON %[1]s(external_link);
	CREATE INDEX IF NOT EXISTS idx_%[1]s_created_at ON %[1]s(created_at);
	`, table)

	if _, err := p.pool.Exec(ctx, sql); err != nil {
		return eris.Wrap(err, "store: ensure postgres schema")
	}
	return nil
}

func (p *Postgres) FindByField(ctx context.Context, table, field, value string) (Row, bool, error) {
	if err := checkLookup(table, field); err != nil {
		return Row{}, false, err
	}
	var r Row
	err := p.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT id FROM %s WHERE %s = $1 LIMIT 1`, table, field), value,
	).Scan(&r.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		return Row{}, false, nil
	}
	if err != nil {
		return Row{}, false, eris.Wrapf(err, "store: find %s", table)
	}
	return r, true, nil
}

func (p *Postgres) Insert(ctx context.Context, table string, rec domain.ListingRecord) error {
	if err := checkTable(table); err != nil {
		return err
	}
	_, err := p.pool.Exec(ctx, fmt.Sprintf(`
	INSERT INTO %s (title, price, year, mileage, location, source, external_link, image_url, status)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`, table),
		rec.Title, rec.Price, rec.Year, rec.Mileage, rec.Location,
		rec.Source, rec.ExternalLink, rec.ImageURL, rec.Status,
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return eris.Wrapf(err, "store: insert %s", table)
	}
	return nil
}

func (p *Postgres) ListRecent(ctx context.Context, table string, limit int) ([]Listing, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	rows, err := p.pool.Query(ctx, fmt.Sprintf(`
	SELECT id, title, price, year, mileage, location, source, external_link, image_url, status, created_at
	FROM %s ORDER BY id DESC LIMIT $1`, table), clampLimit(limit))
	if err != nil {
		return nil, eris.Wrapf(err, "store: list %s", table)
	}
	defer rows.Close()

	var out []Listing
	for rows.Next() {
		var l Listing
		if err := rows.Scan(&l.ID, &l.Title, &l.Price, &l.Year, &l.Mileage, &l.Location,
			&l.Source, &l.ExternalLink, &l.ImageURL, &l.Status, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if err == nil || !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgUniqueViolation
}
