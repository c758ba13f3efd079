// Package store persists listing records. Every backend enforces uniqueness of
// external_link and reports a violation as ErrDuplicate.
package store

import (
	"context"
	"regexp"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/mdeeno/motoieum/internal/domain"
)

var ErrDuplicate = eris.New("store: duplicate external_link")

type Row struct {
	ID int64
}

type Store interface {
	// FindByField looks up a single row where field equals value, selecting only its id.
	FindByField(ctx context.Context, table, field, value string) (Row, bool, error)
	Insert(ctx context.Context, table string, rec domain.ListingRecord) error
	Close() error
}

// Listing is a stored record as read back for the ops API.
type Listing struct {
	ID int64 `json:"id"`
	domain.ListingRecord
	CreatedAt time.Time `json:"created_at"`
}

type Lister interface {
	ListRecent(ctx context.Context, table string, limit int) ([]Listing, error)
}

// Migrator is implemented by backends that own their schema.
type Migrator interface {
	Migrate(ctx context.Context, table string) error
}

var lookupFields = map[string]bool{
	"id":            true,
	"external_link": true,
	"source":        true,
	"title":         true,
}

var identRe = regexp.MustCompile(`^[a-z_][a-z0-9_]{0,62}$`)

func checkLookup(table, field string) error {
	if err := checkTable(table); err != nil {
		return err
	}
	if !lookupFields[field] {
		return eris.Errorf("store: field %q not allowed", field)
	}
	return nil
}

func checkTable(table string) error {
	if !identRe.MatchString(table) {
		return eris.Errorf("store: bad table name %q", table)
	}
	return nil
}

func clampLimit(n int) int {
	if n <= 0 {
		return 50
	}
	if n > 500 {
		return 500
	}
	return n
}

// pgUniqueViolation is the SQLSTATE for a unique index conflict.
const pgUniqueViolation = "23505"

const (
	DriverPostgREST = "postgrest"
	DriverPostgres  = "postgres"
	DriverSQLite    = "sqlite"
	DriverMemory    = "memory"
)

type Options struct {
	Driver string
	URL    string // postgrest base URL
	Key    string // postgrest service key
	DSN    string // postgres
	Path   string // sqlite file
}

// Open selects a backend by driver. Schema is not touched; call Migrate for that.
func Open(ctx context.Context, opt Options, log *zap.Logger) (Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	switch opt.Driver {
	case DriverPostgREST, "":
		return NewPostgREST(opt.URL, opt.Key, log), nil
	case DriverPostgres:
		return OpenPostgres(ctx, opt.DSN)
	case DriverSQLite:
		return OpenSQLite(opt.Path)
	case DriverMemory:
		return NewMemory(), nil
	}
	return nil, eris.Errorf("store: unknown driver %q", opt.Driver)
}
