package store

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/mdeeno/motoieum/internal/domain"
)

// Memory is a map-backed Store used for dry runs and tests.
type Memory struct {
	mu     sync.Mutex
	nextID int64
	rows   map[string][]Listing // table -> rows in insert order

	// FailInsert, when set, is consulted before every insert.
	FailInsert func(rec domain.ListingRecord) error
	// FailFind, when set, is consulted before every lookup.
	FailFind func(value string) error
}

func NewMemory() *Memory {
	return &Memory{rows: make(map[string][]Listing)}
}

func (m *Memory) FindByField(_ context.Context, table, field, value string) (Row, bool, error) {
	if err := checkLookup(table, field); err != nil {
		return Row{}, false, err
	}
	if m.FailFind != nil {
		if err := m.FailFind(value); err != nil {
			return Row{}, false, err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, l := range m.rows[table] {
		if fieldValue(l, field) == value {
			return Row{ID: l.ID}, true, nil
		}
	}
	return Row{}, false, nil
}

func (m *Memory) Insert(_ context.Context, table string, rec domain.ListingRecord) error {
	if err := checkTable(table); err != nil {
		return err
	}
	if m.FailInsert != nil {
		if err := m.FailInsert(rec); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, l := range m.rows[table] {
		if l.ExternalLink == rec.ExternalLink {
			return ErrDuplicate
		}
	}
	m.nextID++
	m.rows[table] = append(m.rows[table], Listing{ID: m.nextID, ListingRecord: rec, CreatedAt: time.Now().UTC()})
	return nil
}

// All returns a copy of the table in insert order.
func (m *Memory) All(table string) []domain.ListingRecord {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.ListingRecord, 0, len(m.rows[table]))
	for _, l := range m.rows[table] {
		out = append(out, l.ListingRecord)
	}
	return out
}

func (m *Memory) ListRecent(_ context.Context, table string, limit int) ([]Listing, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	m.mu.Lock()
	out := append([]Listing(nil), m.rows[table]...)
	m.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if n := clampLimit(limit); len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (m *Memory) Close() error { return nil }

func fieldValue(l Listing, field string) string {
	switch field {
	case "id":
		return strconv.FormatInt(l.ID, 10)
	case "external_link":
		return l.ExternalLink
	case "source":
		return l.Source
	case "title":
		return l.Title
	}
	return ""
}
