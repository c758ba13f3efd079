package types

import (
	"context"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/mdeeno/motoieum/internal/domain"
	"github.com/mdeeno/motoieum/internal/scrape/util"
)

// Source is one listing site. Candidates failing is fatal for that source only;
// Detail failing degrades a single item.
type Source interface {
	Name() string
	Meta() util.SourceMeta
	Candidates(ctx context.Context) ([]domain.Candidate, error)
	Detail(ctx context.Context, c domain.Candidate) (domain.RawFields, error)
}

// Fetcher is the HTTP surface adapters need. fetch.Client implements it.
type Fetcher interface {
	Bytes(ctx context.Context, url string) ([]byte, error)
	Document(ctx context.Context, url string) (*goquery.Document, error)
}

// DefaultWindow is how many newest items a source looks at per run.
const DefaultWindow = 5

// Outcome is the terminal state of one discovered item.
type Outcome int

const (
	Discovered Outcome = iota
	DetailFetched
	DetailFetchFailed
	Normalized
	Skipped
	Inserted
	InsertFailed
)

func (o Outcome) String() string {
	switch o {
	case Discovered:
		return "discovered"
	case DetailFetched:
		return "detail_fetched"
	case DetailFetchFailed:
		return "detail_fetch_failed"
	case Normalized:
		return "normalized"
	case Skipped:
		return "skipped"
	case Inserted:
		return "inserted"
	case InsertFailed:
		return "insert_failed"
	}
	return "unknown"
}

type SourceReport struct {
	Discovered   int    `json:"discovered"`
	DetailFailed int    `json:"detail_failed"`
	Inserted     int    `json:"inserted"`
	Skipped      int    `json:"skipped"`
	InsertFailed int    `json:"insert_failed"`
	ListFailed   bool   `json:"list_failed"`
	Err          string `json:"error,omitempty"`
}

// Report summarises one pass over all sources. Order holds source names as they ran.
type Report struct {
	StartedAt  time.Time                `json:"started_at"`
	FinishedAt time.Time                `json:"finished_at"`
	Order      []string                 `json:"order"`
	Sources    map[string]*SourceReport `json:"sources"`
}

func NewReport() Report {
	return Report{
		StartedAt: time.Now().UTC(),
		Sources:   make(map[string]*SourceReport),
	}
}

// For returns the per-source entry, creating it on first use.
func (r *Report) For(name string) *SourceReport {
	if sr, ok := r.Sources[name]; ok {
		return sr
	}
	sr := &SourceReport{}
	r.Sources[name] = sr
	r.Order = append(r.Order, name)
	return sr
}

func (r Report) Inserted() (n int) {
	for _, sr := range r.Sources {
		n += sr.Inserted
	}
	return n
}

// Failed lists the sources whose list fetch failed.
func (r Report) Failed() []string {
	var out []string
	for _, name := range r.Order {
		if r.Sources[name].ListFailed {
			out = append(out, name)
		}
	}
	return out
}

type ScrapeStatus struct {
	LastRunAt string `json:"last_run_at"`
	LastOkAt  string `json:"last_ok_at"`
	LastError string `json:"last_error"`
	LastAdded int    `json:"last_added"`
	Running   bool   `json:"running"`
}
