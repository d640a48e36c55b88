// Package processor drives the per-row search-and-fill loop under a global
// call budget.
package processor

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/gtin-cli/internal/fetcher"
	"github.com/sells-group/gtin-cli/internal/gtin"
	"github.com/sells-group/gtin-cli/internal/quota"
	"github.com/sells-group/gtin-cli/internal/table"
	"github.com/sells-group/gtin-cli/pkg/cse"
)

// Mode selects which column feeds the search query.
type Mode string

const (
	ModeSKU  Mode = "sku"
	ModeName Mode = "name"
)

// ParseMode validates a mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(s)) {
	case ModeSKU:
		return ModeSKU, nil
	case ModeName:
		return ModeName, nil
	default:
		return "", fmt.Errorf("unknown search mode %q (want sku or name)", s)
	}
}

// Options tunes a fill run.
type Options struct {
	Mode       Mode
	Num        int           // search results per query
	FetchPages bool          // also scan each hit's landing page
	MaxRows    int           // 0 = all rows
	Pacer      *rate.Limiter // optional pacing between search calls
}

// Report accumulates per-run counters for the status display.
type Report struct {
	RowsTotal      int  `json:"rows_total"`
	RowsSkipped    int  `json:"rows_skipped"` // target already populated
	RowsFilled     int  `json:"rows_filled"`
	Misses         int  `json:"misses"`
	Malformed      int  `json:"malformed"` // lookup key column empty
	CallsMade      int  `json:"calls_made"`
	QuotaRemaining int  `json:"quota_remaining"`
	Halted         bool `json:"halted"` // stopped early on quota exhaustion
}

// Processor fills the target column of a table row by row.
type Processor struct {
	search cse.Client
	pages  fetcher.PageReader
	opts   Options
}

// New creates a Processor. The page reader may be nil when FetchPages is off.
func New(search cse.Client, pages fetcher.PageReader, opts Options) *Processor {
	if opts.Num <= 0 {
		opts.Num = 5
	}
	return &Processor{search: search, pages: pages, opts: opts}
}

// Run processes rows in original order, mutating the table in place.
// Rows with a populated target are skipped at no cost; every search call
// consumes one unit from the counter whether or not it succeeds; once the
// counter is exhausted the loop halts and remaining rows stay untouched.
// Individual call failures count as misses and never abort the run.
func (p *Processor) Run(ctx context.Context, t *table.Table, m table.ResolvedMapping, counter *quota.Counter) (*Report, error) {
	rows := len(t.Rows)
	if p.opts.MaxRows > 0 && p.opts.MaxRows < rows {
		rows = p.opts.MaxRows
	}

	report := &Report{RowsTotal: rows, QuotaRemaining: counter.Remaining()}
	log := zap.L().With(zap.String("mode", string(p.opts.Mode)))

	for i := 0; i < rows; i++ {
		if err := ctx.Err(); err != nil {
			report.QuotaRemaining = counter.Remaining()
			return report, err
		}

		if t.Get(i, m.Target) != "" {
			report.RowsSkipped++
			continue
		}

		key := p.lookupKey(t, m, i)
		if key == "" {
			report.Malformed++
			log.Warn("processor: row has no lookup key", zap.Int("row", i))
			continue
		}

		if counter.Exhausted() {
			report.Halted = true
			log.Info("processor: quota exhausted, halting",
				zap.Int("row", i),
				zap.Int("calls_made", report.CallsMade),
			)
			break
		}

		code := p.lookupRow(ctx, log, counter, report, key)
		if code == "" {
			report.Misses++
			continue
		}

		t.Set(i, m.Target, code)
		report.RowsFilled++
		log.Debug("processor: row filled", zap.Int("row", i), zap.String("code", code))
	}

	report.QuotaRemaining = counter.Remaining()
	return report, nil
}

// lookupKey picks the query value for row i per the configured mode.
func (p *Processor) lookupKey(t *table.Table, m table.ResolvedMapping, i int) string {
	col := m.SKU
	if p.opts.Mode == ModeName {
		col = m.Name
	}
	if col < 0 {
		return ""
	}
	return t.Get(i, col)
}

// lookupRow issues one search call for the row, consuming one quota unit,
// and returns a validated code or "".
func (p *Processor) lookupRow(ctx context.Context, log *zap.Logger, counter *quota.Counter, report *Report, key string) string {
	if p.opts.Pacer != nil {
		if err := p.opts.Pacer.Wait(ctx); err != nil {
			return ""
		}
	}

	// The call attempt costs one unit regardless of outcome.
	counter.Consume()
	report.CallsMade++

	query := fmt.Sprintf("%q ean", key)
	resp, err := p.search.Search(ctx, query, p.opts.Num)
	if err != nil {
		log.Warn("processor: search failed", zap.String("key", key), zap.Error(err))
		return ""
	}

	texts := p.gatherTexts(ctx, log, resp.Items)
	code := gtin.ChooseBest(texts)
	if code == "" || !gtin.Valid(code) {
		return ""
	}
	return code
}

// gatherTexts collects snippet texts weighted by result rank, plus each
// hit's page text when page fetching is enabled. Page fetches cost no
// quota and their failures are silent misses of extra context only.
func (p *Processor) gatherTexts(ctx context.Context, log *zap.Logger, items []cse.Item) []gtin.WeightedText {
	texts := make([]gtin.WeightedText, 0, len(items))
	for rank, item := range items {
		w := 1.0 + float64(p.opts.Num-rank)*0.1
		texts = append(texts, gtin.WeightedText{Text: item.Snippet, Weight: w})

		if !p.opts.FetchPages || p.pages == nil || item.Link == "" {
			continue
		}
		page, err := p.pages.Text(ctx, item.Link)
		if err != nil {
			log.Debug("processor: page fetch failed", zap.String("url", item.Link), zap.Error(err))
			continue
		}
		if page != "" {
			texts = append(texts, gtin.WeightedText{Text: page, Weight: w + 0.5})
		}
	}
	return texts
}
