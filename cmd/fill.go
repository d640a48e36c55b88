package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/gtin-cli/internal/fetcher"
	"github.com/sells-group/gtin-cli/internal/processor"
	"github.com/sells-group/gtin-cli/internal/quota"
	"github.com/sells-group/gtin-cli/internal/store"
	"github.com/sells-group/gtin-cli/internal/table"
	"github.com/sells-group/gtin-cli/pkg/cse"
)

var (
	fillInput      string
	fillOutput     string
	fillSKUCol     string
	fillNameCol    string
	fillTargetCol  string
	fillMapping    string
	fillMode       string
	fillLimit      int
	fillFetchPages bool
	fillDryRun     bool
	fillOffline    bool
)

var fillCmd = &cobra.Command{
	Use:   "fill",
	Short: "Search and fill missing EAN-13 codes in a product table",
	Long: `Reads a CSV (delimiter auto-detected) or XLSX table, and for each row
whose target column is empty runs one web search, extracts a candidate
EAN-13, validates its check digit, and writes it back. Search calls are
capped by the daily quota; processing halts when the budget runs out.

Examples:
  # Preview parsing only, no searches
  gtin-cli fill --input products.csv --sku-col SKU --target-col EAN --dry-run

  # Offline run with stub search results (no API keys needed)
  gtin-cli fill --input products.csv --sku-col SKU --target-col EAN --offline

  # Real run, search by product name, scan hit pages too
  gtin-cli fill --input products.csv --name-col Name --target-col EAN \
    --mode name --fetch-pages --output products_ean.csv`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		// Parse the input table. A file that cannot be parsed at all is
		// the one fatal input error, surfaced before any processing.
		tbl, err := table.Read(fillInput)
		if err != nil {
			return eris.Wrap(err, "fill: read input")
		}
		zap.L().Info("fill: parsed input",
			zap.String("input", fillInput),
			zap.Int("rows", len(tbl.Rows)),
			zap.String("delimiter", string(tbl.Delimiter)),
		)

		mapping, err := resolveMapping(tbl)
		if err != nil {
			return err
		}

		if fillDryRun {
			return printPreview(tbl)
		}

		modeStr := fillMode
		if modeStr == "" {
			modeStr = cfg.Search.Mode
		}
		mode, err := processor.ParseMode(modeStr)
		if err != nil {
			return eris.Wrap(err, "fill")
		}
		if mode == processor.ModeSKU && mapping.SKU < 0 {
			return eris.New("fill: mode sku needs --sku-col (or a mapping with sku)")
		}
		if mode == processor.ModeName && mapping.Name < 0 {
			return eris.New("fill: mode name needs --name-col (or a mapping with name)")
		}

		if !fillOffline {
			if cfg.Google.APIKey == "" || cfg.Google.CX == "" {
				return eris.New("fill: GTIN_GOOGLE_API_KEY and GTIN_GOOGLE_CX must be set (or use --offline)")
			}
		}

		st, err := initStore(ctx)
		if err != nil {
			return eris.Wrap(err, "fill: init store")
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "fill: migrate store")
		}

		// Seed the session counter from the persisted daily ledger.
		today := store.Day(time.Now())
		used, err := st.UsedOn(ctx, today)
		if err != nil {
			return eris.Wrap(err, "fill: read quota ledger")
		}
		counter := quota.NewCounter(cfg.Quota.DailyLimit - used)
		zap.L().Info("fill: quota",
			zap.Int("daily_limit", cfg.Quota.DailyLimit),
			zap.Int("used_today", used),
			zap.Int("remaining", counter.Remaining()),
		)

		pacer := rate.NewLimiter(rate.Limit(cfg.Search.Rate), 1)
		search, pages := initClients(pacer)

		p := processor.New(search, pages, processor.Options{
			Mode:       mode,
			Num:        cfg.Google.Num,
			FetchPages: fillFetchPages || cfg.Search.FetchPages,
			MaxRows:    fillLimit,
			Pacer:      pacer,
		})

		report, runErr := p.Run(ctx, tbl, mapping, counter)

		// Calls already made must reach the ledger even on interruption.
		if report.CallsMade > 0 {
			if usageErr := st.AddUsage(ctx, today, report.CallsMade); usageErr != nil {
				zap.L().Error("fill: persist quota usage", zap.Error(usageErr))
			}
		}
		if runErr != nil {
			return eris.Wrap(runErr, "fill: processing interrupted")
		}

		outPath := fillOutput
		if outPath == "" {
			outPath = defaultOutputPath(fillInput)
		}
		if err := table.Write(outPath, tbl); err != nil {
			return eris.Wrap(err, "fill: write output")
		}

		if _, err := st.RecordRun(ctx, store.RunRecord{
			Input:       filepath.Base(fillInput),
			Mode:        string(mode),
			RowsTotal:   report.RowsTotal,
			RowsFilled:  report.RowsFilled,
			RowsSkipped: report.RowsSkipped,
			Misses:      report.Misses,
			CallsMade:   report.CallsMade,
		}); err != nil {
			zap.L().Error("fill: record run", zap.Error(err))
		}

		zap.L().Info("fill: complete",
			zap.String("output", outPath),
			zap.Int("rows_total", report.RowsTotal),
			zap.Int("rows_filled", report.RowsFilled),
			zap.Int("rows_skipped", report.RowsSkipped),
			zap.Int("misses", report.Misses),
			zap.Int("malformed", report.Malformed),
			zap.Int("calls_made", report.CallsMade),
			zap.Int("quota_remaining", report.QuotaRemaining),
			zap.Bool("halted", report.Halted),
		)
		return nil
	},
}

func init() {
	fillCmd.Flags().StringVar(&fillInput, "input", "", "path to CSV or XLSX table (required)")
	fillCmd.Flags().StringVar(&fillOutput, "output", "", "output path (default: <input>_ean.<ext>)")
	fillCmd.Flags().StringVar(&fillSKUCol, "sku-col", "", "header name of the SKU column")
	fillCmd.Flags().StringVar(&fillNameCol, "name-col", "", "header name of the product name column")
	fillCmd.Flags().StringVar(&fillTargetCol, "target-col", "", "header name of the target EAN column")
	fillCmd.Flags().StringVar(&fillMapping, "mapping", "", "YAML column mapping file (alternative to the *-col flags)")
	fillCmd.Flags().StringVar(&fillMode, "mode", "", "search mode: sku or name (default from config)")
	fillCmd.Flags().IntVar(&fillLimit, "limit", 0, "max rows to process (0 = all)")
	fillCmd.Flags().BoolVar(&fillFetchPages, "fetch-pages", false, "also scan each search hit's page for codes")
	fillCmd.Flags().BoolVar(&fillDryRun, "dry-run", false, "parse and preview the table, skip processing")
	fillCmd.Flags().BoolVar(&fillOffline, "offline", false, "use stub search results (no API keys needed)")
	_ = fillCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(fillCmd)
}

// resolveMapping builds the column mapping from the --mapping file or the
// individual column flags and validates it against the table header.
func resolveMapping(tbl *table.Table) (table.ResolvedMapping, error) {
	var m table.Mapping
	if fillMapping != "" {
		loaded, err := table.LoadMapping(fillMapping)
		if err != nil {
			return table.ResolvedMapping{}, eris.Wrap(err, "fill: load mapping")
		}
		m = loaded
	} else {
		m = table.Mapping{SKU: fillSKUCol, Name: fillNameCol, Target: fillTargetCol}
	}

	resolved, err := m.Resolve(tbl)
	if err != nil {
		return table.ResolvedMapping{}, eris.Wrap(err, "fill: resolve mapping")
	}
	return resolved, nil
}

// initClients builds the real or stub search client and page reader.
func initClients(pacer *rate.Limiter) (cse.Client, fetcher.PageReader) {
	if fillOffline {
		return &processor.StubSearchClient{}, &processor.StubPageReader{}
	}

	search := cse.NewClient(cfg.Google.APIKey, cfg.Google.CX,
		cse.WithBaseURL(cfg.Google.BaseURL),
		cse.WithTimeout(time.Duration(cfg.Google.TimeoutSecs)*time.Second),
	)
	pages := fetcher.NewHTTPPageReader(fetcher.Options{
		Timeout: time.Duration(cfg.Google.TimeoutSecs) * time.Second,
		Limiter: pacer,
	})
	return search, pages
}

// defaultOutputPath derives products.csv -> products_ean.csv.
func defaultOutputPath(input string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + "_ean" + ext
}

// printPreview prints the header and the first rows as indented JSON.
func printPreview(tbl *table.Table) error {
	const previewRows = 10
	rows := tbl.Rows
	if len(rows) > previewRows {
		rows = rows[:previewRows]
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Header []string   `json:"header"`
		Rows   [][]string `json:"rows"`
	}{Header: tbl.Header, Rows: rows})
}
