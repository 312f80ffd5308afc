package main

import (
	"bytes"
	"context"
	"os/signal"
	"sort"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kessan-lab/edinet-cli/internal/edinet"
	"github.com/kessan-lab/edinet-cli/internal/model"
	"github.com/kessan-lab/edinet-cli/internal/resolve"
	"github.com/kessan-lab/edinet-cli/internal/xbrl"
)

var fetchDate string

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch one day of securities reports and extract their metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if _, err := time.Parse("2006-01-02", fetchDate); err != nil {
			return eris.Errorf("invalid --date %q, want YYYY-MM-DD", fetchDate)
		}
		if err := cfg.Validate("fetch"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		extractor, err := initExtractor()
		if err != nil {
			return err
		}

		client := edinet.NewClient(edinet.Options{
			APIKey:            cfg.EDINET.APIKey,
			BaseURL:           cfg.EDINET.BaseURL,
			UserAgent:         cfg.EDINET.UserAgent,
			MaxRetries:        cfg.EDINET.MaxRetries,
			RequestsPerSecond: cfg.EDINET.RequestsPerSecond,
			Timeout:           time.Duration(cfg.EDINET.TimeoutSecs) * time.Second,
		})
		exchanges := edinet.NewExchangeDirectory(cfg.Exchange.SpreadsheetPath)

		filings, err := client.ListFilings(ctx, fetchDate)
		if err != nil {
			return eris.Wrap(err, "list filings")
		}
		if len(filings) == 0 {
			zap.L().Info("no securities reports filed", zap.String("date", fetchDate))
			return nil
		}

		records, err := fetchAll(ctx, client, extractor, exchanges, filings, cfg.Fetch.Concurrency)
		if err != nil {
			return err
		}

		if err := st.SaveRecords(ctx, fetchDate, records); err != nil {
			return eris.Wrap(err, "save records")
		}

		zap.L().Info("fetch complete",
			zap.String("date", fetchDate),
			zap.Int("filings", len(filings)),
			zap.Int("records", len(records)),
		)
		return nil
	},
}

func init() {
	fetchCmd.Flags().StringVar(&fetchDate, "date", "", "filing date to fetch, YYYY-MM-DD (required)")
	_ = fetchCmd.MarkFlagRequired("date")
	rootCmd.AddCommand(fetchCmd)
}

// fetchAll downloads and extracts the filings concurrently. Individual
// failures are logged and skipped so one bad archive cannot sink the day.
func fetchAll(ctx context.Context, client *edinet.Client, extractor *resolve.Extractor, exchanges *edinet.ExchangeDirectory, filings []edinet.Filing, concurrency int) ([]*model.FinancialRecord, error) {
	zap.L().Info("processing filings",
		zap.Int("filings", len(filings)),
		zap.Int("concurrency", concurrency),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var (
		mu      sync.Mutex
		records []*model.FinancialRecord
		failed  atomic.Int64
	)

	for _, filing := range filings {
		g.Go(func() error {
			log := zap.L().With(
				zap.String("doc_id", filing.DocID),
				zap.String("filer", filing.FilerName),
			)

			rec, warnings, err := processFiling(gctx, client, extractor, filing)
			if err != nil {
				failed.Add(1)
				log.Error("filing failed", zap.Error(err))
				return nil // don't abort the batch on individual failure
			}
			for _, w := range warnings {
				log.Debug("extraction warning",
					zap.String("metric", w.Metric),
					zap.String("reason", w.Reason),
				)
			}

			mu.Lock()
			records = append(records, rec)
			mu.Unlock()

			log.Info("filing processed",
				zap.String("sec_code", rec.SecCode),
				zap.Int("warnings", len(warnings)),
				zap.String("quote", exchanges.QuoteURL(rec.SecCode)),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "process filings")
	}

	sort.Slice(records, func(i, j int) bool { return records[i].SecCode < records[j].SecCode })

	zap.L().Info("filings processed",
		zap.Int64("succeeded", int64(len(records))),
		zap.Int64("failed", failed.Load()),
	)
	return records, nil
}

// processFiling runs the full chain for one filing: download the archive,
// pick its instance document, parse, and resolve the metrics.
func processFiling(ctx context.Context, client *edinet.Client, extractor *resolve.Extractor, filing edinet.Filing) (*model.FinancialRecord, []model.Warning, error) {
	archive, err := client.DownloadArchive(ctx, filing.DocID)
	if err != nil {
		return nil, nil, err
	}

	za, err := edinet.OpenArchive(archive)
	if err != nil {
		return nil, nil, err
	}

	name, instance, err := za.Instance()
	if err != nil {
		return nil, nil, err
	}
	zap.L().Debug("instance selected",
		zap.String("doc_id", filing.DocID),
		zap.String("file", name),
	)

	doc, err := xbrl.Parse(bytes.NewReader(instance))
	if err != nil {
		return nil, nil, eris.Wrapf(err, "parse instance %s", filing.DocID)
	}

	rec, warnings := extractor.Extract(doc, model.Identity{
		SecCode:   edinet.NormalizeSecCode(filing.SecCode),
		FilerName: filing.FilerName,
		DocID:     filing.DocID,
		PeriodEnd: filing.PeriodEnd,
	})
	return rec, warnings, nil
}
