// Command efetivo ingests a personnel CSV export, prints the ingestion
// report and a chosen aggregation, and optionally re-exports the cleaned
// table and/or loads it into a storage backend.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"efetivo/internal/aggregate"
	"efetivo/internal/config"
	"efetivo/internal/datasource/file"
	"efetivo/internal/export"
	"efetivo/internal/metrics"
	"efetivo/internal/metrics/prompush"
	"efetivo/internal/parser/seap"
	"efetivo/internal/pipeline"
	"efetivo/internal/query"
	"efetivo/internal/roster"
	"efetivo/internal/storage"

	// register all backends with the storage factory; the config selects
	// which one is used.
	_ "efetivo/internal/storage/all"
)

func main() {
	var (
		cfgPath        string
		inputPath      string
		validate       bool
		metricsBackend string
		pushGatewayURL string
		group          string
		topN           int
		outCSV         string
	)

	flag.StringVar(&cfgPath, "config", "", "pipeline config JSON path")
	flag.StringVar(&inputPath, "input", "", "input CSV path (overrides source.path)")
	flag.BoolVar(&validate, "validate", false, "lint the configuration and exit")
	flag.StringVar(&metricsBackend, "metrics-backend", "", "metrics backend (pushgateway, none; overrides config)")
	flag.StringVar(&pushGatewayURL, "pushgateway-url", "", "Pushgateway base URL (overrides config and PUSHGATEWAY_URL)")
	flag.StringVar(&group, "group", "rank", "aggregation dimension: rank, unidade, faixa, abono")
	flag.IntVar(&topN, "top", 10, "work-unit groups to keep before the outros bucket (0 = all)")
	flag.StringVar(&outCSV, "out-csv", "", "write the cleaned table to this CSV path (overrides export.path)")
	verbose := flag.Bool("v", false, "enable verbose logs")
	flag.Parse()

	var p config.Pipeline
	if cfgPath != "" {
		var err error
		p, err = config.Load(cfgPath)
		if err != nil {
			fatalf("%v", err)
		}
	}
	if inputPath != "" {
		p.Source.Path = inputPath
	}
	if outCSV != "" {
		p.Export.Path = outCSV
	}

	issues := config.ValidatePipeline(p)
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		fatalf("configuration is invalid; pass -input or fix %s", cfgPath)
	}
	if validate {
		log.Printf("configuration is valid: %s", cfgPath)
		return
	}

	job := p.Job
	if job == "" {
		job = "efetivo"
	}
	setupMetrics(metricsBackend, pushGatewayURL, job, p.Metrics, *verbose)
	defer func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
	}()

	ctx := context.Background()
	start := time.Now()

	data, err := file.NewLocal(p.Source.Path, p.Source.MaxBytes).Read(ctx)
	if err != nil {
		fatalf("read input: %v", err)
	}

	table, rep, err := buildPipeline(p, job).Ingest(ctx, data)
	if err != nil {
		fatalf("ingest %s: %v", p.Source.Path, err)
	}
	printReport(rep)

	view := query.Filter(table)
	printAggregation(group, view, topN)

	if p.Export.Path != "" {
		if err := export.WriteFile(p.Export.Path, view); err != nil {
			fatalf("%v", err)
		}
		log.Printf("export: wrote %d records to %s", view.Len(), p.Export.Path)
	}

	if p.Storage.Kind != "" {
		if err := load(ctx, p.Storage, table); err != nil {
			fatalf("storage: %v", err)
		}
	}

	if *verbose {
		log.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
	}
}

// buildPipeline maps the config file onto pipeline options. The legacy
// header fallback stays off unless the config names an offset.
func buildPipeline(p config.Pipeline, job string) *pipeline.Pipeline {
	legacy := -1
	if p.Ingest.LegacyHeaderOffset != nil {
		legacy = *p.Ingest.LegacyHeaderOffset
	}
	return pipeline.New(pipeline.Config{
		Encodings: p.Ingest.Encodings,
		Parser: seap.Options{
			Delimiters:         p.Ingest.DelimiterRunes(),
			HeaderSearchWindow: p.Ingest.HeaderSearchWindow,
			LegacyHeaderOffset: legacy,
		},
		AgeMin:             p.Ingest.AgeBounds.Min,
		AgeMax:             p.Ingest.AgeBounds.Max,
		StrictAge:          p.Ingest.StrictAge,
		MaxAgeDropFraction: p.Ingest.MaxAgeDropFraction,
		Workers:            p.Ingest.Workers,
		BatchSize:          p.Ingest.BatchSize,
		Job:                job,
	})
}

// setupMetrics resolves the backend by precedence flag → config → env.
func setupMetrics(flagBackend, flagURL, job string, m config.Metrics, verbose bool) {
	backend := flagBackend
	if backend == "" {
		backend = m.Backend
	}
	switch backend {
	case "pushgateway", "prometheus":
		url := flagURL
		if url == "" {
			url = m.Options.String("pushgateway_url", "")
		}
		if url == "" {
			url = os.Getenv("PUSHGATEWAY_URL")
		}
		if url == "" {
			url = "http://localhost:9091"
		}
		b, err := prompush.NewBackend(job, url)
		if err != nil {
			log.Printf("metrics: failed to init push backend: %v; using nop", err)
			return
		}
		if verbose {
			log.Printf("metrics: backend=%s url=%s job=%s", backend, url, job)
		}
		metrics.SetBackend(b)
	case "", "none", "nop":
		if verbose {
			log.Printf("metrics: disabled")
		}
	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backend)
	}
}

func printReport(rep *roster.Report) {
	log.Printf("ingest: rows_read=%d kept=%d dropped=%d encoding=%s delimiter=%q header_line=%d",
		rep.RowsRead, rep.RowsKept, rep.Dropped(), rep.EncodingUsed, rep.DelimiterDetected, rep.HeaderRowIndex)
	for _, reason := range sortedKeys(rep.RowsDropped) {
		log.Printf("ingest: dropped %d rows: %s", rep.RowsDropped[reason], reason)
	}
	for _, reason := range sortedKeys(rep.RowsFlagged) {
		log.Printf("ingest: flagged %d rows: %s", rep.RowsFlagged[reason], reason)
	}
	for _, field := range sortedKeys(rep.CoercionFailures) {
		log.Printf("ingest: %d unparseable values in column %s", rep.CoercionFailures[field], field)
	}
	for _, w := range rep.Warnings {
		log.Printf("ingest: warning: %s", w)
	}
}

func printAggregation(group string, view query.View, topN int) {
	var d aggregate.Distribution
	switch group {
	case "rank":
		d = aggregate.ByRank(view)
	case "unidade":
		d = aggregate.ByWorkUnit(view, topN)
	case "faixa":
		d = aggregate.ByAgeBucket(view)
		if st, ok := aggregate.Ages(view); ok {
			fmt.Printf("idade: média=%.1f mediana=%.1f mín=%d máx=%d (n=%d)\n",
				st.Mean, st.Median, st.Min, st.Max, st.Count)
		}
	case "abono":
		d = aggregate.ByBonus(view)
	default:
		fatalf("unknown -group %q (want rank, unidade, faixa or abono)", group)
	}

	if d.Empty() {
		fmt.Printf("%s: no records\n", d.Dimension)
		return
	}
	fmt.Printf("%s (total %d):\n", d.Dimension, d.Total)
	for _, g := range d.Groups {
		fmt.Printf("  %-40s %6d  %5.1f%%\n", g.Label, g.Count, g.Percent)
	}
}

func load(ctx context.Context, cfg config.Storage, table *roster.Table) error {
	repo, err := storage.New(ctx, storage.Config{
		Kind:  cfg.Kind,
		DSN:   cfg.DB.DSN,
		Table: cfg.DB.Table,
	})
	if err != nil {
		return err
	}
	defer repo.Close()

	if cfg.DB.AutoCreateTable {
		if err := repo.EnsureSchema(ctx); err != nil {
			return err
		}
	}
	n, err := repo.Save(ctx, table.Records())
	if err != nil {
		return err
	}
	log.Printf("storage: wrote %d records to %s", n, cfg.Kind)
	return nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
