package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"pmstandards/internal/catalog"
	sqlitestore "pmstandards/internal/store/sqlite"
	"pmstandards/pkg/database"
	"pmstandards/pkg/logger"
)

func main() {
	logger.Init(os.Stderr, logger.ParseLevel(os.Getenv("PMSTD_LOG_LEVEL")))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	report, dbPath, err := run(ctx, os.Args[1:], os.Stdout)
	if err != nil {
		log.Fatalf("import incomplete: %v", err)
	}

	log.Printf("✅ imported %d standards and %d comparison rows into %s",
		report.Standards.Records, report.Comparisons.Records, dbPath)
}

// run imports both CSVs into SQLite and writes the report to out. The
// report is written even when a source failed.
func run(ctx context.Context, args []string, out io.Writer) (catalog.ReloadReport, string, error) {
	fs := flag.NewFlagSet("import-csv", flag.ContinueOnError)
	var (
		standardsIn   = fs.String("standards", "standards.csv", "input CSV path for standards excerpts")
		comparisonsIn = fs.String("comparisons", "comparisons.csv", "input CSV path for comparisons")
		dbPath        = fs.String("db", "", "sqlite path (default $PMSTD_DB_PATH or ~/.pmstandards/data.db)")
		asJSON        = fs.Bool("json", false, "print the reload report as JSON")
	)
	if err := fs.Parse(args); err != nil {
		return catalog.ReloadReport{}, "", err
	}

	cfg := database.DefaultConfig()
	if *dbPath != "" {
		cfg.Path = *dbPath
	}
	db, err := database.Open(cfg)
	if err != nil {
		return catalog.ReloadReport{}, cfg.Path, err
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return catalog.ReloadReport{}, cfg.Path, fmt.Errorf("db migrate failed: %w", err)
	}

	cat := catalog.New(sqlitestore.New(db), catalog.Sources{
		StandardsPath:   *standardsIn,
		ComparisonsPath: *comparisonsIn,
	}, catalog.WithMaxRejections(-1))

	report, err := cat.Reload(ctx)
	if *asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		_ = enc.Encode(report)
	} else {
		printReport(out, report)
	}
	return report, cfg.Path, err
}

func printReport(out io.Writer, r catalog.ReloadReport) {
	for _, src := range []catalog.SourceReport{r.Standards, r.Comparisons} {
		fmt.Fprintf(out, "%-12s %-10s %5d records  %s\n", src.Kind, src.Status, src.Records, src.Source)
		if src.Error != "" {
			fmt.Fprintf(out, "  error: %s\n", src.Error)
		}
	}
	if r.Standards.Rejected == 0 {
		return
	}
	fmt.Fprintf(out, "\n%d of %d standards rows skipped:\n", r.Standards.Rejected, r.Standards.Rows)
	for _, rej := range r.Standards.Rejections {
		fmt.Fprintf(out, "  line %d: %s\n", rej.Line, rej.Reason)
	}
}
