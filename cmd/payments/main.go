/*
main.go - CLI entry point

PURPOSE:
  Reads a CSV transaction statement, runs it through the engine, and
  writes the final account report to stdout:

    payments transactions.csv > accounts.csv

EXIT STATUS:
  0  statement processed, report written
  1  setup failure (missing/unreadable input) or mid-stream read failure;
     a diagnostic goes to stderr and no report rows are emitted
  2  usage error

FLAGS:
  -v    log per-record rejections and a run summary to stderr

  Per-record rejections never affect the exit status: the report reflects
  every record that applied, and rejected ones simply did not.

SEE ALSO:
  - ingest/reader.go: the CSV decoder
  - report/writer.go: the output format
  - cmd/server/main.go: the HTTP mode
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/warp/payments-engine/engine"
	"github.com/warp/payments-engine/engine/store"
	"github.com/warp/payments-engine/ingest"
	"github.com/warp/payments-engine/report"
)

func main() {
	verbose := flag.Bool("v", false, "log rejected records and a run summary to stderr")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: payments [-v] <transactions.csv>")
		os.Exit(2)
	}

	logger := newLogger(*verbose)
	defer logger.Sync()

	if err := run(flag.Arg(0), *verbose, logger); err != nil {
		fmt.Fprintf(os.Stderr, "payments: %v\n", err)
		os.Exit(1)
	}
}

func run(path string, verbose bool, logger *zap.SugaredLogger) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	ctx := context.Background()
	ledger := store.NewMemory()
	proc := engine.NewProcessor(ledger)
	if verbose {
		proc.Logger = logger
	}

	reader := ingest.NewReader(f)
	sum, err := proc.Run(ctx, reader)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	if verbose {
		logger.Infow("run complete",
			"applied", sum.Applied,
			"rejected", sum.Rejected,
			"skipped", reader.Skipped(),
		)
	}

	return report.Write(ctx, os.Stdout, ledger)
}

// newLogger builds a stderr logger; stdout is reserved for the report.
func newLogger(verbose bool) *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return logger.Sugar()
}
