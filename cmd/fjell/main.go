// Command fjell converts the Norwegian peak list export (fjell.csv) into the
// enriched fjell.json document. It takes no arguments; settings come from the
// environment, optionally seeded from a .env file.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/fjell-etl/internal/adapter/jsonfile"
	"github.com/couchcryptid/fjell-etl/internal/adapter/sheet"
	"github.com/couchcryptid/fjell-etl/internal/config"
	"github.com/couchcryptid/fjell-etl/internal/observability"
	"github.com/couchcryptid/fjell-etl/internal/pipeline"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	code := execute(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}

// execute runs the root command and reports any error, including argument
// errors raised before the command body runs, on the default logger.
func execute(ctx context.Context, args []string) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		slog.Error("fjell failed", "error", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fjell",
		Short: "Convert the Norwegian peak list export to enriched JSON",
		Long: `fjell reads the semicolon-delimited peak list exported from the Wikipedia
list of Norwegian peaks, converts UTM 32V positions to decimal degrees, adds
map links and a stable uid per peak, and writes the result as JSON.

Settings are read from the environment (INPUT_PATH, OUTPUT_PATH,
UTM_ZONE_NUMBER, UTM_ZONE_LETTER, STRICT_COORDINATES, LOG_LEVEL, LOG_FORMAT,
METRICS_TEXTFILE) and may be placed in a .env file.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context())
		},
	}
}

func run(ctx context.Context) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to read .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := observability.NewLogger(cfg)
	slog.SetDefault(logger)
	metrics := observability.NewMetrics()

	reader := sheet.NewReader(cfg.InputPath, logger)
	writer := jsonfile.NewWriter(cfg.OutputPath, logger)
	transformer := pipeline.NewTransformer(cfg.Zone, cfg.StrictCoordinates, logger, metrics)

	p := pipeline.New(reader, transformer, writer, logger, metrics)

	logger.Info("converting peak list",
		"input", cfg.InputPath,
		"output", cfg.OutputPath,
		"zone", cfg.Zone.String(),
		"strict_coordinates", cfg.StrictCoordinates,
	)

	runErr := p.Run(ctx)

	if cfg.MetricsTextfile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsTextfile); err != nil {
			logger.Error("metrics textfile write failed", "path", cfg.MetricsTextfile, "error", err)
		}
	}

	return runErr
}
