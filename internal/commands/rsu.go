package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/vestcheck/vestcheck/internal/brokerage"
	"github.com/vestcheck/vestcheck/internal/config"
	"github.com/vestcheck/vestcheck/internal/fx"
	"github.com/vestcheck/vestcheck/internal/logging"
	"github.com/vestcheck/vestcheck/internal/payroll"
	"github.com/vestcheck/vestcheck/internal/ratecache"
	"github.com/vestcheck/vestcheck/internal/reconcile"
	"github.com/vestcheck/vestcheck/internal/report"
)

// APIKeyEnv is the environment variable read when --api is not given.
const APIKeyEnv = "EXCHANGERATE_API_KEY"

type rsuOptions struct {
	dataDir            string
	configPath         string
	apiKey             string
	refreshUnavailable bool
	noColor            bool
}

func newRSUCommand(verbose *bool) *cobra.Command {
	var opts rsuOptions

	cmd := &cobra.Command{
		Use:   "rsu",
		Short: "Check that the RSU lines in the payroll match the brokerage lapses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			absDir, err := filepath.Abs(opts.dataDir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			opts.dataDir = absDir

			log := logging.New(cmd.ErrOrStderr(), *verbose)
			return runRSU(cmd.Context(), opts, cmd.OutOrStdout(), log)
		},
	}

	cmd.Flags().StringVar(&opts.dataDir, "data", "data", "data directory with the brokerage export and payroll")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "config file (default <data>/"+config.FileName+")")
	cmd.Flags().StringVar(&opts.apiKey, "api", "", "exchangerate.host access key to retrieve public exchange rates (default $"+APIKeyEnv+")")
	cmd.Flags().BoolVar(&opts.refreshUnavailable, "refresh-unavailable", false, "look up again dates cached without a rate")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "disable colors in the table")

	return cmd
}

func runRSU(ctx context.Context, opts rsuOptions, out io.Writer, log zerolog.Logger) (err error) {
	if ctx == nil {
		ctx = context.Background()
	}

	configPath := opts.configPath
	if configPath == "" {
		configPath = filepath.Join(opts.dataDir, config.FileName)
	}
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return err
	}

	apiKey, err := resolveAPIKey(opts.dataDir, opts.apiKey)
	if err != nil {
		return err
	}

	// The brokerage export is checked before anything else is read.
	lapses, err := brokerage.Load(opts.dataDir, &brokerage.SchwabParser{})
	if err != nil {
		return err
	}
	lapses = brokerage.FilterSymbol(lapses, cfg.Symbol)
	byMonth := brokerage.GroupByMonth(lapses)
	log.Debug().Str("symbol", cfg.Symbol).Int("lapses", len(lapses)).Int("months", len(byMonth)).Msg("Brokerage export loaded")

	months, err := payroll.Load(dataPath(opts.dataDir, cfg.Payroll.File))
	if err != nil {
		return err
	}

	cache, err := ratecache.Open(ratecache.Backend(cfg.Cache.Backend), dataPath(opts.dataDir, cfg.Cache.Path), log)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := cache.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if apiKey == "" {
		log.Warn().Msg("No exchange rate access key configured, public rates will show as " + report.Unavailable)
	}

	client := fx.NewClient(cfg.Provider.BaseURL, cfg.Provider.Timeout, cfg.Provider.RequestsPerSecond, log)
	resolver := fx.NewResolver(cache, client, apiKey, log, fx.WithRefreshUnavailable(opts.refreshUnavailable))
	taxonomy := payroll.NewTaxonomy(cfg.Payroll.Sold, cfg.Payroll.Kept, cfg.Payroll.Retention)
	engine := reconcile.NewEngine(taxonomy, resolver, cfg.Reconcile.Tolerance, log)

	rows, err := engine.Reconcile(ctx, months, byMonth)
	if err != nil {
		return err
	}

	return report.Render(out, rows, report.Options{NoColor: opts.noColor})
}

// resolveAPIKey prefers the flag, then the environment, loading <dataDir>/.env first when present.
func resolveAPIKey(dataDir, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	envFile := filepath.Join(dataDir, ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("loading %s: %w", envFile, err)
	}
	return os.Getenv(APIKeyEnv), nil
}

func dataPath(dataDir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dataDir, p)
}
