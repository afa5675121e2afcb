package commands

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vestcheck/vestcheck/internal/config"
)

func newInitCommand() *cobra.Command {
	var symbol string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a data directory with a default config",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "data"
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(absDir, symbol, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&symbol, "symbol", config.Default().Symbol, "stock symbol of the RSU grants")

	return cmd
}

func runInit(dir, symbol string, out io.Writer) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	// Write vestcheck.yaml, never over an existing one.
	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists", cfgPath)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("checking config: %w", err)
	}

	cfg := config.Default()
	cfg.Symbol = symbol
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	// Keep the rate cache and the access key out of version control.
	cacheDir := filepath.Dir(cfg.Cache.Path)
	gitignore := cacheDir + "/\n.env\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	fmt.Fprintf(out, "Initialized vestcheck data directory at %s\n", dir)
	fmt.Fprintf(out, "Put the equity awards export (EquityAwards*.json) and %s there, then run: vestcheck rsu --data %s\n", cfg.Payroll.File, dir)
	return nil
}
