package main

import (
	"errors"
	"fmt"
	"os"

	"finlet/internal/config"

	"github.com/spf13/cobra"
)

const serviceName = "finlet"

func main() {
	rootCmd := &cobra.Command{
		Use:           "finlet",
		Short:         "Finlet API backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		migrateCmd(),
		mailerCmd(),
		sweepCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

// mustLoadConfig prints every invalid variable and exits when the environment
// does not describe a usable configuration.
func mustLoadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		var cfgErr *config.Error
		if errors.As(err, &cfgErr) {
			fmt.Fprintln(os.Stderr, "invalid env:")
			fmt.Fprintln(os.Stderr, cfgErr.JSON())
		} else {
			fmt.Fprintf(os.Stderr, "invalid env: %s\n", err)
		}

		os.Exit(1)
	}

	return cfg
}
