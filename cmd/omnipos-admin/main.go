package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/fekuna/omnipos-admin-service/config"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgPath string
	cfg := &config.Config{}

	root := &cobra.Command{
		Use:           "omnipos-admin",
		Short:         "Admin dashboard API for the OmniPOS catalogue and orders",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			_ = godotenv.Load() // Load .env file if it exists

			loaded, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			*cfg = *loaded
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to a YAML config file")

	root.AddCommand(
		newServeCmd(cfg),
		newImportCmd(cfg),
		newExportCmd(cfg),
	)
	return root
}
