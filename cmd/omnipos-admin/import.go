package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fekuna/omnipos-admin-service/config"
	"github.com/fekuna/omnipos-admin-service/internal/importer"
)

func newImportCmd(cfg *config.Config) *cobra.Command {
	var (
		file        string
		format      string
		mode        string
		concurrency int
	)

	cmd := &cobra.Command{
		Use:       "import (products|categories)",
		Short:     "Bulk import products or categories from a JSON or CSV file",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{string(importer.KindProducts), string(importer.KindCategories)},
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := resolveImportFormat(file, format)
			if err != nil {
				return err
			}
			m, err := importer.ParseMode(mode)
			if err != nil {
				return err
			}

			in, err := os.Open(file)
			if err != nil {
				return err
			}
			defer in.Close()

			log := newLogger(cfg)
			defer log.Sync()

			a, err := newApp(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			sum, err := a.importer.Import(cmd.Context(), importer.Kind(args[0]), in, f, importer.Options{
				Mode:        m,
				Concurrency: concurrency,
			})
			if err != nil {
				return err
			}
			log.Info("import finished", zap.String("file", file), zap.Int("success", sum.Success), zap.Int("failed", sum.Failed))

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(sum); err != nil {
				return err
			}
			if sum.Failed > 0 {
				return fmt.Errorf("%d of %d rows failed", sum.Failed, sum.Success+sum.Failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON or CSV file to import")
	cmd.Flags().StringVar(&format, "format", "", "json or csv (default: from the file extension)")
	cmd.Flags().StringVar(&mode, "mode", "", "partial keeps successful rows, atomic writes all or nothing (default from config)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "parallel row writes in partial mode (default from config)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func resolveImportFormat(file, format string) (importer.Format, error) {
	if format != "" {
		return importer.ParseFormat(format)
	}
	return importer.DetectFormat(file, "")
}
