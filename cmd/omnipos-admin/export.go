package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fekuna/omnipos-admin-service/config"
	"github.com/fekuna/omnipos-admin-service/internal/order/dto"
	"github.com/fekuna/omnipos-admin-service/internal/order/export"
)

const dateLayout = "2006-01-02"

func newExportCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export data from the admin store",
	}
	cmd.AddCommand(newExportOrdersCmd(cfg))
	return cmd
}

func newExportOrdersCmd(cfg *config.Config) *cobra.Command {
	var (
		out           string
		format        string
		status        string
		paymentStatus string
		from, to      string
	)

	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Write orders as CSV or XLSX",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			filters := &dto.OrderFilters{Status: status, PaymentStatus: paymentStatus}
			if filters.DateFrom, err = parseDate(from, 0); err != nil {
				return err
			}
			// The upper bound is exclusive, so include the whole "to" day.
			if filters.DateTo, err = parseDate(to, 24*time.Hour); err != nil {
				return err
			}

			log := newLogger(cfg)
			defer log.Sync()

			a, err := newApp(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			var w io.Writer = cmd.OutOrStdout()
			if out != "" {
				file, err := os.Create(out)
				if err != nil {
					return err
				}
				defer file.Close()
				buf := bufio.NewWriter(file)
				defer buf.Flush()
				w = buf
			}

			if err := a.orders.ExportOrders(cmd.Context(), w, f, filters); err != nil {
				return err
			}
			if out != "" {
				log.Info("orders exported", zap.String("file", out), zap.String("format", string(f)))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&format, "format", "csv", "csv or xlsx")
	cmd.Flags().StringVar(&status, "status", "", "only orders with this status")
	cmd.Flags().StringVar(&paymentStatus, "payment-status", "", "only orders with this payment status")
	cmd.Flags().StringVar(&from, "from", "", "first day to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "last day to include (YYYY-MM-DD)")
	return cmd
}

func parseDate(s string, shift time.Duration) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	t = t.Add(shift)
	return &t, nil
}
