// Package export renders order lists as downloadable files.
package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/fekuna/omnipos-admin-service/internal/model"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

const (
	dateLayout = "2006-01-02 15:04"
	sheetName  = "Orders"
)

// Header is the fixed column order of every export.
var Header = []string{"ID", "Tanggal", "Status", "StatusPembayaran", "Total", "MetodePembayaran", "Alamat"}

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

func (f Format) Extension() string {
	return "." + string(f)
}

func Write(w io.Writer, f Format, orders []model.Order) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, orders)
	case FormatXLSX:
		return WriteXLSX(w, orders)
	default:
		return fmt.Errorf("unsupported export format %q", f)
	}
}

func record(o model.Order) []string {
	return []string{
		o.ID,
		o.CreatedAt.Format(dateLayout),
		string(o.Status),
		string(o.PaymentStatus),
		o.TotalAmount.String(),
		o.PaymentMethod,
		o.ShippingAddress,
	}
}

// WriteCSV quotes every field, doubling embedded quotes, and ends each line
// with a bare "\n". encoding/csv only quotes fields that need it.
func WriteCSV(w io.Writer, orders []model.Order) error {
	bw := bufio.NewWriter(w)
	writeLine := func(fields []string) {
		for i, f := range fields {
			if i > 0 {
				bw.WriteByte(',')
			}
			bw.WriteByte('"')
			bw.WriteString(strings.ReplaceAll(f, `"`, `""`))
			bw.WriteByte('"')
		}
		bw.WriteByte('\n')
	}

	writeLine(Header)
	for _, o := range orders {
		writeLine(record(o))
	}
	return bw.Flush()
}

func WriteXLSX(w io.Writer, orders []model.Order) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return err
	}

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return err
	}

	header := make([]interface{}, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}

	for i, o := range orders {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		rec := record(o)
		row := []interface{}{rec[0], rec[1], rec[2], rec[3], o.TotalAmount.InexactFloat64(), rec[5], rec[6]}
		if err := sw.SetRow(cell, row); err != nil {
			return err
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}

	_, err = f.WriteTo(w)
	return err
}
