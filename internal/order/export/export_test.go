package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/fekuna/omnipos-admin-service/internal/model"
)

func sampleOrders() []model.Order {
	return []model.Order{
		{
			ID:              "ord-1",
			Status:          model.OrderStatusShipped,
			PaymentStatus:   model.PaymentStatusPaid,
			PaymentMethod:   "transfer",
			TotalAmount:     decimal.RequireFromString("150000.5"),
			ShippingAddress: `Jl. "Mawar" 5, Bandung`,
			CreatedAt:       time.Date(2024, 3, 9, 14, 5, 59, 0, time.UTC),
		},
		{
			ID:            "ord-2",
			Status:        model.OrderStatusPending,
			PaymentStatus: model.PaymentStatusPending,
			TotalAmount:   decimal.Zero,
			CreatedAt:     time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC),
		},
	}
}

func TestWriteCSV_QuotesEveryField(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleOrders()))

	want := `"ID","Tanggal","Status","StatusPembayaran","Total","MetodePembayaran","Alamat"` + "\n" +
		`"ord-1","2024-03-09 14:05","shipped","paid","150000.5","transfer","Jl. ""Mawar"" 5, Bandung"` + "\n" +
		`"ord-2","2024-03-10 08:00","pending","pending","0","",""` + "\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteCSV_HeaderOnlyForNoOrders(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, `"ID","Tanggal","Status","StatusPembayaran","Total","MetodePembayaran","Alamat"`+"\n", buf.String())
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleOrders()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Orders")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Header, rows[0])
	assert.Equal(t, "ord-1", rows[1][0])
	assert.Equal(t, "2024-03-09 14:05", rows[1][1])
	assert.Equal(t, `Jl. "Mawar" 5, Bandung`, rows[1][6])
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat(" XLSX ")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	_, err = ParseFormat("pdf")
	assert.Error(t, err)
}
