package importer

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/shopspring/decimal"

	catdto "github.com/fekuna/omnipos-admin-service/internal/category/dto"
	"github.com/fekuna/omnipos-admin-service/internal/mapper"
	proddto "github.com/fekuna/omnipos-admin-service/internal/product/dto"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

var ErrUnknownFormat = errors.New("unknown import format")

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// DetectFormat guesses from a file name or content type, preferring the
// file extension.
func DetectFormat(fileName, contentType string) (Format, error) {
	switch strings.ToLower(path.Ext(fileName)) {
	case ".json":
		return FormatJSON, nil
	case ".csv":
		return FormatCSV, nil
	}
	switch {
	case strings.Contains(contentType, "json"):
		return FormatJSON, nil
	case strings.Contains(contentType, "csv"):
		return FormatCSV, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, fileName)
}

// Record is one input row with lower-cased, trimmed keys. JSON scalars are
// kept in their textual form so both formats share the same coercion.
type Record map[string]string

func (r Record) get(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(r[k]); v != "" {
			return v
		}
	}
	return ""
}

func (r Record) opt(keys ...string) *string {
	if v := r.get(keys...); v != "" {
		return &v
	}
	return nil
}

func (r Record) decimal(keys ...string) decimal.Decimal {
	return mapper.ParseDecimal(r.get(keys...))
}

func (r Record) optDecimal(keys ...string) *decimal.Decimal {
	v := r.get(keys...)
	if v == "" {
		return nil
	}
	d := mapper.ParseDecimal(v)
	return &d
}

func ReadRecords(r io.Reader, format Format) ([]Record, error) {
	switch format {
	case FormatJSON:
		return readJSON(r)
	case FormatCSV:
		return readCSV(r)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

func readJSON(r io.Reader) ([]Record, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw []map[string]interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("invalid JSON: expected an array of objects: %w", err)
	}

	records := make([]Record, len(raw))
	for i, obj := range raw {
		rec := make(Record, len(obj))
		for k, v := range obj {
			rec[normalizeKey(k)] = scalar(v)
		}
		records[i] = rec
	}
	return records, nil
}

func scalar(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}

func readCSV(r io.Reader) ([]Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("invalid CSV: %w", err)
	}
	if len(rows) == 0 {
		return []Record{}, nil
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = normalizeKey(h)
	}

	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if blank(row) {
			continue
		}
		rec := make(Record, len(header))
		for i, h := range header {
			if i < len(row) && h != "" {
				rec[h] = row[i]
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

func blank(row []string) bool {
	for _, f := range row {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func normalizeKey(k string) string {
	return strings.ToLower(strings.TrimSpace(k))
}

// ParseProducts reads product rows. Numbers that do not parse become 0.
// is_active defaults to true and is_featured to false when the value is
// missing or not a recognised boolean.
func ParseProducts(r io.Reader, format Format) ([]*proddto.CreateProductInput, error) {
	records, err := ReadRecords(r, format)
	if err != nil {
		return nil, err
	}

	inputs := make([]*proddto.CreateProductInput, len(records))
	for i, rec := range records {
		isActive := mapper.ParseBool(rec.get("is_active", "active"), true)
		inputs[i] = &proddto.CreateProductInput{
			Name:            rec.get("name"),
			Slug:            rec.get("slug"),
			Description:     rec.get("description"),
			Price:           rec.decimal("price", "base_price"),
			SalePrice:       rec.optDecimal("sale_price"),
			StockQuantity:   mapper.ParseInt(rec.get("stock_quantity", "stock")),
			CategoryID:      rec.opt("category_id"),
			SKU:             rec.opt("sku"),
			IsActive:        &isActive,
			IsFeatured:      mapper.ParseBool(rec.get("is_featured", "featured"), false),
			Weight:          rec.optDecimal("weight"),
			Dimensions:      rec.opt("dimensions"),
			Brand:           rec.opt("brand"),
			MetaTitle:       rec.opt("meta_title"),
			MetaDescription: rec.opt("meta_description"),
		}
	}
	return inputs, nil
}

func ParseCategories(r io.Reader, format Format) ([]*catdto.CreateCategoryInput, error) {
	records, err := ReadRecords(r, format)
	if err != nil {
		return nil, err
	}

	inputs := make([]*catdto.CreateCategoryInput, len(records))
	for i, rec := range records {
		isActive := mapper.ParseBool(rec.get("is_active", "active"), true)
		inputs[i] = &catdto.CreateCategoryInput{
			Name:            rec.get("name"),
			Slug:            rec.get("slug"),
			Description:     rec.opt("description"),
			ParentID:        rec.opt("parent_id"),
			ParentSlug:      rec.get("parent_slug", "parent"),
			IsActive:        &isActive,
			DisplayOrder:    mapper.ParseInt(rec.get("display_order", "sort_order")),
			MetaTitle:       rec.opt("meta_title"),
			MetaDescription: rec.opt("meta_description"),
		}
	}
	return inputs, nil
}
