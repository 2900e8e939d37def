package mapper

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// Row is one result row keyed by column name. A column the live schema does
// not have is simply absent.
type Row map[string]any

// MapRows drains rows through fn. The caller still owns rows.Close.
func MapRows[T any](rows *sqlx.Rows, fn func(Row) T) ([]T, error) {
	out := []T{}
	for rows.Next() {
		row := Row{}
		if err := rows.MapScan(row); err != nil {
			return nil, err
		}
		out = append(out, fn(row))
	}
	return out, rows.Err()
}

// lookup returns the first present, non-nil value among keys.
func (r Row) lookup(keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := r[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func (r Row) String(keys ...string) string {
	v, ok := r.lookup(keys...)
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	case [16]byte:
		return uuid.UUID(t).String()
	case time.Time:
		return t.Format(time.RFC3339)
	default:
		return fmt.Sprint(t)
	}
}

// OptString is String but yields nil for absent, null or empty values.
func (r Row) OptString(keys ...string) *string {
	s := r.String(keys...)
	if s == "" {
		return nil
	}
	return &s
}

func (r Row) Int(keys ...string) int {
	v, ok := r.lookup(keys...)
	if !ok {
		return 0
	}
	switch t := v.(type) {
	case int:
		return t
	case int32:
		return int(t)
	case int64:
		return int(t)
	case float32:
		return int(t)
	case float64:
		return int(t)
	case string, []byte:
		return ParseInt(r.String(keys...))
	default:
		return 0
	}
}

func (r Row) Decimal(keys ...string) decimal.Decimal {
	v, ok := r.lookup(keys...)
	if !ok {
		return decimal.Zero
	}
	switch t := v.(type) {
	case decimal.Decimal:
		return t
	case int64:
		return decimal.NewFromInt(t)
	case int32:
		return decimal.NewFromInt32(t)
	case int:
		return decimal.NewFromInt(int64(t))
	case float64:
		return decimal.NewFromFloat(t)
	case float32:
		return decimal.NewFromFloat32(t)
	case string, []byte:
		return ParseDecimal(r.String(keys...))
	default:
		return decimal.Zero
	}
}

// OptDecimal yields nil for absent or null values. Unparseable text counts
// as zero, not absent.
func (r Row) OptDecimal(keys ...string) *decimal.Decimal {
	if _, ok := r.lookup(keys...); !ok {
		return nil
	}
	d := r.Decimal(keys...)
	return &d
}

func (r Row) Bool(def bool, keys ...string) bool {
	v, ok := r.lookup(keys...)
	if !ok {
		return def
	}
	switch t := v.(type) {
	case bool:
		return t
	case int64:
		return t != 0
	case int:
		return t != 0
	case string, []byte:
		return ParseBool(r.String(keys...), def)
	default:
		return def
	}
}

func (r Row) Time(keys ...string) time.Time {
	v, ok := r.lookup(keys...)
	if !ok {
		return time.Time{}
	}
	switch t := v.(type) {
	case time.Time:
		return t
	case string, []byte:
		s := r.String(keys...)
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999-07", "2006-01-02 15:04:05", "2006-01-02"} {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts
			}
		}
	}
	return time.Time{}
}

// ParseInt parses a user or database supplied integer, accepting decimal
// notation, and returns 0 when the text is not numeric.
func ParseInt(s string) int {
	s = strings.TrimSpace(s)
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return 0
}

// ParseDecimal returns zero when the text is not numeric.
func ParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ParseBool recognises true/false, 1/0, yes/no, y/n and t/f in any case.
// Anything else, including the empty string, yields def.
func ParseBool(s string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "1", "yes", "y":
		return true
	case "false", "f", "0", "no", "n":
		return false
	default:
		return def
	}
}

func decimalInt(i int) decimal.Decimal {
	return decimal.NewFromInt(int64(i))
}
