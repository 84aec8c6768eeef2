package codec

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// FromDB normalizes a value scanned from a database driver into the typed
// value for parser p. Drivers disagree on representation: SQLite hands back
// NUMERIC columns as int64 or float64 and TIME columns as text, while pgx
// returns NUMERIC and TIME as text.
func FromDB(p Parser, src any) (any, error) {
	if src == nil {
		return nil, nil
	}
	if b, ok := src.([]byte); ok {
		src = string(b)
	}

	switch p {
	case ParserInt:
		switch v := src.(type) {
		case int64:
			return v, nil
		case float64:
			return int64(v), nil
		case string:
			return strconv.ParseInt(v, 10, 64)
		}
	case ParserDecimal:
		switch v := src.(type) {
		case int64:
			return decimal.NewFromInt(v), nil
		case float64:
			return decimal.NewFromFloat(v), nil
		case string:
			return decimal.NewFromString(v)
		}
	case ParserDate:
		switch v := src.(type) {
		case time.Time:
			return DateOf(v), nil
		case string:
			if len(v) >= len(dateLayout) {
				return ParseDate(v[:len(dateLayout)])
			}
			return ParseDate(v)
		}
	case ParserTime:
		switch v := src.(type) {
		case time.Time:
			return ClockOf(v), nil
		case string:
			return ParseClock(trimFraction(v))
		}
	default:
		switch v := src.(type) {
		case string:
			return v, nil
		case int64:
			return strconv.FormatInt(v, 10), nil
		case time.Time:
			return v.Format(time.RFC3339), nil
		}
		return fmt.Sprint(src), nil
	}
	return nil, fmt.Errorf("cannot convert %T to %s", src, p)
}

// ToDB converts a typed value into a driver argument for parser p.
func ToDB(p Parser, v any) (driver.Value, error) {
	if v == nil {
		return nil, nil
	}

	switch t := v.(type) {
	case string:
		return t, nil
	case int64:
		return t, nil
	case decimal.Decimal:
		return t.StringFixed(2), nil
	case Date:
		return t.Time(), nil
	case Clock:
		return t.String(), nil
	}
	return nil, fmt.Errorf("unsupported %s value of type %T", p, v)
}

// trimFraction drops fractional seconds and any zone suffix from a
// HH:MM:SS text value.
func trimFraction(s string) string {
	if len(s) > len(clockLayout) {
		return s[:len(clockLayout)]
	}
	return s
}
