package crud

import (
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/careboard/careboard/internal/orm/schema"
)

// checkBounds rejects a value its column cannot hold. Integer columns are
// 32-bit; string and decimal columns are bounded by Length and Precision.
// SQLite enforces none of these, so the store does it for every dialect.
func checkBounds(table *schema.Table, col schema.ColumnDef, v any) error {
	switch t := v.(type) {
	case int64:
		if t < math.MinInt32 || t > math.MaxInt32 {
			return fmt.Errorf("%w: %s.%s out of range", ErrInvalidValue, table.Name, col.Name)
		}
	case string:
		if col.Length > 0 && utf8.RuneCountInString(t) > col.Length {
			return fmt.Errorf("%w: %s.%s longer than %d characters", ErrInvalidValue, table.Name, col.Name, col.Length)
		}
	case decimal.Decimal:
		if col.Precision > col.Scale && t.Abs().GreaterThanOrEqual(decimal.New(1, int32(col.Precision-col.Scale))) {
			return fmt.Errorf("%w: %s.%s exceeds %d digits", ErrInvalidValue, table.Name, col.Name, col.Precision)
		}
	}
	return nil
}
