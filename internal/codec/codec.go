// Package codec converts field values between the text that crosses the HTTP
// boundary (form fields, path segments) and the typed values held by records.
//
// A decoded value is always one of: nil, string, int64, decimal.Decimal, Date
// or Clock. Which one is decided by the field's Parser.
package codec

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Parser selects how a field's text is decoded and encoded.
type Parser int

const (
	ParserString Parser = iota
	ParserInt
	ParserDecimal
	ParserDate
	ParserTime
)

var parserNames = [...]string{
	ParserString:  "string",
	ParserInt:     "int",
	ParserDecimal: "decimal",
	ParserDate:    "date",
	ParserTime:    "time",
}

// String returns the parser tag
func (p Parser) String() string {
	if p < 0 || int(p) >= len(parserNames) {
		return fmt.Sprintf("Parser(%d)", int(p))
	}
	return parserNames[p]
}

// ParseParser resolves a parser tag. An empty tag means ParserString.
func ParseParser(tag string) (Parser, error) {
	if tag == "" {
		return ParserString, nil
	}
	for p, name := range parserNames {
		if name == tag {
			return Parser(p), nil
		}
	}
	return ParserString, fmt.Errorf("unknown parser %q", tag)
}

// ErrFormat is matched by every *FormatError via errors.Is.
var ErrFormat = errors.New("format error")

// FormatError reports submitted text that cannot be decoded by its parser.
type FormatError struct {
	Field  string
	Parser Parser
	Text   string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid %s value %q", e.Parser, e.Text)
	}
	return fmt.Sprintf("%s: invalid %s value %q", e.Field, e.Parser, e.Text)
}

func (e *FormatError) Unwrap() error { return e.Err }

// Is reports whether target is ErrFormat
func (e *FormatError) Is(target error) bool { return target == ErrFormat }

// IsFormatError checks if an error is a decode failure
func IsFormatError(err error) bool {
	return errors.Is(err, ErrFormat)
}

// Decode converts submitted text into a typed value. Empty text decodes to
// nil for every parser. Surrounding whitespace is kept for strings and
// ignored by every other parser.
func Decode(p Parser, text string) (any, error) {
	if text == "" {
		return nil, nil
	}

	if p == ParserString {
		return text, nil
	}

	var (
		v       any
		err     error
		trimmed = strings.TrimSpace(text)
	)
	switch p {
	case ParserInt:
		v, err = strconv.ParseInt(trimmed, 10, 64)
	case ParserDecimal:
		v, err = parseDecimal(trimmed)
	case ParserDate:
		v, err = ParseDate(trimmed)
	case ParserTime:
		v, err = ParseClock(trimmed)
	default:
		return text, nil
	}
	if err != nil {
		return nil, &FormatError{Parser: p, Text: text, Err: err}
	}
	return v, nil
}

// DecimalPlaces is the number of fraction digits a decimal value may carry.
const DecimalPlaces = 2

var errDecimalScale = fmt.Errorf("more than %d fraction digits", DecimalPlaces)

// parseDecimal accepts only values Encode can render without rounding.
// Trailing zeros beyond DecimalPlaces are fine.
func parseDecimal(text string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if !d.Equal(d.Truncate(DecimalPlaces)) {
		return decimal.Decimal{}, errDecimalScale
	}
	return d, nil
}

// DecodeField is Decode with the field name recorded on failure.
func DecodeField(field string, p Parser, text string) (any, error) {
	v, err := Decode(p, text)
	if err != nil {
		var fe *FormatError
		if errors.As(err, &fe) {
			fe.Field = field
		}
		return nil, err
	}
	return v, nil
}

// Encode renders a typed value as form text. nil encodes to "" for every
// parser; decimals always carry two fraction digits and times drop seconds.
func Encode(p Parser, v any) string {
	if v == nil {
		return ""
	}

	switch p {
	case ParserDate:
		if d, ok := v.(Date); ok {
			return d.String()
		}
	case ParserTime:
		if c, ok := v.(Clock); ok {
			return c.Short()
		}
	case ParserDecimal:
		switch d := v.(type) {
		case decimal.Decimal:
			return d.StringFixed(DecimalPlaces)
		case int64:
			return decimal.NewFromInt(d).StringFixed(DecimalPlaces)
		case float64:
			return decimal.NewFromFloat(d).StringFixed(DecimalPlaces)
		}
	}

	switch t := v.(type) {
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(v)
	}
}
