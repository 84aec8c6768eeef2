// Package request decodes submitted HTML forms.
package request

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"
)

// DefaultMaxBodySize bounds a submitted form body
const DefaultMaxBodySize = 1 << 20

// ErrBodyTooLarge is returned when the body exceeds the parser limit
var ErrBodyTooLarge = errors.New("request body too large")

// Parser decodes form submissions into a flat text-keyed map
type Parser struct {
	maxBodySize int64
}

// NewParser creates a parser with DefaultMaxBodySize
func NewParser() *Parser {
	return NewParserWithMaxSize(DefaultMaxBodySize)
}

// NewParserWithMaxSize creates a parser with a custom body limit
func NewParserWithMaxSize(maxBytes int64) *Parser {
	return &Parser{maxBodySize: maxBytes}
}

// ParseForm reads a url-encoded or multipart form body. Only the first
// value of a repeated key is kept; query string values are ignored.
func (p *Parser) ParseForm(w http.ResponseWriter, r *http.Request) (map[string]string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, p.maxBodySize)
	defer r.Body.Close()

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		mediaType = ""
	}

	switch {
	case strings.HasPrefix(mediaType, "multipart/form-data"):
		err = r.ParseMultipartForm(p.maxBodySize)
	default:
		err = r.ParseForm()
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, fmt.Errorf("%w: limit is %d bytes", ErrBodyTooLarge, p.maxBodySize)
		}
		return nil, fmt.Errorf("invalid form data: %w", err)
	}

	values := make(map[string]string, len(r.PostForm))
	for key, vals := range r.PostForm {
		if len(vals) > 0 {
			values[key] = vals[0]
		}
	}
	return values, nil
}
