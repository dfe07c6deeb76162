// Package parser turns uploaded bytes into ordered rows of delimited fields,
// keeping the physical line number of every row for error reporting.
package parser

import (
	"bytes"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/Adithya-Monish-Kumar-K/hiring-analytics/internal/ingestion"
	apperrors "github.com/Adithya-Monish-Kumar-K/hiring-analytics/pkg/errors"
)

// Parse decodes content as text and splits it into rows. Blank lines are
// skipped but still advance the line counter. Fields are split on delim
// verbatim: quoting and escaping are not supported.
func Parse(content []byte, delim rune) ([]ingestion.RawRow, error) {
	text, err := Decode(content)
	if err != nil {
		return nil, err
	}

	sep := string(delim)
	lines := strings.Split(text, "\n")
	rows := make([]ingestion.RawRow, 0, len(lines))
	for i, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		rows = append(rows, ingestion.RawRow{
			Line:   i + 1,
			Fields: strings.Split(line, sep),
		})
	}
	return rows, nil
}

// Decode returns content as UTF-8 text. A UTF-8 byte order mark is dropped
// and UTF-16 input with a byte order mark is transcoded. Content that does
// not decode to NUL-free UTF-8 fails with ErrMalformedInput.
func Decode(content []byte) (string, error) {
	if len(content) == 0 {
		return "", nil
	}
	decoded, _, err := transform.Bytes(unicode.BOMOverride(encoding.Nop.NewDecoder()), content)
	if err != nil || !utf8.Valid(decoded) || bytes.IndexByte(decoded, 0) >= 0 {
		return "", malformed(notText(content))
	}
	return string(decoded), nil
}

// notText describes content that failed to decode, naming the sniffed type
// when it is recognisably binary.
func notText(content []byte) string {
	m := mimetype.Detect(content)
	for p := m; p != nil; p = p.Parent() {
		if p.Is("text/plain") {
			return "upload is not valid UTF-8 text"
		}
	}
	if m.Is("application/octet-stream") {
		return "upload is not a text file"
	}
	return "upload is not a text file (detected " + m.String() + ")"
}

func malformed(msg string) error {
	return apperrors.New(apperrors.ErrMalformedInput, http.StatusBadRequest, msg)
}
