package source

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// Supported text encodings for delimited sources.
const (
	EncodingLatin1 = "latin-1"
	EncodingUTF8   = "utf-8"
)

// CSVAdapter reads comma or tab separated recipient lists.
//
// Rows may have different lengths and quotes are parsed leniently, matching
// what spreadsheet exports produce in practice. Latin-1 is the default
// encoding; every byte sequence is valid Latin-1, so decoding never fails.
type CSVAdapter struct {
	Encoding string
	Comma    rune
}

// Kind implements Adapter.
func (a *CSVAdapter) Kind() Kind { return KindList }

// ReadRows implements Adapter.
func (a *CSVAdapter) ReadRows(r io.Reader, _ int64) ([][]string, error) {
	decoded, err := decodeText(r, a.Encoding)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(decoded)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	if a.Comma != 0 {
		cr.Comma = a.Comma
	}

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse delimited text: %w", err)
	}
	return rows, nil
}

func decodeText(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", EncodingLatin1, "latin1", "iso-8859-1":
		return charmap.ISO8859_1.NewDecoder().Reader(r), nil
	case EncodingUTF8, "utf8":
		return newUTF8Sanitizer(newBOMSkippingReader(r)), nil
	default:
		return nil, fmt.Errorf("unknown text encoding %q", encoding)
	}
}
