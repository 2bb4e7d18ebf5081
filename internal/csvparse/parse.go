// Package csvparse turns an uploaded delimited-text file into the ordered
// sequence of raw card rows that feed enrichment.
//
// Parsing is header-driven: columns are matched by name, not position, and
// unrecognized columns are ignored. A row is valid iff it carries both a
// non-empty Scryfall ID and a non-empty Name; a missing Set Code defaults to
// the empty string and a missing or unparsable Price defaults to 0.
package csvparse

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Gluthoric/QR-Code-Project-Work-SB/internal/cardlist"
)

// Recognized column headers. The match is case-sensitive per the upload
// template the frontend hands out.
const (
	colScryfallID = "Scryfall ID"
	colName       = "Name"
	colSetCode    = "Set Code"
	colPrice      = "Price"
)

// ErrNoValidRows is returned when a file yields zero valid rows. An upload
// with nothing usable in it must fail loudly rather than silently produce an
// empty list, since the caller could not otherwise tell "empty file" from
// "bad file".
var ErrNoValidRows = errors.New("no valid card data found in the CSV file")

// Parse reads the upload and returns one Card per valid row, in file order.
// Invalid rows are skipped; if every row is invalid (or there are none),
// Parse fails with an error wrapping ErrNoValidRows.
func Parse(r io.Reader) ([]cardlist.Card, error) {
	reader := csv.NewReader(wrapReader(r))
	reader.FieldsPerRecord = -1 // ragged rows are handled per-field below
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty file: %w", ErrNoValidRows)
	}
	if err != nil {
		return nil, fmt.Errorf("reading header row: %w", err)
	}

	idx := headerIndex(header)
	idCol, hasID := idx[colScryfallID]
	nameCol, hasName := idx[colName]
	if !hasID || !hasName {
		return nil, fmt.Errorf("missing required column %q or %q: %w", colScryfallID, colName, ErrNoValidRows)
	}
	setCol := optionalColumn(idx, colSetCode)
	priceCol := optionalColumn(idx, colPrice)

	var cards []cardlist.Card
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv row: %w", err)
		}

		id := strings.TrimSpace(field(row, idCol))
		name := strings.TrimSpace(field(row, nameCol))
		if id == "" || name == "" {
			continue
		}

		cards = append(cards, cardlist.Card{
			ID:      id,
			Name:    name,
			SetCode: strings.TrimSpace(field(row, setCol)),
			Price:   parsePrice(field(row, priceCol)),
		})
	}

	if len(cards) == 0 {
		return nil, ErrNoValidRows
	}
	return cards, nil
}

// headerIndex maps each header cell to its column position. Later duplicates
// do not override earlier ones.
func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if _, ok := idx[h]; !ok {
			idx[h] = i
		}
	}
	return idx
}

// optionalColumn returns the column position for name, or -1 when the
// header does not carry it.
func optionalColumn(idx map[string]int, name string) int {
	if i, ok := idx[name]; ok {
		return i
	}
	return -1
}

// field returns row[i], or "" when i is -1 (absent optional column) or the
// row is shorter than the header.
func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

// parsePrice converts an upload price cell to a float, tolerating currency
// symbols and thousands separators. Unparsable or absent values become 0.
func parsePrice(raw string) float64 {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "$")
	raw = strings.ReplaceAll(raw, ",", "")
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return v
}
