// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package input reads the identifier sheet: an xlsx workbook or CSV file
// with one column of ORCID iDs under a header row.
package input

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/pdiddy/scholar-metrics/internal/identifier"
	"github.com/pdiddy/scholar-metrics/pkg/types"
)

// HeaderNames lists the header names that select the identifier column,
// compared case-insensitively. The first column is used when none match.
var HeaderNames = []string{"orcid", "identifier"}

// Identifiers is the classified content of an input sheet.
type Identifiers struct {
	// Column is the header of the column the identifiers were read from.
	Column string

	// Valid holds normalized, well-formed identifiers in first-seen order.
	Valid []string

	// Invalid holds normalized identifiers that failed validation.
	Invalid []string

	// Header and Rows are the raw sheet content, for previewing.
	Header []string
	Rows   [][]string
}

// ReadFile reads and classifies the identifiers in path. The format is
// chosen by extension: .xlsx and .xlsm are workbooks (first sheet), .csv is
// comma-separated text. An unreadable file is a *types.FatalError; a file
// with no header row or an unknown extension is a *types.ValidationError.
func ReadFile(path string) (*Identifiers, error) {
	var (
		records [][]string
		err     error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx", ".xlsm":
		records, err = readWorkbook(path)
	case ".csv":
		records, err = readCSVFile(path)
	default:
		return nil, &types.ValidationError{Field: "input", Value: path, Reason: fmt.Sprintf("unsupported file type %q (want .xlsx or .csv)", ext)}
	}
	if err != nil {
		return nil, &types.FatalError{Op: "reading input " + path, Err: err}
	}
	return FromRecords(records)
}

// FromRecords classifies identifiers from a header row followed by data
// rows.
func FromRecords(records [][]string) (*Identifiers, error) {
	if len(records) == 0 || len(records[0]) == 0 {
		return nil, &types.ValidationError{Field: "input", Reason: "sheet has no header row"}
	}
	header := records[0]
	col := Column(header)

	ids := &Identifiers{
		Column: strings.TrimSpace(header[col]),
		Header: header,
		Rows:   records[1:],
	}
	raw := make([]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		if col < len(rec) {
			raw = append(raw, rec[col])
		}
	}
	ids.Valid, ids.Invalid = Classify(raw)
	return ids, nil
}

// Column returns the index of the identifier column in header.
func Column(header []string) int {
	for _, name := range HeaderNames {
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), name) {
				return i
			}
		}
	}
	return 0
}

// Classify normalizes raw cells, drops blanks and placeholder values,
// collapses duplicates keeping the first occurrence, and splits the rest by
// validity.
func Classify(raw []string) (valid, invalid []string) {
	seen := make(map[string]bool, len(raw))
	for _, cell := range raw {
		id := identifier.Normalize(cell)
		if isBlank(id) || seen[id] {
			continue
		}
		seen[id] = true
		if identifier.Valid(id) {
			valid = append(valid, id)
		} else {
			invalid = append(invalid, id)
		}
	}
	return valid, invalid
}

func isBlank(s string) bool {
	switch strings.ToLower(s) {
	case "", "nan", "none", "null":
		return true
	}
	return false
}

func readWorkbook(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	return f.GetRows(sheets[0])
}

func readCSVFile(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadCSV(file)
}

// ReadCSV reads comma-separated records, tolerating ragged rows.
func ReadCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return cr.ReadAll()
}
