// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export writes the reconciled table to disk as a single-sheet
// workbook or CSV file, renders a terminal preview, and records a run
// manifest alongside the output.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/pdiddy/scholar-metrics/pkg/types"
)

const (
	// FilePrefix starts every generated output file name.
	FilePrefix = "orcid_crossref_eventdata"

	// SheetName is the name of the workbook's only sheet.
	SheetName = "data"

	timestampLayout = "20060102_150405"
)

// FileName returns the timestamped output file name for format.
func FileName(now time.Time, format types.OutputFormat) string {
	return fmt.Sprintf("%s_%s.%s", FilePrefix, now.Format(timestampLayout), format)
}

// Write stores t at path in the given format.
func Write(path string, t *types.Table, format types.OutputFormat) error {
	switch format {
	case types.OutputCSV:
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
		if err := WriteCSV(f, t); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	case types.OutputXLSX, "":
		return WriteXLSX(path, t)
	default:
		return &types.ValidationError{Field: "output.format", Value: string(format), Reason: "must be xlsx or csv"}
	}
}

// WriteXLSX writes t to a workbook with one sheet named "data". The first
// row holds the column names; nil cells are left empty.
func WriteXLSX(path string, t *types.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	header := make([]any, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, row := range t.Rows {
		for j, v := range row {
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(SheetName, cell, v); err != nil {
				return fmt.Errorf("writing %s: %w", cell, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

// WriteCSV writes t as comma-separated text with a header row. Nil cells
// are written as empty fields.
func WriteCSV(w io.Writer, t *types.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for j, v := range row {
			record[j] = cellString(v)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func cellString(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
