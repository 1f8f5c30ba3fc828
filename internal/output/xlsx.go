package output

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// DefaultSheetName is the worksheet used when none is configured.
const DefaultSheetName = "Transactions"

// XLSXWriter writes rows to a single worksheet. The workbook is built in
// memory and written out on Flush.
type XLSXWriter struct {
	w       io.Writer
	f       *excelize.File
	sheet   string
	row     int
	header  bool
	flushed bool
}

// NewXLSXWriter creates a workbook whose only sheet is named sheet.
func NewXLSXWriter(w io.Writer, sheet string) (*XLSXWriter, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("invalid sheet name %q: %w", sheet, err)
	}
	return &XLSXWriter{w: w, f: f, sheet: sheet, row: 1}, nil
}

// WriteHeader writes the header row and freezes it.
func (w *XLSXWriter) WriteHeader(columns []string) error {
	if w.header {
		return errHeaderWritten
	}
	w.header = true
	if err := w.Write(columns); err != nil {
		return err
	}
	return w.f.SetPanes(w.sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// Write appends a row. Cells are stored as strings so that prices and
// identifiers keep their display form.
func (w *XLSXWriter) Write(row []string) error {
	cell, err := excelize.CoordinatesToCellName(1, w.row)
	if err != nil {
		return err
	}
	values := make([]any, len(row))
	for i, v := range row {
		values[i] = v
	}
	if err := w.f.SetSheetRow(w.sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", w.row, err)
	}
	w.row++
	return nil
}

// WriteAll appends all rows.
func (w *XLSXWriter) WriteAll(rows [][]string) error {
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// Flush writes the workbook. A workbook can only be written once.
func (w *XLSXWriter) Flush() error {
	if w.flushed {
		return nil
	}
	w.flushed = true
	if _, err := w.f.WriteTo(w.w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// Close writes the workbook if needed and releases it.
func (w *XLSXWriter) Close() error {
	err := w.Flush()
	if cerr := w.f.Close(); err == nil {
		err = cerr
	}
	return err
}
