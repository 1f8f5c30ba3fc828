package output

import (
	"encoding/csv"
	"errors"
	"io"
)

var errHeaderWritten = errors.New("header already written")

// DelimitedWriter writes CSV or TSV rows.
type DelimitedWriter struct {
	w      *csv.Writer
	header bool
}

// NewDelimitedWriter creates a writer separating fields with comma.
func NewDelimitedWriter(w io.Writer, comma rune, crlf bool) *DelimitedWriter {
	cw := csv.NewWriter(w)
	cw.Comma = comma
	cw.UseCRLF = crlf
	return &DelimitedWriter{w: cw}
}

// WriteHeader writes the header line.
func (w *DelimitedWriter) WriteHeader(columns []string) error {
	if w.header {
		return errHeaderWritten
	}
	w.header = true
	return w.w.Write(columns)
}

// Write buffers a single row.
func (w *DelimitedWriter) Write(row []string) error {
	return w.w.Write(row)
}

// WriteAll writes all rows and flushes.
func (w *DelimitedWriter) WriteAll(rows [][]string) error {
	return w.w.WriteAll(rows)
}

// Flush flushes buffered rows to the underlying writer.
func (w *DelimitedWriter) Flush() error {
	w.w.Flush()
	return w.w.Error()
}

// Close flushes the writer.
func (w *DelimitedWriter) Close() error {
	return w.Flush()
}
