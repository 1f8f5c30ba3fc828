// Package output writes extracted records as tables.
package output

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Format represents output format types.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatTSV  Format = "tsv"
	FormatXLSX Format = "xlsx"
)

// Formats lists the supported formats in help order.
var Formats = []Format{FormatCSV, FormatTSV, FormatXLSX}

// Writer serializes a header followed by rows.
type Writer interface {
	// WriteHeader writes the column names. It must precede any row.
	WriteHeader(columns []string) error

	// Write outputs a single row.
	Write(row []string) error

	// WriteAll outputs multiple rows.
	WriteAll(rows [][]string) error

	// Flush ensures all data is written.
	Flush() error

	// Close flushes and releases resources. It does not close the
	// underlying io.Writer.
	Close() error
}

// WriterOption configures a writer.
type WriterOption func(*writerConfig)

type writerConfig struct {
	sheet string
	crlf  bool
}

// WithSheetName sets the worksheet name for XLSX output.
func WithSheetName(name string) WriterOption {
	return func(c *writerConfig) {
		if name != "" {
			c.sheet = name
		}
	}
}

// WithCRLF terminates delimited rows with \r\n.
func WithCRLF(enabled bool) WriterOption {
	return func(c *writerConfig) {
		c.crlf = enabled
	}
}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported output format: %s", s)
}

// FormatFromPath infers the format from a file extension, falling back to CSV.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsv", ".tab":
		return FormatTSV
	case ".xlsx":
		return FormatXLSX
	default:
		return FormatCSV
	}
}

// NewWriter creates a writer for the specified format.
func NewWriter(w io.Writer, format Format, opts ...WriterOption) (Writer, error) {
	cfg := &writerConfig{
		sheet: DefaultSheetName,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	switch format {
	case FormatCSV:
		return NewDelimitedWriter(w, ',', cfg.crlf), nil
	case FormatTSV:
		return NewDelimitedWriter(w, '\t', cfg.crlf), nil
	case FormatXLSX:
		return NewXLSXWriter(w, cfg.sheet)
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}
