package document

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
)

// ErrInputTooLarge is returned when a file exceeds LoadOptions.MaxBytes.
var ErrInputTooLarge = errors.New("input file too large")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// LoadOptions controls Load.
type LoadOptions struct {
	// MaxBytes rejects files larger than this size. Zero means unlimited.
	MaxBytes int64
}

// Load reads the whole file at path and returns it as UTF-8 text.
// A leading byte-order mark is dropped and invalid sequences are replaced
// with U+FFFD.
func Load(path string, opts LoadOptions) (string, error) {
	if opts.MaxBytes > 0 {
		info, err := os.Stat(path)
		if err != nil {
			return "", fmt.Errorf("failed to read input file: %w", err)
		}
		if info.Size() > opts.MaxBytes {
			return "", fmt.Errorf("%w: %s is %s, limit is %s", ErrInputTooLarge, path,
				humanize.Bytes(uint64(info.Size())), humanize.Bytes(uint64(opts.MaxBytes)))
		}
	}

	data, err := os.ReadFile(path) //#nosec G304 -- CLI tool reads a user-specified input file
	if err != nil {
		return "", fmt.Errorf("failed to read input file: %w", err)
	}

	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return strings.ToValidUTF8(string(data), "\uFFFD"), nil
	}
	return string(data), nil
}

// LoadDocument combines Load and Parse.
func LoadDocument(path string, opts LoadOptions) (*Document, error) {
	html, err := Load(path, opts)
	if err != nil {
		return nil, err
	}
	return Parse(html)
}
