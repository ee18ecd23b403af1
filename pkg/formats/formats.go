// Package formats provides parsers for the Wavefront OBJ geometry format
// and its MTL material companion.
package formats

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/Faultbox/objview/pkg/encoding"
)

// Shared parse errors.
var (
	ErrFileNotFound       = errors.New("file not found")
	ErrMalformedLine      = errors.New("malformed line")
	ErrDanglingReference  = errors.New("dangling attribute reference")
	ErrUndeclaredMaterial = errors.New("undeclared material")
	ErrUnsupportedFace    = errors.New("unsupported face")
)

// LineError reports a problem on a specific line of a text file.
type LineError struct {
	Line int    // 1-based line number
	Text string // Raw line content
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// lineScanner walks a line-oriented text file, splitting each line into
// a directive keyword and its whitespace-separated fields.
type lineScanner struct {
	s    *bufio.Scanner
	line int
	text string
}

func newLineScanner(r io.Reader) *lineScanner {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 64*1024), 1024*1024)
	return &lineScanner{s: s}
}

// next advances to the next non-empty, non-comment line.
// Lines that are not valid UTF-8 are read as Windows-1252.
func (ls *lineScanner) next() (keyword string, fields []string, ok bool) {
	for ls.s.Scan() {
		ls.line++
		ls.text = strings.TrimSpace(encoding.ToUTF8(ls.s.Text()))
		if ls.text == "" || ls.text[0] == '#' {
			continue
		}
		f := strings.Fields(ls.text)
		return f[0], f[1:], true
	}
	return "", nil, false
}

// rest returns the line remainder after the keyword, with inner spacing kept.
func (ls *lineScanner) rest(keyword string) string {
	return strings.TrimSpace(strings.TrimPrefix(ls.text, keyword))
}

func (ls *lineScanner) err() error {
	return ls.s.Err()
}

// fail wraps err with the current line position.
func (ls *lineScanner) fail(err error) error {
	return &LineError{Line: ls.line, Text: ls.text, Err: err}
}

// parseFloats parses the leading len(dst) fields into dst. Every field on
// the line must be numeric, and the count beyond len(dst) must be zero or
// one of the optional counts in extra.
func parseFloats(fields []string, dst []float32, extra ...int) error {
	if len(fields) < len(dst) {
		return fmt.Errorf("%w: want %d values, got %d", ErrMalformedLine, len(dst), len(fields))
	}
	if n := len(fields) - len(dst); n > 0 && !slices.Contains(extra, n) {
		return fmt.Errorf("%w: %d unexpected trailing values", ErrMalformedLine, n)
	}
	for i, field := range fields {
		v, err := strconv.ParseFloat(field, 32)
		if err != nil {
			return fmt.Errorf("%w: %q is not a number", ErrMalformedLine, field)
		}
		if i < len(dst) {
			dst[i] = float32(v)
		}
	}
	return nil
}
