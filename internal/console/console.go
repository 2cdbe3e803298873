// Package console writes the plain text status lines the host programs show
// while a simulation runs.
package console

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// TermSizeFunc is a function that returns the terminal dimensions.
type TermSizeFunc func() (width, height int, err error)

// DefaultTermSizeFunc returns terminal size from os.Stdout.
var DefaultTermSizeFunc TermSizeFunc = func() (int, int, error) {
	return term.GetSize(int(os.Stdout.Fd()))
}

// TerminalSize returns the terminal dimensions, or 80x24 when they cannot be
// determined (output is not a terminal).
func TerminalSize(sizeFunc TermSizeFunc) (width, height int) {
	w, h, err := sizeFunc()
	if err != nil || w <= 0 || h <= 0 {
		return 80, 24
	}
	return w, h
}

// ClearScreen clears the terminal and moves cursor to top-left.
func ClearScreen(w io.Writer) {
	fmt.Fprint(w, "\033[H\033[2J")
}

// HideCursor hides the terminal cursor.
func HideCursor(w io.Writer) {
	fmt.Fprint(w, "\033[?25l")
}

// ShowCursor shows the terminal cursor.
func ShowCursor(w io.Writer) {
	fmt.Fprint(w, "\033[?25h")
}

// Writer accumulates status lines and writes them in one go on Flush, which
// keeps SSH sessions to one packet per frame.
type Writer struct {
	buf    strings.Builder
	bufw   *bufio.Writer
	numBuf [20]byte // Scratch buffer for allocation-free integer formatting
	width  int
}

// NewWriter creates a Writer for a terminal width columns wide.
func NewWriter(w io.Writer, width int) *Writer {
	return &Writer{bufw: bufio.NewWriterSize(w, 4096), width: width}
}

// SetWidth updates the terminal width (e.g. after a resize).
func (cw *Writer) SetWidth(width int) {
	cw.width = width
}

// Line replaces terminal row (1-based) with text, cut to the terminal width.
func (cw *Writer) Line(row int, text string) {
	cw.buf.WriteString("\033[")
	cw.buf.Write(strconv.AppendInt(cw.numBuf[:0], int64(row), 10))
	cw.buf.WriteString(";1H\033[2K")
	if cw.width > 0 && len(text) > cw.width {
		text = text[:cw.width]
	}
	cw.buf.WriteString(text)
}

// Flush writes the accumulated lines to the underlying writer.
func (cw *Writer) Flush() error {
	if _, err := cw.bufw.WriteString(cw.buf.String()); err != nil {
		return err
	}
	cw.buf.Reset()
	return cw.bufw.Flush()
}
