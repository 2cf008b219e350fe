package token

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

const header = `<?xml version="1.0" encoding="UTF-8"?>`

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithIndent indents nested elements by one copy of indent per level.
// An empty indent writes the document on a single line.
func WithIndent(indent string) WriterOption {
	return func(w *Writer) { w.indent = indent }
}

// WithHeader controls the XML declaration at the top of the document.
func WithHeader(enabled bool) WriterOption {
	return func(w *Writer) { w.header = enabled }
}

// Writer is a Sink emitting markup text. Errors are sticky: after the first
// failure every call returns the same error.
type Writer struct {
	out     *bufio.Writer
	indent  string
	header  bool
	open    []string
	pending bool // last start tag still lacks its closing '>'
	started bool
	err     error
}

// NewWriter returns a Writer on w. Call Flush when the document is complete.
func NewWriter(w io.Writer, opts ...WriterOption) *Writer {
	wr := &Writer{out: bufio.NewWriter(w)}
	for _, opt := range opts {
		opt(wr)
	}

	return wr
}

// Start writes a start tag with its attributes.
func (w *Writer) Start(name string, attrs []Attr) error {
	if w.err != nil {
		return w.err
	}

	if name == "" {
		return w.fail(fmt.Errorf("empty element name"))
	}

	if !w.started {
		w.started = true
		if w.header {
			w.writeString(header)
			w.newline(0)
		}
	} else {
		w.closePending(">")
		w.newline(len(w.open))
	}

	w.writeString("<" + name)
	for _, a := range attrs {
		w.writeString(" " + a.Name + `="`)
		w.escape(a.Value)
		w.writeString(`"`)
	}

	w.pending = true
	w.open = append(w.open, name)

	return w.err
}

// End writes the end tag for the innermost open element, which must be name.
func (w *Writer) End(name string) error {
	if w.err != nil {
		return w.err
	}

	if len(w.open) == 0 {
		return w.fail(fmt.Errorf("end tag </%s> without open element", name))
	}

	top := w.open[len(w.open)-1]
	if top != name {
		return w.fail(fmt.Errorf("end tag </%s> does not match <%s>", name, top))
	}

	w.open = w.open[:len(w.open)-1]

	if w.pending {
		w.closePending("/>")
	} else {
		w.newline(len(w.open))
		w.writeString("</" + name + ">")
	}

	return w.err
}

// Flush completes the document and flushes buffered output.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}

	if len(w.open) > 0 {
		return w.fail(fmt.Errorf("document ends with %d open elements", len(w.open)))
	}

	if w.started && w.indent != "" {
		w.writeString("\n")
	}

	if w.err == nil {
		w.err = w.out.Flush()
	}

	return w.err
}

func (w *Writer) closePending(s string) {
	if w.pending {
		w.writeString(s)
		w.pending = false
	}
}

func (w *Writer) newline(depth int) {
	if w.indent == "" {
		return
	}

	w.writeString("\n" + strings.Repeat(w.indent, depth))
}

func (w *Writer) escape(s string) {
	if w.err != nil {
		return
	}

	w.err = xml.EscapeText(w.out, []byte(s))
}

func (w *Writer) writeString(s string) {
	if w.err != nil {
		return
	}

	_, w.err = w.out.WriteString(s)
}

func (w *Writer) fail(err error) error {
	if w.err == nil {
		w.err = err
	}

	return w.err
}
