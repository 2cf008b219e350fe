package token

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
)

// Reader is a Source over encoding/xml.
//
// It reads raw tokens so that prefixed names are never rewritten into namespace
// URLs, and it matches end tags against start tags itself.
type Reader struct {
	dec   *xml.Decoder
	label string
	open  []string
	done  bool
}

// NewReader returns a Reader over r. The label only appears in positions.
func NewReader(r io.Reader, label string) *Reader {
	dec := xml.NewDecoder(r)
	dec.Strict = true

	return &Reader{dec: dec, label: label}
}

// Label returns the document label.
func (r *Reader) Label() string {
	return r.label
}

// Next returns the next start tag, end tag or non-blank text token.
// Malformed markup is reported as *SyntaxError; read failures of the
// underlying reader are returned unchanged.
func (r *Reader) Next() (Token, error) {
	if r.done {
		return Token{}, io.EOF
	}

	for {
		line, column := r.dec.InputPos()
		pos := Position{Label: r.label, Line: line, Column: column}

		raw, err := r.dec.RawToken()
		if err != nil {
			if errors.Is(err, io.EOF) {
				r.done = true
				if len(r.open) > 0 {
					return Token{}, &SyntaxError{
						Pos: pos,
						Msg: fmt.Sprintf("unexpected EOF: element <%s> not closed", r.open[len(r.open)-1]),
					}
				}
			}

			var decErr *xml.SyntaxError
			if errors.As(err, &decErr) {
				// the decoder stops at the offending byte
				line, column = r.dec.InputPos()

				return Token{}, &SyntaxError{
					Pos: Position{Label: r.label, Line: line, Column: column},
					Msg: decErr.Msg,
					Err: err,
				}
			}

			return Token{}, err
		}

		switch t := raw.(type) {
		case xml.StartElement:
			name := joinName(t.Name)

			attrs, err := convertAttrs(t.Attr)
			if err != nil {
				return Token{}, &SyntaxError{Pos: pos, Msg: fmt.Sprintf("%v on <%s>", err, name)}
			}

			r.open = append(r.open, name)

			return Token{Kind: StartTag, Name: name, Attrs: attrs, Pos: pos}, nil

		case xml.EndElement:
			name := joinName(t.Name)
			if len(r.open) == 0 {
				return Token{}, &SyntaxError{Pos: pos, Msg: fmt.Sprintf("unexpected end element </%s>", name)}
			}

			if top := r.open[len(r.open)-1]; top != name {
				return Token{}, &SyntaxError{
					Pos: pos,
					Msg: fmt.Sprintf("element <%s> closed by </%s>", top, name),
				}
			}

			r.open = r.open[:len(r.open)-1]

			return Token{Kind: EndTag, Name: name, Pos: pos}, nil

		case xml.CharData:
			if len(bytes.TrimSpace(t)) == 0 {
				continue
			}

			return Token{Kind: Text, Text: string(t), Pos: pos}, nil
		}
		// comments, processing instructions and directives carry no binding data
	}
}

func joinName(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}

	return n.Space + ":" + n.Local
}

// convertAttrs drops namespace declarations. A repeated attribute name is an error.
func convertAttrs(attrs []xml.Attr) ([]Attr, error) {
	if len(attrs) == 0 {
		return nil, nil
	}

	out := make([]Attr, 0, len(attrs))
	seen := make(map[string]bool, len(attrs))

	for _, a := range attrs {
		name := joinName(a.Name)
		if seen[name] {
			return nil, fmt.Errorf("attribute %q repeated", name)
		}

		seen[name] = true

		if a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns") {
			continue
		}

		out = append(out, Attr{Name: name, Value: a.Value})
	}

	return out, nil
}
