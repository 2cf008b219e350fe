package token

import "fmt"

//go:generate go tool stringer -type=Kind -output=kind_string.go

// Kind identifies the kind of a markup token.
type Kind int

const (
	_ Kind = iota

	StartTag
	EndTag
	Text
)

// Position is a source location used for diagnostics.
type Position struct {
	Label  string // document label, e.g. a file name
	Line   int
	Column int
}

// String returns "label:line:column", omitting unknown parts.
func (p Position) String() string {
	switch {
	case p.Line == 0 && p.Label == "":
		return "-"
	case p.Line == 0:
		return p.Label
	case p.Label == "":
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	default:
		return fmt.Sprintf("%s:%d:%d", p.Label, p.Line, p.Column)
	}
}

// Attr is a name="value" pair on a start tag.
type Attr struct {
	Name  string
	Value string
}

// Token is a single markup token.
type Token struct {
	Kind  Kind
	Name  string // StartTag, EndTag
	Attrs []Attr // StartTag only
	Text  string // Text only
	Pos   Position
}

// Source yields tokens until io.EOF.
type Source interface {
	Next() (Token, error)
}

// Sink accepts tokens in document order.
type Sink interface {
	Start(name string, attrs []Attr) error
	End(name string) error
}

// SyntaxError reports markup that is not well-formed.
type SyntaxError struct {
	Pos Position
	Msg string
	Err error // the decoder error, if the decoder detected the problem
}

func (e *SyntaxError) Error() string {
	return e.Pos.String() + ": " + e.Msg
}

func (e *SyntaxError) Unwrap() error { return e.Err }
