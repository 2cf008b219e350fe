package parser

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"markup-binder/binding"
	"markup-binder/internal/match"
	"markup-binder/primitive"
	"markup-binder/token"
)

// Config tunes a parse.
type Config struct {
	// Lenient skips unknown attributes and unknown element subtrees instead of failing.
	Lenient bool
	// Coercions selects the accepted textual forms of attribute values.
	Coercions primitive.CategoryEnum
	// Logger receives debug traces of element open and close events.
	Logger *slog.Logger
}

type labeled interface {
	Label() string
}

type parser struct {
	reg   *binding.Registry
	src   token.Source
	cfg   Config
	log   *slog.Logger
	label string
	last  token.Position
}

// Parse reads exactly one document from src and returns its root value, a
// pointer to the bound type.
func Parse(src token.Source, reg *binding.Registry, cfg Config) (any, error) {
	p := &parser{
		reg: reg,
		src: src,
		cfg: cfg,
		log: cfg.Logger,
	}

	if p.log == nil {
		p.log = slog.New(slog.DiscardHandler)
	}

	if l, ok := src.(labeled); ok {
		p.label = l.Label()
	}

	return p.parseDocument()
}

func (p *parser) parseDocument() (any, error) {
	tok, err := p.nextNonText("")
	if errors.Is(err, io.EOF) {
		return nil, p.errorf(p.last, nil, "empty document")
	}

	if err != nil {
		return nil, err
	}

	if tok.Kind != token.StartTag {
		return nil, p.errorf(tok.Pos, nil, "unexpected </%s> before the document element", tok.Name)
	}

	desc, ok := p.reg.LookupRootTag(tok.Name)
	if !ok {
		return nil, p.suggestf(tok.Pos, tok.Name, p.reg.RootTags(), "no root type is bound to <%s>", tok.Name)
	}

	var result any

	root, err := p.open(nil, desc, tok, func(v any) error {
		result = v
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := p.parseObject(root); err != nil {
		return nil, err
	}

	tok, err = p.nextNonText("")
	if errors.Is(err, io.EOF) {
		return result, nil
	}

	if err != nil {
		return nil, err
	}

	return nil, p.errorf(tok.Pos, nil, "content after the document element: <%s>", tok.Name)
}

// parseObject consumes the children of an object element up to and including its end tag.
func (p *parser) parseObject(h *handle) error {
	for {
		tok, err := p.nextNonText(h.name)
		if err != nil {
			return err
		}

		switch tok.Kind {
		case token.EndTag:
			if tok.Name != h.name {
				return p.errorf(tok.Pos, nil, "element <%s> closed by </%s>", h.name, tok.Name)
			}

			return p.close(h)

		case token.StartTag:
			if err := p.child(h, tok); err != nil {
				return err
			}
		}
	}
}

// child dispatches one child start tag of an object element.
func (p *parser) child(h *handle, tok token.Token) error {
	if fieldTag, typeTag, ok := strings.Cut(tok.Name, ":"); ok {
		field, ok := h.desc.Element(fieldTag)
		if !ok {
			return p.unknownElement(h, tok)
		}

		d, ok := field.Resolve(typeTag)
		if !ok {
			return p.suggestf(tok.Pos, typeTag, field.Tags(), "<%s> is not admissible in field %q of <%s>", typeTag, fieldTag, h.name)
		}

		return p.parseChild(h, d, tok, p.assign(h, field, tok.Pos))
	}

	if field, ok := h.desc.Element(tok.Name); ok {
		return p.parseWrapper(h, field, tok)
	}

	if di, ok := h.desc.DirectItem(tok.Name); ok {
		return p.parseChild(h, di.Descriptor, tok, p.assign(h, di.Element, tok.Pos))
	}

	return p.unknownElement(h, tok)
}

func (p *parser) unknownElement(h *handle, tok token.Token) error {
	if p.cfg.Lenient {
		p.log.Debug("skipping unknown element", "tag", tok.Name, "parent", h.name, "pos", tok.Pos.String())
		return p.skip(tok.Name)
	}

	name, _, _ := strings.Cut(tok.Name, ":")

	return p.suggestf(tok.Pos, name, h.desc.ChildTags(), "unknown element <%s> in <%s>", tok.Name, h.name)
}

// parseWrapper consumes <field> ... </field>; every child resolves in the field's table.
func (p *parser) parseWrapper(owner *handle, field *binding.ElementAccessor, tok token.Token) error {
	if len(tok.Attrs) > 0 && !p.cfg.Lenient {
		return p.errorf(tok.Pos, nil, "field element <%s> takes no attributes", tok.Name)
	}

	w := &handle{parent: owner, name: tok.Name, pos: tok.Pos}
	assign := p.assign(owner, field, tok.Pos)
	count := 0

	for {
		t, err := p.nextNonText(w.name)
		if err != nil {
			return err
		}

		if t.Kind == token.EndTag {
			if t.Name != w.name {
				return p.errorf(t.Pos, nil, "element <%s> closed by </%s>", w.name, t.Name)
			}

			return nil
		}

		d, ok := field.Resolve(t.Name)
		if !ok {
			if p.cfg.Lenient {
				if err := p.skip(t.Name); err != nil {
					return err
				}

				continue
			}

			return p.suggestf(t.Pos, t.Name, field.Tags(), "<%s> is not admissible in field %q", t.Name, field.Tag())
		}

		if !field.IsCollection() && count == 1 {
			return p.errorf(t.Pos, nil, "field %q holds a single element", field.Tag())
		}

		count++

		if err := p.parseChild(w, d, t, assign); err != nil {
			return err
		}
	}
}

func (p *parser) parseChild(parent *handle, d *binding.Descriptor, tok token.Token, cb func(any) error) error {
	h, err := p.open(parent, d, tok, cb)
	if err != nil {
		return err
	}

	return p.parseObject(h)
}

// open allocates the value of a start tag and applies its attributes.
func (p *parser) open(parent *handle, d *binding.Descriptor, tok token.Token, cb func(any) error) (*handle, error) {
	h := &handle{
		parent:   parent,
		desc:     d,
		name:     tok.Name,
		value:    d.New(),
		pos:      tok.Pos,
		callback: cb,
	}

	p.log.Debug("open element", "tag", tok.Name, "type", d.ID().String(), "pos", tok.Pos.String())

	for _, a := range tok.Attrs {
		acc, ok := d.Attribute(a.Name)
		if !ok {
			if p.cfg.Lenient {
				p.log.Debug("skipping unknown attribute", "name", a.Name, "tag", tok.Name)
				continue
			}

			return nil, p.suggestf(tok.Pos, a.Name, d.AttributeNames(), "unknown attribute %q on <%s>", a.Name, tok.Name)
		}

		if err := acc.Set(h.value, a.Value, p.cfg.Coercions); err != nil {
			return nil, p.errorf(tok.Pos, err, "attribute %q on <%s>", a.Name, tok.Name)
		}
	}

	return h, nil
}

// close flushes buffered collections, then hands the value to the parent.
func (p *parser) close(h *handle) error {
	h.flush()

	p.log.Debug("close element", "tag", h.name, "type", h.desc.ID().String())

	return h.callback(h.value)
}

// assign returns the callback storing a finished child into field of owner.
func (p *parser) assign(owner *handle, field *binding.ElementAccessor, pos token.Position) func(any) error {
	if field.IsCollection() {
		return func(v any) error {
			owner.accumulate(field, v)
			return nil
		}
	}

	return func(v any) error {
		if owner.isFilled(field) {
			return p.errorf(pos, nil, "field %q of <%s> is already set", field.Tag(), owner.name)
		}

		owner.markFilled(field)
		field.Set(owner.value, v)

		return nil
	}
}

// skip consumes tokens up to the end tag matching an already read start tag.
func (p *parser) skip(name string) error {
	depth := 1

	for depth > 0 {
		tok, err := p.nextNonText(name)
		if err != nil {
			return err
		}

		switch tok.Kind {
		case token.StartTag:
			depth++
		case token.EndTag:
			depth--
		}
	}

	return nil
}

// nextNonText returns the next tag token. Text carries no binding data and is
// dropped inside elements; at top level (inside == "") it is an error.
func (p *parser) nextNonText(inside string) (token.Token, error) {
	for {
		tok, err := p.src.Next()
		if err != nil {
			return token.Token{}, p.sourceError(err, inside)
		}

		p.last = tok.Pos

		if tok.Kind == token.Text {
			if inside == "" {
				return token.Token{}, p.errorf(tok.Pos, nil, "text outside the document element")
			}

			continue
		}

		return tok, nil
	}
}

// sourceError maps token stream failures: malformed markup becomes a
// ParsingError, end of input inside an element too, anything else is returned as is.
func (p *parser) sourceError(err error, inside string) error {
	var syntaxErr *token.SyntaxError
	if errors.As(err, &syntaxErr) {
		return p.errorf(syntaxErr.Pos, syntaxErr.Err, "malformed markup: %s", syntaxErr.Msg)
	}

	var decErr *xml.SyntaxError
	if errors.As(err, &decErr) {
		return p.errorf(token.Position{Line: decErr.Line}, err, "malformed markup: %s", decErr.Msg)
	}

	if errors.Is(err, io.EOF) && inside != "" {
		return p.errorf(p.last, nil, "unexpected end of document inside <%s>", inside)
	}

	if errors.Is(err, io.ErrUnexpectedEOF) {
		return p.errorf(p.last, err, "truncated document")
	}

	return err
}

func (p *parser) errorf(pos token.Position, cause error, format string, args ...any) error {
	if pos.Label == "" {
		pos.Label = p.label
	}

	return &binding.ParsingError{Pos: pos, Msg: fmt.Sprintf(format, args...), Err: cause}
}

func (p *parser) suggestf(pos token.Position, name string, candidates []string, format string, args ...any) error {
	err := p.errorf(pos, nil, format, args...).(*binding.ParsingError)
	err.Suggestions = match.Suggest(name, candidates)

	return err
}
