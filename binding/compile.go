package binding

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"markup-binder/internal/diagnostic"
	"markup-binder/primitive"
)

var bindableType = reflect.TypeFor[Bindable]()

// build is the compile state of a descriptor created in the current batch.
type build struct {
	desc   *Descriptor
	spec   Spec
	merged bool
}

// compiler compiles one registration batch. Descriptors are only published to
// the registry once the whole batch is valid.
//
// Phases: collect creates descriptors for every reachable type and pairs their
// accessors; resolve builds per-field resolution tables and direct item tables;
// validate checks cross-type rules (subtype extension, root tags).
type compiler struct {
	reg       *Registry
	fresh     map[reflect.Type]*build
	order     []*build
	requested []reflect.Type
	failed    *TypeID
	diags     diagnostic.Diagnostics
}

func newCompiler(reg *Registry) *compiler {
	return &compiler{
		reg:   reg,
		fresh: make(map[reflect.Type]*build),
	}
}

func (c *compiler) request(rtype reflect.Type) {
	c.requested = append(c.requested, rtype)

	before := len(c.diags.Errors)
	c.collect(rtype)

	if len(c.diags.Errors) > before && c.failed == nil {
		id := IDOf(rtype)
		c.failed = &id
	}
}

func (c *compiler) finish() error {
	for _, b := range c.order {
		c.resolve(b.desc)
	}

	for _, b := range c.order {
		b.desc.root = c.rootOf(b.desc)
	}

	c.validate()

	for _, w := range c.diags.Warnings {
		c.reg.logger.Warn("binding compile warning", "type", w.Type, "code", string(w.Code), "msg", w.Message)
	}

	if c.diags.HasErrors() {
		err := &CompilationError{Diagnostics: c.diags}
		switch {
		case c.failed != nil:
			err.Type = *c.failed
		case len(c.requested) > 0:
			err.Type = IDOf(c.requested[0])
		}

		return err
	}

	for _, b := range c.order {
		c.reg.insert(b.desc)
		c.reg.logger.Debug("compiled binding",
			"type", b.desc.id.String(),
			"tag", b.desc.tag,
			"root", b.desc.root,
			"attributes", len(b.desc.attributes),
			"elements", len(b.desc.elements),
		)
	}

	return nil
}

func (c *compiler) lookup(rtype reflect.Type) (*Descriptor, bool) {
	if d, ok := c.reg.byType[rtype]; ok {
		return d, true
	}

	if b, ok := c.fresh[rtype]; ok {
		return b.desc, true
	}

	return nil, false
}

func (c *compiler) specOf(rtype reflect.Type) (Spec, bool) {
	if spec, ok := c.reg.defined[rtype]; ok {
		return spec, true
	}

	if reflect.PointerTo(rtype).Implements(bindableType) {
		return reflect.New(rtype).Interface().(Bindable).BindingSpec(), true
	}

	return Spec{}, false
}

// collect returns the descriptor of rtype, creating it and everything it
// references when needed. It returns nil when the type cannot be bound.
func (c *compiler) collect(rtype reflect.Type) *Descriptor {
	if rtype == nil {
		c.diags.AddError(diagnostic.CodeNotStruct, "", "", "nil type")
		return nil
	}

	if d, ok := c.lookup(rtype); ok {
		return d
	}

	id := IDOf(rtype)
	name := id.String()

	if rtype.Kind() != reflect.Struct || rtype.Name() == "" {
		c.diags.AddError(diagnostic.CodeNotStruct, name, "", "only named struct types can be bound, got %s", rtype.Kind())
		return nil
	}

	spec, ok := c.specOf(rtype)
	if !ok {
		c.diags.AddError(diagnostic.CodeNotBindable, name, "", "type has no binding metadata")
		c.diags.Suggest("implement BindingSpec() binding.Spec on *"+rtype.Name(), "call Registry.Define before Register")

		return nil
	}

	if err := validName(spec.Tag); err != nil {
		c.diags.AddError(diagnostic.CodeInvalidTag, name, "", "tag %q: %v", spec.Tag, err)
	}

	d := &Descriptor{
		id:         id,
		rtype:      rtype,
		tag:        spec.Tag,
		directItem: spec.DirectItem,
		attrIndex:  make(map[string]*AttributeAccessor),
		elemIndex:  make(map[string]*ElementAccessor),
		direct:     make(map[string]DirectItem),
	}

	b := &build{desc: d, spec: spec}
	c.fresh[rtype] = b
	c.order = append(c.order, b)

	inherited := c.inherit(d, spec.Extends)
	own := c.pair(d, spec.Members)
	d.members = append(shadow(inherited, own), own...)
	b.merged = true

	c.buildAccessors(d)

	seen := make(map[reflect.Type]bool, len(spec.Subtypes))
	for _, st := range spec.Subtypes {
		st = indirect(st)
		if seen[st] {
			c.diags.AddWarning(diagnostic.CodeDuplicateSubtype, name, "", "subtype %s listed more than once", IDOf(st))
			continue
		}

		seen[st] = true

		if st == rtype {
			c.diags.AddError(diagnostic.CodeSubtypeNotExtends, name, "", "type lists itself as a subtype")
			continue
		}

		if sd := c.collect(st); sd != nil {
			d.subtypes = append(d.subtypes, sd)
		}
	}

	for _, e := range d.elements {
		e.base = c.collect(e.baseType)
	}

	return d
}

// inherit collects the parent and adapts its members to d.
func (c *compiler) inherit(d *Descriptor, ext *Extension) []Member {
	if ext == nil {
		return nil
	}

	name := d.id.String()

	switch {
	case ext.child != d.rtype:
		c.diags.AddError(diagnostic.CodeInvalidExtends, name, "", "extension is declared for %s", IDOf(ext.child))
		return nil
	case ext.parent == d.rtype:
		c.diags.AddError(diagnostic.CodeInvalidExtends, name, "", "type cannot extend itself")
		return nil
	}

	parent := c.collect(ext.parent)
	if parent == nil {
		return nil
	}

	if pb, ok := c.fresh[ext.parent]; ok && !pb.merged {
		c.diags.AddError(diagnostic.CodeInvalidExtends, name, "", "cyclic extension through %s", parent.id)
		return nil
	}

	d.super = parent

	out := make([]Member, 0, len(parent.members))
	for _, m := range parent.members {
		out = append(out, ext.inherit(m))
	}

	return out
}

// pair merges getter and setter halves by name and validates each accessor.
func (c *compiler) pair(d *Descriptor, members []Member) []Member {
	name := d.id.String()
	index := make(map[string]int, len(members))

	var out []Member

	for _, m := range members {
		if m.owner != d.rtype {
			c.diags.AddError(diagnostic.CodeOwnerMismatch, name, m.name, "accessor is declared on %s", IDOf(m.owner))
			continue
		}

		if err := validName(m.name); err != nil {
			c.diags.AddError(diagnostic.CodeInvalidTag, name, m.name, "%v", err)
			continue
		}

		k := m.key()

		i, ok := index[k]
		if !ok {
			index[k] = len(out)
			out = append(out, m)

			continue
		}

		cur := &out[i]

		if cur.kind != m.kind {
			c.diags.AddError(diagnostic.CodeKindMismatch, name, m.name, "declared both as %s and %s", cur.kind, m.kind)
			continue
		}

		if cur.value != m.value {
			c.diags.AddError(diagnostic.CodeTypeMismatch, name, m.name, "getter and setter disagree on value type: %s vs %s", cur.value, m.value)
			continue
		}

		if m.hasGetter() {
			if cur.hasGetter() {
				c.diags.AddError(diagnostic.CodeDuplicateAccessor, name, m.name, "getter declared twice")
			}

			cur.get, cur.getAll = m.get, m.getAll
		}

		if m.hasSetter() {
			if cur.hasSetter() {
				c.diags.AddError(diagnostic.CodeDuplicateAccessor, name, m.name, "setter declared twice")
			}

			cur.set, cur.setAll = m.set, m.setAll
		}

		cur.omitEmpty = cur.omitEmpty || m.omitEmpty

		if m.base != nil {
			if cur.base != nil && cur.base != m.base {
				c.diags.AddError(diagnostic.CodeTypeMismatch, name, m.name, "conflicting base types %s and %s", cur.base, m.base)
			}

			cur.base = m.base
		}
	}

	valid := out[:0]

	for _, m := range out {
		switch {
		case !m.hasGetter():
			c.diags.AddError(diagnostic.CodeMissingGetter, name, m.name, "%s setter has no matching getter", strings.ToLower(m.kind.String()))
		case !m.hasSetter():
			c.diags.AddError(diagnostic.CodeMissingSetter, name, m.name, "%s getter has no matching setter", strings.ToLower(m.kind.String()))
		case m.kind == MemberAttribute && !primitive.Supported(m.value):
			c.diags.AddError(diagnostic.CodeUnsupportedAttr, name, m.name, "attribute type %s has no textual form", m.value)
		default:
			valid = append(valid, m)
		}
	}

	return valid
}

// shadow drops inherited members redeclared by the type itself.
func shadow(inherited, own []Member) []Member {
	redeclared := make(map[string]bool, len(own))
	for _, m := range own {
		redeclared[m.key()] = true
	}

	kept := make([]Member, 0, len(inherited))
	for _, m := range inherited {
		if !redeclared[m.key()] {
			kept = append(kept, m)
		}
	}

	return kept
}

func (c *compiler) buildAccessors(d *Descriptor) {
	name := d.id.String()

	for _, m := range d.members {
		if m.kind == MemberAttribute {
			a := &AttributeAccessor{
				name:      m.name,
				rtype:     m.value,
				omitEmpty: m.omitEmpty,
				get:       m.get,
				set:       m.set,
			}
			d.attributes = append(d.attributes, a)
			d.attrIndex[a.name] = a

			continue
		}

		base := m.base
		if base == nil {
			if m.value.Kind() != reflect.Pointer || m.value.Elem().Kind() != reflect.Struct {
				c.diags.AddError(diagnostic.CodeMissingBase, name, m.name,
					"value type %s is not a struct pointer", m.value)
				c.diags.Suggest("declare the bound type with binding.Base[T]()")

				continue
			}

			base = m.value.Elem()
		}

		base = indirect(base)
		if !reflect.PointerTo(base).AssignableTo(m.value) {
			c.diags.AddError(diagnostic.CodeBaseNotAssignable, name, m.name,
				"*%s is not assignable to %s", base.Name(), m.value)

			continue
		}

		e := &ElementAccessor{
			tag:      m.name,
			kind:     m.kind,
			value:    m.value,
			baseType: base,
			get:      m.get,
			set:      m.set,
			getAll:   m.getAll,
			setAll:   m.setAll,
			table:    make(map[string]*Descriptor),
		}
		d.elements = append(d.elements, e)
		d.elemIndex[e.tag] = e
	}
}

// resolve builds the resolution table of every element field of d and the
// direct item table of d.
func (c *compiler) resolve(d *Descriptor) {
	name := d.id.String()

	for _, e := range d.elements {
		if e.base == nil {
			continue
		}

		for _, cand := range closure(e.base) {
			if !reflect.PointerTo(cand.rtype).AssignableTo(e.value) {
				c.diags.AddError(diagnostic.CodeSubtypeNotAssign, name, e.tag,
					"%s is admissible through %s but cannot be stored as %s", cand.id, e.base.id, e.value)

				continue
			}

			if other, ok := e.table[cand.tag]; ok {
				c.diags.AddError(diagnostic.CodeTagConflict, name, e.tag,
					"types %s and %s both resolve tag %q", other.id, cand.id, cand.tag)

				continue
			}

			e.table[cand.tag] = cand
			e.admissible = append(e.admissible, cand)
		}
	}

	for _, e := range d.elements {
		if !e.IsCollection() {
			continue
		}

		for _, cand := range e.admissible {
			if !cand.directItem {
				continue
			}

			if _, clash := d.elemIndex[cand.tag]; clash {
				c.diags.AddError(diagnostic.CodeDirectItemConflict, name, e.tag,
					"direct item tag %q of %s collides with element %q", cand.tag, cand.id, cand.tag)

				continue
			}

			if prev, ok := d.direct[cand.tag]; ok {
				if prev.Element != e || prev.Descriptor != cand {
					c.diags.AddError(diagnostic.CodeDirectItemConflict, name, e.tag,
						"direct item tag %q is claimed by %q (%s) and %q (%s)",
						cand.tag, prev.Element.tag, prev.Descriptor.id, e.tag, cand.id)
				}

				continue
			}

			d.direct[cand.tag] = DirectItem{Element: e, Descriptor: cand}
		}
	}
}

// closure returns base followed by its transitive subtypes, breadth-first.
func closure(base *Descriptor) []*Descriptor {
	var out []*Descriptor

	visited := make(map[*Descriptor]bool)
	queue := []*Descriptor{base}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if visited[cur] {
			continue
		}

		visited[cur] = true
		out = append(out, cur)
		queue = append(queue, cur.subtypes...)
	}

	return out
}

// rootOf reports whether d or one of the types it extends is declared root.
func (c *compiler) rootOf(d *Descriptor) bool {
	for cur := d; cur != nil; cur = cur.super {
		if b, ok := c.fresh[cur.rtype]; ok {
			if b.spec.Root {
				return true
			}

			continue
		}

		if cur.root {
			return true
		}
	}

	return false
}

func (c *compiler) validate() {
	roots := make(map[string]*Descriptor)

	for _, b := range c.order {
		d := b.desc
		name := d.id.String()

		for _, s := range d.subtypes {
			if !s.Extends(d) {
				c.diags.AddError(diagnostic.CodeSubtypeNotExtends, name, "",
					"declared subtype %s does not extend %s", s.id, d.id)
				c.diags.Suggest(fmt.Sprintf("set Extends: binding.Extends[%s, %s](...) on %s", s.rtype.Name(), d.rtype.Name(), s.rtype.Name()))
			}
		}

		if !d.root {
			continue
		}

		other, ok := c.reg.byRootTag[d.tag]
		if !ok {
			other, ok = roots[d.tag]
		}

		if ok && other != d {
			c.diags.AddError(diagnostic.CodeRootTagConflict, name, "",
				"root tag %q is already used by %s", d.tag, other.id)

			continue
		}

		roots[d.tag] = d
	}
}

// validName checks tag and attribute names: a letter or '_' first, then
// letters, digits, '-', '_' or '.'. Names starting with "xml" are reserved.
func validName(name string) error {
	if name == "" {
		return fmt.Errorf("empty name")
	}

	if strings.HasPrefix(strings.ToLower(name), "xml") {
		return fmt.Errorf("names starting with \"xml\" are reserved")
	}

	for i, r := range name {
		switch {
		case unicode.IsLetter(r) || r == '_':
		case i > 0 && (unicode.IsDigit(r) || r == '-' || r == '.'):
		default:
			return fmt.Errorf("invalid character %q in name %q", r, name)
		}
	}

	return nil
}
