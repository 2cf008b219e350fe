package binding

import (
	"reflect"

	"markup-binder/primitive"
)

// Descriptor is the compiled, immutable binding of one type.
type Descriptor struct {
	id         TypeID
	rtype      reflect.Type
	tag        string
	root       bool
	directItem bool

	super    *Descriptor
	subtypes []*Descriptor
	members  []Member

	attributes []*AttributeAccessor
	attrIndex  map[string]*AttributeAccessor
	elements   []*ElementAccessor
	elemIndex  map[string]*ElementAccessor
	direct     map[string]DirectItem
}

// ID returns the type identity.
func (d *Descriptor) ID() TypeID { return d.id }

// Type returns the bound struct type.
func (d *Descriptor) Type() reflect.Type { return d.rtype }

// Tag returns the element name of the type.
func (d *Descriptor) Tag() string { return d.tag }

// IsRoot reports whether the type may be a document element.
func (d *Descriptor) IsRoot() bool { return d.root }

// IsDirectItem reports whether the type accepts implicit collection membership.
func (d *Descriptor) IsDirectItem() bool { return d.directItem }

// Super returns the extended descriptor, or nil.
func (d *Descriptor) Super() *Descriptor { return d.super }

// Subtypes returns the declared subtypes.
func (d *Descriptor) Subtypes() []*Descriptor { return d.subtypes }

// New allocates a zero value and returns it as *T.
func (d *Descriptor) New() any { return reflect.New(d.rtype).Interface() }

// Attributes returns the attribute accessors in declaration order, inherited ones first.
func (d *Descriptor) Attributes() []*AttributeAccessor { return d.attributes }

// Attribute returns the accessor for an attribute name.
func (d *Descriptor) Attribute(name string) (*AttributeAccessor, bool) {
	a, ok := d.attrIndex[name]
	return a, ok
}

// Elements returns the element accessors in declaration order, inherited ones first.
func (d *Descriptor) Elements() []*ElementAccessor { return d.elements }

// Element returns the accessor for an element tag.
func (d *Descriptor) Element(tag string) (*ElementAccessor, bool) {
	e, ok := d.elemIndex[tag]
	return e, ok
}

// DirectItem resolves a bare child tag through the direct item shorthand.
func (d *Descriptor) DirectItem(tag string) (DirectItem, bool) {
	di, ok := d.direct[tag]
	return di, ok
}

// ChildTags lists every tag accepted as a direct child: element tags and
// direct item tags. Used for diagnostics.
func (d *Descriptor) ChildTags() []string {
	tags := make([]string, 0, len(d.elements)+len(d.direct))
	for _, e := range d.elements {
		tags = append(tags, e.tag)
	}

	for tag := range d.direct {
		tags = append(tags, tag)
	}

	return tags
}

// AttributeNames lists declared attribute names. Used for diagnostics.
func (d *Descriptor) AttributeNames() []string {
	names := make([]string, 0, len(d.attributes))
	for _, a := range d.attributes {
		names = append(names, a.name)
	}

	return names
}

// Extends reports whether d is other or transitively extends it.
func (d *Descriptor) Extends(other *Descriptor) bool {
	for cur := d; cur != nil; cur = cur.super {
		if cur == other {
			return true
		}
	}

	return false
}

// DirectItem is the target of a bare child tag: the collection it joins and the
// concrete type it is read as.
type DirectItem struct {
	Element    *ElementAccessor
	Descriptor *Descriptor
}

// AttributeAccessor reads and writes one attribute as text.
type AttributeAccessor struct {
	name      string
	rtype     reflect.Type
	omitEmpty bool
	get       func(obj any) any
	set       func(obj any, v any)
}

// Name returns the attribute name.
func (a *AttributeAccessor) Name() string { return a.name }

// Type returns the Go type of the attribute value.
func (a *AttributeAccessor) Type() reflect.Type { return a.rtype }

// Set coerces text and assigns it to obj.
func (a *AttributeAccessor) Set(obj any, text string, allowed primitive.CategoryEnum) error {
	v, err := primitive.Parse(a.rtype, text, allowed)
	if err != nil {
		return err
	}

	a.set(obj, v.Interface())

	return nil
}

// Get formats the value of obj. ok is false when the attribute is omitted.
func (a *AttributeAccessor) Get(obj any) (text string, ok bool, err error) {
	v := reflect.ValueOf(a.get(obj))
	if !v.IsValid() {
		return "", false, nil
	}

	if a.omitEmpty && v.IsZero() {
		return "", false, nil
	}

	text, err = primitive.Format(v)
	if err != nil {
		return "", false, err
	}

	return text, true, nil
}

// ElementAccessor reads and writes one element field, single or collection.
type ElementAccessor struct {
	tag      string
	kind     MemberKind
	value    reflect.Type
	baseType reflect.Type
	base     *Descriptor

	get    func(obj any) any
	set    func(obj any, v any)
	getAll func(obj any) []any
	setAll func(obj any, items []any)

	table      map[string]*Descriptor
	admissible []*Descriptor
}

// Tag returns the element tag of the field.
func (e *ElementAccessor) Tag() string { return e.tag }

// Kind returns MemberElement or MemberCollection.
func (e *ElementAccessor) Kind() MemberKind { return e.kind }

// IsCollection reports whether the field holds a sequence of children.
func (e *ElementAccessor) IsCollection() bool { return e.kind == MemberCollection }

// ValueType returns the Go type of the value, or of one item for collections.
func (e *ElementAccessor) ValueType() reflect.Type { return e.value }

// Base returns the declared bound descriptor.
func (e *ElementAccessor) Base() *Descriptor { return e.base }

// Admissible returns the descriptors accepted by the field: base first, then
// subtypes breadth-first.
func (e *ElementAccessor) Admissible() []*Descriptor { return e.admissible }

// Resolve returns the concrete descriptor written as tag within this field.
func (e *ElementAccessor) Resolve(tag string) (*Descriptor, bool) {
	d, ok := e.table[tag]
	return d, ok
}

// Admits reports whether a value bound by d may be stored in the field.
func (e *ElementAccessor) Admits(d *Descriptor) bool {
	got, ok := e.table[d.tag]
	return ok && got == d
}

// Tags lists the tags in the resolution table. Used for diagnostics.
func (e *ElementAccessor) Tags() []string {
	tags := make([]string, 0, len(e.admissible))
	for _, d := range e.admissible {
		tags = append(tags, d.tag)
	}

	return tags
}

// Get returns the single value of the field, or nil when it is unset.
func (e *ElementAccessor) Get(obj any) any {
	v := e.get(obj)
	if isNil(v) {
		return nil
	}

	return v
}

// Set assigns the single value of the field.
func (e *ElementAccessor) Set(obj any, v any) { e.set(obj, v) }

// Items returns the items of a collection field.
func (e *ElementAccessor) Items(obj any) []any { return e.getAll(obj) }

// SetItems assigns the items of a collection field.
func (e *ElementAccessor) SetItems(obj any, items []any) { e.setAll(obj, items) }

func isNil(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func:
		return rv.IsNil()
	}

	return false
}
