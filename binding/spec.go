package binding

import "reflect"

// Bindable is implemented by types carrying their own markup metadata.
// BindingSpec is called on a freshly allocated zero value.
type Bindable interface {
	BindingSpec() Spec
}

// Spec is the declarative metadata of one type.
type Spec struct {
	// Tag is the element name the type is read and written as.
	Tag string
	// Root allows the type as the document element. Types extending a root type are root types too.
	Root bool
	// DirectItem lets the type appear as a bare child of an object owning a
	// collection of it, without the collection's wrapping tag.
	DirectItem bool
	// Extends declares the embedded supertype whose members are inherited.
	Extends *Extension
	// Members lists attribute and element accessors.
	Members []Member
	// Subtypes lists the types that may stand in wherever this type is expected.
	Subtypes []reflect.Type
}

//go:generate go tool stringer -type=MemberKind -trimprefix=Member -output=member_kind_string.go

// MemberKind is the shape of a member accessor.
type MemberKind int

const (
	_ MemberKind = iota

	MemberAttribute
	MemberElement
	MemberCollection
)

// Member is one half (getter or setter) or both halves of an accessor.
// Build members with Attr, Element, Collection and their getter/setter variants.
type Member struct {
	kind      MemberKind
	name      string
	owner     reflect.Type
	value     reflect.Type
	base      reflect.Type
	omitEmpty bool

	get    func(obj any) any
	set    func(obj any, v any)
	getAll func(obj any) []any
	setAll func(obj any, items []any)
}

// Kind returns the accessor shape.
func (m Member) Kind() MemberKind { return m.kind }

// Name returns the attribute name or element tag.
func (m Member) Name() string { return m.name }

// ValueType returns the Go type of the value, or of one item for collections.
func (m Member) ValueType() reflect.Type { return m.value }

func (m Member) hasGetter() bool { return m.get != nil || m.getAll != nil }

func (m Member) hasSetter() bool { return m.set != nil || m.setAll != nil }

// key separates the attribute namespace from the element namespace.
func (m Member) key() string {
	if m.kind == MemberAttribute {
		return "@" + m.name
	}

	return m.name
}

// MemberOption tunes a member.
type MemberOption func(*Member)

// OmitEmpty skips an attribute whose value is the zero value when composing.
func OmitEmpty() MemberOption {
	return func(m *Member) { m.omitEmpty = true }
}

// Base names the declared bound type of an element or collection whose Go value
// type is an interface. The base type and its subtypes form the field's admissible set.
func Base[B any]() MemberOption {
	return func(m *Member) { m.base = reflect.TypeFor[B]() }
}

func newMember[T, V any](kind MemberKind, name string, opts []MemberOption) Member {
	m := Member{
		kind:  kind,
		name:  name,
		owner: reflect.TypeFor[T](),
		value: reflect.TypeFor[V](),
	}

	for _, opt := range opts {
		opt(&m)
	}

	return m
}

// Attr declares an attribute with both accessors.
func Attr[T, V any](name string, get func(*T) V, set func(*T, V), opts ...MemberOption) Member {
	m := AttrGetter(name, get, opts...)
	m.set = AttrSetter(name, set).set

	return m
}

// AttrGetter declares the reading half of an attribute.
func AttrGetter[T, V any](name string, get func(*T) V, opts ...MemberOption) Member {
	m := newMember[T, V](MemberAttribute, name, opts)
	if get != nil {
		m.get = func(obj any) any { return get(obj.(*T)) }
	}

	return m
}

// AttrSetter declares the writing half of an attribute.
func AttrSetter[T, V any](name string, set func(*T, V), opts ...MemberOption) Member {
	m := newMember[T, V](MemberAttribute, name, opts)
	if set != nil {
		m.set = func(obj any, v any) { set(obj.(*T), v.(V)) }
	}

	return m
}

// Element declares a single child element with both accessors.
func Element[T, V any](tag string, get func(*T) V, set func(*T, V), opts ...MemberOption) Member {
	m := ElementGetter(tag, get, opts...)
	m.set = ElementSetter(tag, set).set

	return m
}

// ElementGetter declares the reading half of a single child element.
func ElementGetter[T, V any](tag string, get func(*T) V, opts ...MemberOption) Member {
	m := newMember[T, V](MemberElement, tag, opts)
	if get != nil {
		m.get = func(obj any) any { return get(obj.(*T)) }
	}

	return m
}

// ElementSetter declares the writing half of a single child element.
func ElementSetter[T, V any](tag string, set func(*T, V), opts ...MemberOption) Member {
	m := newMember[T, V](MemberElement, tag, opts)
	if set != nil {
		m.set = func(obj any, v any) { set(obj.(*T), v.(V)) }
	}

	return m
}

// Collection declares a sequence of child elements with both accessors.
func Collection[T, E any](tag string, get func(*T) []E, set func(*T, []E), opts ...MemberOption) Member {
	m := CollectionGetter(tag, get, opts...)
	m.setAll = CollectionSetter(tag, set).setAll

	return m
}

// CollectionGetter declares the reading half of a collection.
func CollectionGetter[T, E any](tag string, get func(*T) []E, opts ...MemberOption) Member {
	m := newMember[T, E](MemberCollection, tag, opts)
	if get != nil {
		m.getAll = func(obj any) []any {
			items := get(obj.(*T))
			if len(items) == 0 {
				return nil
			}

			out := make([]any, len(items))
			for i, item := range items {
				out[i] = item
			}

			return out
		}
	}

	return m
}

// CollectionSetter declares the writing half of a collection.
func CollectionSetter[T, E any](tag string, set func(*T, []E), opts ...MemberOption) Member {
	m := newMember[T, E](MemberCollection, tag, opts)
	if set != nil {
		m.setAll = func(obj any, items []any) {
			out := make([]E, len(items))
			for i, item := range items {
				out[i] = item.(E)
			}

			set(obj.(*T), out)
		}
	}

	return m
}

// Extension records that S embeds T and inherits T's members.
type Extension struct {
	child  reflect.Type
	parent reflect.Type
	up     func(obj any) any
}

// Parent returns the extended type.
func (e *Extension) Parent() reflect.Type { return e.parent }

// Extends declares that S extends T; up returns the embedded T of an S.
func Extends[S, T any](up func(*S) *T) *Extension {
	return &Extension{
		child:  reflect.TypeFor[S](),
		parent: reflect.TypeFor[T](),
		up:     func(obj any) any { return up(obj.(*S)) },
	}
}

// inherit adapts a parent member to the child through the upcast.
func (e *Extension) inherit(m Member) Member {
	up := e.up
	out := m
	out.owner = e.child

	if m.get != nil {
		get := m.get
		out.get = func(obj any) any { return get(up(obj)) }
	}

	if m.set != nil {
		set := m.set
		out.set = func(obj any, v any) { set(up(obj), v) }
	}

	if m.getAll != nil {
		getAll := m.getAll
		out.getAll = func(obj any) []any { return getAll(up(obj)) }
	}

	if m.setAll != nil {
		setAll := m.setAll
		out.setAll = func(obj any, items []any) { setAll(up(obj), items) }
	}

	return out
}
