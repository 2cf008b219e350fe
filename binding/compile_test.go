package binding_test

import (
	"reflect"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"markup-binder/binding"
	"markup-binder/internal/diagnostic"
	"markup-binder/internal/fixtures"
)

type drawable interface {
	area() float64
}

type shape struct {
	Side float64
}

func (s *shape) area() float64 { return s.Side }

type circle struct{ shape }

type disk struct{ shape }

type ring struct{ circle }

// blob points at a shape without embedding it, so *blob is not drawable.
type blob struct{ inner shape }

type canvas struct {
	Main drawable
}

type pair struct {
	Left  *circle
	Right *disk
}

type entry struct{}

type ledger struct {
	A []*entry
	B []*entry
}

type index struct {
	Entry   *entry
	Entries []*entry
}

type lonely struct {
	V int
	M map[string]int
}

var (
	shapeType  = reflect.TypeFor[shape]()
	circleType = reflect.TypeFor[circle]()
	diskType   = reflect.TypeFor[disk]()
	ringType   = reflect.TypeFor[ring]()
	blobType   = reflect.TypeFor[blob]()
	canvasType = reflect.TypeFor[canvas]()
	pairType   = reflect.TypeFor[pair]()
	entryType  = reflect.TypeFor[entry]()
	ledgerType = reflect.TypeFor[ledger]()
	indexType  = reflect.TypeFor[index]()
	lonelyType = reflect.TypeFor[lonely]()
)

func circleSpec(tag string) binding.Spec {
	return binding.Spec{
		Tag:     tag,
		Extends: binding.Extends[circle, shape](func(c *circle) *shape { return &c.shape }),
	}
}

func diskSpec(tag string) binding.Spec {
	return binding.Spec{
		Tag:     tag,
		Extends: binding.Extends[disk, shape](func(d *disk) *shape { return &d.shape }),
	}
}

func canvasSpec() binding.Spec {
	return binding.Spec{
		Tag:  "canvas",
		Root: true,
		Members: []binding.Member{
			binding.Element("main",
				func(c *canvas) drawable { return c.Main },
				func(c *canvas, v drawable) { c.Main = v },
				binding.Base[shape]()),
		},
	}
}

type definition struct {
	rtype reflect.Type
	spec  binding.Spec
}

func newRegistry(t *testing.T, defs ...definition) *binding.Registry {
	t.Helper()

	reg := binding.NewRegistry()
	for _, d := range defs {
		require.NoError(t, reg.Define(d.rtype, d.spec))
	}

	return reg
}

func requireCode(t *testing.T, err error, code diagnostic.Code) *binding.CompilationError {
	t.Helper()

	var cerr *binding.CompilationError
	require.ErrorAs(t, err, &cerr)
	require.True(t, cerr.Has(code), "want %s, got %s", code, spew.Sdump(cerr.Diagnostics.Errors))

	return cerr
}

func TestCompile_Wrapper(t *testing.T) {
	reg := binding.NewRegistry()

	d, err := reg.Compile(reflect.TypeFor[fixtures.Wrapper]())
	require.NoError(t, err)

	assert.Equal(t, "test", d.Tag())
	assert.True(t, d.IsRoot())
	assert.False(t, d.IsDirectItem())
	assert.Equal(t, []string{"factor"}, d.AttributeNames())
	assert.ElementsMatch(t, []string{"field", "array", "item", "marker"}, d.ChildTags())

	field, ok := d.Element("field")
	require.True(t, ok)
	assert.False(t, field.IsCollection())
	assert.Equal(t, []string{"item", "marker"}, field.Tags())

	array, ok := d.Element("array")
	require.True(t, ok)
	assert.True(t, array.IsCollection())
	assert.Equal(t, "item", array.Base().Tag())

	di, ok := d.DirectItem("marker")
	require.True(t, ok)
	assert.Same(t, array, di.Element)
	assert.Equal(t, "marker", di.Descriptor.Tag())

	require.Len(t, d.Subtypes(), 1)

	ext := d.Subtypes()[0]
	assert.Equal(t, "test2", ext.Tag())
	assert.True(t, ext.IsRoot(), "root eligibility is inherited")
	assert.Same(t, d, ext.Super())
	assert.True(t, ext.Extends(d))
	assert.False(t, d.Extends(ext))
	assert.Equal(t, []string{"factor", "b2"}, ext.AttributeNames())

	_, ok = ext.DirectItem("item")
	assert.True(t, ok, "direct items are resolved through inherited collections")
}

func TestCompile_Accessors(t *testing.T) {
	reg := binding.NewRegistry()

	d, err := reg.Compile(reflect.TypeFor[fixtures.Extended]())
	require.NoError(t, err)

	obj := d.New().(*fixtures.Extended)

	b2, ok := d.Attribute("b2")
	require.True(t, ok)
	require.NoError(t, b2.Set(obj, "1.25", 0))

	factor, ok := d.Attribute("factor")
	require.True(t, ok)
	require.NoError(t, factor.Set(obj, "3", 0))

	assert.InDelta(t, 1.25, obj.B2, 1e-12)
	assert.InDelta(t, 3.0, obj.Factor, 1e-12)

	text, ok, err := factor.Get(obj)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "3", text)

	array, _ := d.Element("array")
	array.SetItems(obj, []any{&fixtures.Item{Label: "a"}})
	assert.Equal(t, []any{&fixtures.Item{Label: "a"}}, array.Items(obj))

	field, _ := d.Element("field")
	assert.Nil(t, field.Get(obj))
	field.Set(obj, &fixtures.Marker{Weight: 1})
	assert.Equal(t, &fixtures.Marker{Weight: 1}, obj.Field)
}

func TestCompile_Idempotent(t *testing.T) {
	reg := binding.NewRegistry()

	first, err := reg.Compile(reflect.TypeFor[fixtures.Wrapper]())
	require.NoError(t, err)
	assert.Equal(t, 4, reg.Len())

	second, err := reg.Compile(reflect.TypeFor[*fixtures.Wrapper]())
	require.NoError(t, err)
	assert.Same(t, first, second)

	require.NoError(t, reg.Register(reflect.TypeFor[fixtures.Extended](), reflect.TypeFor[fixtures.Item]()))
	assert.Equal(t, 4, reg.Len())

	ext, ok := reg.LookupByType(reflect.TypeFor[fixtures.Extended]())
	require.True(t, ok)
	assert.Same(t, first.Subtypes()[0], ext)
}

func TestCompile_TagConflict(t *testing.T) {
	defs := []definition{
		{shapeType, binding.Spec{Tag: "shape", Subtypes: []reflect.Type{circleType, diskType}}},
		{circleType, circleSpec("circle")},
		{diskType, diskSpec("circle")},
		{canvasType, canvasSpec()},
	}

	t.Run("within one field", func(t *testing.T) {
		reg := newRegistry(t, defs...)

		err := reg.Register(canvasType)
		cerr := requireCode(t, err, diagnostic.CodeTagConflict)
		assert.Equal(t, "canvas", cerr.Type.Name)
		assert.Contains(t, err.Error(), `main: types `)
		assert.Zero(t, reg.Len())
	})

	t.Run("no field context", func(t *testing.T) {
		reg := newRegistry(t, defs...)

		require.NoError(t, reg.Register(shapeType))
		assert.Equal(t, 3, reg.Len())
	})

	t.Run("through a subtype of a subtype", func(t *testing.T) {
		reg := newRegistry(t,
			definition{shapeType, binding.Spec{Tag: "shape", Subtypes: []reflect.Type{circleType}}},
			definition{circleType, binding.Spec{
				Tag:      "circle",
				Extends:  binding.Extends[circle, shape](func(c *circle) *shape { return &c.shape }),
				Subtypes: []reflect.Type{ringType},
			}},
			definition{ringType, binding.Spec{
				Tag:     "shape",
				Extends: binding.Extends[ring, circle](func(r *ring) *circle { return &r.circle }),
			}},
			definition{canvasType, canvasSpec()},
		)

		requireCode(t, reg.Register(canvasType), diagnostic.CodeTagConflict)
	})

	t.Run("across fields", func(t *testing.T) {
		reg := newRegistry(t,
			definition{shapeType, binding.Spec{Tag: "shape"}},
			definition{circleType, circleSpec("circle")},
			definition{diskType, diskSpec("circle")},
			definition{pairType, binding.Spec{
				Tag: "pair",
				Members: []binding.Member{
					binding.Element("left",
						func(p *pair) *circle { return p.Left },
						func(p *pair, v *circle) { p.Left = v }),
					binding.Element("right",
						func(p *pair) *disk { return p.Right },
						func(p *pair, v *disk) { p.Right = v }),
				},
			}},
		)

		require.NoError(t, reg.Register(pairType))

		d, _ := reg.LookupByType(pairType)
		left, _ := d.Element("left")
		right, _ := d.Element("right")

		l, _ := left.Resolve("circle")
		r, _ := right.Resolve("circle")
		assert.Equal(t, circleType, l.Type())
		assert.Equal(t, diskType, r.Type())
	})
}

func TestCompile_DirectItemConflict(t *testing.T) {
	entrySpec := binding.Spec{Tag: "entry", DirectItem: true}

	t.Run("two collections", func(t *testing.T) {
		reg := newRegistry(t,
			definition{entryType, entrySpec},
			definition{ledgerType, binding.Spec{
				Tag: "ledger",
				Members: []binding.Member{
					binding.Collection("a",
						func(l *ledger) []*entry { return l.A },
						func(l *ledger, v []*entry) { l.A = v }),
					binding.Collection("b",
						func(l *ledger) []*entry { return l.B },
						func(l *ledger, v []*entry) { l.B = v }),
				},
			}},
		)

		requireCode(t, reg.Register(ledgerType), diagnostic.CodeDirectItemConflict)
	})

	t.Run("element with the same tag", func(t *testing.T) {
		reg := newRegistry(t,
			definition{entryType, entrySpec},
			definition{indexType, binding.Spec{
				Tag: "index",
				Members: []binding.Member{
					binding.Element("entry",
						func(i *index) *entry { return i.Entry },
						func(i *index, v *entry) { i.Entry = v }),
					binding.Collection("entries",
						func(i *index) []*entry { return i.Entries },
						func(i *index, v []*entry) { i.Entries = v }),
				},
			}},
		)

		requireCode(t, reg.Register(indexType), diagnostic.CodeDirectItemConflict)
	})
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name  string
		defs  []definition
		rtype reflect.Type
		code  diagnostic.Code
	}{
		{
			name:  "not bindable",
			rtype: reflect.TypeFor[fixtures.Unbound](),
			code:  diagnostic.CodeNotBindable,
		},
		{
			name:  "not a struct",
			rtype: reflect.TypeFor[int](),
			code:  diagnostic.CodeNotStruct,
		},
		{
			name:  "reserved tag",
			defs:  []definition{{lonelyType, binding.Spec{Tag: "xml-lonely"}}},
			rtype: lonelyType,
			code:  diagnostic.CodeInvalidTag,
		},
		{
			name:  "invalid tag",
			defs:  []definition{{lonelyType, binding.Spec{Tag: "1st"}}},
			rtype: lonelyType,
			code:  diagnostic.CodeInvalidTag,
		},
		{
			name: "missing getter",
			defs: []definition{{lonelyType, binding.Spec{
				Tag:     "lonely",
				Members: []binding.Member{binding.AttrSetter("v", func(l *lonely, v int) { l.V = v })},
			}}},
			rtype: lonelyType,
			code:  diagnostic.CodeMissingGetter,
		},
		{
			name: "missing setter",
			defs: []definition{{lonelyType, binding.Spec{
				Tag:     "lonely",
				Members: []binding.Member{binding.AttrGetter("v", func(l *lonely) int { return l.V })},
			}}},
			rtype: lonelyType,
			code:  diagnostic.CodeMissingSetter,
		},
		{
			name: "getter and setter disagree",
			defs: []definition{{lonelyType, binding.Spec{
				Tag: "lonely",
				Members: []binding.Member{
					binding.AttrGetter("v", func(l *lonely) int { return l.V }),
					binding.AttrSetter("v", func(_ *lonely, _ string) {}),
				},
			}}},
			rtype: lonelyType,
			code:  diagnostic.CodeTypeMismatch,
		},
		{
			name: "duplicate getter",
			defs: []definition{{lonelyType, binding.Spec{
				Tag: "lonely",
				Members: []binding.Member{
					binding.Attr("v", func(l *lonely) int { return l.V }, func(l *lonely, v int) { l.V = v }),
					binding.AttrGetter("v", func(l *lonely) int { return l.V }),
				},
			}}},
			rtype: lonelyType,
			code:  diagnostic.CodeDuplicateAccessor,
		},
		{
			name: "unsupported attribute type",
			defs: []definition{{lonelyType, binding.Spec{
				Tag: "lonely",
				Members: []binding.Member{
					binding.Attr("m",
						func(l *lonely) map[string]int { return l.M },
						func(l *lonely, v map[string]int) { l.M = v }),
				},
			}}},
			rtype: lonelyType,
			code:  diagnostic.CodeUnsupportedAttr,
		},
		{
			name: "accessor of another type",
			defs: []definition{{lonelyType, binding.Spec{
				Tag:     "lonely",
				Members: []binding.Member{binding.Attr("side", func(s *shape) float64 { return s.Side }, func(s *shape, v float64) { s.Side = v })},
			}}},
			rtype: lonelyType,
			code:  diagnostic.CodeOwnerMismatch,
		},
		{
			name: "interface field without base",
			defs: []definition{{canvasType, binding.Spec{
				Tag: "canvas",
				Members: []binding.Member{
					binding.Element("main",
						func(c *canvas) drawable { return c.Main },
						func(c *canvas, v drawable) { c.Main = v }),
				},
			}}},
			rtype: canvasType,
			code:  diagnostic.CodeMissingBase,
		},
		{
			name: "base not assignable",
			defs: []definition{
				{blobType, binding.Spec{Tag: "blob"}},
				{canvasType, binding.Spec{
					Tag: "canvas",
					Members: []binding.Member{
						binding.Element("main",
							func(c *canvas) drawable { return c.Main },
							func(c *canvas, v drawable) { c.Main = v },
							binding.Base[blob]()),
					},
				}},
			},
			rtype: canvasType,
			code:  diagnostic.CodeBaseNotAssignable,
		},
		{
			name: "subtype does not extend",
			defs: []definition{
				{shapeType, binding.Spec{Tag: "shape", Subtypes: []reflect.Type{lonelyType}}},
				{lonelyType, binding.Spec{Tag: "lonely"}},
			},
			rtype: shapeType,
			code:  diagnostic.CodeSubtypeNotExtends,
		},
		{
			name: "subtype not assignable to field",
			defs: []definition{
				{shapeType, binding.Spec{Tag: "shape", Subtypes: []reflect.Type{blobType}}},
				{blobType, binding.Spec{
					Tag:     "blob",
					Extends: binding.Extends[blob, shape](func(b *blob) *shape { return &b.inner }),
				}},
				{canvasType, canvasSpec()},
			},
			rtype: canvasType,
			code:  diagnostic.CodeSubtypeNotAssign,
		},
		{
			name: "extension declared for another type",
			defs: []definition{
				{shapeType, binding.Spec{Tag: "shape"}},
				{circleType, diskSpec("circle")},
			},
			rtype: circleType,
			code:  diagnostic.CodeInvalidExtends,
		},
		{
			name: "cyclic extension",
			defs: []definition{
				{circleType, binding.Spec{
					Tag:     "circle",
					Extends: binding.Extends[circle, ring](func(*circle) *ring { return nil }),
				}},
				{ringType, binding.Spec{
					Tag:     "ring",
					Extends: binding.Extends[ring, circle](func(r *ring) *circle { return &r.circle }),
				}},
			},
			rtype: circleType,
			code:  diagnostic.CodeInvalidExtends,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := newRegistry(t, tt.defs...)

			err := reg.Register(tt.rtype)
			cerr := requireCode(t, err, tt.code)
			assert.Contains(t, err.Error(), " for type ")
			assert.NotEmpty(t, cerr.Type.Name)
			assert.Zero(t, reg.Len(), "failed batches leave the registry untouched")
		})
	}
}

func TestCompile_ErrorMessage(t *testing.T) {
	reg := newRegistry(t, definition{lonelyType, binding.Spec{
		Tag:     "lonely",
		Members: []binding.Member{binding.AttrSetter("v", func(l *lonely, v int) { l.V = v })},
	}})

	err := reg.Register(lonelyType)
	require.Error(t, err)
	assert.Equal(t, "v: attribute setter has no matching getter for type markup-binder/binding_test.lonely", err.Error())
}

type base struct {
	ID   string
	Name string
}

type derived struct {
	base

	Alias string
}

func TestCompile_Shadowing(t *testing.T) {
	reg := newRegistry(t,
		definition{reflect.TypeFor[base](), binding.Spec{
			Tag: "base",
			Members: []binding.Member{
				binding.Attr("name", func(b *base) string { return b.Name }, func(b *base, v string) { b.Name = v }),
				binding.Attr("id", func(b *base) string { return b.ID }, func(b *base, v string) { b.ID = v }),
			},
		}},
		definition{reflect.TypeFor[derived](), binding.Spec{
			Tag:     "derived",
			Extends: binding.Extends[derived, base](func(d *derived) *base { return &d.base }),
			Members: []binding.Member{
				binding.Attr("name", func(d *derived) string { return d.Alias }, func(d *derived, v string) { d.Alias = v }),
			},
		}},
	)

	d, err := reg.Compile(reflect.TypeFor[derived]())
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name"}, d.AttributeNames())

	obj := d.New().(*derived)
	name, _ := d.Attribute("name")
	require.NoError(t, name.Set(obj, "x", 0))
	assert.Equal(t, "x", obj.Alias)
	assert.Empty(t, obj.Name)
}
