// Package fixtures holds bindable types shared by tests across the module.
package fixtures

//go:generate go run markup-binder/cmd/markup-binder gen -o zz_binding_types.go .

import (
	"reflect"
	"time"

	"markup-binder/binding"
)

// Node is the value type of Wrapper's polymorphic fields.
type Node interface {
	Name() string
}

// Item is the base item type. It may be written as a bare child of Wrapper.
type Item struct {
	Label string
}

func (i *Item) Name() string { return i.Label }

func (*Item) BindingSpec() binding.Spec {
	return binding.Spec{
		Tag:        "item",
		DirectItem: true,
		Members: []binding.Member{
			binding.Attr("label",
				func(i *Item) string { return i.Label },
				func(i *Item, v string) { i.Label = v },
				binding.OmitEmpty()),
		},
		Subtypes: []reflect.Type{reflect.TypeFor[Marker]()},
	}
}

// Marker is an Item with a weight.
type Marker struct {
	Item

	Weight int
}

func (*Marker) BindingSpec() binding.Spec {
	return binding.Spec{
		Tag:        "marker",
		DirectItem: true,
		Extends:    binding.Extends[Marker, Item](func(m *Marker) *Item { return &m.Item }),
		Members: []binding.Member{
			binding.Attr("weight",
				func(m *Marker) int { return m.Weight },
				func(m *Marker, v int) { m.Weight = v }),
		},
	}
}

// Wrapper is a root type with one attribute, one single field and one collection.
type Wrapper struct {
	Factor float64
	Field  Node
	Array  []Node
}

func (*Wrapper) BindingSpec() binding.Spec {
	return binding.Spec{
		Tag:  "test",
		Root: true,
		Members: []binding.Member{
			binding.Attr("factor",
				func(w *Wrapper) float64 { return w.Factor },
				func(w *Wrapper, v float64) { w.Factor = v }),
			binding.Element("field",
				func(w *Wrapper) Node { return w.Field },
				func(w *Wrapper, v Node) { w.Field = v },
				binding.Base[Item]()),
			binding.Collection("array",
				func(w *Wrapper) []Node { return w.Array },
				func(w *Wrapper, v []Node) { w.Array = v },
				binding.Base[Item]()),
		},
		Subtypes: []reflect.Type{reflect.TypeFor[Extended]()},
	}
}

// Extended adds the b2 attribute to Wrapper and is a root type through it.
type Extended struct {
	Wrapper

	B2 float64
}

func (*Extended) BindingSpec() binding.Spec {
	return binding.Spec{
		Tag:     "test2",
		Extends: binding.Extends[Extended, Wrapper](func(e *Extended) *Wrapper { return &e.Wrapper }),
		Members: []binding.Member{
			binding.AttrGetter("b2", func(e *Extended) float64 { return e.B2 }),
			binding.AttrSetter("b2", func(e *Extended, v float64) { e.B2 = v }),
		},
	}
}

// Library exercises wrapped collections and typed single fields.
type Library struct {
	Name     string
	Featured *Book
	Books    []*Book
}

func (*Library) BindingSpec() binding.Spec {
	return binding.Spec{
		Tag:  "library",
		Root: true,
		Members: []binding.Member{
			binding.Attr("name",
				func(l *Library) string { return l.Name },
				func(l *Library, v string) { l.Name = v }),
			binding.Element("featured",
				func(l *Library) *Book { return l.Featured },
				func(l *Library, v *Book) { l.Featured = v }),
			binding.Collection("books",
				func(l *Library) []*Book { return l.Books },
				func(l *Library, v []*Book) { l.Books = v }),
		},
	}
}

// Book is read inside the books wrapper of a Library.
type Book struct {
	Title     string
	Year      int
	Price     float64
	Available bool
	Loan      time.Duration
	Chapters  []*Chapter
}

func (*Book) BindingSpec() binding.Spec {
	return binding.Spec{
		Tag: "book",
		Members: []binding.Member{
			binding.Attr("title",
				func(b *Book) string { return b.Title },
				func(b *Book, v string) { b.Title = v }),
			binding.Attr("year",
				func(b *Book) int { return b.Year },
				func(b *Book, v int) { b.Year = v }),
			binding.Attr("price",
				func(b *Book) float64 { return b.Price },
				func(b *Book, v float64) { b.Price = v },
				binding.OmitEmpty()),
			binding.Attr("available",
				func(b *Book) bool { return b.Available },
				func(b *Book, v bool) { b.Available = v },
				binding.OmitEmpty()),
			binding.Attr("loan",
				func(b *Book) time.Duration { return b.Loan },
				func(b *Book, v time.Duration) { b.Loan = v },
				binding.OmitEmpty()),
			binding.Collection("chapters",
				func(b *Book) []*Chapter { return b.Chapters },
				func(b *Book, v []*Chapter) { b.Chapters = v }),
		},
	}
}

// Chapter may be written as a bare child of a Book.
type Chapter struct {
	Title string
}

func (*Chapter) BindingSpec() binding.Spec {
	return binding.Spec{
		Tag:        "chapter",
		DirectItem: true,
		Members: []binding.Member{
			binding.Attr("title",
				func(c *Chapter) string { return c.Title },
				func(c *Chapter, v string) { c.Title = v }),
		},
	}
}

// Excerpt embeds a Chapter without declaring its own binding, so BindingSpec
// is promoted from Chapter and registering Excerpt fails.
type Excerpt struct {
	Chapter

	Page int
}

// Unbound has no binding metadata.
type Unbound struct {
	Value int
}
