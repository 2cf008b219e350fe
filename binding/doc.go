// Package binding compiles declarative markup metadata into immutable binding
// descriptors and keeps them in a Registry.
//
// A type opts in by implementing Bindable on its pointer receiver:
//
//	func (*Wrapper) BindingSpec() binding.Spec {
//		return binding.Spec{
//			Tag:  "test",
//			Root: true,
//			Members: []binding.Member{
//				binding.Attr("factor", (*Wrapper).Factor, (*Wrapper).SetFactor),
//				binding.Element("field", (*Wrapper).Field, (*Wrapper).SetField),
//				binding.Collection("array", (*Wrapper).Items, (*Wrapper).SetItems),
//			},
//			Subtypes: []reflect.Type{reflect.TypeFor[Extended]()},
//		}
//	}
//
// Compilation happens once per type. Every element accessor gets a resolution
// table mapping tags to the concrete descriptors admissible for that field: the
// declared base type and all of its transitive subtypes. Two admissible types
// sharing a tag within one table is a compile error; reusing a tag across
// different fields is fine.
//
// Types with DirectItem set may additionally appear as bare children of any
// object holding a collection of them, without the collection's wrapping tag.
package binding
