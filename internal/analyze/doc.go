// Package analyze finds bindable types in Go packages without running them.
//
// It uses golang.org/x/tools/go/packages with go/types to inspect the method
// set of every named struct type.
//
// Key types:
//   - TypeID: package import path + type name
//   - BindableType: a struct whose pointer method set has BindingSpec() binding.Spec
//   - Result: bindable types grouped by package
package analyze
