// Package gen generates registration files for bindable types.
//
// A registration file lists every type of a package that declares its own
// BindingSpec, so callers can register the whole package at once:
//
//	ctx, err := markup.NewContext(opts, model.BindingTypes()...)
//
// Generation uses text/template + go/format. Types whose BindingSpec is
// promoted from an embedded field are skipped, as the registry rejects them.
package gen
