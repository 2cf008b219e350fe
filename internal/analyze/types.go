package analyze

import (
	"sort"
)

// TypeID uniquely identifies a type by its package path and name.
type TypeID struct {
	PkgPath string // e.g., "markup-binder/internal/fixtures"
	Name    string // e.g., "Wrapper"
}

// String returns a human-readable representation of the TypeID.
func (t TypeID) String() string {
	if t.PkgPath == "" {
		return t.Name
	}

	return t.PkgPath + "." + t.Name
}

// BindableType is a named struct whose pointer method set carries BindingSpec.
type BindableType struct {
	ID       TypeID
	Pos      string // file:line of the type declaration
	Exported bool
	// PromotedFrom is set when BindingSpec is not declared on the type itself
	// but promoted from an embedded field. Registering such a type fails, as
	// the promoted spec describes the embedded type.
	PromotedFrom TypeID
	Fields       []FieldInfo
}

// Promoted reports whether BindingSpec comes from an embedded field.
func (b *BindableType) Promoted() bool {
	return b.PromotedFrom.Name != ""
}

// FieldInfo describes a struct field.
type FieldInfo struct {
	Name     string // Go field name
	Type     string // Type as written relative to the declaring package
	Embedded bool   // Whether the field is embedded (anonymous)
}

// PackageInfo holds information about a loaded package.
type PackageInfo struct {
	Path  string   // Import path
	Name  string   // Package name
	Dir   string   // Directory of the package sources
	Types []TypeID // Bindable types defined in this package, sorted by name
}

// Result holds the bindable types of all loaded packages.
type Result struct {
	// Types maps TypeID to BindableType for all bindable types.
	Types map[TypeID]*BindableType
	// Packages maps package paths to their package info.
	Packages map[string]*PackageInfo
}

// NewResult creates a new empty Result.
func NewResult() *Result {
	return &Result{
		Types:    make(map[TypeID]*BindableType),
		Packages: make(map[string]*PackageInfo),
	}
}

// GetType returns the BindableType for a given TypeID, or nil if not found.
func (r *Result) GetType(id TypeID) *BindableType {
	return r.Types[id]
}

// Sorted returns all bindable types ordered by package path, then name.
func (r *Result) Sorted() []*BindableType {
	out := make([]*BindableType, 0, len(r.Types))
	for _, t := range r.Types {
		out = append(out, t)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].ID.String() < out[j].ID.String()
	})

	return out
}
