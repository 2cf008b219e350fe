package binding

import "reflect"

// TypeID uniquely identifies a bound type by its package path and name.
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

// IDOf returns the TypeID of rtype, dereferencing pointers.
func IDOf(rtype reflect.Type) TypeID {
	rtype = indirect(rtype)
	if rtype == nil {
		return TypeID{Name: "<nil>"}
	}

	if rtype.Name() == "" {
		return TypeID{Name: rtype.String()}
	}

	return TypeID{PkgPath: rtype.PkgPath(), Name: rtype.Name()}
}

func indirect(rtype reflect.Type) reflect.Type {
	for rtype != nil && rtype.Kind() == reflect.Pointer {
		rtype = rtype.Elem()
	}

	return rtype
}
