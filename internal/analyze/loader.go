package analyze

import (
	"fmt"
	"go/types"
	"path/filepath"
	"sort"

	"golang.org/x/tools/go/packages"
)

// LoadMode specifies what information to load from packages.
const LoadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo |
	packages.NeedImports

const (
	// BindingPkgPath is the import path of the package declaring Spec.
	BindingPkgPath = "markup-binder/binding"
	// SpecMethod is the method marking a type as bindable.
	SpecMethod = "BindingSpec"
)

// Analyzer loads Go packages and collects their bindable types.
type Analyzer struct {
	result *Result
	dir    string
}

// NewAnalyzer creates a new Analyzer. Relative patterns are resolved against dir;
// an empty dir means the current directory.
func NewAnalyzer(dir string) *Analyzer {
	return &Analyzer{
		result: NewResult(),
		dir:    dir,
	}
}

// LoadPackages loads the specified packages and collects bindable types.
// Patterns are standard Go package patterns (e.g., "./model", "markup-binder/internal/fixtures").
func (a *Analyzer) LoadPackages(patterns ...string) (*Result, error) {
	cfg := &packages.Config{
		Mode: LoadMode,
		Dir:  a.dir,
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}

	// Check for package errors
	var errs []error
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			errs = append(errs, e)
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("package errors: %v", errs)
	}

	for _, pkg := range pkgs {
		a.processPackage(pkg)
	}

	return a.result, nil
}

// Result returns the types collected so far.
func (a *Analyzer) Result() *Result {
	return a.result
}

// processPackage collects the bindable types of a loaded package.
func (a *Analyzer) processPackage(pkg *packages.Package) {
	pkgInfo := &PackageInfo{
		Path: pkg.PkgPath,
		Name: pkg.Name,
	}

	if len(pkg.GoFiles) > 0 {
		pkgInfo.Dir = filepath.Dir(pkg.GoFiles[0])
	}

	qualifier := types.RelativeTo(pkg.Types)

	scope := pkg.Types.Scope()
	for _, name := range scope.Names() {
		typeName, ok := scope.Lookup(name).(*types.TypeName)
		if !ok || typeName.IsAlias() {
			continue
		}

		named, ok := typeName.Type().(*types.Named)
		if !ok || named.TypeParams().Len() > 0 {
			continue
		}

		st, ok := named.Underlying().(*types.Struct)
		if !ok {
			continue
		}

		promoted, ok := bindingSpec(named)
		if !ok {
			continue
		}

		id := TypeID{PkgPath: pkg.PkgPath, Name: name}
		info := &BindableType{
			ID:           id,
			Pos:          position(pkg, typeName),
			Exported:     typeName.Exported(),
			PromotedFrom: promoted,
			Fields:       structFields(st, qualifier),
		}

		a.result.Types[id] = info
		pkgInfo.Types = append(pkgInfo.Types, id)
	}

	sort.Slice(pkgInfo.Types, func(i, j int) bool {
		return pkgInfo.Types[i].Name < pkgInfo.Types[j].Name
	})

	a.result.Packages[pkg.PkgPath] = pkgInfo
}

// bindingSpec looks BindingSpec() binding.Spec up in the pointer method set of
// named. promoted names the embedded type declaring it when it is not declared
// on named itself.
func bindingSpec(named *types.Named) (promoted TypeID, ok bool) {
	mset := types.NewMethodSet(types.NewPointer(named))

	sel := mset.Lookup(named.Obj().Pkg(), SpecMethod)
	if sel == nil {
		return TypeID{}, false
	}

	fn, isFunc := sel.Obj().(*types.Func)
	if !isFunc || !isSpecSignature(fn.Type().(*types.Signature)) {
		return TypeID{}, false
	}

	if len(sel.Index()) > 1 {
		if recv := receiverNamed(fn); recv != nil {
			promoted = TypeID{PkgPath: pkgPath(recv.Obj()), Name: recv.Obj().Name()}
		}
	}

	return promoted, true
}

func isSpecSignature(sig *types.Signature) bool {
	if sig.Params().Len() != 0 || sig.Results().Len() != 1 {
		return false
	}

	res, ok := sig.Results().At(0).Type().(*types.Named)
	if !ok {
		return false
	}

	obj := res.Obj()

	return obj.Name() == "Spec" && pkgPath(obj) == BindingPkgPath
}

func receiverNamed(fn *types.Func) *types.Named {
	recv := fn.Type().(*types.Signature).Recv()
	if recv == nil {
		return nil
	}

	t := recv.Type()
	if ptr, ok := t.(*types.Pointer); ok {
		t = ptr.Elem()
	}

	named, _ := t.(*types.Named)

	return named
}

func pkgPath(obj types.Object) string {
	if obj.Pkg() == nil {
		return ""
	}

	return obj.Pkg().Path()
}

func position(pkg *packages.Package, obj types.Object) string {
	if pkg.Fset == nil || !obj.Pos().IsValid() {
		return ""
	}

	p := pkg.Fset.Position(obj.Pos())

	return fmt.Sprintf("%s:%d", filepath.Base(p.Filename), p.Line)
}

// structFields lists the fields of st. Unexported fields are listed too, as
// accessors may read them.
func structFields(st *types.Struct, qualifier types.Qualifier) []FieldInfo {
	fields := make([]FieldInfo, 0, st.NumFields())

	for i := range st.NumFields() {
		field := st.Field(i)
		fields = append(fields, FieldInfo{
			Name:     field.Name(),
			Type:     types.TypeString(field.Type(), qualifier),
			Embedded: field.Embedded(),
		})
	}

	return fields
}
