package gen

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"markup-binder/internal/analyze"
)

const fixturesPkg = "markup-binder/internal/fixtures"

func syntheticResult(pkgPath, pkgName string, types ...*analyze.BindableType) (*analyze.PackageInfo, *analyze.Result) {
	result := analyze.NewResult()
	pkg := &analyze.PackageInfo{Path: pkgPath, Name: pkgName}

	for _, t := range types {
		t.ID.PkgPath = pkgPath
		result.Types[t.ID] = t
		pkg.Types = append(pkg.Types, t.ID)
	}

	result.Packages[pkgPath] = pkg

	return pkg, result
}

func TestGenerator_Generate_Fixtures(t *testing.T) {
	result, err := analyze.NewAnalyzer("").LoadPackages(fixturesPkg)
	require.NoError(t, err)

	g := NewGenerator(GeneratorConfig{})
	file, err := g.Generate(result.Packages[fixturesPkg], result)
	require.NoError(t, err)
	assert.Equal(t, "zz_binding_types.go", file.Filename)

	checkedIn, err := os.ReadFile(filepath.Join("..", "fixtures", "zz_binding_types.go"))
	require.NoError(t, err)
	assert.Equal(t, string(checkedIn), string(file.Content), "fixtures registration file is stale, run go generate")

	require.Len(t, g.Skipped(), 1)
	assert.Equal(t, "Excerpt", g.Skipped()[0].ID.Name)
}

func TestGenerator_Generate_Synthetic(t *testing.T) {
	pkg, result := syntheticResult("example.com/model", "",
		&analyze.BindableType{ID: analyze.TypeID{Name: "Order"}, Exported: true},
		&analyze.BindableType{ID: analyze.TypeID{Name: "line"}},
		&analyze.BindableType{ID: analyze.TypeID{Name: "Copy"}, PromotedFrom: analyze.TypeID{Name: "Order"}},
	)

	g := NewGenerator(GeneratorConfig{FuncName: "Types", Filename: "types_gen.go"})
	file, err := g.Generate(pkg, result)
	require.NoError(t, err)

	want := `// Code generated by markup-binder. DO NOT EDIT.

package model

import "reflect"

// Types returns the bindable types declared in this package.
func Types() []reflect.Type {
	return []reflect.Type{
		reflect.TypeFor[Order](),
		reflect.TypeFor[line](),
	}
}
`
	assert.Equal(t, "types_gen.go", file.Filename)
	assert.Equal(t, want, string(file.Content))
	require.Len(t, g.Skipped(), 1)
	assert.Equal(t, "Copy", g.Skipped()[0].ID.Name)

	file, err = NewGenerator(GeneratorConfig{PackageName: "model_test"}).Generate(pkg, result)
	require.NoError(t, err)
	assert.Contains(t, string(file.Content), "package model_test\n")
}

func TestGenerator_Generate_Errors(t *testing.T) {
	t.Run("only promoted", func(t *testing.T) {
		pkg, result := syntheticResult("example.com/model", "model",
			&analyze.BindableType{ID: analyze.TypeID{Name: "Copy"}, PromotedFrom: analyze.TypeID{Name: "Order"}},
		)

		_, err := NewGenerator(DefaultGeneratorConfig()).Generate(pkg, result)
		assert.ErrorContains(t, err, "package example.com/model declares no bindable types")
	})

	t.Run("missing type", func(t *testing.T) {
		pkg, result := syntheticResult("example.com/model", "model")
		pkg.Types = append(pkg.Types, analyze.TypeID{PkgPath: "example.com/model", Name: "Ghost"})

		_, err := NewGenerator(DefaultGeneratorConfig()).Generate(pkg, result)
		assert.ErrorContains(t, err, "type example.com/model.Ghost is not in the analysis result")
	})

	t.Run("unformattable", func(t *testing.T) {
		dir := t.TempDir()
		pkg, result := syntheticResult("example.com/model", "model",
			&analyze.BindableType{ID: analyze.TypeID{Name: "not valid"}},
		)

		file, err := NewGenerator(GeneratorConfig{OutputDir: dir}).Generate(pkg, result)
		require.Error(t, err)
		assert.ErrorContains(t, err, "formatting code")
		require.NotNil(t, file)
		assert.Contains(t, string(file.Content), "reflect.TypeFor[not valid]()")

		sidecar, readErr := os.ReadFile(filepath.Join(dir, "zz_binding_types.unformatted.go"))
		require.NoError(t, readErr)
		assert.True(t, bytes.HasPrefix(sidecar, []byte("// zz_binding_types.go: ")), string(sidecar))
		assert.True(t, bytes.HasSuffix(sidecar, file.Content))
	})
}

func TestWriteFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	files := []GeneratedFile{{Filename: "a.go", Content: []byte("package a\n")}}

	written, err := WriteFiles(files, dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.go")}, written)

	got, err := os.ReadFile(filepath.Join(dir, "a.go"))
	require.NoError(t, err)
	assert.Equal(t, "package a\n", string(got))

	written, err = WriteFiles(files, dir)
	require.NoError(t, err)
	assert.Empty(t, written, "unchanged files are not rewritten")

	files[0].Content = []byte("package a\n\nconst X = 1\n")

	written, err = WriteFiles(files, dir)
	require.NoError(t, err)
	assert.Len(t, written, 1)
}
