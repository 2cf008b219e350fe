package analyze

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixturesPkg = "markup-binder/internal/fixtures"

func TestAnalyzer_LoadPackages(t *testing.T) {
	analyzer := NewAnalyzer("")
	result, err := analyzer.LoadPackages(fixturesPkg)
	require.NoError(t, err)
	require.NotNil(t, result)

	require.Contains(t, result.Packages, fixturesPkg)

	pkg := result.Packages[fixturesPkg]
	assert.Equal(t, "fixtures", pkg.Name)
	assert.NotEmpty(t, pkg.Dir)

	var names []string
	for _, id := range pkg.Types {
		names = append(names, id.Name)
	}

	assert.Equal(t, []string{"Book", "Chapter", "Excerpt", "Extended", "Item", "Library", "Marker", "Wrapper"}, names)
	assert.NotContains(t, result.Types, TypeID{PkgPath: fixturesPkg, Name: "Unbound"})
	assert.NotContains(t, result.Types, TypeID{PkgPath: fixturesPkg, Name: "Node"}, "interfaces are not bindable")
	assert.Same(t, analyzer.Result(), result)
}

func TestAnalyzer_Promoted(t *testing.T) {
	result, err := NewAnalyzer("").LoadPackages(fixturesPkg)
	require.NoError(t, err)

	excerpt := result.GetType(TypeID{PkgPath: fixturesPkg, Name: "Excerpt"})
	require.NotNil(t, excerpt)
	assert.True(t, excerpt.Promoted())
	assert.Equal(t, TypeID{PkgPath: fixturesPkg, Name: "Chapter"}, excerpt.PromotedFrom)

	marker := result.GetType(TypeID{PkgPath: fixturesPkg, Name: "Marker"})
	require.NotNil(t, marker)
	assert.False(t, marker.Promoted(), "Marker declares its own BindingSpec")
}

func TestAnalyzer_Fields(t *testing.T) {
	result, err := NewAnalyzer("").LoadPackages(fixturesPkg)
	require.NoError(t, err)

	wrapper := result.GetType(TypeID{PkgPath: fixturesPkg, Name: "Wrapper"})
	require.NotNil(t, wrapper)
	assert.True(t, wrapper.Exported)
	assert.Contains(t, wrapper.Pos, "fixtures.go:")
	assert.Equal(t, []FieldInfo{
		{Name: "Factor", Type: "float64"},
		{Name: "Field", Type: "Node"},
		{Name: "Array", Type: "[]Node"},
	}, wrapper.Fields)

	extended := result.GetType(TypeID{PkgPath: fixturesPkg, Name: "Extended"})
	require.NotNil(t, extended)
	assert.Equal(t, FieldInfo{Name: "Wrapper", Type: "Wrapper", Embedded: true}, extended.Fields[0])
}

func TestResult_Sorted(t *testing.T) {
	r := NewResult()
	r.Types[TypeID{PkgPath: "b", Name: "A"}] = &BindableType{ID: TypeID{PkgPath: "b", Name: "A"}}
	r.Types[TypeID{PkgPath: "a", Name: "Z"}] = &BindableType{ID: TypeID{PkgPath: "a", Name: "Z"}}
	r.Types[TypeID{PkgPath: "a", Name: "B"}] = &BindableType{ID: TypeID{PkgPath: "a", Name: "B"}}

	var got []string
	for _, t := range r.Sorted() {
		got = append(got, t.ID.String())
	}

	assert.Equal(t, []string{"a.B", "a.Z", "b.A"}, got)
	assert.Equal(t, "Name", TypeID{Name: "Name"}.String())
}
