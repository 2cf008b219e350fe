package diagnostic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnostics(t *testing.T) {
	var d Diagnostics

	assert.False(t, d.HasErrors())
	assert.NoError(t, d.Error())

	d.Suggest("ignored without errors")
	d.AddWarning(CodeDuplicateSubtype, "pkg.Shape", "", "subtype %s listed twice", "pkg.Circle")
	d.AddError(CodeMissingGetter, "pkg.Shape", "side", "attribute setter has no matching getter")
	d.Suggest("add binding.AttrGetter")

	require.True(t, d.HasErrors())
	assert.True(t, d.HasCode(CodeMissingGetter))
	assert.False(t, d.HasCode(CodeDuplicateSubtype), "warnings do not count")
	assert.Equal(t,
		"[pkg.Shape] side: [missing_getter] attribute setter has no matching getter (try: add binding.AttrGetter)",
		d.Error().Error())

	var other Diagnostics
	other.AddError(CodeTagConflict, "pkg.Canvas", "main", "tag clash")
	d.Merge(other)

	assert.Len(t, d.Errors, 2)
	assert.Len(t, d.Warnings, 1)
	assert.Contains(t, d.Error().Error(), "; [pkg.Canvas] main: [tag_conflict] tag clash")
	assert.Equal(t, SeverityWarning, d.Warnings[0].Severity)
	assert.Equal(t, "warning", d.Warnings[0].Severity.String())
	assert.Equal(t, "unknown", Severity(7).String())
}
