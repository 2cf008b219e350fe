package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixturesPkg = "markup-binder/internal/fixtures"

func run(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()

	var out, errOut bytes.Buffer
	code = runWithArgs(args, &out, &errOut)

	return code, out.String(), errOut.String()
}

func TestRun_Usage(t *testing.T) {
	code, _, stderr := run(t)
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, stderr, "Usage: markup-binder <command>")

	code, _, stderr = run(t, "frobnicate")
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, stderr, `unknown command "frobnicate"`)

	code, _, stderr = run(t, "gen")
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, stderr, "exactly one package pattern is required")

	code, _, _ = run(t, "scan", "-nope")
	assert.Equal(t, exitUsage, code)
}

func TestRun_Scan(t *testing.T) {
	code, stdout, stderr := run(t, "scan", "-fields", fixturesPkg)
	require.Equal(t, exitOK, code, stderr)

	assert.Contains(t, stdout, fixturesPkg+".Wrapper\tfixtures.go:")
	assert.Contains(t, stdout, "\tArray []Node\n")
	assert.Contains(t, stdout, "warning: BindingSpec promoted from "+fixturesPkg+".Chapter")
	assert.NotContains(t, stdout, "Unbound")
}

func TestRun_Gen(t *testing.T) {
	out := filepath.Join(t.TempDir(), "gen", "zz_binding_types.go")

	code, stdout, stderr := run(t, "gen", "-o", out, fixturesPkg)
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stdout, "wrote "+out)
	assert.Contains(t, stderr, "warning: skipped Excerpt")

	got, err := os.ReadFile(out)
	require.NoError(t, err)

	want, err := os.ReadFile(filepath.Join("..", "..", "internal", "fixtures", "zz_binding_types.go"))
	require.NoError(t, err)
	assert.Equal(t, string(want), string(got))

	code, stdout, stderr = run(t, "gen", "-o", out, fixturesPkg)
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stdout, out+" is up to date")
}

func TestRun_Check(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.yaml")
	require.NoError(t, os.WriteFile(good, []byte("lenient: true\ncoercions: [hex_number]\n"), 0o644))

	code, stdout, stderr := run(t, "check", "-config", good)
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stdout, "lenient: true")
	assert.Contains(t, stdout, "log_format: text")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("strict: true\n"), 0o644))

	code, _, stderr = run(t, "check", "-config", bad)
	assert.Equal(t, exitError, code)
	assert.Contains(t, stderr, "failed to parse options YAML")

	code, _, stderr = run(t, "check")
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, stderr, "-config is required")
}
