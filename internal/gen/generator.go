package gen

import (
	"bytes"
	"fmt"
	"go/format"
	"text/template"

	"markup-binder/internal/analyze"
	"markup-binder/internal/common"
)

// GeneratorConfig holds configuration for code generation.
type GeneratorConfig struct {
	// PackageName overrides the package clause of the generated file.
	// Defaults to the name of the analyzed package.
	PackageName string
	// Filename is the name of the generated file.
	Filename string
	// FuncName is the name of the generated function.
	FuncName string
	// OutputDir receives an unformatted sidecar file when formatting fails.
	OutputDir string
}

// DefaultGeneratorConfig returns the default generator configuration.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Filename: "zz_binding_types.go",
		FuncName: "BindingTypes",
	}
}

// GeneratedFile represents a generated Go source file.
type GeneratedFile struct {
	// Filename is the name of the file (e.g., "zz_binding_types.go").
	Filename string
	// Content is the formatted Go source code.
	Content []byte
}

// Generator generates registration files from analyzed packages.
type Generator struct {
	config  GeneratorConfig
	skipped []*analyze.BindableType
}

// NewGenerator creates a new Generator with the given configuration.
// Empty Filename and FuncName fall back to the defaults.
func NewGenerator(config GeneratorConfig) *Generator {
	def := DefaultGeneratorConfig()

	if config.Filename == "" {
		config.Filename = def.Filename
	}

	if config.FuncName == "" {
		config.FuncName = def.FuncName
	}

	return &Generator{config: config}
}

type templateData struct {
	PackageName string
	FuncName    string
	Types       []string
}

// Generate generates the registration file of pkg. The types of pkg are
// looked up in result.
func (g *Generator) Generate(pkg *analyze.PackageInfo, result *analyze.Result) (*GeneratedFile, error) {
	g.skipped = nil

	data := &templateData{
		PackageName: g.config.PackageName,
		FuncName:    g.config.FuncName,
	}

	if data.PackageName == "" {
		data.PackageName = pkg.Name
	}

	if data.PackageName == "" {
		data.PackageName = common.PkgAlias(pkg.Path)
	}

	for _, id := range pkg.Types {
		info := result.GetType(id)
		if info == nil {
			return nil, fmt.Errorf("type %s is not in the analysis result", id)
		}

		if info.Promoted() {
			g.skipped = append(g.skipped, info)
			continue
		}

		data.Types = append(data.Types, id.Name)
	}

	if common.IsEmpty(data.Types) {
		return nil, fmt.Errorf("package %s declares no bindable types", pkg.Path)
	}

	var buf bytes.Buffer
	if err := registrationTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing template: %w", err)
	}

	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		// Best-effort: write unformatted code to a sidecar file to aid debugging.
		if g.config.OutputDir != "" {
			_ = writeDebugUnformatted(g.config.OutputDir, g.config.Filename, buf.Bytes(), err)
		}

		return &GeneratedFile{
			Filename: g.config.Filename,
			Content:  buf.Bytes(),
		}, fmt.Errorf("formatting code: %w (unformatted code returned)", err)
	}

	return &GeneratedFile{
		Filename: g.config.Filename,
		Content:  formatted,
	}, nil
}

// Skipped returns the types left out of the last generated file because
// their BindingSpec is promoted.
func (g *Generator) Skipped() []*analyze.BindableType {
	return g.skipped
}

var registrationTemplate = template.Must(template.New("registration").Parse(`// Code generated by markup-binder. DO NOT EDIT.

package {{.PackageName}}

import "reflect"

// {{.FuncName}} returns the bindable types declared in this package.
func {{.FuncName}}() []reflect.Type {
	return []reflect.Type{
{{- range .Types}}
		reflect.TypeFor[{{.}}](),
{{- end}}
	}
}
`))
