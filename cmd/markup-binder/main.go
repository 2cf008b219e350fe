// Package main provides the CLI entrypoint for markup-binder.
//
// markup-binder is a companion tool for the binding library:
//   - scan lists the bindable types of Go packages
//   - gen writes a registration file listing them
//   - check validates an options file and prints the effective options
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"markup-binder/internal/analyze"
	"markup-binder/internal/gen"
	"markup-binder/options"
)

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

var errUsage = errors.New("usage")

type command struct {
	name    string
	summary string
	run     func(args []string, stdout, stderr io.Writer) error
}

var commands = []command{
	{name: "scan", summary: "list bindable types of packages", run: runScan},
	{name: "gen", summary: "generate a registration file for a package", run: runGen},
	{name: "check", summary: "validate an options file", run: runCheck},
}

func main() {
	os.Exit(runWithArgs(os.Args[1:], os.Stdout, os.Stderr))
}

func runWithArgs(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return exitUsage
	}

	for _, cmd := range commands {
		if cmd.name != args[0] {
			continue
		}

		err := cmd.run(args[1:], stdout, stderr)

		switch {
		case err == nil:
			return exitOK
		case errors.Is(err, errUsage), errors.Is(err, flag.ErrHelp):
			return exitUsage
		default:
			fmt.Fprintf(stderr, "error: %v\n", err)
			return exitError
		}
	}

	fmt.Fprintf(stderr, "error: unknown command %q\n", args[0])
	usage(stderr)

	return exitUsage
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage: markup-binder <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")

	for _, cmd := range commands {
		fmt.Fprintf(w, "  %-6s %s\n", cmd.name, cmd.summary)
	}
}

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("markup-binder "+name, flag.ContinueOnError)
	fs.SetOutput(stderr)

	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return errors.Join(errUsage, err)
	}

	return nil
}

func runScan(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("scan", stderr)
	dir := fs.String("dir", "", "directory patterns are resolved against")
	fields := fs.Bool("fields", false, "list struct fields")

	if err := parseFlags(fs, args); err != nil {
		return err
	}

	patterns := fs.Args()
	if len(patterns) == 0 {
		patterns = []string{"."}
	}

	result, err := analyze.NewAnalyzer(*dir).LoadPackages(patterns...)
	if err != nil {
		return err
	}

	for _, t := range result.Sorted() {
		fmt.Fprintf(stdout, "%s\t%s\n", t.ID, t.Pos)

		if t.Promoted() {
			fmt.Fprintf(stdout, "\twarning: BindingSpec promoted from %s\n", t.PromotedFrom)
		}

		if *fields {
			for _, f := range t.Fields {
				fmt.Fprintf(stdout, "\t%s %s\n", f.Name, f.Type)
			}
		}
	}

	return nil
}

func runGen(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("gen", stderr)
	dir := fs.String("dir", "", "directory the package pattern is resolved against")
	out := fs.String("o", "", "output file (default <package dir>/zz_binding_types.go)")
	funcName := fs.String("func", "", "name of the generated function (default BindingTypes)")
	pkgName := fs.String("pkg", "", "package clause of the generated file (default the package name)")

	if err := parseFlags(fs, args); err != nil {
		return err
	}

	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "error: exactly one package pattern is required")
		fs.Usage()

		return errUsage
	}

	result, err := analyze.NewAnalyzer(*dir).LoadPackages(fs.Arg(0))
	if err != nil {
		return err
	}

	if len(result.Packages) != 1 {
		return fmt.Errorf("pattern %q matches %d packages, want 1", fs.Arg(0), len(result.Packages))
	}

	var pkg *analyze.PackageInfo
	for _, p := range result.Packages {
		pkg = p
	}

	path := *out
	if path == "" {
		path = filepath.Join(pkg.Dir, gen.DefaultGeneratorConfig().Filename)
	} else if !filepath.IsAbs(path) && *dir != "" {
		path = filepath.Join(*dir, path)
	}

	g := gen.NewGenerator(gen.GeneratorConfig{
		PackageName: *pkgName,
		Filename:    filepath.Base(path),
		FuncName:    *funcName,
		OutputDir:   filepath.Dir(path),
	})

	file, err := g.Generate(pkg, result)
	if err != nil {
		return err
	}

	for _, t := range g.Skipped() {
		fmt.Fprintf(stderr, "warning: skipped %s: BindingSpec promoted from %s\n", t.ID.Name, t.PromotedFrom)
	}

	written, err := gen.WriteFiles([]gen.GeneratedFile{*file}, filepath.Dir(path))
	if err != nil {
		return err
	}

	if len(written) == 0 {
		fmt.Fprintf(stdout, "%s is up to date\n", path)
		return nil
	}

	fmt.Fprintf(stdout, "wrote %s\n", path)

	return nil
}

func runCheck(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("check", stderr)
	config := fs.String("config", "", "path to the options file")

	if err := parseFlags(fs, args); err != nil {
		return err
	}

	if *config == "" {
		fmt.Fprintln(stderr, "error: -config is required")
		fs.Usage()

		return errUsage
	}

	opts, err := options.LoadFile(*config)
	if err != nil {
		return err
	}

	data, err := options.Marshal(opts)
	if err != nil {
		return err
	}

	_, err = stdout.Write(data)

	return err
}
