package options

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"markup-binder/primitive"
)

const (
	// DefaultIndent is used when neither Indent nor Compact is set.
	DefaultIndent = "  "

	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Options configures parsing, composition and logging of a binding context.
type Options struct {
	// Version is the configuration format version.
	Version string `yaml:"version"`
	// Lenient skips unknown attributes and elements instead of failing.
	Lenient bool `yaml:"lenient,omitempty"`
	// Indent is repeated once per nesting level when composing.
	Indent string `yaml:"indent,omitempty"`
	// Compact writes documents on a single line, ignoring Indent.
	Compact bool `yaml:"compact,omitempty"`
	// OmitHeader drops the XML declaration from composed documents.
	OmitHeader bool `yaml:"omit_header,omitempty"`
	// Coercions lists accepted textual forms of attribute values, see primitive.ParseCategories.
	Coercions []string `yaml:"coercions,omitempty"`
	// Verbose enables debug logging on stderr.
	Verbose bool `yaml:"verbose,omitempty"`
	// LogFormat is "text" or "json".
	LogFormat string `yaml:"log_format,omitempty"`
}

// Default returns the options used when nothing is configured.
func Default() Options {
	var o Options

	ApplyDefaults(&o)

	return o
}

// LoadFile loads and parses a YAML options file from the given path.
func LoadFile(path string) (*Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read options file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse parses YAML data into Options. Unknown keys are rejected.
func Parse(data []byte) (*Options, error) {
	var o Options

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&o); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse options YAML: %w", err)
	}

	ApplyDefaults(&o)

	if err := o.Validate(); err != nil {
		return nil, err
	}

	return &o, nil
}

// ApplyDefaults fills in default values for unset fields.
func ApplyDefaults(o *Options) {
	if o.Version == "" {
		o.Version = "1"
	}

	if o.Indent == "" && !o.Compact {
		o.Indent = DefaultIndent
	}

	if o.LogFormat == "" {
		o.LogFormat = LogFormatText
	}
}

// Validate checks the settings that have a restricted set of values.
func (o *Options) Validate() error {
	if o.Version != "1" {
		return fmt.Errorf("unsupported options version %q", o.Version)
	}

	if strings.TrimSpace(o.Indent) != "" {
		return fmt.Errorf("indent %q must only contain whitespace", o.Indent)
	}

	switch o.LogFormat {
	case "", LogFormatText, LogFormatJSON:
	default:
		return fmt.Errorf("unknown log format %q", o.LogFormat)
	}

	if _, err := o.Categories(); err != nil {
		return err
	}

	return nil
}

// Categories returns the coercion categories selected by Coercions.
func (o *Options) Categories() (primitive.CategoryEnum, error) {
	return primitive.ParseCategories(o.Coercions)
}

// EffectiveIndent returns the indentation used when composing.
func (o *Options) EffectiveIndent() string {
	if o.Compact {
		return ""
	}

	if o.Indent == "" {
		return DefaultIndent
	}

	return o.Indent
}

// Logger returns a debug logger on stderr when Verbose is set, otherwise a
// logger that discards everything.
func (o *Options) Logger() *slog.Logger {
	return o.LoggerTo(os.Stderr)
}

// LoggerTo is Logger with an explicit destination.
func (o *Options) LoggerTo(w io.Writer) *slog.Logger {
	if !o.Verbose {
		return slog.New(slog.DiscardHandler)
	}

	handlerOpts := &slog.HandlerOptions{Level: slog.LevelDebug}

	if o.LogFormat == LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}

	return slog.New(slog.NewTextHandler(w, handlerOpts))
}

// Marshal serializes Options to YAML.
func Marshal(o *Options) ([]byte, error) {
	return yaml.Marshal(o)
}

// WriteFile writes Options to the given path.
func WriteFile(o *Options, path string) error {
	data, err := Marshal(o)
	if err != nil {
		return fmt.Errorf("failed to marshal options: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write options file %s: %w", path, err)
	}

	return nil
}
