// Package options holds the settings of a binding context and loads them from YAML.
//
// The zero Options value is usable: missing settings take their defaults when
// the options are applied.
//
// Example configuration file:
//
//	version: "1"
//	lenient: false
//	indent: "  "
//	omit_header: false
//	coercions: [textual_bool, trim_space]
//	verbose: true
//	log_format: json
package options
