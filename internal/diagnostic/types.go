package diagnostic

import (
	"errors"
	"fmt"
	"strings"

	"markup-binder/internal/common"
)

// Code identifies a kind of problem.
type Code string

const (
	CodeNotBindable        Code = "not_bindable"
	CodeNotStruct          Code = "not_struct"
	CodeInvalidTag         Code = "invalid_tag"
	CodeOwnerMismatch      Code = "owner_mismatch"
	CodeDuplicateAccessor  Code = "duplicate_accessor"
	CodeTypeMismatch       Code = "accessor_type_mismatch"
	CodeKindMismatch       Code = "accessor_kind_mismatch"
	CodeMissingGetter      Code = "missing_getter"
	CodeMissingSetter      Code = "missing_setter"
	CodeUnsupportedAttr    Code = "unsupported_attribute_type"
	CodeMissingBase        Code = "missing_base"
	CodeBaseNotAssignable  Code = "base_not_assignable"
	CodeInvalidExtends     Code = "invalid_extends"
	CodeSubtypeNotExtends  Code = "subtype_not_extending"
	CodeSubtypeNotAssign   Code = "subtype_not_assignable"
	CodeTagConflict        Code = "tag_conflict"
	CodeDirectItemConflict Code = "direct_item_conflict"
	CodeRootTagConflict    Code = "root_tag_conflict"
	CodeDuplicateSubtype   Code = "duplicate_subtype"
	CodeAlreadyRegistered  Code = "already_registered"
)

// Diagnostics holds all problems found while compiling one registration batch.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
}

// Diagnostic represents a single problem.
type Diagnostic struct {
	// Severity of the diagnostic.
	Severity Severity
	// Code is a unique identifier for this kind of problem.
	Code Code
	// Message is the human-readable description.
	Message string
	// Type names the type the problem was found on (if any).
	Type string
	// Member names the attribute or element the problem relates to (if any).
	Member string
	// Suggestions are potential fixes or alternatives.
	Suggestions []string
}

// Severity represents the severity level of a diagnostic.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

// String returns a human-readable severity name.
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return common.UnknownStr
	}
}

// AddError adds an error diagnostic.
func (d *Diagnostics) AddError(code Code, typeName, member, format string, args ...any) {
	d.Errors = append(d.Errors, Diagnostic{
		Severity: SeverityError,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Type:     typeName,
		Member:   member,
	})
}

// AddWarning adds a warning diagnostic.
func (d *Diagnostics) AddWarning(code Code, typeName, member, format string, args ...any) {
	d.Warnings = append(d.Warnings, Diagnostic{
		Severity: SeverityWarning,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Type:     typeName,
		Member:   member,
	})
}

// Suggest attaches suggestions to the most recent error.
func (d *Diagnostics) Suggest(suggestions ...string) {
	if len(d.Errors) == 0 || len(suggestions) == 0 {
		return
	}

	last := &d.Errors[len(d.Errors)-1]
	last.Suggestions = append(last.Suggestions, suggestions...)
}

// HasErrors returns true if there are any error diagnostics.
func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

// HasCode reports whether any error carries the given code.
func (d *Diagnostics) HasCode(code Code) bool {
	for _, e := range d.Errors {
		if e.Code == code {
			return true
		}
	}

	return false
}

// Merge merges another Diagnostics instance into this one.
func (d *Diagnostics) Merge(other Diagnostics) {
	d.Errors = append(d.Errors, other.Errors...)
	d.Warnings = append(d.Warnings, other.Warnings...)
}

// Error returns a combined error from all error diagnostics, or nil if there are none.
func (d *Diagnostics) Error() error {
	if !d.HasErrors() {
		return nil
	}

	parts := make([]string, 0, len(d.Errors))
	for _, e := range d.Errors {
		parts = append(parts, e.String())
	}

	return errors.New(strings.Join(parts, "; "))
}

// String returns a formatted diagnostic string.
func (d Diagnostic) String() string {
	var prefix []string
	if d.Type != "" {
		prefix = append(prefix, "["+d.Type+"]")
	}

	if d.Member != "" {
		prefix = append(prefix, d.Member)
	}

	msg := d.Message
	if d.Code != "" {
		msg = fmt.Sprintf("[%s] %s", d.Code, msg)
	}

	if len(d.Suggestions) > 0 {
		msg += " (try: " + strings.Join(d.Suggestions, ", ") + ")"
	}

	if len(prefix) > 0 {
		return strings.Join(prefix, " ") + ": " + msg
	}

	return msg
}
