package binding

import (
	"fmt"
	"strings"

	"markup-binder/internal/diagnostic"
	"markup-binder/token"
)

// CompilationError reports invalid metadata. No descriptor of the failed
// registration batch is kept.
type CompilationError struct {
	// Type is the type whose registration failed.
	Type TypeID
	// Diagnostics lists every problem found in the batch.
	Diagnostics diagnostic.Diagnostics
}

func (e *CompilationError) Error() string {
	if len(e.Diagnostics.Errors) == 0 {
		return "compilation failed for type " + e.Type.String()
	}

	first := e.Diagnostics.Errors[0]

	typeName := first.Type
	if typeName == "" {
		typeName = e.Type.String()
	}

	msg := first.Message
	if first.Member != "" {
		msg = first.Member + ": " + msg
	}

	msg += " for type " + typeName

	if n := len(e.Diagnostics.Errors) - 1; n > 0 {
		msg += fmt.Sprintf(" (and %d more problems)", n)
	}

	return msg
}

// Has reports whether the failure includes a problem with the given code.
func (e *CompilationError) Has(code diagnostic.Code) bool {
	return e.Diagnostics.HasCode(code)
}

// ParsingError reports a document that cannot be bound. The partially built
// object graph is discarded.
type ParsingError struct {
	Pos         token.Position
	Msg         string
	Suggestions []string
	Err         error
}

func (e *ParsingError) Error() string {
	var sb strings.Builder

	sb.WriteString(e.Pos.String())
	sb.WriteString(": ")
	sb.WriteString(e.Msg)

	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}

	if len(e.Suggestions) > 0 {
		sb.WriteString(" (did you mean ")
		sb.WriteString(strings.Join(e.Suggestions, ", "))
		sb.WriteString("?)")
	}

	return sb.String()
}

func (e *ParsingError) Unwrap() error { return e.Err }

// CompositionError reports an object graph value without a usable binding.
type CompositionError struct {
	// Path locates the value, e.g. "test/array[1]".
	Path string
	// Type is the runtime type of the offending value.
	Type string
	Msg  string
}

func (e *CompositionError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("compose %s: %s", e.Path, e.Msg)
	}

	return fmt.Sprintf("compose %s: %s: %s", e.Path, e.Type, e.Msg)
}
