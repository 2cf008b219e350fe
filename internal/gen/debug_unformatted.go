package gen

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// writeDebugUnformatted writes the rendered but unformattable code next to the
// intended output, headed by the formatter error. Best-effort: the caller
// already reports cause.
func writeDebugUnformatted(outDir, filename string, content []byte, cause error) error {
	if outDir == "" || filename == "" {
		return nil
	}

	if err := os.MkdirAll(outDir, dirPerm); err != nil {
		return err
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "// %s: %v\n\n", filename, cause)
	buf.Write(content)

	// keep a .go suffix so editors highlight it
	debugName := strings.TrimSuffix(filename, ".go") + ".unformatted.go"

	return os.WriteFile(filepath.Join(outDir, debugName), buf.Bytes(), filePerm)
}
