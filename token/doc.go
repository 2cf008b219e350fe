// Package token provides the markup token stream consumed by the parser and
// produced by the composer.
//
// Key types:
//   - Source: pull interface returning start tags, end tags and text
//   - Sink: push interface accepting start and end tags
//   - Reader: Source over encoding/xml with line/column tracking
//   - Writer: Sink writing indented, escaped markup
//
// Names keep undeclared prefixes verbatim, so a tag such as "field:item" reaches
// the binding engine as written.
package token
