// Package match ranks known names by similarity to an unknown one, so that
// parse errors can say "did you mean ...".
//
// Key functions:
//   - Distance: rune-wise Levenshtein edit distance
//   - Similarity: normalized 0..1 score after folding case and separators
//   - Suggest: best candidates above a similarity threshold
package match
