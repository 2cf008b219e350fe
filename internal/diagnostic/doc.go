// Package diagnostic provides structured problems reported while compiling
// binding descriptors.
//
// Key capabilities:
//   - Stable problem codes for every compile failure
//   - Per-type and per-member attribution
//   - Suggestions for likely fixes
package diagnostic
