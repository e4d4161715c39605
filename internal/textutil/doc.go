// Package textutil provides the string comparison primitives shared by title
// matching and duplicate detection.
//
// The primary use cases are:
//   - Folding titles to a case- and accent-insensitive comparable form
//   - Splitting text into lowercase word tokens and measuring token overlap
//   - Computing Levenshtein edit distance and the derived similarity ratio
//
// Similarity operates on runes rather than bytes so accented and non-Latin
// titles are measured by visible characters.
package textutil
