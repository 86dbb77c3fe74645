// Package textutil provides text normalization and similarity helpers for
// comparing titles across publishers.
//
// The primary use cases are:
//   - Folding titles so case and accents do not affect equality
//   - Creating token-based fingerprints from titles for comparison
//   - Computing cosine similarity between fingerprints
//
// Fingerprints are term frequency vectors. Tokenization folds the text,
// splits on anything that is not a letter or digit, and drops single-letter
// tokens other than digits.
package textutil
