// Package textutil provides the text processing primitives behind duplicate
// detection: display-name normalization, edit-distance similarity, character
// n-gram overlap, and filename sanitization for report output.
//
// Normalization lowercases, strips bracketed annotations and featured-artist
// credits, folds diacritics and width-variant characters, drops punctuation,
// and collapses whitespace. The resulting key is only ever used for
// clustering and is never persisted.
package textutil
