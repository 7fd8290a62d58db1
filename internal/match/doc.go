// Package match ranks known names against an unknown one for "did you mean"
// hints on unknown keys and path steps.
//
// Names are compared after Fold, by Similarity, a Levenshtein Distance scaled
// to the longer name.
package match
