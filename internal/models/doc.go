// Package models holds the view-model structures produced by the statistics
// pipeline and consumed by rendering layers (CLI formatter, TUI).
//
// Everything here is plain data: no methods reach the network or the
// database. Derived statistics ([GenreCount], [ListeningSummary],
// [FeatureAverages]) are always recomputed from freshly fetched collections
// and never persisted.
package models
