// Package delta describes edits as an ordered list of retain, delete and
// insert operations over a sequence of characters.
//
// Lengths count runes. An insert carries the inline formatting attributes of
// the inserted text, and a retain may carry attributes to re-format the
// characters it skips. A document can itself be represented as a delta made
// only of inserts, which is how Invert reads the text an edit removes.
package delta
