// Package dirstat provides directory statistics collection and analysis.
//
// A Scanner walks a directory tree, using fastwalk on the OS filesystem and
// afero.Walk elsewhere, and folds every regular file into a Snapshot of
// per-extension and per-size-bucket counts and byte totals. Files whose
// metadata cannot be read are skipped and reported rather than aborting
// the walk.
package dirstat
