// Package storage persists workspace entries in SQLite.
//
// Entries are rows keyed by absolute slash path. Directory paths end in "/"
// and carry no content. Writing a file creates its missing ancestors.
// Deleting a file outside /backup/ first copies it into /backup/ under a
// timestamped name; large backups are stored zstd-compressed and
// decompressed transparently on read.
//
// Store satisfies workspace.Store. Missing paths are reported with an error
// wrapping types.ErrNotFound.
package storage
