// Package export hands saved client sources to the user as downloads.
//
// Export writes atomically into the export directory and returns the
// URL under which the HTTP surface serves the file.
package export
