// Package utils provides request validation and content hashing.
//
// Validation bounds what the HTTP surface accepts before it reaches the
// controller: absolute workspace paths without relative segments, editor
// text and chat messages by size, credentials, and glob patterns.
// Hasher produces the entity tags used for export downloads.
package utils
