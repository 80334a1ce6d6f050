// Package sources provides the bundled client sources copied into the
// workspace on bootstrap, either over HTTP from the server that hosts the
// client or from a local directory.
package sources
