// Package session runs chat conversations for the workspace.
//
// A Manager holds the active agent configuration and the open chat
// transcript. Send appends the user message, asks the Completer for a reply
// using the configured model, and writes the transcript back to its chat
// entry. The credential comes from the secrets entry, the request context
// (WithCredential) or a CredentialPrompter, in that order.
package session
