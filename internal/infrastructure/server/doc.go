// Package server assembles the workspace service: configuration, logging,
// storage, the model client, the workspace controller, and the HTTP and
// WebSocket surfaces that drive it.
package server
