/*
Package ws pushes workspace view updates to browser clients over WebSocket.

Hub implements the controller's View and the session's Renderer. Every
call is encoded once and queued on each client's buffered channel; a
client that cannot keep up is disconnected instead of stalling the
controller, and picks up current state from the replay when it reconnects. The latest tree, editor, status, buttons, agent config and
transcript are cached and replayed to clients that connect later, along
with any persistent notice.

Clients may send {"type":"ping"} and receive {"type":"pong"}.
*/
package ws
