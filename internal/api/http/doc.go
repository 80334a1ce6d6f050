/*
Package http exposes the workspace controller as JSON commands over gin.

Every command answers {"success": bool, "state": {...}} with the
controller state and button enablement after the operation. Failures add
"error" and "kind", and map the kind to a status code:

	not_found       404
	validation      422
	precondition    409
	busy            409
	cancelled       409
	not_ready       503
	session_failure 502
	anything else   500

Operations that would ask the user (discard unsaved changes, delete,
name a new file) take the answer in the request body. When the answer is
missing the operation is cancelled and the response carries the question
in "prompt"; the client asks the user and retries with the answer.

View updates are pushed separately over the /stream WebSocket.
*/
package http
