// Package paths provides the virtual workspace path conventions.
//
// Every entry in the workspace store is keyed by an absolute slash path.
// Directory keys end in "/" and files never do. The layout below is a
// contract shared with the browser client and is not configurable.
//
// # Directory Structure
//
//	/
//	  ├── agents/    (agent configurations, *.json)
//	  ├── chats/     (chat transcripts, *.json)
//	  ├── secrets/   (credential records; api_keys.json is read on send)
//	  ├── js/        (seeded client sources, exported on save)
//	  └── backup/    (copies made on delete; no new entries allowed)
//
// # Usage
//
//	import "github.com/GriffinCanCode/AgentOS/workspace/internal/shared/paths"
//
//	paths.Dir("/agents/a.json")      // "/agents/"
//	paths.Classify("/chats/c.json")  // paths.ClassChat
//	paths.Join(paths.Chats, "c.json") // "/chats/c.json"
package paths
