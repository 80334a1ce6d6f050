// Package workspace implements the workspace controller.
//
// The controller owns the single application state (current directory,
// selected entry, dirty flag, last validated agent configuration) and drives
// the directory tree, the entry lifecycle (load, save, create, delete) and
// chat dispatch through injected collaborators:
//
//	Store          path-keyed entry persistence
//	View           tree, editor, notices and affordance rendering
//	Session        chat conversations against an agent configuration
//	Exporter       download hand-off for saved client sources
//	SourceFetcher  bundled client sources copied in on bootstrap
//	Prompter       user confirmation, scoped per request with WithPrompter
//
// Every state change goes through Reduce, a pure transition function. The
// controller applies transitions under a mutex and calls collaborators
// without holding it; entries with an operation in flight reject further
// operations with ErrBusy.
//
// # Usage
//
//	ctrl := workspace.New(workspace.Deps{Open: openStore, View: hub, Session: chat})
//	if err := ctrl.Bootstrap(ctx); err != nil {
//		// storage unavailable, the view shows a persistent notice
//	}
//	err := ctrl.Load(workspace.WithPrompter(ctx, workspace.Answers{Confirmed: true}), "/agents/helper.json")
package workspace
