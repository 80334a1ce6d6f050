package workspace

import (
	"github.com/GriffinCanCode/AgentOS/workspace/internal/shared/paths"
	"github.com/GriffinCanCode/AgentOS/workspace/internal/types"
)

// NodeID indexes a node in the tree arena
type NodeID int

// RootID is the listed directory itself
const RootID NodeID = 0

// NoParent marks the root node
const NoParent NodeID = -1

// Node is one row of the directory tree
type Node struct {
	ID       NodeID          `json:"id"`
	Parent   NodeID          `json:"parent"`
	Path     string          `json:"path"`
	Name     string          `json:"name"`
	Type     types.EntryType `json:"type"`
	Depth    int             `json:"depth"`
	Children []NodeID        `json:"children,omitempty"`
	Loaded   bool            `json:"loaded"`
	Expanded bool            `json:"expanded"`
	Empty    bool            `json:"empty"`
	Err      string          `json:"error,omitempty"`
}

// IsDir reports whether the node is a container
func (n Node) IsDir() bool {
	return n.Type == types.EntryDirectory
}

// TreeSnapshot is an immutable copy of the tree handed to the view
type TreeSnapshot struct {
	Directory  string `json:"directory"`
	Generation uint64 `json:"generation"`
	Nodes      []Node `json:"nodes"`
}

// Root returns the listed directory node
func (s TreeSnapshot) Root() Node {
	return s.Nodes[RootID]
}

// Visible returns the nodes a renderer shows, in display order
func (s TreeSnapshot) Visible() []Node {
	var out []Node
	var walk func(id NodeID)
	walk = func(id NodeID) {
		n := s.Nodes[id]
		for _, child := range n.Children {
			out = append(out, s.Nodes[child])
			if s.Nodes[child].Expanded {
				walk(child)
			}
		}
	}
	walk(RootID)
	return out
}

// Tree is an arena of nodes indexed by NodeID.
// Each navigation builds a new tree with a fresh generation.
type Tree struct {
	generation uint64
	nodes      []Node
}

// NewTree creates a tree rooted at dir
func NewTree(dir string, generation uint64) *Tree {
	return &Tree{
		generation: generation,
		nodes: []Node{{
			ID:       RootID,
			Parent:   NoParent,
			Path:     dir,
			Name:     paths.Base(dir),
			Type:     types.EntryDirectory,
			Expanded: true,
		}},
	}
}

// Generation identifies the navigation that built the tree
func (t *Tree) Generation() uint64 {
	return t.generation
}

// Node returns the node with the given id
func (t *Tree) Node(id NodeID) (Node, bool) {
	if id < 0 || int(id) >= len(t.nodes) {
		return Node{}, false
	}
	return t.nodes[id], true
}

// Populate attaches sorted entries as children of id
func (t *Tree) Populate(id NodeID, entries []types.Entry) {
	parent := &t.nodes[id]
	parent.Children = parent.Children[:0]
	parent.Loaded = true
	parent.Empty = len(entries) == 0
	parent.Err = ""
	depth := parent.Depth + 1

	for _, e := range entries {
		child := NodeID(len(t.nodes))
		p := e.Path
		if e.IsDir() {
			p = paths.AsDir(p)
		}
		t.nodes = append(t.nodes, Node{
			ID:     child,
			Parent: id,
			Path:   p,
			Name:   e.Name,
			Type:   e.Type,
			Depth:  depth,
		})
		t.nodes[id].Children = append(t.nodes[id].Children, child)
	}
}

// Fail records a listing failure as a local marker on id
func (t *Tree) Fail(id NodeID, err error) {
	n := &t.nodes[id]
	n.Loaded = false
	n.Empty = false
	n.Children = nil
	n.Err = err.Error()
}

// SetExpanded flips the disclosure state of id
func (t *Tree) SetExpanded(id NodeID, expanded bool) {
	t.nodes[id].Expanded = expanded
}

// Snapshot deep-copies the tree
func (t *Tree) Snapshot() TreeSnapshot {
	nodes := make([]Node, len(t.nodes))
	for i, n := range t.nodes {
		if n.Children != nil {
			n.Children = append([]NodeID(nil), n.Children...)
		}
		nodes[i] = n
	}
	return TreeSnapshot{
		Directory:  t.nodes[RootID].Path,
		Generation: t.generation,
		Nodes:      nodes,
	}
}
