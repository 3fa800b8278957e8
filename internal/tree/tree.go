package tree

import (
	"fmt"
	"sync/atomic"

	"jstyle/internal/source"
)

// NodeID addresses a node inside one Tree (1-based, 0 = none).
type NodeID uint32

type node struct {
	kind     Kind
	grammar  string
	field    string
	named    bool
	missing  bool
	start    uint32
	end      uint32
	parent   NodeID
	children []NodeID
}

// Tree is one immutable snapshot of a parsed document.
type Tree struct {
	gen    uint64
	file   source.FileID
	path   string
	src    []byte
	nodes  *Arena[node]
	root   NodeID
	errors int
}

var generations atomic.Uint64

func nextGeneration() uint64 {
	return generations.Add(1)
}

// Gen returns the snapshot generation. Generations are unique per process.
func (t *Tree) Gen() uint64 { return t.gen }

// File returns the file version this snapshot was built from.
func (t *Tree) File() source.FileID { return t.file }

// Rebind returns the same document as a fresh snapshot of file. Nodes are
// shared with t.
func (t *Tree) Rebind(file source.FileID) *Tree {
	c := *t
	c.gen = nextGeneration()
	c.file = file
	return &c
}

// Path returns the document path.
func (t *Tree) Path() string { return t.path }

// Source returns the document text. Callers must not modify it.
func (t *Tree) Source() []byte { return t.src }

// Root returns the File node.
func (t *Tree) Root() Node { return Node{t: t, id: t.root} }

// Len returns the number of nodes, whitespace leaves included.
func (t *Tree) Len() int { return int(t.nodes.Len()) }

// ErrorCount returns the number of syntax error and missing nodes.
func (t *Tree) ErrorCount() int { return t.errors }

// Node returns the handle for id, or a nil Node if id is out of range.
func (t *Tree) Node(id NodeID) Node {
	if t.nodes.Get(uint32(id)) == nil {
		return Node{}
	}
	return Node{t: t, id: id}
}

// Ref is a generation-tagged node identity.
type Ref struct {
	Gen uint64
	ID  NodeID
}

func (r Ref) IsZero() bool { return r.ID == 0 }

func (r Ref) String() string { return fmt.Sprintf("g%d#%d", r.Gen, r.ID) }

// StaleSnapshotError is returned when a Ref outlived its snapshot.
type StaleSnapshotError struct {
	Ref     Ref
	Current uint64
}

func (e *StaleSnapshotError) Error() string {
	return fmt.Sprintf("stale snapshot: node %s resolved against generation %d", e.Ref, e.Current)
}

// Resolve returns the node addressed by ref in this snapshot.
func (t *Tree) Resolve(ref Ref) (Node, error) {
	if ref.Gen != t.gen || t.nodes.Get(uint32(ref.ID)) == nil {
		return Node{}, &StaleSnapshotError{Ref: ref, Current: t.gen}
	}
	return Node{t: t, id: ref.ID}, nil
}

// Walk visits nodes in pre-order. Returning false from fn skips the children.
func (t *Tree) Walk(fn func(Node) bool) {
	t.Root().Walk(fn)
}

// NodeAt returns the deepest node whose span contains off.
func (t *Tree) NodeAt(off uint32) Node {
	cur := t.Root()
	for {
		next := Node{}
		for _, c := range cur.data().children {
			cd := t.nodes.Get(uint32(c))
			if cd.start <= off && off < cd.end {
				next = Node{t: t, id: c}
				break
			}
		}
		if next.IsNil() {
			return cur
		}
		cur = next
	}
}

// Spanning returns every node whose span is exactly [start, end), outermost first.
func (t *Tree) Spanning(start, end uint32) []Node {
	var out []Node
	t.Walk(func(n Node) bool {
		d := n.data()
		if d.end < start || d.start > end {
			return false
		}
		if d.start == start && d.end == end {
			out = append(out, n)
		}
		return d.start <= start && end <= d.end
	})
	return out
}
