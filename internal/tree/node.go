package tree

import (
	"slices"

	"jstyle/internal/source"
)

// Node is a read-only handle to one node of a Tree. The zero Node is nil.
type Node struct {
	t  *Tree
	id NodeID
}

func (n Node) data() *node { return n.t.nodes.Get(uint32(n.id)) }

func (n Node) IsNil() bool { return n.t == nil || n.id == 0 }

func (n Node) ID() NodeID  { return n.id }
func (n Node) Tree() *Tree { return n.t }

// Ref returns the generation-tagged identity of n.
func (n Node) Ref() Ref {
	if n.IsNil() {
		return Ref{}
	}
	return Ref{Gen: n.t.gen, ID: n.id}
}

func (n Node) Kind() Kind {
	if n.IsNil() {
		return KindInvalid
	}
	return n.data().kind
}

// Grammar returns the parser's own node type.
func (n Node) Grammar() string {
	if n.IsNil() {
		return ""
	}
	return n.data().grammar
}

// Field returns the grammar field name under the parent.
func (n Node) Field() string {
	if n.IsNil() {
		return ""
	}
	return n.data().field
}

func (n Node) Named() bool   { return !n.IsNil() && n.data().named }
func (n Node) Missing() bool { return !n.IsNil() && n.data().missing }

func (n Node) Start() uint32 {
	if n.IsNil() {
		return 0
	}
	return n.data().start
}

func (n Node) End() uint32 {
	if n.IsNil() {
		return 0
	}
	return n.data().end
}

// Span returns the node range bound to the snapshot's file version.
func (n Node) Span() source.Span {
	if n.IsNil() {
		return source.Span{}
	}
	d := n.data()
	return source.Span{File: n.t.file, Start: d.start, End: d.end}
}

// Text returns the source text covered by n.
func (n Node) Text() string {
	if n.IsNil() {
		return ""
	}
	d := n.data()
	return string(n.t.src[d.start:d.end])
}

func (n Node) Parent() Node {
	if n.IsNil() {
		return Node{}
	}
	p := n.data().parent
	if p == 0 {
		return Node{}
	}
	return Node{t: n.t, id: p}
}

func (n Node) ChildCount() int {
	if n.IsNil() {
		return 0
	}
	return len(n.data().children)
}

func (n Node) Child(i int) Node {
	if n.IsNil() {
		return Node{}
	}
	kids := n.data().children
	if i < 0 || i >= len(kids) {
		return Node{}
	}
	return Node{t: n.t, id: kids[i]}
}

// Children returns all children, whitespace leaves included.
func (n Node) Children() []Node {
	if n.IsNil() {
		return nil
	}
	kids := n.data().children
	out := make([]Node, len(kids))
	for i, c := range kids {
		out[i] = Node{t: n.t, id: c}
	}
	return out
}

// Significant returns children that are neither whitespace nor comments.
func (n Node) Significant() []Node {
	var out []Node
	for _, c := range n.Children() {
		if !c.Kind().IsTrivia() {
			out = append(out, c)
		}
	}
	return out
}

// ChildByField returns the first child stored under the grammar field name.
func (n Node) ChildByField(name string) Node {
	for _, c := range n.Children() {
		if c.data().field == name {
			return c
		}
	}
	return Node{}
}

// ChildrenByField returns every child stored under the grammar field name.
func (n Node) ChildrenByField(name string) []Node {
	var out []Node
	for _, c := range n.Children() {
		if c.data().field == name {
			out = append(out, c)
		}
	}
	return out
}

// ChildOfKind returns the first direct child of one of kinds.
func (n Node) ChildOfKind(kinds ...Kind) Node {
	for _, c := range n.Children() {
		if slices.Contains(kinds, c.Kind()) {
			return c
		}
	}
	return Node{}
}

// ChildrenOfKind returns the direct children of one of kinds.
func (n Node) ChildrenOfKind(kinds ...Kind) []Node {
	var out []Node
	for _, c := range n.Children() {
		if slices.Contains(kinds, c.Kind()) {
			out = append(out, c)
		}
	}
	return out
}

// Index returns the position of n among its parent's children, -1 for the root.
func (n Node) Index() int {
	p := n.Parent()
	if p.IsNil() {
		return -1
	}
	return slices.Index(p.data().children, n.id)
}

func (n Node) PrevSibling() Node {
	i := n.Index()
	if i <= 0 {
		return Node{}
	}
	return n.Parent().Child(i - 1)
}

func (n Node) NextSibling() Node {
	i := n.Index()
	if i < 0 {
		return Node{}
	}
	return n.Parent().Child(i + 1)
}

// PrevSignificant skips whitespace and comment siblings backwards.
func (n Node) PrevSignificant() Node {
	for s := n.PrevSibling(); !s.IsNil(); s = s.PrevSibling() {
		if !s.Kind().IsTrivia() {
			return s
		}
	}
	return Node{}
}

// NextSignificant skips whitespace and comment siblings forwards.
func (n Node) NextSignificant() Node {
	for s := n.NextSibling(); !s.IsNil(); s = s.NextSibling() {
		if !s.Kind().IsTrivia() {
			return s
		}
	}
	return Node{}
}

// Ancestor returns the nearest proper ancestor of one of kinds.
func (n Node) Ancestor(kinds ...Kind) Node {
	for p := n.Parent(); !p.IsNil(); p = p.Parent() {
		if slices.Contains(kinds, p.Kind()) {
			return p
		}
	}
	return Node{}
}

// AncestorWhere walks up until pred accepts a node or stop rejects the walk.
// A nil stop never stops early.
func (n Node) AncestorWhere(pred, stop func(Node) bool) Node {
	for p := n.Parent(); !p.IsNil(); p = p.Parent() {
		if pred(p) {
			return p
		}
		if stop != nil && stop(p) {
			return Node{}
		}
	}
	return Node{}
}

// IsAncestorOf reports whether n is a proper ancestor of other.
func (n Node) IsAncestorOf(other Node) bool {
	if n.IsNil() || other.t != n.t {
		return false
	}
	for p := other.Parent(); !p.IsNil(); p = p.Parent() {
		if p.id == n.id {
			return true
		}
	}
	return false
}

// Walk visits n and its descendants in pre-order.
// Returning false from fn skips the node's children.
func (n Node) Walk(fn func(Node) bool) {
	if n.IsNil() {
		return
	}
	stack := []NodeID{n.id}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		cur := Node{t: n.t, id: id}
		if !fn(cur) {
			continue
		}
		kids := cur.data().children
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, kids[i])
		}
	}
}

// Find returns the descendants of n (n excluded) of one of kinds, in pre-order.
func (n Node) Find(kinds ...Kind) []Node {
	var out []Node
	n.Walk(func(c Node) bool {
		if c.id != n.id && slices.Contains(kinds, c.Kind()) {
			out = append(out, c)
		}
		return true
	})
	return out
}

func (n Node) IsLeaf() bool { return n.ChildCount() == 0 }

func (n Node) FirstLeaf() Node {
	cur := n
	for cur.ChildCount() > 0 {
		cur = cur.Child(0)
	}
	return cur
}

func (n Node) LastLeaf() Node {
	cur := n
	for c := cur.ChildCount(); c > 0; c = cur.ChildCount() {
		cur = cur.Child(c - 1)
	}
	return cur
}

// NextLeaf returns the leaf following n in document order.
func (n Node) NextLeaf() Node {
	for cur := n; !cur.IsNil(); cur = cur.Parent() {
		if s := cur.NextSibling(); !s.IsNil() {
			return s.FirstLeaf()
		}
	}
	return Node{}
}

// PrevLeaf returns the leaf preceding n in document order.
func (n Node) PrevLeaf() Node {
	for cur := n; !cur.IsNil(); cur = cur.Parent() {
		if s := cur.PrevSibling(); !s.IsNil() {
			return s.LastLeaf()
		}
	}
	return Node{}
}

func (n Node) String() string {
	if n.IsNil() {
		return "<nil>"
	}
	return n.Kind().String() + "@" + n.Span().String()
}
