package tree

import (
	"errors"
	"fmt"

	"fortio.org/safecast"

	"jstyle/internal/source"
)

// NodeData describes one node handed to a Builder.
type NodeData struct {
	Kind    Kind
	Grammar string
	Field   string
	Named   bool
	Missing bool
	Start   uint32
	End     uint32
}

// ErrMalformed reports children that are unordered or escape their parent.
var ErrMalformed = errors.New("malformed tree")

// Builder assembles a Tree from parser output.
type Builder struct {
	src   []byte
	nodes *Arena[node]
}

// NewBuilder creates a builder over src.
func NewBuilder(src []byte, capHint uint) *Builder {
	return &Builder{src: src, nodes: NewArena[node](capHint)}
}

// Add appends a node under parent (0 for the root) and returns its id.
func (b *Builder) Add(parent NodeID, d NodeData) NodeID {
	id := NodeID(b.nodes.Allocate(node{
		kind:    d.Kind,
		grammar: d.Grammar,
		field:   d.Field,
		named:   d.Named,
		missing: d.Missing,
		start:   d.Start,
		end:     d.End,
		parent:  parent,
	}))
	if p := b.nodes.Get(uint32(parent)); p != nil {
		p.children = append(p.children, id)
	}
	return id
}

// Finish validates the structure, fills gaps with whitespace leaves,
// stretches root over the whole document and seals the snapshot.
func (b *Builder) Finish(file source.FileID, path string, root NodeID) (*Tree, error) {
	r := b.nodes.Get(uint32(root))
	if r == nil {
		return nil, fmt.Errorf("%w: no root", ErrMalformed)
	}
	size, err := safecast.Conv[uint32](len(b.src))
	if err != nil {
		return nil, fmt.Errorf("source too large: %w", err)
	}
	r.start, r.end = 0, size

	// только исходные узлы, заполнители добавляются по ходу
	count := b.nodes.Len()
	errs := 0
	for i := uint32(1); i <= count; i++ {
		n := b.nodes.Get(i)
		if n.kind == KindError || n.missing {
			errs++
		}
		if err := b.fillGaps(NodeID(i)); err != nil {
			return nil, err
		}
	}
	t := &Tree{
		gen:    nextGeneration(),
		file:   file,
		path:   path,
		src:    b.src,
		nodes:  b.nodes,
		root:   root,
		errors: errs,
	}
	b.nodes = nil
	return t, nil
}

func (b *Builder) fillGaps(id NodeID) error {
	n := b.nodes.Get(uint32(id))
	if len(n.children) == 0 {
		return nil
	}
	parentStart, parentEnd := n.start, n.end
	kids := n.children
	out := make([]NodeID, 0, len(kids)*2+1)
	cursor := parentStart
	for _, c := range kids {
		cd := b.nodes.Get(uint32(c))
		cs, ce := cd.start, cd.end
		if cs < cursor || ce < cs || ce > parentEnd {
			return fmt.Errorf("%w: child %s [%d,%d) of %s [%d,%d)", ErrMalformed,
				cd.kind, cs, ce, n.kind, parentStart, parentEnd)
		}
		if cs > cursor {
			out = append(out, b.gap(id, cursor, cs))
		}
		out = append(out, c)
		cursor = ce
	}
	if cursor < parentEnd {
		out = append(out, b.gap(id, cursor, parentEnd))
	}
	// Allocate мог переразместить арену
	b.nodes.Get(uint32(id)).children = out
	return nil
}

func (b *Builder) gap(parent NodeID, start, end uint32) NodeID {
	kind := KindWhitespace
	for _, c := range b.src[start:end] {
		if !isSpace(c) {
			kind = KindOther
			break
		}
	}
	return NodeID(b.nodes.Allocate(node{kind: kind, start: start, end: end, parent: parent}))
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}
