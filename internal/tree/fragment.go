package tree

// Fragment is a parsed replacement text wrapped in a synthetic document.
// Root spans exactly the fragment text, which starts at Offset in Tree.
type Fragment struct {
	Tree     *Tree
	Root     Node
	Offset   uint32
	Category Category
}

// Text returns the fragment source.
func (f *Fragment) Text() string {
	return f.Root.Text()
}
