package tree_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jstyle/internal/source"
	"jstyle/internal/testkit"
	"jstyle/internal/tree"
)

// buildSample собирает дерево для "int x = 42;\n" вручную, без парсера.
func buildSample(t *testing.T) *tree.Tree {
	t.Helper()
	src := []byte("int x = 42;\n")
	b := tree.NewBuilder(src, 8)
	root := b.Add(0, tree.NodeData{Kind: tree.KindFile, Grammar: "program", Named: true, Start: 0, End: 11})
	decl := b.Add(root, tree.NodeData{Kind: tree.KindLocalVar, Grammar: "local_variable_declaration", Named: true, Start: 0, End: 11})
	b.Add(decl, tree.NodeData{Kind: tree.KindType, Grammar: "integral_type", Field: "type", Named: true, Start: 0, End: 3})
	vd := b.Add(decl, tree.NodeData{Kind: tree.KindVariableDeclarator, Grammar: "variable_declarator", Field: "declarator", Named: true, Start: 4, End: 10})
	b.Add(vd, tree.NodeData{Kind: tree.KindIdentifier, Grammar: "identifier", Field: "name", Named: true, Start: 4, End: 5})
	b.Add(vd, tree.NodeData{Kind: tree.KindOperator, Grammar: "=", Start: 6, End: 7})
	b.Add(vd, tree.NodeData{Kind: tree.KindLiteral, Grammar: "decimal_integer_literal", Field: "value", Named: true, Start: 8, End: 10})
	b.Add(decl, tree.NodeData{Kind: tree.KindPunct, Grammar: ";", Start: 10, End: 11})

	tr, err := b.Finish(3, "Sample.java", root)
	require.NoError(t, err)
	return tr
}

func TestBuilderFillsWhitespace(t *testing.T) {
	tr := buildSample(t)
	require.NoError(t, testkit.CheckTreeInvariants(tr))

	root := tr.Root()
	assert.Equal(t, uint32(12), root.End())
	last := root.Child(root.ChildCount() - 1)
	assert.Equal(t, tree.KindWhitespace, last.Kind())
	assert.Equal(t, "\n", last.Text())
	assert.Zero(t, tr.ErrorCount())
}

func TestNavigation(t *testing.T) {
	tr := buildSample(t)
	lits := tr.Root().Find(tree.KindLiteral)
	require.Len(t, lits, 1)
	lit := lits[0]
	assert.Equal(t, "42", lit.Text())
	assert.Equal(t, tree.CategoryExpression, tree.CategoryOf(lit))

	vd := lit.Parent()
	assert.Equal(t, tree.KindVariableDeclarator, vd.Kind())
	assert.Equal(t, "x", vd.ChildByField("name").Text())
	assert.Equal(t, lit, vd.ChildByField("value"))

	decl := lit.Ancestor(tree.KindLocalVar)
	require.False(t, decl.IsNil())
	assert.True(t, decl.IsAncestorOf(lit))
	assert.False(t, lit.IsAncestorOf(decl))
	assert.Equal(t, tree.CategoryStatement, tree.CategoryOf(decl))

	op := lit.PrevSignificant()
	assert.Equal(t, "=", op.Text())
	assert.Equal(t, tree.KindWhitespace, lit.PrevSibling().Kind())
	assert.Equal(t, ";", lit.NextLeaf().Text())
	assert.Equal(t, " ", lit.PrevLeaf().Text())

	assert.Equal(t, lit, tr.NodeAt(9))
	spanning := tr.Spanning(0, 11)
	require.Len(t, spanning, 1)
	assert.Equal(t, tree.KindLocalVar, spanning[0].Kind())
}

func TestWalkSkipsChildren(t *testing.T) {
	tr := buildSample(t)
	var kinds []tree.Kind
	tr.Walk(func(n tree.Node) bool {
		kinds = append(kinds, n.Kind())
		return n.Kind() != tree.KindVariableDeclarator
	})
	assert.NotContains(t, kinds, tree.KindLiteral)
	assert.Equal(t, tree.KindFile, kinds[0])
}

func TestStaleRef(t *testing.T) {
	first := buildSample(t)
	second := buildSample(t)
	require.NotEqual(t, first.Gen(), second.Gen())

	ref := first.Root().Find(tree.KindIdentifier)[0].Ref()
	n, err := first.Resolve(ref)
	require.NoError(t, err)
	assert.Equal(t, "x", n.Text())

	_, err = second.Resolve(ref)
	var stale *tree.StaleSnapshotError
	require.True(t, errors.As(err, &stale))
	assert.Equal(t, second.Gen(), stale.Current)

	_, err = first.Resolve(tree.Ref{Gen: first.Gen(), ID: 9999})
	assert.Error(t, err)
}

func TestRebind(t *testing.T) {
	tr := buildSample(t)
	moved := tr.Rebind(7)

	assert.Equal(t, source.FileID(7), moved.File())
	assert.Equal(t, source.FileID(3), tr.File(), "original snapshot is untouched")
	assert.NotEqual(t, tr.Gen(), moved.Gen())
	ident := moved.Root().Find(tree.KindIdentifier)[0]
	assert.Equal(t, source.FileID(7), ident.Span().File)
	require.NoError(t, testkit.CheckTreeInvariants(moved))

	_, err := moved.Resolve(tr.Root().Ref())
	assert.Error(t, err, "refs of the old generation are stale")
}

func TestBuilderRejectsOverlap(t *testing.T) {
	b := tree.NewBuilder([]byte("abcd"), 4)
	root := b.Add(0, tree.NodeData{Kind: tree.KindFile, Start: 0, End: 4})
	b.Add(root, tree.NodeData{Kind: tree.KindOther, Start: 0, End: 3})
	b.Add(root, tree.NodeData{Kind: tree.KindOther, Start: 2, End: 4})
	_, err := b.Finish(0, "bad", root)
	assert.ErrorIs(t, err, tree.ErrMalformed)
}

func TestCategoryAccepts(t *testing.T) {
	assert.True(t, tree.CategoryMember.Accepts(tree.CategoryField))
	assert.True(t, tree.CategoryMember.Accepts(tree.CategoryTypeDecl))
	assert.False(t, tree.CategoryField.Accepts(tree.CategoryMember))
	assert.True(t, tree.CategoryTrivia.Accepts(tree.CategoryTrivia))
}

func TestParseKind(t *testing.T) {
	k, ok := tree.ParseKind("EnumConstant")
	require.True(t, ok)
	assert.Equal(t, tree.KindEnumConstant, k)
	_, ok = tree.ParseKind("Nope")
	assert.False(t, ok)
}
