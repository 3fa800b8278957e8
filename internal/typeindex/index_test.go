package typeindex_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jstyle/internal/javasrc"
	"jstyle/internal/source"
	"jstyle/internal/tree"
	"jstyle/internal/typeindex"
)

func parse(t *testing.T, id source.FileID, path, src string) *tree.Tree {
	t.Helper()
	tr, err := javasrc.NewParser().Parse(id, path, []byte(src))
	require.NoError(t, err)
	require.Zero(t, tr.ErrorCount(), "fixture must parse cleanly")
	return tr
}

const baseSrc = `package com.acme.base;

public class Base implements Named {
    protected String name;
    private int secret;

    public String getName() { return name; }
    private void hidden(int a) {}
}
`

const namedSrc = `package com.acme.base;

public interface Named {
    String label();
}
`

const childSrc = `package com.acme.app;

import com.acme.base.Base;
import java.util.*;

public class Child extends Base {
    static final int LIMIT = 3;
    String name;

    public String label() { return name; }
    void run(int a, String... rest) {}

    static class Inner extends Child {}
}
`

func newIndex(t *testing.T) *typeindex.Index {
	ix := typeindex.New()
	ix.AddTree(parse(t, 1, "Base.java", baseSrc))
	ix.AddTree(parse(t, 2, "Named.java", namedSrc))
	ix.AddTree(parse(t, 3, "Child.java", childSrc))
	return ix
}

func TestDescribe(t *testing.T) {
	ix := newIndex(t)
	assert.Equal(t, 4, ix.Len())

	child := ix.Get("com.acme.app.Child")
	require.NotNil(t, child)
	assert.Equal(t, "Child", child.Name)
	assert.Equal(t, "com.acme.app", child.Package)
	assert.Equal(t, "Base", child.Super)
	assert.ElementsMatch(t, []string{"com.acme.base.Base", "java.util.*"}, child.Imports)
	assert.Contains(t, child.Fields, "name")
	assert.True(t, child.Fields["LIMIT"].Static)
	assert.Equal(t, "int", child.Fields["LIMIT"].Type)
	assert.Equal(t, "3", child.Fields["LIMIT"].Init)
	assert.Empty(t, child.Fields["name"].Init)
	assert.True(t, child.HasMethod("run", 2))
	assert.False(t, child.HasMethod("run", 1))

	base := ix.Get("com.acme.base.Base")
	require.NotNil(t, base)
	assert.Equal(t, []string{"Named"}, base.Interfaces)
	assert.True(t, base.HasMethod("getName", 0))
	assert.False(t, base.HasMethod("hidden", 1), "private methods are not inherited")

	inner := ix.Get("com.acme.app.Child.Inner")
	require.NotNil(t, inner)
	assert.Equal(t, "Child", inner.Super)

	named := ix.Get("com.acme.base.Named")
	require.NotNil(t, named)
	assert.True(t, named.Abstract)
	assert.True(t, named.HasMethod("label", 0))
}

func TestResolveAndChains(t *testing.T) {
	ix := newIndex(t)
	child := ix.Get("com.acme.app.Child")
	inner := ix.Get("com.acme.app.Child.Inner")

	assert.Same(t, ix.Get("com.acme.base.Base"), ix.Resolve("Base", child))
	assert.Same(t, child, ix.Resolve("Child", inner))
	assert.Nil(t, ix.Resolve("Missing", child))

	chain, unresolved := ix.SuperclassChain(inner)
	require.Len(t, chain, 2)
	assert.Equal(t, "Child", chain[0].Name)
	assert.Equal(t, "Base", chain[1].Name)
	assert.Empty(t, unresolved)

	supers, missing := ix.Supertypes(child)
	var names []string
	for _, s := range supers {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"Base", "Named"}, names)
	assert.Empty(t, missing)
}

func TestCyclicHierarchyTerminates(t *testing.T) {
	ix := typeindex.New()
	ix.AddTree(parse(t, 1, "A.java", "class A extends B {}\n"))
	ix.AddTree(parse(t, 2, "B.java", "class B extends A implements I {}\ninterface I extends I {}\n"))

	a := ix.Get("A")
	require.NotNil(t, a)
	chain, unresolved := ix.SuperclassChain(a)
	require.Len(t, chain, 1)
	assert.Equal(t, "B", chain[0].Name)
	assert.Empty(t, unresolved)

	supers, _ := ix.Supertypes(a)
	assert.Len(t, supers, 2)
}

func TestUnresolvedSuperclass(t *testing.T) {
	ix := typeindex.New()
	ix.AddTree(parse(t, 1, "E.java", "class MyThing extends java.io.IOException {}\n"))
	chain, unresolved := ix.SuperclassChain(ix.Get("MyThing"))
	assert.Empty(t, chain)
	assert.Equal(t, "java.io.IOException", unresolved)
}

func TestReindexReplacesPath(t *testing.T) {
	ix := typeindex.New()
	ix.AddTree(parse(t, 1, "A.java", "class A {}\nclass B {}\n"))
	require.Equal(t, 2, ix.Len())

	ix.AddTree(parse(t, 2, "A.java", "class A {}\n"))
	assert.Equal(t, 1, ix.Len())
	assert.Nil(t, ix.Get("B"))

	ix.RemovePath("A.java")
	assert.Zero(t, ix.Len())
}

func TestObjectMethods(t *testing.T) {
	assert.True(t, typeindex.IsObjectMethod("equals", 1))
	assert.False(t, typeindex.IsObjectMethod("equals", 0))
	assert.True(t, typeindex.IsObjectMethod("toString", 0))
	assert.False(t, typeindex.IsObjectMethod("run", 0))
}
