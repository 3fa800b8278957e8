package source

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFileSetVersioning проверяет, что каждая запись создаёт новую версию.
func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()

	id1 := fs.Add("Test.java", []byte("class A {}"), 0)
	id2 := fs.Add("Test.java", []byte("class B {}"), 0)
	require.NotEqual(t, id1, id2)

	latest, ok := fs.GetLatest("Test.java")
	require.True(t, ok)
	assert.Equal(t, id2, latest)
	assert.False(t, fs.IsLatest(id1))
	assert.True(t, fs.IsLatest(id2))

	assert.Equal(t, "class A {}", string(fs.Get(id1).Content))
	assert.Equal(t, "class B {}", string(fs.Get(id2).Content))

	second := fs.Get(id2)
	assert.True(t, second.HasPrev)
	assert.Equal(t, id1, second.Prev)
}

// TestCommitInheritsFlags проверяет флаги у версии после правки.
func TestCommitInheritsFlags(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("Mem.java", []byte("int x;\n"))

	next, err := fs.Commit(id, []byte("int y;\n"))
	require.NoError(t, err)

	f := fs.Get(next)
	assert.NotZero(t, f.Flags&FileVirtual)
	assert.NotZero(t, f.Flags&FileEdited)
	assert.Equal(t, "Mem.java", f.Path)

	_, err = fs.Commit(FileID(99), nil)
	assert.Error(t, err)
}

// TestGetUnknownID возвращает nil для несуществующего ID.
func TestGetUnknownID(t *testing.T) {
	fs := NewFileSet()
	assert.Nil(t, fs.Get(3))
	start, end := fs.Resolve(Span{File: 3})
	assert.Equal(t, LineCol{}, start)
	assert.Equal(t, LineCol{}, end)
}

// TestLineIndex проверяет LineIdx и границы строк.
func TestLineIndex(t *testing.T) {
	fs := NewFileSet()
	f := fs.Get(fs.AddVirtual("A.java", []byte("a\nbc\n\nd")))

	assert.Equal(t, []uint32{1, 4, 5}, f.LineIdx)
	assert.Equal(t, uint32(4), f.LineCount())
	assert.Equal(t, "a", f.GetLine(1))
	assert.Equal(t, "bc", f.GetLine(2))
	assert.Equal(t, "", f.GetLine(3))
	assert.Equal(t, "d", f.GetLine(4))
	assert.Equal(t, "", f.GetLine(5))
	assert.Equal(t, "", f.GetLine(0))

	start, end, ok := f.LineBounds(2)
	require.True(t, ok)
	assert.Equal(t, uint32(2), start)
	assert.Equal(t, uint32(4), end)
	assert.Equal(t, uint32(2), f.LineOf(3))
	assert.Equal(t, "bc", f.Text(Span{Start: 2, End: 4}))
	assert.Equal(t, "d", f.Text(Span{Start: 6, End: 100}))
}

// TestResolveUTF8 колонки считаются в байтах.
func TestResolveUTF8(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("Test.java", []byte("α\nβγ"))

	start, end := fs.Resolve(Span{File: id, Start: 0, End: 1})
	assert.Equal(t, LineCol{Line: 1, Col: 1}, start)
	assert.Equal(t, LineCol{Line: 1, Col: 2}, end)

	start, _ = fs.Resolve(Span{File: id, Start: 5, End: 5})
	assert.Equal(t, LineCol{Line: 2, Col: 3}, start)
}

func TestLoadNormalizesContent(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]struct {
		raw   string
		want  string
		flags FileFlags
	}{
		"plain": {raw: "a\nb\n", want: "a\nb\n"},
		"bom":   {raw: "\xEF\xBB\xBFa\nb\n", want: "a\nb\n", flags: FileHadBOM},
		"crlf":  {raw: "a\r\nb\r\n", want: "a\nb\n", flags: FileNormalizedCRLF},
		"lone":  {raw: "a\rb", want: "a\rb"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".java")
			require.NoError(t, os.WriteFile(path, []byte(tc.raw), 0o600))

			fs := NewFileSet()
			id, err := fs.Load(path)
			require.NoError(t, err)
			f := fs.Get(id)
			assert.Equal(t, tc.want, string(f.Content))
			assert.Equal(t, tc.flags, f.Flags)
			assert.Equal(t, tc.raw, string(f.DiskBytes()), "write-back restores the original form")
		})
	}

	_, err := NewFileSet().Load(filepath.Join(dir, "missing.java"))
	assert.Error(t, err)
}

// TestConcurrentAdd параллельные Add не теряют версий.
func TestConcurrentAdd(t *testing.T) {
	fs := NewFileSet()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := fs.AddVirtual("Shared.java", []byte("x"))
			assert.NotNil(t, fs.Get(id))
		}()
	}
	wg.Wait()
	assert.Equal(t, 32, fs.Len())
	assert.Len(t, fs.Paths(), 1)
}
