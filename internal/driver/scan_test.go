package driver

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jstyle/internal/config"
	"jstyle/internal/observ"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

func TestListFilesHonoursIgnores(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".gitignore":                 "build/\n*.gen.java\n",
		"src/main/java/a/A.java":     "class A {}\n",
		"src/main/java/a/B.gen.java": "class B {}\n",
		"src/main/java/a/notes.txt":  "",
		"build/Out.java":             "class Out {}\n",
		"legacy/Old.java":            "class Old {}\n",
		".git/hooks/Hook.java":       "class Hook {}\n",
		"src/test/java/a/ATest.java": "class ATest {}\n",
	})
	cfg := config.Default()
	cfg.Root = root
	cfg.Exclude = []string{"legacy/"}
	w := New(Options{Config: cfg})

	files, err := w.ListFiles(root)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "src/main/java/a/A.java"),
		filepath.Join(root, "src/test/java/a/ATest.java"),
	}, files)

	single, err := w.ListFiles(filepath.Join(root, "build/Out.java"))
	require.NoError(t, err)
	assert.Len(t, single, 1, "an explicit file is never filtered")
}

// recorder collects progress events from worker goroutines.
type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) OnEvent(ev Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recorder) count(stage Stage, status Status) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.events {
		if ev.Stage == stage && ev.Status == status {
			n++
		}
	}
	return n
}

func TestScanDir(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/main/java/p/Shape.java":  "package p;\n\npublic class Shape {\n    public int area() {\n        return 0;\n    }\n}\n",
		"src/main/java/p/Circle.java": "package p;\n\npublic class Circle extends Shape {\n    private boolean isRound;\n\n    public int area() {\n        return 1;\n    }\n}\n",
		"src/main/java/p/Empty.java":  "package p;\n\nclass Empty {\n}\n",
	})
	cfg := config.Default()
	cfg.Root = root
	log, _ := test.NewNullLogger()
	w := New(Options{Config: cfg, Registry: registryOf(t, "boolean-naming", "override-annotation"), Logger: log})

	rec := &recorder{}
	timer := observ.NewTimer()
	res, err := w.ScanDir(context.Background(), root, ScanOptions{Jobs: 2, Progress: rec, Timer: timer})
	require.NoError(t, err)
	require.Len(t, res.Files, 3)
	for _, f := range res.Files {
		assert.NoError(t, f.Err)
		assert.NotNil(t, f.Result)
	}

	ds := res.Bag.Items()
	require.Len(t, ds, 2)
	assert.Equal(t, "boolean-naming", ds[0].Rule)
	assert.Equal(t, "override-annotation", ds[1].Rule, "Shape is indexed before Circle is checked")
	assert.Empty(t, res.Failures)

	assert.Equal(t, 3, rec.count(StageLoad, StatusQueued))
	assert.Equal(t, 3, rec.count(StageCheck, StatusDone))

	var phases []string
	for _, p := range timer.Report().Phases {
		phases = append(phases, p.Name)
	}
	assert.Equal(t, []string{"load", "parse", "index", "check"}, phases)
}

func TestScanSkipsUnreadableFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"A.java": "class A {\n    boolean isOpen;\n}\n"})
	log, hook := test.NewNullLogger()
	w := New(Options{Registry: registryOf(t, "boolean-naming"), Logger: log})

	missing := filepath.Join(root, "Missing.java")
	res, err := w.ScanFiles(context.Background(), []string{filepath.Join(root, "A.java"), missing}, ScanOptions{})
	require.NoError(t, err)
	require.Len(t, res.Files, 2)
	assert.Error(t, res.Files[1].Err)
	assert.Nil(t, res.Files[1].Result)
	assert.Equal(t, 1, res.Bag.Len())
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "file skipped", hook.LastEntry().Message)
}

func TestScanCancelled(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"A.java": "class A {}\n"})
	w := newWorkspace(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := w.ScanDir(ctx, root, ScanOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}
