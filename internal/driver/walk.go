package driver

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// ignoreMatcher combines the root .gitignore with configured excludes.
type ignoreMatcher struct {
	rules []*ignore.GitIgnore
}

func newIgnoreMatcher(root string, excludes []string) (*ignoreMatcher, error) {
	m := &ignoreMatcher{}
	gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	switch {
	case err == nil:
		m.rules = append(m.rules, gi)
	case !errors.Is(err, os.ErrNotExist):
		return nil, err
	}
	if len(excludes) > 0 {
		m.rules = append(m.rules, ignore.CompileIgnoreLines(excludes...))
	}
	return m, nil
}

// ignored reports whether the slash-separated rel path is excluded.
func (m *ignoreMatcher) ignored(rel string, dir bool) bool {
	for _, r := range m.rules {
		if r.MatchesPath(rel) || (dir && r.MatchesPath(rel+"/")) {
			return true
		}
	}
	return false
}

// listJavaFiles returns the sorted *.java files under root that are not
// ignored. A root that is a file is returned as is.
func listJavaFiles(root string, excludes []string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{root}, nil
	}
	m, err := newIgnoreMatcher(root, excludes)
	if err != nil {
		return nil, err
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if d.Name() == ".git" || m.ignored(rel, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(path, ".java") && !m.ignored(rel, false) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	// детерминированный порядок
	sort.Strings(files)
	return files, nil
}
