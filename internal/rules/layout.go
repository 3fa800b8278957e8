package rules

import (
	"path"
	"strings"

	"jstyle/internal/source"
)

// Layout tells rules where a file sits in the project.
type Layout struct {
	Root        string
	TestRoots   []string
	SourceRoots []string
}

// rel returns "/"-joined path relative to Root, with a leading slash.
func (l Layout) rel(p string) string {
	p = source.NormalizePath(p)
	if l.Root != "" {
		if r, err := source.RelativePath(p, l.Root); err == nil {
			p = r
		}
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

// matchRoot finds a configured root inside p and returns the remainder after it.
func matchRoot(p string, roots []string) (string, bool) {
	for _, r := range roots {
		r = strings.Trim(source.NormalizePath(r), "/")
		if r == "" || r == "." {
			continue
		}
		if i := strings.Index(p, "/"+r+"/"); i >= 0 {
			return p[i+len(r)+2:], true
		}
	}
	return "", false
}

// IsTest reports whether the file lives under a test root.
func (l Layout) IsTest(p string) bool {
	_, ok := matchRoot(l.rel(p), l.TestRoots)
	return ok
}

// PackageDir returns the file's directory relative to its source root.
func (l Layout) PackageDir(p string) (string, bool) {
	rest, ok := matchRoot(l.rel(p), l.SourceRoots)
	if !ok {
		return "", false
	}
	dir := path.Dir(rest)
	if dir == "." {
		dir = ""
	}
	return dir, true
}
