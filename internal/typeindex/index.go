// Package typeindex records declared types across a scan so relational rules
// can walk supertypes. Walks are cycle-safe and bounded by MaxDepth.
package typeindex

import (
	"strings"
	"sync"

	"jstyle/internal/tree"
)

// MaxDepth caps every hierarchy walk.
const MaxDepth = 64

// ObjectMethods are the overridable methods of java.lang.Object by name and arity.
var ObjectMethods = map[string]int{
	"toString": 0,
	"hashCode": 0,
	"equals":   1,
	"clone":    0,
	"finalize": 0,
}

// IsObjectMethod reports whether name/arity overrides a java.lang.Object method.
func IsObjectMethod(name string, arity int) bool {
	a, ok := ObjectMethods[name]
	return ok && a == arity
}

// Index maps type names to TypeInfo. Safe for concurrent use.
type Index struct {
	mu          sync.RWMutex
	byQualified map[string]*TypeInfo
	bySimple    map[string][]*TypeInfo
	byPath      map[string][]*TypeInfo
}

func New() *Index {
	return &Index{
		byQualified: make(map[string]*TypeInfo),
		bySimple:    make(map[string][]*TypeInfo),
		byPath:      make(map[string][]*TypeInfo),
	}
}

// AddTree indexes every type declared in t, replacing earlier entries for its path.
func (ix *Index) AddTree(t *tree.Tree) {
	var infos []*TypeInfo
	t.Walk(func(n tree.Node) bool {
		if n.Kind().IsTypeDecl() {
			infos = append(infos, Describe(n))
		}
		return true
	})

	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.removeLocked(t.Path())
	for _, ti := range infos {
		ix.byQualified[ti.Qualified] = ti
		ix.bySimple[ti.Name] = append(ix.bySimple[ti.Name], ti)
	}
	ix.byPath[t.Path()] = infos
}

// RemovePath drops the types declared in path.
func (ix *Index) RemovePath(path string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.removeLocked(path)
}

func (ix *Index) removeLocked(path string) {
	for _, ti := range ix.byPath[path] {
		if ix.byQualified[ti.Qualified] == ti {
			delete(ix.byQualified, ti.Qualified)
		}
		list := ix.bySimple[ti.Name]
		kept := list[:0]
		for _, other := range list {
			if other != ti {
				kept = append(kept, other)
			}
		}
		if len(kept) == 0 {
			delete(ix.bySimple, ti.Name)
		} else {
			ix.bySimple[ti.Name] = kept
		}
	}
	delete(ix.byPath, path)
}

// Len returns the number of indexed types.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.byQualified)
}

// Get returns a type by qualified name.
func (ix *Index) Get(qualified string) *TypeInfo {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.byQualified[qualified]
}

// Resolve finds the type a name refers to from the context of from.
// Order: qualified name, nested type of from, same package, single import,
// wildcard import, unique simple name. Unknown names resolve to nil.
func (ix *Index) Resolve(name string, from *TypeInfo) *TypeInfo {
	if name == "" {
		return nil
	}
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if ti := ix.byQualified[name]; ti != nil {
		return ti
	}
	if from != nil {
		if ti := ix.byQualified[from.Qualified+"."+name]; ti != nil {
			return ti
		}
		if outer := outerName(from.Qualified); outer != "" {
			if ti := ix.byQualified[outer+"."+name]; ti != nil {
				return ti
			}
		}
	}
	simple := SimpleName(name)
	candidates := ix.bySimple[simple]
	if len(candidates) == 0 {
		return nil
	}
	if strings.Contains(name, ".") {
		// квалифицированное имя без точного совпадения
		for _, c := range candidates {
			if strings.HasSuffix(c.Qualified, "."+name) {
				return c
			}
		}
		return nil
	}
	if from != nil {
		for _, c := range candidates {
			if c.Package == from.Package && outerName(c.Qualified) == c.Package {
				return c
			}
		}
		for _, imp := range from.Imports {
			if SimpleName(imp) == simple {
				if ti := ix.byQualified[imp]; ti != nil {
					return ti
				}
			}
		}
		for _, imp := range from.Imports {
			if pkg, ok := strings.CutSuffix(imp, ".*"); ok {
				if ti := ix.byQualified[pkg+"."+simple]; ti != nil {
					return ti
				}
			}
		}
	}
	if len(candidates) == 1 {
		return candidates[0]
	}
	return nil
}

func outerName(qualified string) string {
	if i := strings.LastIndexByte(qualified, '.'); i >= 0 {
		return qualified[:i]
	}
	return ""
}

// SuperclassChain follows extends clauses from t. It returns the resolved
// ancestors nearest first and the name of the first superclass that could
// not be resolved ("" when the chain ends inside the index or at Object).
func (ix *Index) SuperclassChain(t *TypeInfo) ([]*TypeInfo, string) {
	var chain []*TypeInfo
	seen := map[*TypeInfo]bool{t: true}
	cur := t
	for depth := 0; depth < MaxDepth && cur.Super != ""; depth++ {
		next := ix.Resolve(cur.Super, cur)
		if next == nil {
			return chain, cur.Super
		}
		if seen[next] {
			break
		}
		seen[next] = true
		chain = append(chain, next)
		cur = next
	}
	return chain, ""
}

// Supertypes returns every resolved superclass and interface of t, breadth first.
// Unresolved names are returned separately.
func (ix *Index) Supertypes(t *TypeInfo) (resolved []*TypeInfo, unresolved []string) {
	type item struct {
		ti    *TypeInfo
		depth int
	}
	seen := map[*TypeInfo]bool{t: true}
	queue := []item{{t, 0}}
	for len(queue) > 0 {
		it := queue[0]
		queue = queue[1:]
		if it.depth >= MaxDepth {
			continue
		}
		names := it.ti.Interfaces
		if it.ti.Super != "" {
			names = append([]string{it.ti.Super}, names...)
		}
		for _, name := range names {
			next := ix.Resolve(name, it.ti)
			if next == nil {
				unresolved = append(unresolved, name)
				continue
			}
			if seen[next] {
				continue
			}
			seen[next] = true
			resolved = append(resolved, next)
			queue = append(queue, item{next, it.depth + 1})
		}
	}
	return resolved, unresolved
}
