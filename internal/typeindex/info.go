package typeindex

import (
	"strings"

	"jstyle/internal/convention"
	"jstyle/internal/tree"
)

// FieldInfo describes a declared field.
type FieldInfo struct {
	Name   string
	Type   string
	Init   string // текст инициализатора, "" если его нет
	Static bool
}

// MethodInfo describes a declared method.
type MethodInfo struct {
	Name    string
	Arity   int
	Static  bool
	Private bool
}

// TypeInfo is what the index knows about one type declaration.
type TypeInfo struct {
	Name       string
	Qualified  string
	Package    string
	Path       string
	Kind       tree.Kind
	Abstract   bool
	Super      string   // как написано в extends, без аргументов типа
	Interfaces []string // implements / extends у интерфейсов
	Fields     map[string]FieldInfo
	Methods    []MethodInfo
	Imports    []string
}

// HasMethod reports an inheritable instance method name/arity.
func (t *TypeInfo) HasMethod(name string, arity int) bool {
	for _, m := range t.Methods {
		if m.Name == name && m.Arity == arity && !m.Private && !m.Static {
			return true
		}
	}
	return false
}

// FileInfo is the package and import context of one file.
type FileInfo struct {
	Package string
	Imports []string
}

// FileContext reads the package declaration and imports of a snapshot.
func FileContext(t *tree.Tree) FileInfo {
	var fi FileInfo
	for _, c := range t.Root().Children() {
		switch c.Kind() {
		case tree.KindPackage:
			fi.Package = packageName(c)
		case tree.KindImport:
			if imp := importName(c); imp != "" {
				fi.Imports = append(fi.Imports, imp)
			}
		}
	}
	return fi
}

func packageName(pkg tree.Node) string {
	for _, c := range pkg.Significant() {
		switch c.Grammar() {
		case "identifier", "scoped_identifier":
			return c.Text()
		}
	}
	return ""
}

// importName returns "a.b.C" or "a.b.*"; static imports are skipped.
func importName(imp tree.Node) string {
	var name string
	for _, c := range imp.Significant() {
		switch {
		case c.Kind() == tree.KindKeyword && c.Text() == "static":
			return ""
		case c.Grammar() == "identifier" || c.Grammar() == "scoped_identifier":
			name = c.Text()
		case c.Grammar() == "asterisk":
			name += ".*"
		}
	}
	return name
}

// QualifiedName returns pkg.Outer.Inner for a type declaration node.
func QualifiedName(decl tree.Node) string {
	parts := []string{convention.DeclaredName(decl).Text()}
	for p := convention.EnclosingType(decl); !p.IsNil(); p = convention.EnclosingType(p) {
		parts = append(parts, convention.DeclaredName(p).Text())
	}
	if pkg := FileContext(decl.Tree()).Package; pkg != "" {
		parts = append(parts, pkg)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, ".")
}

// Describe builds the TypeInfo of a type declaration node.
func Describe(decl tree.Node) *TypeInfo {
	fi := FileContext(decl.Tree())
	ti := &TypeInfo{
		Name:      convention.DeclaredName(decl).Text(),
		Qualified: QualifiedName(decl),
		Package:   fi.Package,
		Path:      decl.Tree().Path(),
		Kind:      decl.Kind(),
		Abstract:  convention.ModifiersOf(decl).IsAbstract() || decl.Kind() == tree.KindInterface,
		Fields:    make(map[string]FieldInfo),
		Imports:   fi.Imports,
	}
	if sc := decl.ChildOfKind(tree.KindSuperclass); !sc.IsNil() {
		if types := typeNames(sc); len(types) > 0 {
			ti.Super = types[0]
		}
	}
	for _, itf := range decl.ChildrenOfKind(tree.KindInterfaces) {
		ti.Interfaces = append(ti.Interfaces, typeNames(itf)...)
	}

	body := decl.ChildOfKind(tree.KindClassBody)
	for _, member := range Members(body) {
		switch member.Kind() {
		case tree.KindField:
			mods := convention.ModifiersOf(member)
			typ := convention.DeclaredType(member).Text()
			for _, d := range convention.Declarators(member) {
				name := convention.DeclaredName(d).Text()
				ti.Fields[name] = FieldInfo{
					Name:   name,
					Type:   typ,
					Init:   d.ChildByField("value").Text(),
					Static: mods.IsStatic(),
				}
			}
		case tree.KindMethod:
			mods := convention.ModifiersOf(member)
			ti.Methods = append(ti.Methods, MethodInfo{
				Name:    convention.DeclaredName(member).Text(),
				Arity:   Arity(member),
				Static:  mods.IsStatic(),
				Private: mods.IsPrivate(),
			})
		}
	}
	return ti
}

// Members returns the member declarations of a class body, including the
// declarations section of an enum body.
func Members(body tree.Node) []tree.Node {
	var out []tree.Node
	for _, c := range body.Significant() {
		if c.Kind() == tree.KindClassBody {
			out = append(out, Members(c)...)
			continue
		}
		out = append(out, c)
	}
	return out
}

// Arity counts the declared parameters of a method or constructor.
func Arity(method tree.Node) int {
	params := method.ChildByField("parameters")
	return len(params.ChildrenOfKind(tree.KindParameter))
}

// typeNames returns the type names listed in an extends/implements clause.
func typeNames(clause tree.Node) []string {
	var out []string
	clause.Walk(func(n tree.Node) bool {
		if n.Kind() == tree.KindType {
			out = append(out, BareType(n.Text()))
			return false
		}
		return true
	})
	return out
}

// BareType drops type arguments and blanks: "Map<K, V>" becomes "Map".
func BareType(s string) string {
	if i := strings.IndexByte(s, '<'); i >= 0 {
		s = s[:i]
	}
	return strings.Join(strings.Fields(s), "")
}

// SimpleName returns the last segment of a dotted name.
func SimpleName(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}
