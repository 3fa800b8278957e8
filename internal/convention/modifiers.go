package convention

import (
	"strings"

	"jstyle/internal/tree"
)

// Modifiers is the modifier set of one declaration, implicit ones included.
type Modifiers struct {
	words       map[string]bool
	Annotations []tree.Node
}

// ModifiersOf reads the modifiers of decl. Interface fields are implicitly
// public static final, interface methods implicitly public.
func ModifiersOf(decl tree.Node) Modifiers {
	m := Modifiers{words: make(map[string]bool)}
	if mods := decl.ChildOfKind(tree.KindModifiers); !mods.IsNil() {
		for _, c := range mods.Children() {
			switch c.Kind() {
			case tree.KindKeyword:
				m.words[c.Text()] = true
			case tree.KindAnnotation:
				m.Annotations = append(m.Annotations, c)
			}
		}
	}
	owner := EnclosingType(decl)
	if owner.Kind() == tree.KindInterface || owner.Kind() == tree.KindAnnotationType {
		m.words["public"] = true
		if decl.Kind() == tree.KindField {
			m.words["static"] = true
			m.words["final"] = true
		}
	}
	return m
}

func (m Modifiers) Has(word string) bool { return m.words[word] }

func (m Modifiers) IsStatic() bool   { return m.words["static"] }
func (m Modifiers) IsFinal() bool    { return m.words["final"] }
func (m Modifiers) IsAbstract() bool { return m.words["abstract"] }
func (m Modifiers) IsPrivate() bool  { return m.words["private"] }

// HasAnnotation matches simple and qualified annotation names.
func (m Modifiers) HasAnnotation(name string) bool {
	for _, a := range m.Annotations {
		if AnnotationName(a) == name {
			return true
		}
	}
	return false
}

// AnnotationName returns the simple name of an annotation node.
func AnnotationName(a tree.Node) string {
	n := a.ChildByField("name").Text()
	if i := strings.LastIndexByte(n, '.'); i >= 0 {
		n = n[i+1:]
	}
	return n
}

// EnclosingType returns the nearest type declaration containing n.
func EnclosingType(n tree.Node) tree.Node {
	return n.AncestorWhere(func(p tree.Node) bool { return p.Kind().IsTypeDecl() }, nil)
}

// DeclaredName returns the name identifier of a declaration or declarator.
func DeclaredName(decl tree.Node) tree.Node {
	return decl.ChildByField("name")
}

// Declarators returns the variable declarators of a field or local variable.
func Declarators(decl tree.Node) []tree.Node {
	return decl.ChildrenByField("declarator")
}

// DeclaredType returns the type node of a field, local, parameter or method.
func DeclaredType(decl tree.Node) tree.Node {
	return decl.ChildByField("type")
}

// IsBooleanType reports whether the type text denotes a boolean.
func IsBooleanType(typ string) bool {
	switch typ {
	case "boolean", "Boolean", "java.lang.Boolean":
		return true
	}
	return false
}

// GetterNames returns candidate getter names for a field.
func GetterNames(field string, boolean bool) []string {
	suffix := upperFirst(field)
	names := []string{"get" + suffix}
	if boolean {
		names = append(names, "is"+suffix)
		if strings.HasPrefix(field, "is") && len(field) > 2 {
			names = append(names, field)
		}
	}
	return names
}

// SetterName returns the setter name for a field.
func SetterName(field string) string {
	return "set" + upperFirst(field)
}
