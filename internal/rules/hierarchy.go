package rules

import (
	"fmt"
	"maps"
	"slices"

	"jstyle/internal/convention"
	"jstyle/internal/diag"
	"jstyle/internal/tree"
	"jstyle/internal/typeindex"
)

// memberOwner describes the type a member belongs to: a type declaration,
// an enum constant body or an anonymous class.
func memberOwner(ctx *Context, member tree.Node) *typeindex.TypeInfo {
	body := member.Parent()
	for body.Kind() == tree.KindClassBody && body.Parent().Kind() == tree.KindClassBody {
		body = body.Parent()
	}
	holder := body.Parent()
	switch {
	case holder.Kind().IsTypeDecl():
		return ctx.TypeOf(holder)
	case holder.Kind() == tree.KindEnumConstant:
		enum := ctx.TypeOf(convention.EnclosingType(holder))
		return anonymousType(enum, enum.Qualified)
	case holder.Grammar() == "object_creation_expression":
		outer := convention.EnclosingType(holder)
		if outer.IsNil() {
			return nil
		}
		return anonymousType(ctx.TypeOf(outer), typeindex.BareType(holder.ChildByField("type").Text()))
	}
	return nil
}

// anonymousType is an unnamed subtype of super declared inside outer.
func anonymousType(outer *typeindex.TypeInfo, super string) *typeindex.TypeInfo {
	return &typeindex.TypeInfo{
		Qualified: outer.Qualified,
		Package:   outer.Package,
		Path:      outer.Path,
		Kind:      tree.KindClass,
		Super:     super,
		Fields:    make(map[string]typeindex.FieldInfo),
		Imports:   outer.Imports,
	}
}

// accessors finds the getter and setter of field among the methods of body.
func accessors(body tree.Node, field string, boolean bool) []tree.Node {
	getters := convention.GetterNames(field, boolean)
	setter := convention.SetterName(field)
	var out []tree.Node
	for _, m := range typeindex.Members(body) {
		if m.Kind() != tree.KindMethod {
			continue
		}
		name, arity := convention.DeclaredName(m).Text(), typeindex.Arity(m)
		if (arity == 0 && slices.Contains(getters, name)) || (arity == 1 && name == setter) {
			out = append(out, m)
		}
	}
	return out
}

func deleteAll(title string, nodes []tree.Node) *diag.Fix {
	if len(nodes) == 0 {
		return nil
	}
	f := diag.DeleteNode(title, nodes[0])
	for _, n := range nodes[1:] {
		f.Then(diag.FixStep{Target: n.Ref(), Placement: diag.PlaceDelete})
	}
	return f.WithApplicability(diag.FixApplicabilityManualReview)
}

// field-hiding: a field must not reuse the name of a superclass field.
type fieldHiding struct{ base }

func newFieldHiding() *fieldHiding {
	return &fieldHiding{base{
		id:       "field-hiding",
		code:     diag.StrFieldHiding,
		family:   FamilyStructural,
		kinds:    []tree.Kind{tree.KindField},
		severity: diag.SevError,
	}}
}

func (r *fieldHiding) Check(ctx *Context, field tree.Node) error {
	if convention.ModifiersOf(field).IsStatic() {
		return nil
	}
	owner := memberOwner(ctx, field)
	if owner == nil || owner.Super == "" {
		return nil
	}
	chain, _ := ctx.Index().SuperclassChain(owner)
	decls := convention.Declarators(field)
	for _, d := range decls {
		name := convention.DeclaredName(d)
		for _, super := range chain {
			inherited, ok := super.Fields[name.Text()]
			if !ok || inherited.Static {
				continue
			}
			b := ctx.Report(r.code, name, fmt.Sprintf("field %q hides the field of %s", name.Text(), super.Qualified))
			if len(decls) == 1 {
				boolean := convention.IsBooleanType(convention.DeclaredType(field).Text())
				nodes := append([]tree.Node{field}, accessors(field.Parent(), name.Text(), boolean)...)
				b.WithFix(deleteAll("remove the field and its accessors", nodes))
			}
			b.Emit()
			break
		}
	}
	return nil
}

// redundant-accessor: a class does not redeclare accessors of a field it inherits.
type redundantAccessor struct{ base }

func newRedundantAccessor() *redundantAccessor {
	return &redundantAccessor{base{
		id:       "redundant-accessor",
		code:     diag.StrRedundantAccessor,
		family:   FamilyStructural,
		kinds:    []tree.Kind{tree.KindClass},
		severity: diag.SevError,
	}}
}

func (r *redundantAccessor) Check(ctx *Context, decl tree.Node) error {
	owner := ctx.TypeOf(decl)
	if owner.Super == "" {
		return nil
	}
	body := decl.ChildOfKind(tree.KindClassBody)
	name := convention.DeclaredName(decl)
	seen := make(map[string]bool)
	chain, _ := ctx.Index().SuperclassChain(owner)
	for _, super := range chain {
		for _, fname := range slices.Sorted(maps.Keys(super.Fields)) {
			inherited := super.Fields[fname]
			if seen[fname] || inherited.Static {
				continue
			}
			seen[fname] = true
			if _, redeclared := owner.Fields[fname]; redeclared {
				continue
			}
			methods := accessors(body, fname, convention.IsBooleanType(inherited.Type))
			if len(methods) == 0 {
				continue
			}
			ctx.Report(r.code, name, fmt.Sprintf("%s redeclares accessors of field %q inherited from %s", owner.Name, fname, super.Qualified)).
				WithFix(deleteAll("remove the redundant accessors", methods)).
				Emit()
		}
	}
	return nil
}

// override-annotation: methods overriding a supertype method carry @Override.
type overrideAnnotation struct{ base }

func newOverrideAnnotation() *overrideAnnotation {
	return &overrideAnnotation{base{
		id:       "override-annotation",
		code:     diag.StrMissingOverride,
		family:   FamilyStructural,
		kinds:    []tree.Kind{tree.KindMethod},
		severity: diag.SevWarning,
	}}
}

func (r *overrideAnnotation) Check(ctx *Context, method tree.Node) error {
	mods := convention.ModifiersOf(method)
	if mods.IsStatic() || mods.IsPrivate() || mods.HasAnnotation("Override") {
		return nil
	}
	name, arity := convention.DeclaredName(method).Text(), typeindex.Arity(method)
	owner := memberOwner(ctx, method)
	if owner == nil || name == "" {
		return nil
	}
	from := "java.lang.Object"
	if !typeindex.IsObjectMethod(name, arity) {
		from = ""
		supers, _ := ctx.Index().Supertypes(owner)
		for _, s := range supers {
			if s.HasMethod(name, arity) {
				from = s.Qualified
				break
			}
		}
	}
	if from == "" {
		return nil
	}
	indent := lineIndent(ctx.Source(), method.Start())
	ctx.Report(r.code, convention.DeclaredName(method), fmt.Sprintf("method %s overrides %s.%s without @Override", name, from, name)).
		WithFix(diag.ReplaceNode("add @Override", method, tree.CategoryMember,
			func(target tree.Node) (string, error) {
				return "@Override\n" + indent + target.Text(), nil
			}).
			WithApplicability(diag.FixApplicabilitySafeWithHeuristics).
			Preferred()).
		Emit()
	return nil
}
