package javasrc

import (
	"strings"

	"jstyle/internal/tree"
)

var namedKinds = map[string]tree.Kind{
	"program":                             tree.KindFile,
	"package_declaration":                 tree.KindPackage,
	"import_declaration":                  tree.KindImport,
	"class_declaration":                   tree.KindClass,
	"interface_declaration":               tree.KindInterface,
	"enum_declaration":                    tree.KindEnum,
	"record_declaration":                  tree.KindRecord,
	"annotation_type_declaration":         tree.KindAnnotationType,
	"enum_constant":                       tree.KindEnumConstant,
	"class_body":                          tree.KindClassBody,
	"interface_body":                      tree.KindClassBody,
	"enum_body":                           tree.KindClassBody,
	"enum_body_declarations":              tree.KindClassBody,
	"annotation_type_body":                tree.KindClassBody,
	"field_declaration":                   tree.KindField,
	"constant_declaration":                tree.KindField,
	"method_declaration":                  tree.KindMethod,
	"annotation_type_element_declaration": tree.KindMethod,
	"constructor_declaration":             tree.KindConstructor,
	"compact_constructor_declaration":     tree.KindConstructor,
	"formal_parameters":                   tree.KindParameterList,
	"formal_parameter":                    tree.KindParameter,
	"spread_parameter":                    tree.KindParameter,
	"catch_formal_parameter":              tree.KindParameter,
	"local_variable_declaration":          tree.KindLocalVar,
	"variable_declarator":                 tree.KindVariableDeclarator,
	"identifier":                          tree.KindIdentifier,
	"binary_expression":                   tree.KindBinaryExpr,
	"ternary_expression":                  tree.KindConditionalExpr,
	"assignment_expression":               tree.KindAssignExpr,
	"cast_expression":                     tree.KindCastExpr,
	"lambda_expression":                   tree.KindLambda,
	"block":                               tree.KindCodeBlock,
	"constructor_body":                    tree.KindCodeBlock,
	"modifiers":                           tree.KindModifiers,
	"annotation":                          tree.KindAnnotation,
	"marker_annotation":                   tree.KindAnnotation,
	"dimensions":                          tree.KindDimensions,
	"line_comment":                        tree.KindComment,
	"block_comment":                       tree.KindComment,
	"superclass":                          tree.KindSuperclass,
	"super_interfaces":                    tree.KindInterfaces,
	"extends_interfaces":                  tree.KindInterfaces,
	"ERROR":                               tree.KindError,
	"this":                                tree.KindKeyword,
	"super":                               tree.KindKeyword,
	"array_initializer":                   tree.KindExpression,
	"field_access":                        tree.KindExpression,
	"method_invocation":                   tree.KindExpression,
	"array_access":                        tree.KindExpression,
	"method_reference":                    tree.KindExpression,
	"class_literal":                       tree.KindExpression,
	"type_identifier":                     tree.KindType,
	"scoped_type_identifier":              tree.KindType,
	"generic_type":                        tree.KindType,
	"array_type":                          tree.KindType,
	"integral_type":                       tree.KindType,
	"floating_point_type":                 tree.KindType,
	"boolean_type":                        tree.KindType,
	"void_type":                           tree.KindType,
}

var literalKinds = map[string]bool{
	"decimal_integer_literal":        true,
	"hex_integer_literal":            true,
	"octal_integer_literal":          true,
	"binary_integer_literal":         true,
	"decimal_floating_point_literal": true,
	"hex_floating_point_literal":     true,
	"true":                           true,
	"false":                          true,
	"character_literal":              true,
	"string_literal":                 true,
	"text_block":                     true,
	"null_literal":                   true,
}

const punctChars = "{}()[];,.@"

// kindOf maps a grammar node type to a tree.Kind.
func kindOf(grammar string, named bool) tree.Kind {
	if named {
		if literalKinds[grammar] {
			return tree.KindLiteral
		}
		if k, ok := namedKinds[grammar]; ok {
			return k
		}
		switch {
		case strings.HasSuffix(grammar, "_statement"):
			return tree.KindStatement
		case strings.HasSuffix(grammar, "_expression"):
			return tree.KindExpression
		case strings.HasSuffix(grammar, "_type"):
			return tree.KindType
		}
		return tree.KindOther
	}
	switch {
	case grammar == "":
		return tree.KindOther
	case isWord(grammar):
		return tree.KindKeyword
	case grammar == "..." || (len(grammar) == 1 && strings.Contains(punctChars, grammar)):
		return tree.KindPunct
	}
	return tree.KindOperator
}

// flattened kinds keep no children: their inner tokens carry no structure rules care about.
func flattened(k tree.Kind) bool {
	return k == tree.KindLiteral || k == tree.KindComment
}

func isWord(s string) bool {
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r == '_') {
			return false
		}
	}
	return true
}
