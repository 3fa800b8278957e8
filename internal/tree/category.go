package tree

// Category is the syntactic category a fix fragment must keep.
type Category uint8

const (
	CategoryNone Category = iota
	CategoryIdentifier
	CategoryExpression
	CategoryStatement
	CategoryField
	CategoryMember
	CategoryTypeDecl
	CategoryEnumConstant
	CategoryParameter
	CategoryCodeBlock
	CategoryComment
	CategoryPackage
	CategoryTrivia
)

var categoryNames = [...]string{
	CategoryNone:         "none",
	CategoryIdentifier:   "identifier",
	CategoryExpression:   "expression",
	CategoryStatement:    "statement",
	CategoryField:        "field",
	CategoryMember:       "member",
	CategoryTypeDecl:     "type-declaration",
	CategoryEnumConstant: "enum-constant",
	CategoryParameter:    "parameter",
	CategoryCodeBlock:    "code-block",
	CategoryComment:      "comment",
	CategoryPackage:      "package",
	CategoryTrivia:       "trivia",
}

func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return "category(?)"
}

// CategoryOf maps a node to the category a replacement must preserve.
func CategoryOf(n Node) Category {
	if n.IsNil() {
		return CategoryNone
	}
	return categoryOfKind(n.Kind())
}

func categoryOfKind(k Kind) Category {
	switch k {
	case KindIdentifier:
		return CategoryIdentifier
	case KindLiteral, KindBinaryExpr, KindConditionalExpr, KindAssignExpr,
		KindCastExpr, KindLambda, KindExpression:
		return CategoryExpression
	case KindStatement, KindLocalVar:
		return CategoryStatement
	case KindField:
		return CategoryField
	case KindMethod, KindConstructor:
		return CategoryMember
	case KindClass, KindInterface, KindEnum, KindRecord, KindAnnotationType:
		return CategoryTypeDecl
	case KindEnumConstant:
		return CategoryEnumConstant
	case KindParameter:
		return CategoryParameter
	case KindCodeBlock:
		return CategoryCodeBlock
	case KindComment:
		return CategoryComment
	case KindPackage:
		return CategoryPackage
	case KindWhitespace:
		return CategoryTrivia
	}
	return CategoryNone
}

// Accepts reports whether a node of category got may stand where c is expected.
// Member is the class-body slot, so fields and nested types qualify too.
func (c Category) Accepts(got Category) bool {
	if c == got {
		return true
	}
	if c == CategoryMember {
		return got == CategoryField || got == CategoryTypeDecl
	}
	return false
}
