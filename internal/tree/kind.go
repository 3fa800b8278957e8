package tree

// Kind classifies a node independent of the parser's grammar names.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindFile
	KindPackage
	KindImport
	KindClass
	KindInterface
	KindEnum
	KindEnumConstant
	KindRecord
	KindAnnotationType
	KindClassBody
	KindField
	KindMethod
	KindConstructor
	KindParameterList
	KindParameter
	KindLocalVar
	KindVariableDeclarator
	KindIdentifier
	KindLiteral
	KindBinaryExpr
	KindConditionalExpr
	KindAssignExpr
	KindCastExpr
	KindLambda
	KindExpression
	KindCodeBlock
	KindStatement
	KindModifiers
	KindAnnotation
	KindType
	KindDimensions
	KindSuperclass
	KindInterfaces
	KindKeyword
	KindOperator
	KindPunct
	KindWhitespace
	KindComment
	KindError
	KindOther

	kindCount
)

var kindNames = [...]string{
	KindInvalid:            "Invalid",
	KindFile:               "File",
	KindPackage:            "Package",
	KindImport:             "Import",
	KindClass:              "Class",
	KindInterface:          "Interface",
	KindEnum:               "Enum",
	KindEnumConstant:       "EnumConstant",
	KindRecord:             "Record",
	KindAnnotationType:     "AnnotationType",
	KindClassBody:          "ClassBody",
	KindField:              "Field",
	KindMethod:             "Method",
	KindConstructor:        "Constructor",
	KindParameterList:      "ParameterList",
	KindParameter:          "Parameter",
	KindLocalVar:           "LocalVar",
	KindVariableDeclarator: "VariableDeclarator",
	KindIdentifier:         "Identifier",
	KindLiteral:            "Literal",
	KindBinaryExpr:         "BinaryExpr",
	KindConditionalExpr:    "ConditionalExpr",
	KindAssignExpr:         "AssignExpr",
	KindCastExpr:           "CastExpr",
	KindLambda:             "Lambda",
	KindExpression:         "Expression",
	KindCodeBlock:          "CodeBlock",
	KindStatement:          "Statement",
	KindModifiers:          "Modifiers",
	KindAnnotation:         "Annotation",
	KindType:               "Type",
	KindDimensions:         "Dimensions",
	KindSuperclass:         "Superclass",
	KindInterfaces:         "Interfaces",
	KindKeyword:            "Keyword",
	KindOperator:           "Operator",
	KindPunct:              "Punct",
	KindWhitespace:         "Whitespace",
	KindComment:            "Comment",
	KindError:              "Error",
	KindOther:              "Other",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(?)"
}

// KindCount is the size of a table indexed by Kind.
const KindCount = int(kindCount)

// IsTypeDecl reports whether k declares a type.
func (k Kind) IsTypeDecl() bool {
	switch k {
	case KindClass, KindInterface, KindEnum, KindRecord, KindAnnotationType:
		return true
	}
	return false
}

// IsTrivia reports whether k carries no program meaning.
func (k Kind) IsTrivia() bool {
	return k == KindWhitespace || k == KindComment
}

// IsExpression reports whether k is an expression node.
func (k Kind) IsExpression() bool {
	switch k {
	case KindLiteral, KindBinaryExpr, KindConditionalExpr, KindAssignExpr,
		KindCastExpr, KindLambda, KindExpression, KindIdentifier:
		return true
	}
	return false
}

// ParseKind maps a kind name back to Kind, used by configuration and tests.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return Kind(k), true // #nosec G115
		}
	}
	return KindInvalid, false
}
