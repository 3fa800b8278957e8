package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Именование
	NamBooleanField     Code = 1001
	NamConstant         Code = 1002
	NamArrayDefinition  Code = 1003
	NamEdgeUnderscore   Code = 1004
	NamMixedScript      Code = 1005
	NamClass            Code = 1006
	NamClassAffix       Code = 1007
	NamMethod           Code = 1008
	NamPackage          Code = 1009
	NamEnum             Code = 1010
	NamSensitiveWord    Code = 1011
	NamEnumConstantCase Code = 1012

	// Структурные
	StrMagicValue          Code = 2001
	StrFieldHiding         Code = 2002
	StrRedundantAccessor   Code = 2003
	StrMissingOverride     Code = 2004
	StrLowercaseLongSuffix Code = 2005

	// Позиционные
	PosBraceSpacing      Code = 3001
	PosBraceStyle        Code = 3002
	PosCommentSpacing    Code = 3003
	PosTabIndent         Code = 3004
	PosLineTooLong       Code = 3005
	PosOperatorAtLineEnd Code = 3006
	PosDotAtLineEnd      Code = 3007
	PosLeadingComma      Code = 3008
	PosLeadingParen      Code = 3009
	PosCastSpacing       Code = 3010
	PosOperatorSpacing   Code = 3011
	PosReservedWordSpace Code = 3012

	// Конфигурация
	CfgInvalidOption Code = 4001
	CfgUnknownRule   Code = 4002

	// Движок
	EngPredicateFailed Code = 5001
	EngSyntaxError     Code = 5002
	EngIOError         Code = 5003
)

var codeDescription = map[Code]string{
	UnknownCode:            "Unknown error",
	NamBooleanField:        "Boolean field named with 'is' prefix",
	NamConstant:            "Constant not in constant case",
	NamArrayDefinition:     "Array brackets after variable name",
	NamEdgeUnderscore:      "Name starts or ends with '_' or '$'",
	NamMixedScript:         "Name mixes Latin and Chinese characters",
	NamClass:               "Type name not in UpperCamelCase",
	NamClassAffix:          "Type name misses a required prefix or suffix",
	NamMethod:              "Name not in lowerCamelCase",
	NamPackage:             "Package name not in lower case",
	NamEnum:                "Enum name without 'Enum' suffix",
	NamSensitiveWord:       "Sensitive word in name or comment",
	NamEnumConstantCase:    "Enum constant not in constant case",
	StrMagicValue:          "Magic value used directly",
	StrFieldHiding:         "Field hides a superclass field",
	StrRedundantAccessor:   "Accessor for an inherited field",
	StrMissingOverride:     "Overriding method without @Override",
	StrLowercaseLongSuffix: "Long literal with lower-case 'l' suffix",
	PosBraceSpacing:        "Wrong spacing around braces or parentheses",
	PosBraceStyle:          "Wrong brace placement",
	PosCommentSpacing:      "Line comment without a single space after '//'",
	PosTabIndent:           "Tab character in indentation",
	PosLineTooLong:         "Line too long",
	PosOperatorAtLineEnd:   "Line break after an operator",
	PosDotAtLineEnd:        "Line break after '.'",
	PosLeadingComma:        "Continuation line starts with ','",
	PosLeadingParen:        "Continuation line starts with a parenthesis",
	PosCastSpacing:         "Space after a cast",
	PosOperatorSpacing:     "Operator without a single space on each side",
	PosReservedWordSpace:   "Reserved word not followed by a space",
	CfgInvalidOption:       "Invalid rule option",
	CfgUnknownRule:         "Unknown rule in configuration",
	EngPredicateFailed:     "Rule failed on a node",
	EngSyntaxError:         "File has syntax errors",
	EngIOError:             "File could not be read",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("NAM%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("STR%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("POS%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("CFG%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("ENG%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
