package internal

import (
	"fmt"
	"strconv"
)

// Jack source is made of five kinds of tokens:
// * Keyword: class, constructor, function, method, field, static, var, int, char, boolean, void,
// 			true, false, null, this, let, do, if, else, while, return.
// * Symbol: {, }, (, ), [, ], ., ,, ;, +, -, *, /, &, |, <, >, =, ~.
// * IntegerConstant: decimal 0..32767.
// * StringConstant: "xxx", no escapes, the quotes are not part of the value.
// * Identifier: letters, digits, underscore, not starting with a digit.

type TokenKind int

const (
	KeywordToken TokenKind = iota
	SymbolToken
	IdentifierToken
	IntegerToken
	StringToken
)

func (k TokenKind) String() string {
	switch k {
	case KeywordToken:
		return "keyword"
	case SymbolToken:
		return "symbol"
	case IdentifierToken:
		return "identifier"
	case IntegerToken:
		return "integerConstant"
	case StringToken:
		return "stringConstant"
	}
	return "TokenKind(" + strconv.Itoa(int(k)) + ")"
}

type Keyword int

const (
	ClassKw Keyword = iota
	ConstructorKw
	FunctionKw
	MethodKw
	FieldKw
	StaticKw
	VarKw
	IntKw
	CharKw
	BooleanKw
	VoidKw
	TrueKw
	FalseKw
	NullKw
	ThisKw
	LetKw
	DoKw
	IfKw
	ElseKw
	WhileKw
	ReturnKw
)

var keywordNames = [...]string{
	ClassKw:       "class",
	ConstructorKw: "constructor",
	FunctionKw:    "function",
	MethodKw:      "method",
	FieldKw:       "field",
	StaticKw:      "static",
	VarKw:         "var",
	IntKw:         "int",
	CharKw:        "char",
	BooleanKw:     "boolean",
	VoidKw:        "void",
	TrueKw:        "true",
	FalseKw:       "false",
	NullKw:        "null",
	ThisKw:        "this",
	LetKw:         "let",
	DoKw:          "do",
	IfKw:          "if",
	ElseKw:        "else",
	WhileKw:       "while",
	ReturnKw:      "return",
}

// keyWordMap is the mapping from reserved word to Keyword.
var keyWordMap = func() map[string]Keyword {
	m := make(map[string]Keyword, len(keywordNames))
	for kw, name := range keywordNames {
		m[name] = Keyword(kw)
	}
	return m
}()

func (k Keyword) String() string {
	if k < 0 || int(k) >= len(keywordNames) {
		return "Keyword(" + strconv.Itoa(int(k)) + ")"
	}
	return keywordNames[k]
}

// MaxInteger is the largest integer constant; negative values are built with unary minus.
const MaxInteger = 32767

// Token is a single lexical element. Only the field matching Kind is meaningful,
// except Text which always holds the source spelling (string body for StringToken).
type Token struct {
	Kind    TokenKind
	Keyword Keyword
	Symbol  byte
	Int     int16
	Text    string

	Line int // 1-based
	Col  int // 1-based, in bytes
}

func (t Token) IsKeyword(kw Keyword) bool {
	return t.Kind == KeywordToken && t.Keyword == kw
}

func (t Token) IsSymbol(s byte) bool {
	return t.Kind == SymbolToken && t.Symbol == s
}

func (t Token) String() string {
	switch t.Kind {
	case StringToken:
		return strconv.Quote(t.Text)
	default:
		return t.Text
	}
}

// Pos formats the token position as line:col.
func (t Token) Pos() string {
	return fmt.Sprintf("%d:%d", t.Line, t.Col)
}
