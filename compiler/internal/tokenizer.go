package internal

import (
	"strconv"
	"unicode/utf8"

	"github.com/xiaobogaga/jackc/util"
)

// Tokenizer is a pull based lexer over one source file.
// Lexical errors are recorded and skipped, so Next keeps producing tokens until the input ends.
type Tokenizer struct {
	src         []byte
	currentPos  int
	currentLine int
	lineStart   int
	errs        ErrorList
}

func NewTokenizer(src []byte) *Tokenizer {
	return &Tokenizer{src: src, currentLine: 1}
}

// Tokenize lexes the whole source.
func Tokenize(src []byte) (tokens []Token, errs ErrorList) {
	tokenizer := NewTokenizer(src)
	for {
		token, ok := tokenizer.Next()
		if !ok {
			return tokens, tokenizer.Errors()
		}
		tokens = append(tokens, token)
	}
}

// Errors returns lexical errors found so far.
func (tokenizer *Tokenizer) Errors() ErrorList {
	return tokenizer.errs
}

// Next returns the next token, or false at end of input.
func (tokenizer *Tokenizer) Next() (Token, bool) {
	for {
		tokenizer.skipSpaceAndComments()
		if !tokenizer.hasRemainCharacters() {
			return Token{}, false
		}

		c := tokenizer.src[tokenizer.currentPos]

		switch {
		case c == '"':
			if token, ok := tokenizer.tokenString(); ok {
				return token, true
			}
		case util.IsNumber(c):
			if token, ok := tokenizer.tokenNumber(); ok {
				return token, true
			}
		case util.IsLetterOrUnderscore(c):
			return tokenizer.toKeywordOrIdentifier(), true
		case util.IsJackSymbol(c):
			return tokenizer.tokenSimpleSymbol(), true
		default:
			tokenizer.skipUnrecognized()
		}
	}
}

func (tokenizer *Tokenizer) hasRemainCharacters() bool {
	return tokenizer.currentPos < len(tokenizer.src)
}

func (tokenizer *Tokenizer) peekByte(off int) byte {
	if tokenizer.currentPos+off >= len(tokenizer.src) {
		return 0
	}
	return tokenizer.src[tokenizer.currentPos+off]
}

// step moves one byte forward keeping line accounting.
func (tokenizer *Tokenizer) step() {
	if tokenizer.src[tokenizer.currentPos] == '\n' {
		tokenizer.currentLine++
		tokenizer.lineStart = tokenizer.currentPos + 1
	}
	tokenizer.currentPos++
}

func (tokenizer *Tokenizer) column() int {
	return tokenizer.currentPos - tokenizer.lineStart + 1
}

func (tokenizer *Tokenizer) newToken(kind TokenKind) Token {
	return Token{
		Kind: kind,
		Line: tokenizer.currentLine,
		Col:  tokenizer.column(),
	}
}

func (tokenizer *Tokenizer) makeError(kind ErrorKind, line, col int, text, msg string) {
	tokenizer.errs = append(tokenizer.errs, &Error{
		Kind: kind,
		Line: line,
		Col:  col,
		Text: text,
		Msg:  msg,
	})
}

// skipSpaceAndComments consumes whitespace, // line comments and /* */ block comments.
// It is only called between tokens, so comment markers inside a string are never seen here.
func (tokenizer *Tokenizer) skipSpaceAndComments() {
	for tokenizer.hasRemainCharacters() {
		c := tokenizer.src[tokenizer.currentPos]

		switch {
		case util.IsSpace(c):
			tokenizer.step()
		case c == '/' && tokenizer.peekByte(1) == '/':
			for tokenizer.hasRemainCharacters() && tokenizer.src[tokenizer.currentPos] != '\n' {
				tokenizer.step()
			}
		case c == '/' && tokenizer.peekByte(1) == '*':
			tokenizer.skipBlockComment()
		default:
			return
		}
	}
}

func (tokenizer *Tokenizer) skipBlockComment() {
	line, col := tokenizer.currentLine, tokenizer.column()

	tokenizer.step()
	tokenizer.step()

	for tokenizer.hasRemainCharacters() {
		if tokenizer.src[tokenizer.currentPos] == '*' && tokenizer.peekByte(1) == '/' {
			tokenizer.step()
			tokenizer.step()
			return
		}
		tokenizer.step()
	}

	tokenizer.makeError(Unterminated, line, col, "/*", "comment is not closed")
}

func (tokenizer *Tokenizer) skipUnrecognized() {
	line, col := tokenizer.currentLine, tokenizer.column()

	r, size := utf8.DecodeRune(tokenizer.src[tokenizer.currentPos:])
	text := string(tokenizer.src[tokenizer.currentPos : tokenizer.currentPos+size])
	if r == utf8.RuneError {
		text = strconv.Quote(text)
	}

	for i := 0; i < size; i++ {
		tokenizer.step()
	}

	tokenizer.makeError(UnrecognizedCharacter, line, col, text, "")
}

func (tokenizer *Tokenizer) tokenSimpleSymbol() Token {
	token := tokenizer.newToken(SymbolToken)
	token.Symbol = tokenizer.src[tokenizer.currentPos]
	token.Text = string(token.Symbol)
	tokenizer.step()
	return token
}

func (tokenizer *Tokenizer) tokenString() (Token, bool) {
	token := tokenizer.newToken(StringToken)

	tokenizer.step()
	startPos := tokenizer.currentPos

	// Looking forward to find the closing quote.
	for tokenizer.hasRemainCharacters() {
		if tokenizer.src[tokenizer.currentPos] == '"' {
			token.Text = string(tokenizer.src[startPos:tokenizer.currentPos])
			tokenizer.step()
			return token, true
		}
		tokenizer.step()
	}

	tokenizer.makeError(Unterminated, token.Line, token.Col, `"`+string(tokenizer.src[startPos:]), "string is not closed")

	return Token{}, false
}

func (tokenizer *Tokenizer) tokenNumber() (Token, bool) {
	token := tokenizer.newToken(IntegerToken)

	startPos := tokenizer.currentPos
	for tokenizer.hasRemainCharacters() && util.IsNumber(tokenizer.src[tokenizer.currentPos]) {
		tokenizer.step()
	}
	token.Text = string(tokenizer.src[startPos:tokenizer.currentPos])

	v, err := strconv.Atoi(token.Text)
	if err != nil || v > MaxInteger {
		tokenizer.makeError(InvalidInteger, token.Line, token.Col, token.Text, "integer constant must be in 0.."+strconv.Itoa(MaxInteger))
		return Token{}, false
	}

	token.Int = int16(v)

	return token, true
}

func (tokenizer *Tokenizer) toKeywordOrIdentifier() Token {
	token := tokenizer.newToken(IdentifierToken)

	startPos := tokenizer.currentPos
	for tokenizer.hasRemainCharacters() && util.IsLetterOrUnderscoreOrNumber(tokenizer.src[tokenizer.currentPos]) {
		tokenizer.step()
	}
	token.Text = string(tokenizer.src[startPos:tokenizer.currentPos])

	if kw, ok := keyWordMap[token.Text]; ok {
		token.Kind, token.Keyword = KeywordToken, kw
	}

	return token
}
