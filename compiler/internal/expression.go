package internal

import (
	"github.com/xiaobogaga/jackc/vmcode"
)

// Binary operators have no precedence: a - b * c is (a - b) * c.
var binaryOps = map[byte]func(w *VMWriter){
	'+': func(w *VMWriter) { w.WriteArithmetic(vmcode.AddOp) },
	'-': func(w *VMWriter) { w.WriteArithmetic(vmcode.SubOp) },
	'*': func(w *VMWriter) { w.WriteCall("Math.multiply", 2) },
	'/': func(w *VMWriter) { w.WriteCall("Math.divide", 2) },
	'&': func(w *VMWriter) { w.WriteArithmetic(vmcode.AndOp) },
	'|': func(w *VMWriter) { w.WriteArithmetic(vmcode.OrOp) },
	'<': func(w *VMWriter) { w.WriteArithmetic(vmcode.LtOp) },
	'>': func(w *VMWriter) { w.WriteArithmetic(vmcode.GtOp) },
	'=': func(w *VMWriter) { w.WriteArithmetic(vmcode.EqOp) },
}

func isBinaryOp(token Token) bool {
	if token.Kind != SymbolToken {
		return false
	}
	_, ok := binaryOps[token.Symbol]
	return ok
}

// expression: term (op term)*
// Every operator is applied as soon as its right operand is on the stack.
func (parser *Parser) compileExpression() {
	parser.compileTerm()

	for !parser.atEOF && isBinaryOp(parser.current) {
		op := parser.current.Symbol
		parser.stepForward()

		parser.compileTerm()

		binaryOps[op](parser.writer)
	}
}

// term: integerConstant | stringConstant | keywordConstant | varName | varName '[' expression ']' |
//
//	subroutineCall | '(' expression ')' | unaryOp term
func (parser *Parser) compileTerm() {
	if parser.atEOF {
		parser.endOfInput()
		return
	}

	token := parser.current

	switch token.Kind {
	case IntegerToken:
		parser.writer.WritePush(vmcode.ConstantSegment, int(token.Int))
		parser.stepForward()
	case StringToken:
		parser.writer.WriteStringConstant(token.Text)
		parser.stepForward()
	case KeywordToken:
		parser.compileKeywordConstant()
	case SymbolToken:
		switch token.Symbol {
		case '(':
			parser.stepForward()
			parser.compileExpression()
			parser.expectSymbol(')')
		case '-':
			parser.stepForward()
			parser.compileTerm()
			parser.writer.WriteArithmetic(vmcode.NegOp)
		case '~':
			parser.stepForward()
			parser.compileTerm()
			parser.writer.WriteArithmetic(vmcode.NotOp)
		default:
			parser.unexpected("expected term")
		}
	case IdentifierToken:
		parser.compileIdentifierTerm()
	default:
		parser.unexpected("expected term")
	}
}

// true is all ones: not 0.
func (parser *Parser) compileKeywordConstant() {
	switch parser.current.Keyword {
	case TrueKw:
		parser.writer.WritePush(vmcode.ConstantSegment, 0)
		parser.writer.WriteArithmetic(vmcode.NotOp)
	case FalseKw, NullKw:
		parser.writer.WritePush(vmcode.ConstantSegment, 0)
	case ThisKw:
		parser.writer.WritePush(vmcode.PointerSegment, 0)
	default:
		parser.unexpected("expected term")
		return
	}

	parser.stepForward()
}

// compileIdentifierTerm needs one token of lookahead to tell
// a variable, an array element and a subroutine call apart.
func (parser *Parser) compileIdentifierTerm() {
	token := parser.current
	next, ok := parser.peek()

	switch {
	case ok && next.IsSymbol('['):
		parser.stepForward()
		symbol, declared := parser.lookupVariable(token)
		parser.compileArrayRead(symbol, declared)
	case ok && (next.IsSymbol('(') || next.IsSymbol('.')):
		parser.stepForward()
		parser.compileSubroutineCall(token)
	default:
		parser.stepForward()
		if symbol, declared := parser.lookupVariable(token); declared {
			parser.writer.WritePush(symbol.Kind.Segment(), symbol.Index)
		}
	}
}

// compileArrayRead starts at '['.
//
//	push base
//	index expression
//	add
//	pop pointer 1
//	push that 0
//
// Inside the value of `let a[i] = ...` pointer 1 already holds the store address,
// so it is kept in temp 1 around the read.
func (parser *Parser) compileArrayRead(symbol Symbol, declared bool) {
	parser.stepForward()

	if declared {
		parser.writer.WritePush(symbol.Kind.Segment(), symbol.Index)
	}

	parser.compileExpression()
	parser.expectSymbol(']')

	parser.writer.WriteArithmetic(vmcode.AddOp)

	if parser.arrayTarget {
		parser.writer.WritePush(vmcode.PointerSegment, 1)
		parser.writer.WritePop(vmcode.TempSegment, 1)
	}

	parser.writer.WritePop(vmcode.PointerSegment, 1)
	parser.writer.WritePush(vmcode.ThatSegment, 0)

	if parser.arrayTarget {
		parser.writer.WritePush(vmcode.TempSegment, 1)
		parser.writer.WritePop(vmcode.PointerSegment, 1)
	}
}

// subroutineCall: subroutineName '(' expressionList ')' |
//
//	(className | varName) '.' subroutineName '(' expressionList ')'
//
// It starts at the token after the leading name.
// A call on a variable is a method call on the object it holds; any other
// qualifier is taken as a class name and is not checked.
// An unqualified call is a method call on this.
func (parser *Parser) compileSubroutineCall(name Token) {
	var (
		fullName string
		nArgs    int
	)

	if parser.currentIsSymbol('.') {
		parser.stepForward()

		subroutine := ""
		if token, ok := parser.expectIdentifier("subroutine name"); ok {
			subroutine = token.Text
		}

		if symbol, ok := parser.symbols.Lookup(name.Text); ok {
			parser.writer.WritePush(symbol.Kind.Segment(), symbol.Index)
			fullName = symbol.VariableType + "." + subroutine
			nArgs = 1
		} else {
			fullName = name.Text + "." + subroutine
		}
	} else {
		parser.writer.WritePush(vmcode.PointerSegment, 0)
		fullName = parser.className + "." + name.Text
		nArgs = 1
	}

	parser.expectSymbol('(')
	nArgs += parser.compileExpressionList()
	parser.expectSymbol(')')

	parser.writer.WriteCall(fullName, nArgs)
}

// expressionList: (expression (',' expression)*)?
func (parser *Parser) compileExpressionList() int {
	if parser.atEOF || parser.current.IsSymbol(')') {
		return 0
	}

	n := 0
	for {
		parser.compileExpression()
		n++

		if !parser.currentIsSymbol(',') {
			return n
		}
		parser.stepForward()
	}
}
