package internal

import (
	"context"
	"fmt"
	"io"

	"tlog.app/go/errors"
	"tlog.app/go/loc"
	"tlog.app/go/tlog"

	"github.com/xiaobogaga/jackc/vmcode"
)

// Parser compiles one class in a single recursive descent pass.
// Each compileXxx method starts at the first token of its construct and
// returns positioned one token past it. Code is emitted while parsing; there is no syntax tree.
//
// Errors are recorded and the offending token is skipped, so one run reports several
// problems. Errors after the first one may be consequences of it.
type Parser struct {
	tokenizer *Tokenizer
	symbols   *SymbolTable
	writer    *VMWriter
	tr        tlog.Span

	current Token
	atEOF   bool

	// one token lookahead
	next    Token
	nextEOF bool
	hasNext bool

	className string

	// pointer 1 holds the address a let statement is going to store to
	arrayTarget bool

	errs        ErrorList
	lexErrs     int
	eofReported bool
}

func NewParser(ctx context.Context, src []byte, w io.Writer) *Parser {
	parser := &Parser{
		tokenizer: NewTokenizer(src),
		symbols:   NewSymbolTable(),
		writer:    NewVMWriter(w),
		tr:        tlog.SpanFromContext(ctx),
	}
	parser.stepForward()
	return parser
}

// ClassName is the name of the compiled class, empty until it was parsed.
func (parser *Parser) ClassName() string {
	return parser.className
}

// CompileClass parses the whole input and flushes the generated code.
// Diagnostics are returned even when code was written; err is only set when the output failed.
func (parser *Parser) CompileClass() (ErrorList, error) {
	parser.compileClass()

	if !parser.atEOF {
		parser.addError(newTokenError(UnexpectedToken, parser.current, "expected end of input after class"))
		for !parser.atEOF {
			parser.stepForward()
		}
	}

	if err := parser.writer.Flush(); err != nil {
		return parser.errs, errors.Wrap(err, "write vm code")
	}

	return parser.errs, nil
}

func (parser *Parser) stepForward() {
	if parser.hasNext {
		parser.current, parser.atEOF = parser.next, parser.nextEOF
		parser.hasNext = false
		return
	}

	token, ok := parser.tokenizer.Next()
	parser.current, parser.atEOF = token, !ok
	parser.collectLexErrors()
}

// peek returns the token after the current one.
func (parser *Parser) peek() (Token, bool) {
	if !parser.hasNext {
		token, ok := parser.tokenizer.Next()
		parser.next, parser.nextEOF, parser.hasNext = token, !ok, true
		parser.collectLexErrors()
	}
	return parser.next, !parser.nextEOF
}

func (parser *Parser) collectLexErrors() {
	lexErrs := parser.tokenizer.Errors()
	for _, e := range lexErrs[parser.lexErrs:] {
		parser.addError(e)
	}
	parser.lexErrs = len(lexErrs)
}

func (parser *Parser) addError(e *Error) {
	parser.errs = append(parser.errs, e)

	if parser.tr.If("diag") {
		parser.tr.Printw("diagnostic", "class", parser.className, "err", e, "from", loc.Caller(1))
	}
}

// unexpected records the current token and skips it.
func (parser *Parser) unexpected(format string, args ...interface{}) {
	if parser.atEOF {
		parser.endOfInput()
		return
	}

	parser.addError(newTokenError(UnexpectedToken, parser.current, fmt.Sprintf(format, args...)))
	parser.stepForward()
}

// endOfInput is reported once: every open construct would report it again otherwise.
func (parser *Parser) endOfInput() {
	if parser.eofReported {
		return
	}
	parser.eofReported = true

	parser.addError(&Error{
		Kind: UnexpectedEndOfInput,
		Line: parser.tokenizer.currentLine,
		Col:  parser.tokenizer.column(),
	})
}

func (parser *Parser) expectSymbol(s byte) bool {
	if !parser.atEOF && parser.current.IsSymbol(s) {
		parser.stepForward()
		return true
	}
	parser.unexpected("expected %q", s)
	return false
}

func (parser *Parser) expectKeyword(kw Keyword) bool {
	if !parser.atEOF && parser.current.IsKeyword(kw) {
		parser.stepForward()
		return true
	}
	parser.unexpected("expected %v", kw)
	return false
}

func (parser *Parser) expectIdentifier(what string) (Token, bool) {
	if !parser.atEOF && parser.current.Kind == IdentifierToken {
		token := parser.current
		parser.stepForward()
		return token, true
	}
	parser.unexpected("expected %s", what)
	return Token{}, false
}

func (parser *Parser) currentIsSymbol(s byte) bool {
	return !parser.atEOF && parser.current.IsSymbol(s)
}

// class: 'class' className '{' classVarDec* subroutineDec* '}'
func (parser *Parser) compileClass() {
	parser.expectKeyword(ClassKw)

	if token, ok := parser.expectIdentifier("class name"); ok {
		parser.className = token.Text
	}

	parser.expectSymbol('{')
	parser.compileClassBody()
	parser.expectSymbol('}')
}

func (parser *Parser) compileClassBody() {
	seenSubroutine := false

	for !parser.atEOF && !parser.current.IsSymbol('}') {
		token := parser.current

		switch {
		case !seenSubroutine && (token.IsKeyword(StaticKw) || token.IsKeyword(FieldKw)):
			parser.compileClassVarDec()
		case token.IsKeyword(ConstructorKw) || token.IsKeyword(FunctionKw) || token.IsKeyword(MethodKw):
			seenSubroutine = true
			parser.compileSubroutineDec()
		case seenSubroutine && (token.IsKeyword(StaticKw) || token.IsKeyword(FieldKw)):
			parser.unexpected("class variables must be declared before subroutines")
		default:
			parser.unexpected("expected class variable or subroutine declaration")
		}
	}
}

// classVarDec: ('static'|'field') type varName (',' varName)* ';'
func (parser *Parser) compileClassVarDec() {
	kind := FieldSymbol
	if parser.current.IsKeyword(StaticKw) {
		kind = StaticSymbol
	}
	parser.stepForward()

	parser.compileVarNames(kind)
}

// varDec: 'var' type varName (',' varName)* ';'
func (parser *Parser) compileVarDec() {
	parser.stepForward()

	parser.compileVarNames(LocalSymbol)
}

// compileVarNames handles the common tail: type varName (',' varName)* ';'
func (parser *Parser) compileVarNames(kind SymbolKind) {
	variableType, _ := parser.compileType(false)

	for {
		parser.declare(kind, variableType)

		if !parser.currentIsSymbol(',') {
			break
		}
		parser.stepForward()
	}

	parser.expectSymbol(';')
}

// type: 'int' | 'char' | 'boolean' | className, plus 'void' for return types.
func (parser *Parser) compileType(allowVoid bool) (string, bool) {
	if parser.atEOF {
		parser.endOfInput()
		return "", false
	}

	token := parser.current

	switch {
	case token.IsKeyword(IntKw), token.IsKeyword(CharKw), token.IsKeyword(BooleanKw),
		allowVoid && token.IsKeyword(VoidKw),
		token.Kind == IdentifierToken:
		parser.stepForward()
		return token.Text, true
	}

	parser.unexpected("expected type")

	return "", false
}

func (parser *Parser) declare(kind SymbolKind, variableType string) {
	token, ok := parser.expectIdentifier(kind.String() + " name")
	if !ok {
		return
	}

	symbol, err := parser.symbols.Define(kind, variableType, token.Text)
	if err != nil {
		parser.addError(newTokenError(DuplicateIdentifier, token, "already declared in this scope"))
		return
	}

	parser.tr.V("symbols").Printw("define", "class", parser.className, "name", symbol.Name,
		"kind", symbol.Kind, "type", symbol.VariableType, "index", symbol.Index)
}

func (parser *Parser) lookupVariable(token Token) (Symbol, bool) {
	symbol, ok := parser.symbols.Lookup(token.Text)
	if !ok {
		parser.addError(newTokenError(UndeclaredIdentifier, token, ""))
	}
	return symbol, ok
}

// subroutineDec: ('constructor'|'function'|'method') ('void'|type) subroutineName
//
//	'(' parameterList ')' subroutineBody
func (parser *Parser) compileSubroutineDec() {
	kind := parser.current.Keyword
	parser.stepForward()

	parser.symbols.EnterSubroutine()

	// The receiver is argument 0, ahead of the declared parameters.
	if kind == MethodKw {
		_, _ = parser.symbols.Define(ArgSymbol, parser.className, "this")
	}

	parser.compileType(true)

	name := ""
	if token, ok := parser.expectIdentifier("subroutine name"); ok {
		name = token.Text
	}

	parser.expectSymbol('(')
	parser.compileParameterList()
	parser.expectSymbol(')')

	parser.compileSubroutineBody(kind, parser.className+"."+name)
}

// parameterList: ((type varName) (',' type varName)*)?
func (parser *Parser) compileParameterList() {
	if parser.atEOF || parser.current.IsSymbol(')') {
		return
	}

	for {
		variableType, _ := parser.compileType(false)
		parser.declare(ArgSymbol, variableType)

		if !parser.currentIsSymbol(',') {
			return
		}
		parser.stepForward()
	}
}

// subroutineBody: '{' varDec* statements '}'
//
// The function header needs the local count, so it is written after the varDecs.
func (parser *Parser) compileSubroutineBody(kind Keyword, name string) {
	parser.expectSymbol('{')

	for !parser.atEOF && parser.current.IsKeyword(VarKw) {
		parser.compileVarDec()
	}

	parser.writer.WriteFunction(name, parser.symbols.Count(LocalSymbol))

	switch kind {
	case ConstructorKw:
		parser.writer.WritePush(vmcode.ConstantSegment, parser.symbols.Count(FieldSymbol))
		parser.writer.WriteCall("Memory.alloc", 1)
		parser.writer.WritePop(vmcode.PointerSegment, 0)
	case MethodKw:
		parser.writer.WritePush(vmcode.ArgumentSegment, 0)
		parser.writer.WritePop(vmcode.PointerSegment, 0)
	}

	parser.compileStatements()
	parser.expectSymbol('}')
}

// statements: statement*
// Stops at '}' or at end of input.
func (parser *Parser) compileStatements() {
	for !parser.atEOF && !parser.current.IsSymbol('}') {
		parser.compileStatement()
	}
}

func (parser *Parser) compileStatement() {
	if parser.current.Kind != KeywordToken {
		parser.unexpected("expected statement")
		return
	}

	switch parser.current.Keyword {
	case LetKw:
		parser.compileLet()
	case IfKw:
		parser.compileIf()
	case WhileKw:
		parser.compileWhile()
	case DoKw:
		parser.compileDo()
	case ReturnKw:
		parser.compileReturn()
	default:
		parser.unexpected("expected statement")
	}
}

// letStatement: 'let' varName ('[' expression ']')? '=' expression ';'
func (parser *Parser) compileLet() {
	parser.stepForward()

	var (
		symbol   Symbol
		declared bool
	)

	if token, ok := parser.expectIdentifier("variable name"); ok {
		symbol, declared = parser.lookupVariable(token)
	}

	if parser.currentIsSymbol('[') {
		parser.stepForward()

		if declared {
			parser.writer.WritePush(symbol.Kind.Segment(), symbol.Index)
		}
		parser.compileExpression()
		parser.expectSymbol(']')

		parser.writer.WriteArithmetic(vmcode.AddOp)
		parser.writer.WritePop(vmcode.PointerSegment, 1)

		parser.expectSymbol('=')

		parser.arrayTarget = true
		parser.compileExpression()
		parser.arrayTarget = false

		parser.writer.WritePop(vmcode.ThatSegment, 0)
	} else {
		parser.expectSymbol('=')
		parser.compileExpression()

		if declared {
			parser.writer.WritePop(symbol.Kind.Segment(), symbol.Index)
		}
	}

	parser.expectSymbol(';')
}

// ifStatement: 'if' '(' expression ')' '{' statements '}' ('else' (ifStatement | '{' statements '}'))?
//
//	expression
//	not
//	if-goto IF_ELSE
//	statements
//	goto IF_END
//	label IF_ELSE
//	else statements
//	label IF_END
func (parser *Parser) compileIf() {
	elseLabel := parser.newLabel("IF_ELSE")
	endLabel := parser.newLabel("IF_END")

	parser.stepForward()

	parser.expectSymbol('(')
	parser.compileExpression()
	parser.expectSymbol(')')

	parser.writer.WriteArithmetic(vmcode.NotOp)
	parser.writer.WriteIf(elseLabel)

	parser.compileBlock()

	parser.writer.WriteGoto(endLabel)
	parser.writer.WriteLabel(elseLabel)

	if !parser.atEOF && parser.current.IsKeyword(ElseKw) {
		parser.stepForward()

		if !parser.atEOF && parser.current.IsKeyword(IfKw) {
			parser.compileIf()
		} else {
			parser.compileBlock()
		}
	}

	parser.writer.WriteLabel(endLabel)
}

// whileStatement: 'while' '(' expression ')' '{' statements '}'
//
//	label WHILE_EXP
//	expression
//	not
//	if-goto WHILE_END
//	statements
//	goto WHILE_EXP
//	label WHILE_END
func (parser *Parser) compileWhile() {
	expLabel := parser.newLabel("WHILE_EXP")
	endLabel := parser.newLabel("WHILE_END")

	parser.stepForward()

	parser.writer.WriteLabel(expLabel)

	parser.expectSymbol('(')
	parser.compileExpression()
	parser.expectSymbol(')')

	parser.writer.WriteArithmetic(vmcode.NotOp)
	parser.writer.WriteIf(endLabel)

	parser.compileBlock()

	parser.writer.WriteGoto(expLabel)
	parser.writer.WriteLabel(endLabel)
}

// '{' statements '}'
func (parser *Parser) compileBlock() {
	parser.expectSymbol('{')
	parser.compileStatements()
	parser.expectSymbol('}')
}

func (parser *Parser) newLabel(tag string) string {
	label := parser.writer.NewLabel(tag)
	parser.tr.V("labels").Printw("new label", "class", parser.className, "label", label)
	return label
}

// doStatement: 'do' subroutineCall ';'
// The returned value is dropped to temp 0.
func (parser *Parser) compileDo() {
	parser.stepForward()

	if token, ok := parser.expectIdentifier("subroutine name"); ok {
		if parser.currentIsSymbol('(') || parser.currentIsSymbol('.') {
			parser.compileSubroutineCall(token)
			parser.writer.WritePop(vmcode.TempSegment, 0)
		} else {
			parser.unexpected("expected subroutine call")
		}
	}

	parser.expectSymbol(';')
}

// returnStatement: 'return' expression? ';'
// A bare return still leaves a value for the caller.
func (parser *Parser) compileReturn() {
	parser.stepForward()

	if parser.currentIsSymbol(';') {
		parser.writer.WritePush(vmcode.ConstantSegment, 0)
	} else {
		parser.compileExpression()
	}

	parser.writer.WriteReturn()

	parser.expectSymbol(';')
}
