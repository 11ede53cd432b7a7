package internal

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaobogaga/jackc/vmcode"
)

func compileString(t *testing.T, src string) (string, ErrorList) {
	t.Helper()

	var buf bytes.Buffer

	_, errs, err := Compile(context.Background(), []byte(src), &buf)
	require.NoError(t, err)

	return buf.String(), errs
}

// compileOK compiles src expecting no diagnostics.
func compileOK(t *testing.T, src string) string {
	t.Helper()

	out, errs := compileString(t, src)
	require.Empty(t, errs, "%v", errs)

	return out
}

func lines(ls ...string) string {
	return strings.Join(ls, "\n") + "\n"
}

func TestParser_WhileTrue(t *testing.T) {
	out := compileOK(t, `class Main { function void main() { while (true) { } return; } }`)

	assert.Equal(t, lines(
		"function Main.main 0",
		"label WHILE_EXP_0",
		"push constant 0",
		"not",
		"not",
		"if-goto WHILE_END_1",
		"goto WHILE_EXP_0",
		"label WHILE_END_1",
		"push constant 0",
		"return",
	), out)
}

func TestParser_ArrayStore(t *testing.T) {
	out := compileOK(t, `class Main { function void main() { var Array arr; let arr[1] = 2; return; } }`)

	assert.Equal(t, lines(
		"function Main.main 1",
		"push local 0",
		"push constant 1",
		"add",
		"pop pointer 1",
		"push constant 2",
		"pop that 0",
		"push constant 0",
		"return",
	), out)
}

func TestParser_ArrayRead(t *testing.T) {
	out := compileOK(t, `class Main { function int get(Array a) { var int x; let x = a[2]; return x; } }`)

	assert.Equal(t, lines(
		"function Main.get 1",
		"push argument 0",
		"push constant 2",
		"add",
		"pop pointer 1",
		"push that 0",
		"pop local 0",
		"push local 0",
		"return",
	), out)
}

func TestParser_ArrayCopy(t *testing.T) {
	out := compileOK(t, `class Main {
	function void copy() {
		var Array a, b;
		var int i, j;
		let a[i] = b[j];
		return;
	}
}`)

	assert.Equal(t, lines(
		"function Main.copy 4",
		"push local 0",
		"push local 2",
		"add",
		"pop pointer 1",
		"push local 1",
		"push local 3",
		"add",
		"push pointer 1",
		"pop temp 1",
		"pop pointer 1",
		"push that 0",
		"push temp 1",
		"pop pointer 1",
		"pop that 0",
		"push constant 0",
		"return",
	), out)
}

func TestParser_UnqualifiedCall(t *testing.T) {
	out, errs := compileString(t, `class Main { method void run() { do foo(); return; } }`)
	assert.Empty(t, errs)

	assert.Equal(t, lines(
		"function Main.run 0",
		"push argument 0",
		"pop pointer 0",
		"push pointer 0",
		"call Main.foo 1",
		"pop temp 0",
		"push constant 0",
		"return",
	), out)
}

func TestParser_UndeclaredVariable(t *testing.T) {
	_, errs := compileString(t, `class Main { function void main() { var int x; let x = foo; return; } }`)

	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrUndeclaredIdentifier)
	assert.Equal(t, "foo", errs[0].Text)
	require.NotNil(t, errs[0].Token)
	assert.Equal(t, IdentifierToken, errs[0].Token.Kind)

	_, errs = compileString(t, `class Main { function void main() { let z = 1; return; } }`)

	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrUndeclaredIdentifier)
	assert.Equal(t, "z", errs[0].Text)
}

func TestParser_Constructor(t *testing.T) {
	out := compileOK(t, `class Point {
	field int x, y;
	static int count;

	constructor Point new(int ax, int ay) {
		let x = ax;
		let y = ay;
		let count = count + 1;
		return this;
	}
}`)

	assert.Equal(t, lines(
		"function Point.new 0",
		"push constant 2",
		"call Memory.alloc 1",
		"pop pointer 0",
		"push argument 0",
		"pop this 0",
		"push argument 1",
		"pop this 1",
		"push static 0",
		"push constant 1",
		"add",
		"pop static 0",
		"push pointer 0",
		"return",
	), out)
}

func TestParser_MethodArguments(t *testing.T) {
	out := compileOK(t, `class Point {
	field int x;

	method int dist(Point other) {
		var int dx;
		let dx = x - other.getX();
		return dx;
	}
}`)

	assert.Equal(t, lines(
		"function Point.dist 1",
		"push argument 0",
		"pop pointer 0",
		"push this 0",
		"push argument 1",
		"call Point.getX 1",
		"sub",
		"pop local 0",
		"push local 0",
		"return",
	), out)
}

func TestParser_Calls(t *testing.T) {
	out := compileOK(t, `class Main {
	function void main() {
		var Point p;
		let p = Point.new(1, 2);
		do p.print();
		do Output.printInt(1 + 2);
		return;
	}
}`)

	assert.Equal(t, lines(
		"function Main.main 1",
		"push constant 1",
		"push constant 2",
		"call Point.new 2",
		"pop local 0",
		"push local 0",
		"call Point.print 1",
		"pop temp 0",
		"push constant 1",
		"push constant 2",
		"add",
		"call Output.printInt 1",
		"pop temp 0",
		"push constant 0",
		"return",
	), out)
}

func TestParser_LeftToRight(t *testing.T) {
	testData := []struct {
		expr     string
		expected string
	}{
		{"1 + 2 * 3", lines(
			"push constant 1",
			"push constant 2",
			"add",
			"push constant 3",
			"call Math.multiply 2",
		)},
		{"1 + (2 * 3)", lines(
			"push constant 1",
			"push constant 2",
			"push constant 3",
			"call Math.multiply 2",
			"add",
		)},
		{"8 / 2 - 1", lines(
			"push constant 8",
			"push constant 2",
			"call Math.divide 2",
			"push constant 1",
			"sub",
		)},
		{"-x + ~x", lines(
			"push local 0",
			"neg",
			"push local 0",
			"not",
			"add",
		)},
		{"(x < 1) | (x > 2) & (x = 3)", lines(
			"push local 0",
			"push constant 1",
			"lt",
			"push local 0",
			"push constant 2",
			"gt",
			"or",
			"push local 0",
			"push constant 3",
			"eq",
			"and",
		)},
	}

	for _, data := range testData {
		out := compileOK(t, `class Main { function void f() { var int x; let x = `+data.expr+`; return; } }`)

		expected := "function Main.f 1\n" + data.expected + lines(
			"pop local 0",
			"push constant 0",
			"return",
		)
		assert.Equal(t, expected, out, data.expr)
	}
}

func TestParser_Constants(t *testing.T) {
	out := compileOK(t, `class Main {
	method void f() {
		var boolean b;
		var String s;
		let b = true;
		let b = false;
		let s = null;
		let s = this;
		let s = "Hi";
		return;
	}
}`)

	assert.Equal(t, lines(
		"function Main.f 2",
		"push argument 0",
		"pop pointer 0",
		"push constant 0",
		"not",
		"pop local 0",
		"push constant 0",
		"pop local 0",
		"push constant 0",
		"pop local 1",
		"push pointer 0",
		"pop local 1",
		"push constant 2",
		"call String.new 1",
		"push constant 72",
		"call String.appendChar 2",
		"push constant 105",
		"call String.appendChar 2",
		"pop local 1",
		"push constant 0",
		"return",
	), out)
}

func TestParser_ElseIf(t *testing.T) {
	out := compileOK(t, `class Main {
	function void f(int x, int y) {
		if (x) { let x = 1; } else if (y) { let x = 2; } else { let x = 3; }
		return;
	}
}`)

	assert.Equal(t, lines(
		"function Main.f 0",
		"push argument 0",
		"not",
		"if-goto IF_ELSE_0",
		"push constant 1",
		"pop argument 0",
		"goto IF_END_1",
		"label IF_ELSE_0",
		"push argument 1",
		"not",
		"if-goto IF_ELSE_2",
		"push constant 2",
		"pop argument 0",
		"goto IF_END_3",
		"label IF_ELSE_2",
		"push constant 3",
		"pop argument 0",
		"label IF_END_3",
		"label IF_END_1",
		"push constant 0",
		"return",
	), out)
}

func TestParser_IfWithoutElse(t *testing.T) {
	out := compileOK(t, `class Main { function void f(boolean c) { if (c) { do Sys.halt(); } return; } }`)

	assert.Equal(t, lines(
		"function Main.f 0",
		"push argument 0",
		"not",
		"if-goto IF_ELSE_0",
		"call Sys.halt 0",
		"pop temp 0",
		"goto IF_END_1",
		"label IF_ELSE_0",
		"label IF_END_1",
		"push constant 0",
		"return",
	), out)
}

const nestedProgram = `// Nested control flow and every statement kind.
class Game {
	field Array board;
	field int size;
	static int games;

	constructor Game new(int n) {
		let size = n;
		let board = Array.new(n * n);
		let games = games + 1;
		return this;
	}

	method void clear() {
		var int i, j;
		let i = 0;
		while (i < size) {
			let j = 0;
			while (j < size) {
				if (j = i) {
					let board[(i * size) + j] = 1;
				} else {
					let board[(i * size) + j] = board[j];
				}
				let j = j + 1;
			}
			let i = i + 1;
		}
		return;
	}

	method int get(int i) { return board[i]; }

	function void main() {
		var Game g;
		let g = Game.new(3);
		do g.clear();
		do Output.printString("size: ");
		do Output.printInt(g.get(4));
		return;
	}
}
`

func TestParser_LabelsAreUnique(t *testing.T) {
	out := compileOK(t, nestedProgram)

	cmds, err := vmcode.ParseReader(strings.NewReader(out))
	require.NoError(t, err)

	labels := map[string]int{}
	for _, cmd := range cmds {
		if cmd.Op == vmcode.LabelOp {
			labels[cmd.Name]++
		}
	}

	// two whiles and one if
	assert.Len(t, labels, 6)

	for name, n := range labels {
		assert.Equal(t, 1, n, name)
	}

	for _, cmd := range cmds {
		if cmd.Op == vmcode.GotoOp || cmd.Op == vmcode.IfGotoOp {
			assert.Contains(t, labels, cmd.Name)
		}
	}
}

func TestParser_FunctionHeaders(t *testing.T) {
	out := compileOK(t, nestedProgram)

	cmds, err := vmcode.ParseReader(strings.NewReader(out))
	require.NoError(t, err)

	type header struct {
		name    string
		nLocals int
	}

	var headers []header
	for _, cmd := range cmds {
		if cmd.Op == vmcode.FunctionOp {
			headers = append(headers, header{cmd.Name, cmd.Index})
		}
	}

	assert.Equal(t, []header{
		{"Game.new", 0},
		{"Game.clear", 2},
		{"Game.get", 0},
		{"Game.main", 1},
	}, headers)
}

func TestParser_Idempotent(t *testing.T) {
	first := compileOK(t, nestedProgram)
	second := compileOK(t, nestedProgram)

	assert.Equal(t, first, second)
}

func TestParser_ClassName(t *testing.T) {
	var buf bytes.Buffer

	parser := NewParser(context.Background(), []byte(`class Square { }`), &buf)
	assert.Equal(t, "", parser.ClassName())

	errs, err := parser.CompileClass()
	require.NoError(t, err)
	assert.Empty(t, errs)
	assert.Equal(t, "Square", parser.ClassName())
	assert.Empty(t, buf.String())
}

func TestParser_UnexpectedToken(t *testing.T) {
	_, errs := compileString(t, "class Main {\n  function void main() {\n    var int x;\n    let x = 1 return;\n  }\n}")

	require.NotEmpty(t, errs)
	assert.ErrorIs(t, errs[0], ErrUnexpectedToken)
	assert.Equal(t, "return", errs[0].Text)
	assert.Equal(t, 4, errs[0].Line)
	assert.Equal(t, 15, errs[0].Col)
}

func TestParser_NotAStatement(t *testing.T) {
	out, errs := compileString(t, `class Main { function void main() { foo; return; } }`)

	require.Len(t, errs, 2)
	assert.ErrorIs(t, errs[0], ErrUnexpectedToken)
	assert.Equal(t, "foo", errs[0].Text)
	assert.ErrorIs(t, errs[1], ErrUnexpectedToken)
	assert.Equal(t, ";", errs[1].Text)

	// recovered and compiled the return
	assert.Equal(t, lines(
		"function Main.main 0",
		"push constant 0",
		"return",
	), out)
}

func TestParser_EndOfInputReportedOnce(t *testing.T) {
	out, errs := compileString(t, `class Main { function void main() { var int x; let x = `)

	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrUnexpectedEndOfInput)
	assert.Nil(t, errs[0].Token)
	assert.True(t, strings.HasPrefix(out, "function Main.main 1\n"))
}

func TestParser_TrailingTokens(t *testing.T) {
	_, errs := compileString(t, `class A { } class B { }`)

	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrUnexpectedToken)
	assert.Equal(t, "class", errs[0].Text)
	assert.Equal(t, 13, errs[0].Col)
}

func TestParser_DuplicateIdentifier(t *testing.T) {
	_, errs := compileString(t, `class A { field int x; static int x; }`)

	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrDuplicateIdentifier)
	assert.Equal(t, "x", errs[0].Text)
	assert.Equal(t, 35, errs[0].Col)

	// Scopes of different subroutines are independent.
	compileOK(t, `class A {
	function void f(int a) { var int b; return; }
	function void g(int a) { var int b; return; }
}`)
}

func TestParser_ClassVarAfterSubroutine(t *testing.T) {
	_, errs := compileString(t, `class A { function void f() { return; } field int x; }`)

	require.NotEmpty(t, errs)
	assert.ErrorIs(t, errs[0], ErrUnexpectedToken)
	assert.Equal(t, "field", errs[0].Text)
}

func TestParser_LexicalErrors(t *testing.T) {
	_, errs := compileString(t, `class A { function void f() { var int x; let x = 99999; return; } }`)

	require.NotEmpty(t, errs)
	assert.ErrorIs(t, errs[0], ErrInvalidInteger)
	assert.Equal(t, "99999", errs[0].Text)

	_, errs = compileString(t, `class A { function void f() { return; } } # `)

	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrUnrecognizedCharacter)
}

type shortWriter struct{}

func (shortWriter) Write(p []byte) (int, error) {
	return 0, errDiskFull
}

func TestParser_WriteError(t *testing.T) {
	_, errs, err := Compile(context.Background(), []byte(`class A { function void f() { return; } }`), shortWriter{})

	assert.Empty(t, errs)
	assert.ErrorIs(t, err, errDiskFull)
}
