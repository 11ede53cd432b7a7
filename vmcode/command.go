package vmcode

import (
	"strconv"
	"strings"
)

// The vm language has four kinds of commands:
// * Arithmetic commands: add, sub, neg, eq, gt, lt, and, or, not.
// * Memory access commands: push|pop segment index, where segment is one of
//   constant, local, argument, this, that, static, pointer, temp.
// * Program flow commands: label name, goto name, if-goto name.
// * Function calling commands: function name nLocals, call name nArgs, return.
//
// Command.String renders exactly one instruction line, tokens separated by a single space.

type Op int

const (
	AddOp Op = iota
	SubOp
	NegOp
	EqOp
	GtOp
	LtOp
	AndOp
	OrOp
	NotOp
	PushOp
	PopOp
	LabelOp
	GotoOp
	IfGotoOp
	FunctionOp
	CallOp
	ReturnOp
)

var opNames = [...]string{
	AddOp:      "add",
	SubOp:      "sub",
	NegOp:      "neg",
	EqOp:       "eq",
	GtOp:       "gt",
	LtOp:       "lt",
	AndOp:      "and",
	OrOp:       "or",
	NotOp:      "not",
	PushOp:     "push",
	PopOp:      "pop",
	LabelOp:    "label",
	GotoOp:     "goto",
	IfGotoOp:   "if-goto",
	FunctionOp: "function",
	CallOp:     "call",
	ReturnOp:   "return",
}

var opsByName = func() map[string]Op {
	m := make(map[string]Op, len(opNames))
	for op, name := range opNames {
		m[name] = Op(op)
	}
	return m
}()

func (op Op) String() string {
	if op < 0 || int(op) >= len(opNames) {
		return "Op(" + strconv.Itoa(int(op)) + ")"
	}
	return opNames[op]
}

// IsArithmetic reports whether op takes no operands.
func (op Op) IsArithmetic() bool {
	return op >= AddOp && op <= NotOp
}

type Segment int

const (
	ConstantSegment Segment = iota
	LocalSegment
	ArgumentSegment
	ThisSegment
	ThatSegment
	StaticSegment
	PointerSegment
	TempSegment
)

var segmentNames = [...]string{
	ConstantSegment: "constant",
	LocalSegment:    "local",
	ArgumentSegment: "argument",
	ThisSegment:     "this",
	ThatSegment:     "that",
	StaticSegment:   "static",
	PointerSegment:  "pointer",
	TempSegment:     "temp",
}

var segmentsByName = func() map[string]Segment {
	m := make(map[string]Segment, len(segmentNames))
	for seg, name := range segmentNames {
		m[name] = Segment(seg)
	}
	return m
}()

func (s Segment) String() string {
	if s < 0 || int(s) >= len(segmentNames) {
		return "Segment(" + strconv.Itoa(int(s)) + ")"
	}
	return segmentNames[s]
}

// Command is one vm instruction.
// Segment and Index are used by push and pop, Name by flow and function commands.
// Index also carries nLocals for function and nArgs for call.
type Command struct {
	Op      Op
	Segment Segment
	Index   int
	Name    string
}

func Arithmetic(op Op) Command { return Command{Op: op} }

func Push(seg Segment, index int) Command { return Command{Op: PushOp, Segment: seg, Index: index} }

func Pop(seg Segment, index int) Command { return Command{Op: PopOp, Segment: seg, Index: index} }

func Label(name string) Command { return Command{Op: LabelOp, Name: name} }

func Goto(name string) Command { return Command{Op: GotoOp, Name: name} }

func IfGoto(name string) Command { return Command{Op: IfGotoOp, Name: name} }

func Function(name string, nLocals int) Command {
	return Command{Op: FunctionOp, Name: name, Index: nLocals}
}

func Call(name string, nArgs int) Command { return Command{Op: CallOp, Name: name, Index: nArgs} }

func Return() Command { return Command{Op: ReturnOp} }

func (c Command) String() string {
	var b strings.Builder

	b.WriteString(c.Op.String())

	switch c.Op {
	case PushOp, PopOp:
		b.WriteByte(' ')
		b.WriteString(c.Segment.String())
		b.WriteByte(' ')
		b.WriteString(strconv.Itoa(c.Index))
	case LabelOp, GotoOp, IfGotoOp:
		b.WriteByte(' ')
		b.WriteString(c.Name)
	case FunctionOp, CallOp:
		b.WriteByte(' ')
		b.WriteString(c.Name)
		b.WriteByte(' ')
		b.WriteString(strconv.Itoa(c.Index))
	}

	return b.String()
}
