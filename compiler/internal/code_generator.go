package internal

import (
	"bufio"
	"io"
	"strconv"

	"github.com/xiaobogaga/jackc/vmcode"
)

// VMWriter appends vm commands to an output stream, one per line.
// Nothing written is ever revisited, so forward jumps must use labels reserved by NewLabel.
// The first write error sticks and is returned by Flush.
type VMWriter struct {
	writer *bufio.Writer
	err    error

	labelCounter int
	commands     int
}

func NewVMWriter(w io.Writer) *VMWriter {
	return &VMWriter{writer: bufio.NewWriter(w)}
}

func (w *VMWriter) Emit(cmd vmcode.Command) {
	w.commands++

	if w.err != nil {
		return
	}

	_, err := w.writer.WriteString(cmd.String())
	if err == nil {
		err = w.writer.WriteByte('\n')
	}
	w.err = err
}

// NewLabel returns a label never returned before by this writer.
// The counter is shared by all tags, so labels differ even across tags.
func (w *VMWriter) NewLabel(tag string) string {
	label := tag + "_" + strconv.Itoa(w.labelCounter)
	w.labelCounter++
	return label
}

// Commands is the number of commands emitted so far.
func (w *VMWriter) Commands() int {
	return w.commands
}

func (w *VMWriter) Flush() error {
	if w.err != nil {
		return w.err
	}
	w.err = w.writer.Flush()
	return w.err
}

func (w *VMWriter) WritePush(segment vmcode.Segment, index int) {
	w.Emit(vmcode.Push(segment, index))
}

func (w *VMWriter) WritePop(segment vmcode.Segment, index int) {
	w.Emit(vmcode.Pop(segment, index))
}

func (w *VMWriter) WriteArithmetic(op vmcode.Op) {
	w.Emit(vmcode.Arithmetic(op))
}

func (w *VMWriter) WriteLabel(label string) {
	w.Emit(vmcode.Label(label))
}

func (w *VMWriter) WriteGoto(label string) {
	w.Emit(vmcode.Goto(label))
}

func (w *VMWriter) WriteIf(label string) {
	w.Emit(vmcode.IfGoto(label))
}

func (w *VMWriter) WriteCall(name string, nArgs int) {
	w.Emit(vmcode.Call(name, nArgs))
}

func (w *VMWriter) WriteFunction(name string, nLocals int) {
	w.Emit(vmcode.Function(name, nLocals))
}

func (w *VMWriter) WriteReturn() {
	w.Emit(vmcode.Return())
}

// WriteStringConstant builds a String object holding s and leaves it on the stack.
func (w *VMWriter) WriteStringConstant(s string) {
	w.WritePush(vmcode.ConstantSegment, len(s))
	w.WriteCall("String.new", 1)
	for i := 0; i < len(s); i++ {
		// appendChar returns the string itself, so it stays on top of the stack.
		w.WritePush(vmcode.ConstantSegment, int(s[i]))
		w.WriteCall("String.appendChar", 2)
	}
}
