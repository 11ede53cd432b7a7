package vmcode

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"tlog.app/go/errors"

	"github.com/xiaobogaga/jackc/util"
)

// SyntaxError describes a malformed vm line.
type SyntaxError struct {
	Line int // 1-based, 0 when parsing a single line
	Text string
	Msg  string
}

func (e *SyntaxError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("vm syntax error near %q: %s", e.Text, e.Msg)
	}
	return fmt.Sprintf("vm syntax error near %q at line %d: %s", e.Text, e.Line, e.Msg)
}

func makeError(text, format string, args ...interface{}) error {
	return &SyntaxError{Text: text, Msg: fmt.Sprintf(format, args...)}
}

// getNextToken splits off the first space separated word of line.
func getNextToken(line string) (string, string) {
	for i := 0; i < len(line); i++ {
		if util.IsSpace(line[i]) {
			return line[:i], line[i+1:]
		}
	}
	return line, ""
}

// Parse parses exactly one instruction. The line must already be in canonical form:
// lower case keywords separated by single spaces and nothing else.
func Parse(line string) (cmd Command, err error) {
	word, rest := getNextToken(line)
	if word == "" {
		return cmd, makeError(line, "empty command")
	}

	op, ok := opsByName[word]
	if !ok {
		return cmd, makeError(word, "unknown command")
	}
	cmd.Op = op

	switch {
	case op.IsArithmetic(), op == ReturnOp:
	case op == PushOp, op == PopOp:
		rest, err = parseSegment(&cmd, rest)
	case op == LabelOp, op == GotoOp, op == IfGotoOp:
		cmd.Name, rest, err = parseName(rest)
	case op == FunctionOp, op == CallOp:
		cmd.Name, rest, err = parseName(rest)
		if err == nil {
			cmd.Index, rest, err = parseIndex(rest)
		}
	}
	if err != nil {
		return Command{}, err
	}

	if rest != "" {
		return Command{}, makeError(rest, "unexpected trailing content")
	}

	if s := cmd.String(); s != line {
		return Command{}, makeError(line, "not in canonical form %q", s)
	}

	return cmd, nil
}

func parseSegment(cmd *Command, line string) (string, error) {
	word, rest := getNextToken(line)

	seg, ok := segmentsByName[word]
	if !ok {
		return "", makeError(word, "unknown segment")
	}

	index, rest, err := parseIndex(rest)
	if err != nil {
		return "", err
	}

	switch {
	case seg == ConstantSegment && cmd.Op == PopOp:
		return "", makeError(line, "cannot pop to constant segment")
	case seg == PointerSegment && index > 1:
		return "", makeError(line, "pointer index must be 0 or 1")
	case seg == TempSegment && index > 7:
		return "", makeError(line, "temp index must be in 0..7")
	}

	cmd.Segment, cmd.Index = seg, index

	return rest, nil
}

func parseIndex(line string) (int, string, error) {
	word, rest := getNextToken(line)
	if word == "" {
		return 0, "", makeError(line, "missing index")
	}

	for i := 0; i < len(word); i++ {
		if !util.IsNumber(word[i]) {
			return 0, "", makeError(word, "index must be a non-negative decimal")
		}
	}

	v, err := strconv.Atoi(word)
	if err != nil {
		return 0, "", makeError(word, "index out of range")
	}

	return v, rest, nil
}

func parseName(line string) (string, string, error) {
	word, rest := getNextToken(line)
	if word == "" {
		return "", "", makeError(line, "missing name")
	}

	if !util.IsLabelStart(word[0]) {
		return "", "", makeError(word, "bad name")
	}
	for i := 1; i < len(word); i++ {
		if !util.IsLabelChar(word[i]) {
			return "", "", makeError(word, "bad name")
		}
	}

	return word, rest, nil
}

// ParseReader parses a whole vm file. Blank lines and lines starting with // are skipped.
func ParseReader(rd io.Reader) (cmds []Command, err error) {
	reader := bufio.NewReader(rd)
	lineCounter := 0

	for {
		line, rerr := reader.ReadString('\n')
		if rerr != nil && rerr != io.EOF {
			return nil, errors.Wrap(rerr, "read line %d", lineCounter+1)
		}
		if rerr == io.EOF && line == "" {
			return cmds, nil
		}

		lineCounter++

		line = strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")
		if trimmed := strings.TrimSpace(line); trimmed == "" || strings.HasPrefix(trimmed, "//") {
			if rerr == io.EOF {
				return cmds, nil
			}
			continue
		}

		cmd, err := Parse(line)
		if err != nil {
			if serr, ok := err.(*SyntaxError); ok {
				serr.Line = lineCounter
			}
			return nil, err
		}

		cmds = append(cmds, cmd)

		if rerr == io.EOF {
			return cmds, nil
		}
	}
}
