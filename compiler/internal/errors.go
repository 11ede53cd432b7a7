package internal

import (
	"fmt"
	"strings"
)

type ErrorKind int

const (
	// Lexical.
	InvalidInteger ErrorKind = iota
	UnrecognizedCharacter
	Unterminated

	// Syntactic.
	UnexpectedToken
	UnexpectedEndOfInput

	// Semantic.
	DuplicateIdentifier
	UndeclaredIdentifier
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidInteger:
		return "invalid integer"
	case UnrecognizedCharacter:
		return "unrecognized character"
	case Unterminated:
		return "unterminated"
	case UnexpectedToken:
		return "unexpected token"
	case UnexpectedEndOfInput:
		return "unexpected end of input"
	case DuplicateIdentifier:
		return "duplicate identifier"
	case UndeclaredIdentifier:
		return "undeclared identifier"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Class is one of lexical, syntax or semantic.
func (k ErrorKind) Class() string {
	switch k {
	case InvalidInteger, UnrecognizedCharacter, Unterminated:
		return "lexical"
	case UnexpectedToken, UnexpectedEndOfInput:
		return "syntax"
	default:
		return "semantic"
	}
}

// Error is a recorded, non fatal diagnostic.
type Error struct {
	Kind  ErrorKind
	Token *Token // nil for lexical errors and at end of input

	Line int
	Col  int
	Text string // offending source text
	Msg  string // optional detail
}

// Sentinels for errors.Is.
var (
	ErrInvalidInteger        = &Error{Kind: InvalidInteger}
	ErrUnrecognizedCharacter = &Error{Kind: UnrecognizedCharacter}
	ErrUnterminated          = &Error{Kind: Unterminated}
	ErrUnexpectedToken       = &Error{Kind: UnexpectedToken}
	ErrUnexpectedEndOfInput  = &Error{Kind: UnexpectedEndOfInput}
	ErrDuplicateIdentifier   = &Error{Kind: DuplicateIdentifier}
	ErrUndeclaredIdentifier  = &Error{Kind: UndeclaredIdentifier}
)

func newTokenError(kind ErrorKind, tok Token, msg string) *Error {
	return &Error{
		Kind:  kind,
		Token: &tok,
		Line:  tok.Line,
		Col:   tok.Col,
		Text:  tok.String(),
		Msg:   msg,
	}
}

func (e *Error) Error() string {
	var b strings.Builder

	if e.Line != 0 {
		fmt.Fprintf(&b, "%d:%d: ", e.Line, e.Col)
	}

	fmt.Fprintf(&b, "%s error: %s", e.Kind.Class(), e.Kind)

	if e.Text != "" {
		fmt.Fprintf(&b, " %s", e.Text)
	}
	if e.Msg != "" {
		fmt.Fprintf(&b, ": %s", e.Msg)
	}

	return b.String()
}

// Is matches any error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// ErrorList holds diagnostics in the order they were found.
type ErrorList []*Error

func (l ErrorList) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", l[0].Error(), len(l)-1)
}

// Err returns nil for an empty list.
func (l ErrorList) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}

func (l ErrorList) Unwrap() []error {
	errs := make([]error, len(l))
	for i, e := range l {
		errs[i] = e
	}
	return errs
}
