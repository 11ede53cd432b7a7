package internal

import (
	"github.com/xiaobogaga/jackc/vmcode"
)

// SymbolKind is the storage kind of a declared name.
type SymbolKind int

const (
	StaticSymbol SymbolKind = iota
	FieldSymbol
	ArgSymbol
	LocalSymbol

	numSymbolKinds
)

func (k SymbolKind) String() string {
	switch k {
	case StaticSymbol:
		return "static"
	case FieldSymbol:
		return "field"
	case ArgSymbol:
		return "argument"
	case LocalSymbol:
		return "local"
	}
	return "unknown"
}

// Segment is the vm memory segment a symbol of this kind lives in.
func (k SymbolKind) Segment() vmcode.Segment {
	switch k {
	case StaticSymbol:
		return vmcode.StaticSegment
	case FieldSymbol:
		return vmcode.ThisSegment
	case ArgSymbol:
		return vmcode.ArgumentSegment
	default:
		return vmcode.LocalSegment
	}
}

// IsClassScope reports whether names of this kind live for the whole class.
func (k SymbolKind) IsClassScope() bool {
	return k == StaticSymbol || k == FieldSymbol
}

// Symbol is what the table knows about a declared name.
// Index is the offset inside the kind's segment.
type Symbol struct {
	Name         string
	VariableType string
	Kind         SymbolKind
	Index        int
}

// SymbolTable has two scopes: class (static, field) and subroutine (argument, local).
// Lookup checks the subroutine scope first.
type SymbolTable struct {
	classSymbols      map[string]Symbol
	subroutineSymbols map[string]Symbol
	counters          [numSymbolKinds]int
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		classSymbols:      make(map[string]Symbol),
		subroutineSymbols: make(map[string]Symbol),
	}
}

func (table *SymbolTable) scope(kind SymbolKind) map[string]Symbol {
	if kind.IsClassScope() {
		return table.classSymbols
	}
	return table.subroutineSymbols
}

// Define registers name at the next index of kind.
// A name already present in the same scope is rejected with ErrDuplicateIdentifier
// and the table is left unchanged.
func (table *SymbolTable) Define(kind SymbolKind, variableType, name string) (Symbol, error) {
	scope := table.scope(kind)

	if _, ok := scope[name]; ok {
		return Symbol{}, ErrDuplicateIdentifier
	}

	symbol := Symbol{
		Name:         name,
		VariableType: variableType,
		Kind:         kind,
		Index:        table.counters[kind],
	}
	table.counters[kind]++
	scope[name] = symbol

	return symbol, nil
}

func (table *SymbolTable) Lookup(name string) (Symbol, bool) {
	if symbol, ok := table.subroutineSymbols[name]; ok {
		return symbol, true
	}
	symbol, ok := table.classSymbols[name]
	return symbol, ok
}

// EnterSubroutine drops the subroutine scope and restarts argument and local numbering.
func (table *SymbolTable) EnterSubroutine() {
	table.subroutineSymbols = make(map[string]Symbol)
	table.counters[ArgSymbol] = 0
	table.counters[LocalSymbol] = 0
}

// Count returns how many names of kind are defined in the current scopes.
func (table *SymbolTable) Count(kind SymbolKind) int {
	return table.counters[kind]
}
