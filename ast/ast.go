// Package ast declares the types used to represent a parsed ledger file.
//
// The AST covers the directive subset this toolkit works with: account
// lifecycle, balance assertions, notes, documents, events, transactions and
// custom directives. It can be produced by the parser package or constructed
// programmatically with the builders in this package.
package ast

import (
	"golang.org/x/exp/slices"
)

// Directives is a slice of Directive that implements sort.Interface.
type Directives []Directive

func (d Directives) Len() int           { return len(d) }
func (d Directives) Swap(i, j int)      { d[i], d[j] = d[j], d[i] }
func (d Directives) Less(i, j int) bool { return compareDirectives(d[i], d[j]) < 0 }

// compareDirectives orders directives by date, then by type priority so that
// same-date opens are processed before closes, and closes before everything else.
func compareDirectives(a, b Directive) int {
	if a.date().Before(b.date().Time) {
		return -1
	} else if a.date().After(b.date().Time) {
		return 1
	}

	aPriority := directiveTypePriority(a)
	bPriority := directiveTypePriority(b)
	if aPriority < bPriority {
		return -1
	} else if aPriority > bPriority {
		return 1
	}

	return 0
}

func directiveTypePriority(d Directive) int {
	switch d.(type) {
	case *Open:
		return 0
	case *Close:
		return 1
	default:
		return 2
	}
}

// AST represents a parsed ledger file containing directives and other
// top-level elements.
type AST struct {
	Directives Directives
	Options    []*Option
	Includes   []*Include
	Plugins    []*Plugin
}

// WithMetadata is an interface for AST nodes that can have metadata attached.
type WithMetadata interface {
	AddMetadata(...*Metadata)
}

// withMetadata is an embeddable struct that implements WithMetadata.
type withMetadata struct {
	Metadata []*Metadata
}

func (w *withMetadata) AddMetadata(m ...*Metadata) {
	w.Metadata = append(w.Metadata, m...)
}

// Meta returns the string form of the metadata value for key, if present.
func (w *withMetadata) Meta(key string) (string, bool) {
	for _, m := range w.Metadata {
		if m.Key == key {
			return m.Value.String(), true
		}
	}
	return "", false
}

// Directive is the interface implemented by all directive types.
type Directive interface {
	WithMetadata

	date() *Date
	Directive() string
}

// PositionOf extracts the source position from any directive type.
func PositionOf(d Directive) Position {
	switch v := d.(type) {
	case *Commodity:
		return v.Pos
	case *Open:
		return v.Pos
	case *Close:
		return v.Pos
	case *Balance:
		return v.Pos
	case *Note:
		return v.Pos
	case *Document:
		return v.Pos
	case *Event:
		return v.Pos
	case *Custom:
		return v.Pos
	case *Transaction:
		return v.Pos
	default:
		return Position{}
	}
}

// DateOf returns the date of any directive type.
func DateOf(d Directive) *Date {
	return d.date()
}

// isSorted checks if directives are already sorted by date.
func isSorted(d Directives) bool {
	for i := 1; i < len(d); i++ {
		if d.Less(i, i-1) {
			return false
		}
	}
	return true
}

// SortDirectives sorts all directives by their parsed date.
//
// This is called automatically during parsing, but can be called on a
// manually constructed AST.
func SortDirectives(ast *AST) {
	// Skip sorting if already sorted (common case for well-maintained files)
	if isSorted(ast.Directives) {
		return
	}

	slices.SortFunc(ast.Directives, compareDirectives)
}
