package ast

// Option represents a top-level option setting in a ledger file.
//
// Example:
//
//	option "operating_currency" "DKK"
type Option struct {
	Pos   Position
	Name  string
	Value string
}

// Include represents an include statement pulling another ledger file into
// the current one. Paths are resolved relative to the including file.
//
// Example:
//
//	include "2025/koeb.beancount"
type Include struct {
	Pos      Position
	Filename string
}

// Plugin represents a plugin statement naming a transformation to run over
// the parsed directives, with an optional configuration string.
//
// Example:
//
//	plugin "danish" "moms.yaml"
type Plugin struct {
	Pos    Position
	Name   string
	Config string
}
