// Package ast defines the bit-DSL's abstract syntax tree.
//
// Unlike a classic visitor-pattern AST, node kinds here are plain structs
// implementing small marker interfaces; callers type-switch on the
// concrete type. The set of node kinds is closed and enumerated in full
// by this package - there is no Accept/Visit indirection to generalize
// over.
package ast

import "bitforge/token"

// Expr is the marker interface for every expression-position AST node:
// primitives (Variable, VariableIndex, VariableSlice, Data), and the
// composite rhs forms (Not, Concat, Binary, Call).
type Expr interface {
	exprNode()
}

// Primitive is the marker interface for the subset of Expr the grammar's
// `primitive` production accepts: a bare variable reference, an indexed or
// sliced variable reference, or a data literal. Concat operands, Binary
// operands, Not's operand and Call's argument are all Primitive.
type Primitive interface {
	Expr
	primitiveNode()
}

// Data is a literal value, tagged at lex time with its kind (bit digits or
// hex digits) - see token.DataLiteral. This is the AST-level counterpart:
// carries the already-decoded literal plus its source position for
// diagnostics.
type Data struct {
	Kind   token.DataKind
	Digits string
	Line   int32
	Column int
}

func (Data) exprNode()      {}
func (Data) primitiveNode() {}

// Bound represents one edge of a slice expression. A nil Literal means the
// bound was omitted in source: for a start bound that means "from the
// beginning" (offset 0); for an end bound it means "to the end" (the
// container's full length). This Option-shaped representation replaces
// the reference implementation's "-1" sentinel string.
type Bound struct {
	Literal *Data
}

// Omitted reports whether the bound was left out of the source slice
// expression.
func (b Bound) Omitted() bool {
	return b.Literal == nil
}

// Variable is a bare reference to a bound identifier, e.g. `main`.
type Variable struct {
	Name token.Token
}

func (Variable) exprNode()      {}
func (Variable) primitiveNode() {}

// VariableIndex is `container[n]` - a single-bit read from a variable.
type VariableIndex struct {
	Name  token.Token
	Index Data
}

func (VariableIndex) exprNode()      {}
func (VariableIndex) primitiveNode() {}

// VariableSlice is `container[s:e]` - a sub-range read from a variable.
type VariableSlice struct {
	Name  token.Token
	Start Bound
	End   Bound
}

func (VariableSlice) exprNode()      {}
func (VariableSlice) primitiveNode() {}

// Not is the unary-not expression `~e`.
type Not struct {
	Operand Primitive
	Op      token.Token
}

func (Not) exprNode() {}

// Concat is a `::`-joined chain of two or more primitives, e.g. `a :: b`.
type Concat struct {
	Operands []Primitive
}

func (Concat) exprNode() {}

// Binary is a two-operand expression using one of the grammar's `binop`
// tokens. It covers both boolean ops (`&`, `|`, `^`) and shift/rotate ops
// (`<<`, `>>`, `<<<`, `>>>`), as well as the recognized-but-rejected
// `==`, `!=`, `&&`, `||` - the analyzer dispatches on Op.TokenType.
type Binary struct {
	Left  Primitive
	Op    token.Token
	Right Primitive
}

func (Binary) exprNode() {}

// Call is a function-call expression `f(arg)`.
type Call struct {
	Callee token.Token
	Arg    Primitive
}

func (Call) exprNode() {}
