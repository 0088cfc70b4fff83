// Package analyzer implements the bit-DSL's symbolic evaluator: it walks a
// parsed program's AST, maintains a pool of symbolic bits and a variable
// environment, and returns the ordered pool-index sequence a program's
// `main` function evaluates to.
//
// Unlike the reference implementation, which holds the bit pool, variable
// environment and function table as process-globals, every piece of state
// here is owned by one Analyzer value, constructed fresh per compilation
// (spec §9, "Process-wide mutable state").
package analyzer

import (
	"fmt"
	"strconv"

	"bitforge/ast"
	"bitforge/token"
)

// Reserved pool indices: spec §3 fixes index 0 to constant-false and index
// 1 to constant-true for the lifetime of a compilation.
const (
	constFalseIndex = 0
	constTrueIndex  = 1
)

// Analyzer owns the bit pool, variable environment and function table for
// exactly one compilation.
type Analyzer struct {
	Pool  []Bit
	Vars  map[string][]int
	Funcs map[string]*ast.Func

	// inputEnd is one past the last of main's input bits: indices below it
	// are the two constants and the inputs, which normalize leaves as they are.
	inputEnd int
}

// New constructs an empty Analyzer, ready for a single call to Analyze.
func New() *Analyzer {
	return &Analyzer{
		Vars:  map[string][]int{},
		Funcs: map[string]*ast.Func{},
	}
}

func (a *Analyzer) alloc(b Bit) int {
	a.Pool = append(a.Pool, b)
	return len(a.Pool) - 1
}

// Analyze locates `main`, seeds the pool with its reserved constants and
// input bits, and evaluates its body, returning the final return
// statement's index sequence.
func (a *Analyzer) Analyze(program *ast.Program) ([]int, error) {
	a.Funcs = make(map[string]*ast.Func, len(program.Funcs))
	for _, fn := range program.Funcs {
		a.Funcs[fn.Name.Lexeme] = fn
	}

	main, ok := a.Funcs["main"]
	if !ok {
		return nil, EntryError{Message: "no 'main' function defined"}
	}
	if !main.HasArgBits {
		return nil, EntryError{Message: "no valid argument bit-width for main()"}
	}
	argc := main.ArgBits
	if argc <= 0 {
		return nil, EntryError{Message: "invalid argument bit-width: must be > 0"}
	}

	a.Pool = make([]Bit, 0, argc+2)
	a.alloc(Bit{Op: OpConst, Lhs: -1, Rhs: -1, Value: false}) // index 0: const-false
	a.alloc(Bit{Op: OpConst, Lhs: -1, Rhs: -1, Value: true})  // index 1: const-true

	inputIndices := make([]int, argc)
	for i := 0; i < argc; i++ {
		inputIndices[i] = a.alloc(Bit{Op: OpConst, Lhs: -1, Rhs: -1, Value: false})
	}
	a.inputEnd = len(a.Pool)

	return a.processFunction(main, inputIndices)
}

// processFunction binds the function's own name to inputIndices, then
// executes its body in order; a return statement ends evaluation early.
func (a *Analyzer) processFunction(fn *ast.Func, inputIndices []int) ([]int, error) {
	a.Vars[fn.Name.Lexeme] = inputIndices

	for _, stmt := range fn.Body {
		switch s := stmt.(type) {
		case ast.Assign:
			rhs, err := a.processExpr(s.Value)
			if err != nil {
				return nil, err
			}
			if err := a.assign(s.Target, rhs); err != nil {
				return nil, err
			}
		case ast.Return:
			return a.processExpr(s.Value)
		default:
			return nil, DeveloperError{Message: fmt.Sprintf("unexpected statement kind %T", s)}
		}
	}
	return []int{}, nil
}

// assign stores rhs into target according to its shape (spec §4.2.3):
// whole-variable rebind, single-index write, or slice write.
func (a *Analyzer) assign(target ast.Expr, rhs []int) error {
	switch t := target.(type) {
	case ast.Variable:
		a.Vars[t.Name.Lexeme] = rhs
		return nil

	case ast.VariableIndex:
		parent, ok := a.Vars[t.Name.Lexeme]
		if !ok {
			return NameError{Name: t.Name.Lexeme}
		}
		idx, err := resolveInt(t.Index)
		if err != nil {
			return err
		}
		if idx < 0 {
			idx += len(parent)
		}
		if idx < 0 || idx >= len(parent) {
			return RangeError{Message: fmt.Sprintf("invalid index on left-hand side: %d", idx)}
		}
		if len(rhs) > 0 {
			parent[idx] = rhs[0]
		} else {
			parent[idx] = a.alloc(Bit{Op: OpConst, Lhs: -1, Rhs: -1, Value: false})
		}
		a.Vars[t.Name.Lexeme] = parent
		return nil

	case ast.VariableSlice:
		parent, ok := a.Vars[t.Name.Lexeme]
		if !ok {
			return NameError{Name: t.Name.Lexeme}
		}
		start, end, err := a.resolveSliceBounds(t.Start, t.End, len(parent))
		if err != nil {
			return err
		}
		for i := start; i < end; i++ {
			srcPos := i - start
			if srcPos < len(rhs) {
				parent[i] = rhs[srcPos]
			} else {
				parent[i] = a.alloc(Bit{Op: OpConst, Lhs: -1, Rhs: -1, Value: false})
			}
		}
		a.Vars[t.Name.Lexeme] = parent
		return nil

	default:
		return DeveloperError{Message: fmt.Sprintf("unsupported assignment target %T", t)}
	}
}

// resolveInt decodes a data literal used as a plain integer - an index
// value, a slice bound, or a shift/rotate amount - as opposed to a data
// literal used as a bit pattern (see decodeData).
func resolveInt(d ast.Data) (int, error) {
	base := 10
	if d.Kind == token.HexKind {
		base = 16
	}
	v, err := strconv.ParseInt(d.Digits, base, 32)
	if err != nil {
		return 0, RangeError{Message: fmt.Sprintf("invalid numeric literal %q", d.Digits)}
	}
	return int(v), nil
}

// resolveSliceBounds decodes a slice's start/end bounds against a
// container of the given length, applying negative wraparound and
// validating 0 <= start <= end <= length.
func (a *Analyzer) resolveSliceBounds(startBound, endBound ast.Bound, length int) (int, int, error) {
	start := 0
	if !startBound.Omitted() {
		v, err := resolveInt(*startBound.Literal)
		if err != nil {
			return 0, 0, err
		}
		start = v
	}
	end := length
	if !endBound.Omitted() {
		v, err := resolveInt(*endBound.Literal)
		if err != nil {
			return 0, 0, err
		}
		end = v
	}
	if start < 0 {
		start += length
	}
	if end < 0 {
		end += length
	}
	if start < 0 || end < start || end > length {
		return 0, 0, RangeError{Message: fmt.Sprintf("invalid slice bounds [%d:%d] for length %d", start, end, length)}
	}
	return start, end, nil
}

// processExpr evaluates any expression-position AST node to its ordered
// pool-index sequence. This is the single type-switch the redesigned
// tagged-variant AST calls for - no Accept/Visit indirection.
func (a *Analyzer) processExpr(e ast.Expr) ([]int, error) {
	switch v := e.(type) {
	case ast.Variable:
		seq, ok := a.Vars[v.Name.Lexeme]
		if !ok {
			return nil, NameError{Name: v.Name.Lexeme}
		}
		out := append([]int(nil), seq...)
		return a.normalize(out), nil

	case ast.VariableIndex:
		parent, ok := a.Vars[v.Name.Lexeme]
		if !ok {
			return nil, NameError{Name: v.Name.Lexeme}
		}
		idx, err := resolveInt(v.Index)
		if err != nil {
			return nil, err
		}
		if idx < 0 {
			idx += len(parent)
		}
		if idx < 0 || idx >= len(parent) {
			return nil, RangeError{Message: fmt.Sprintf("invalid index: %d", idx)}
		}
		return a.normalize([]int{parent[idx]}), nil

	case ast.VariableSlice:
		parent, ok := a.Vars[v.Name.Lexeme]
		if !ok {
			return nil, NameError{Name: v.Name.Lexeme}
		}
		start, end, err := a.resolveSliceBounds(v.Start, v.End, len(parent))
		if err != nil {
			return nil, err
		}
		out := append([]int(nil), parent[start:end]...)
		return a.normalize(out), nil

	case ast.Data:
		return a.normalize(decodeData(v)), nil

	case ast.Concat:
		var out []int
		for _, operand := range v.Operands {
			sub, err := a.processExpr(operand)
			if err != nil {
				return nil, err
			}
			out = append(out, sub...)
		}
		return a.normalize(out), nil

	case ast.Not:
		return a.processNot(v)

	case ast.Binary:
		return a.processBinary(v)

	case ast.Call:
		return a.processCall(v)

	default:
		return nil, DeveloperError{Message: fmt.Sprintf("unexpected expression kind %T", v)}
	}
}

// decodeData expands a data literal into its raw bit sequence: one index
// per written character for a bit(...) literal (left-to-right as written),
// or 4 bits per hex digit, most-significant-bit first, for a hex(...)
// literal. Mirrors the reference implementation's char-wise decode, which
// treats any non-'0' digit of a bit literal as a 1 bit rather than
// rejecting it.
func decodeData(d ast.Data) []int {
	if d.Kind == token.HexKind {
		val, _ := strconv.ParseUint(d.Digits, 16, 64)
		bitsNeeded := len(d.Digits) * 4
		out := make([]int, bitsNeeded)
		for i := 0; i < bitsNeeded; i++ {
			shift := uint(bitsNeeded - 1 - i)
			if val&(1<<shift) != 0 {
				out[i] = constTrueIndex
			} else {
				out[i] = constFalseIndex
			}
		}
		return out
	}

	out := make([]int, len(d.Digits))
	for i := 0; i < len(d.Digits); i++ {
		if d.Digits[i] == '0' {
			out[i] = constFalseIndex
		} else {
			out[i] = constTrueIndex
		}
	}
	return out
}

// processNot evaluates ~e: constants fold to their opposite constant,
// everything else allocates a new unary-not bit.
func (a *Analyzer) processNot(n ast.Not) ([]int, error) {
	operand, err := a.processExpr(n.Operand)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(operand))
	for i, idx := range operand {
		switch idx {
		case constFalseIndex:
			out[i] = constTrueIndex
		case constTrueIndex:
			out[i] = constFalseIndex
		default:
			out[i] = a.alloc(Bit{Op: OpNot, Lhs: idx, Rhs: -1})
		}
	}
	return a.normalize(out), nil
}

// processBinary dispatches a Binary node by its operator token: the three
// boolean ops fold element-wise over the zero-padded operand sequences; the
// four shift/rotate ops require a data literal (decimal or hex) right-hand
// side and operate on the index sequence itself without allocating new bits.
func (a *Analyzer) processBinary(b ast.Binary) ([]int, error) {
	left, err := a.processExpr(b.Left)
	if err != nil {
		return nil, err
	}

	switch b.Op.TokenType {
	case token.AMP, token.PIPE, token.CARET:
		right, err := a.processExpr(b.Right)
		if err != nil {
			return nil, err
		}
		n := len(left)
		if len(right) > n {
			n = len(right)
		}
		out := make([]int, n)
		for i := 0; i < n; i++ {
			li := constFalseIndex
			if i < len(left) {
				li = left[i]
			}
			ri := constFalseIndex
			if i < len(right) {
				ri = right[i]
			}
			idx, err := a.foldBoolean(b.Op.TokenType, li, ri)
			if err != nil {
				return nil, err
			}
			out[i] = idx
		}
		return a.normalize(out), nil

	case token.SHL, token.SHR, token.ROL, token.ROR:
		data, ok := b.Right.(ast.Data)
		if !ok {
			return nil, OperatorError{Message: fmt.Sprintf("shift/rotate amount must be a data literal, got %T", b.Right)}
		}
		amount, err := resolveInt(data)
		if err != nil {
			return nil, err
		}
		return a.normalize(applyShift(b.Op.TokenType, left, amount)), nil

	default:
		return nil, OperatorError{Message: fmt.Sprintf("invalid binary operator: %q", b.Op.Lexeme)}
	}
}

// foldBoolean applies one of &, |, ^ to a single bit position, folding to
// a constant wherever the spec's truth table allows and allocating a new
// bit only when neither operand decides the result.
func (a *Analyzer) foldBoolean(op token.TokenType, li, ri int) (int, error) {
	switch op {
	case token.AMP:
		switch {
		case li == constFalseIndex || ri == constFalseIndex:
			return constFalseIndex, nil
		case li == constTrueIndex && ri == constTrueIndex:
			return constTrueIndex, nil
		case li == constTrueIndex:
			return ri, nil
		case ri == constTrueIndex:
			return li, nil
		default:
			return a.alloc(Bit{Op: OpAnd, Lhs: li, Rhs: ri}), nil
		}

	case token.PIPE:
		switch {
		case li == constTrueIndex || ri == constTrueIndex:
			return constTrueIndex, nil
		case li == constFalseIndex && ri == constFalseIndex:
			return constFalseIndex, nil
		case li == constFalseIndex:
			return ri, nil
		case ri == constFalseIndex:
			return li, nil
		default:
			return a.alloc(Bit{Op: OpOr, Lhs: li, Rhs: ri}), nil
		}

	case token.CARET:
		switch {
		case li == ri:
			return constFalseIndex, nil
		case (li == constFalseIndex && ri == constTrueIndex) || (li == constTrueIndex && ri == constFalseIndex):
			return constTrueIndex, nil
		default:
			return a.alloc(Bit{Op: OpXor, Lhs: li, Rhs: ri}), nil
		}

	default:
		return 0, DeveloperError{Message: fmt.Sprintf("foldBoolean called with non-boolean operator %q", op)}
	}
}

// applyShift performs a logical shift or rotate on an index sequence in
// place of allocating any new bits - spec §4.2.1's shift/rotate rules.
func applyShift(op token.TokenType, l []int, amount int) []int {
	n := len(l)
	switch op {
	case token.SHR:
		if amount > 0 && amount < n {
			out := make([]int, n)
			for i := 0; i < n-amount; i++ {
				out[i+amount] = l[i]
			}
			for i := 0; i < amount; i++ {
				out[i] = constFalseIndex
			}
			return out
		}
		return zeros(n)

	case token.SHL:
		if amount > 0 && amount < n {
			out := make([]int, n)
			for i := amount; i < n; i++ {
				out[i-amount] = l[i]
			}
			for i := n - amount; i < n; i++ {
				out[i] = constFalseIndex
			}
			return out
		}
		return zeros(n)

	case token.ROR:
		return rotateRight(l, amount)

	case token.ROL:
		return rotateLeft(l, amount)
	}
	return l
}

func zeros(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = constFalseIndex
	}
	return out
}

func rotateRight(xs []int, amount int) []int {
	n := len(xs)
	if n == 0 || amount <= 0 {
		return xs
	}
	amount %= n
	if amount == 0 {
		return xs
	}
	out := make([]int, n)
	copy(out, xs[n-amount:])
	copy(out[amount:], xs[:n-amount])
	return out
}

func rotateLeft(xs []int, amount int) []int {
	n := len(xs)
	if n == 0 || amount <= 0 {
		return xs
	}
	amount %= n
	if amount == 0 {
		return xs
	}
	out := make([]int, n)
	copy(out, xs[amount:])
	copy(out[n-amount:], xs[:amount])
	return out
}

// processCall evaluates the argument, looks up the callee, and inlines its
// body by invoking processFunction directly - there is no call stack or
// frame isolation, matching the reference implementation's single shared
// variable environment.
func (a *Analyzer) processCall(c ast.Call) ([]int, error) {
	fn, ok := a.Funcs[c.Callee.Lexeme]
	if !ok {
		return nil, CallError{Message: fmt.Sprintf("unknown function: %s", c.Callee.Lexeme)}
	}
	arg, err := a.processExpr(c.Arg)
	if err != nil {
		return nil, err
	}
	return a.processFunction(fn, arg)
}

// normalize replaces any element whose pool record is a constant allocated
// after main's input bits - a placeholder from a partial index/slice write -
// by the canonical constant index for its value. This keeps index sequences
// tidy after placeholder writes. Main's input bits are also stored as
// OpConst records, so every index below inputEnd is left unchanged.
func (a *Analyzer) normalize(indices []int) []int {
	for i, v := range indices {
		if v < a.inputEnd {
			continue
		}
		b := a.Pool[v]
		if b.Op == OpConst {
			if b.Value {
				indices[i] = constTrueIndex
			} else {
				indices[i] = constFalseIndex
			}
		}
	}
	return indices
}
