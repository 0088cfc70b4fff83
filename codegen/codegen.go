// Package codegen emits a self-contained C function from an analyzed
// bit-DSL program: it walks only the final output index sequence and
// re-expresses each bit as an expression over the input byte buffer.
package codegen

import (
	"fmt"
	"strings"

	"bitforge/analyzer"
)

// reserved mirrors the analyzer's constant-index convention: pool index 0
// is const-false, index 1 is const-true, indices 2..argBits+1 are input
// bits. Subtracting 2 from a pool index recovers its "q" coordinate from
// spec §4.3.
const reservedSlots = 2

// Emit renders a C function named name that takes a packed input byte
// buffer and returns a packed output byte buffer, per spec §4.3 and §6's
// emitted-C contract (MSB-first bit order, static non-reentrant output
// buffer).
//
// Note on fidelity: a derived bit's operands are inlined only one level
// deep, as raw input-bit reads - even when an operand is itself a derived
// bit several levels removed from the inputs. Spec §9 flags this as an
// open question the reference implementation leaves unresolved; per
// DESIGN.md this is preserved faithfully as a documented depth-1
// restriction rather than generalized, so a circuit deeper than one
// derived level emits C that does not evaluate the evaluator's true
// semantics for that bit.
func Emit(name string, pool []analyzer.Bit, argBits int, out []int) string {
	inputBytes := (argBits + 7) / 8
	outputBytes := (len(out) + 7) / 8

	var b strings.Builder
	fmt.Fprintf(&b, "char* %s(char* input) {\n", name)
	fmt.Fprintf(&b, "    static char output[%d] = {0};\n", outputBytes)
	fmt.Fprintf(&b, "    for (int i = 0; i < %d; i++) output[i] = 0;\n", outputBytes)
	_ = inputBytes

	for i, p := range out {
		q := p - reservedSlots
		expr, skip := bitExpr(pool, q, argBits)
		if skip {
			continue
		}
		fmt.Fprintf(&b, "    output[%d] |= (%s << %d);\n", i/8, expr, 7-(i%8))
	}

	b.WriteString("\n    return output;\n")
	b.WriteString("}\n")
	return b.String()
}

// bitExpr renders the C expression for one output bit's pool coordinate q
// (already shifted by the two reserved constant slots). skip is true only
// for the constant-false case, which contributes nothing to the OR-chain.
func bitExpr(pool []analyzer.Bit, q, argBits int) (expr string, skip bool) {
	switch {
	case q == -2:
		return "(0)", true
	case q == -1:
		return "(1)", false
	case q < argBits:
		return inputBitExpr(q), false
	default:
		b := pool[q+reservedSlots]
		lhs := inputBitExpr(b.Lhs - reservedSlots)
		if b.Op == analyzer.OpNot {
			return fmt.Sprintf("(~%s & 1)", lhs), false
		}
		rhs := inputBitExpr(b.Rhs - reservedSlots)
		return fmt.Sprintf("((%s %s %s) & 1)", lhs, b.Op.Symbol(), rhs), false
	}
}

func inputBitExpr(q int) string {
	return fmt.Sprintf("((input[%d] >> %d) & 1)", q/8, 7-(q%8))
}
