package codegen

import (
	"strings"
	"testing"

	"bitforge/analyzer"
	"bitforge/lexer"
	"bitforge/parser"
)

// compile runs the full preprocessor-free pipeline (lex, parse, analyze)
// and returns the analyzer state plus the final output index sequence -
// everything Emit needs.
func compile(t *testing.T, source string) (*analyzer.Analyzer, []int, int) {
	t.Helper()
	lex := lexer.New(source)
	tokens, err := lex.Scan()
	if err != nil {
		t.Fatalf("lexer error: %v", err)
	}
	program, err := parser.Make(tokens).Parse()
	if err != nil {
		t.Fatalf("parser error: %v", err)
	}
	a := analyzer.New()
	out, err := a.Analyze(program)
	if err != nil {
		t.Fatalf("analyze error: %v", err)
	}
	var argBits int
	for _, fn := range program.Funcs {
		if fn.Name.Lexeme == "main" {
			argBits = fn.ArgBits
		}
	}
	return a, out, argBits
}

// simulate evaluates the same per-output-bit formula Emit renders into C
// (spec §4.3), directly in Go, against a concrete input byte buffer. Used
// to check emitted semantics against spec §8's worked end-to-end
// scenarios without needing a C toolchain.
func simulate(pool []analyzer.Bit, argBits int, out []int, input []byte) []byte {
	outputBytes := (len(out) + 7) / 8
	output := make([]byte, outputBytes)

	readInput := func(q int) int {
		if q < 0 {
			q = 0 // clamps a negative operand coordinate; Emit's C has no such guard
		}
		byteIdx := q / 8
		if byteIdx >= len(input) {
			return 0
		}
		return int((input[byteIdx] >> uint(7-(q%8))) & 1)
	}

	for i, p := range out {
		q := p - reservedSlots
		var bit int
		switch {
		case q == -2:
			bit = 0
		case q == -1:
			bit = 1
		case q < argBits:
			bit = readInput(q)
		default:
			b := pool[q+reservedSlots]
			lhs := readInput(b.Lhs - reservedSlots)
			if b.Op == analyzer.OpNot {
				bit = (^lhs) & 1
			} else {
				rhs := readInput(b.Rhs - reservedSlots)
				switch b.Op {
				case analyzer.OpAnd:
					bit = (lhs & rhs) & 1
				case analyzer.OpOr:
					bit = (lhs | rhs) & 1
				case analyzer.OpXor:
					bit = (lhs ^ rhs) & 1
				}
			}
		}
		if bit != 0 {
			output[i/8] |= 1 << uint(7-(i%8))
		}
	}
	return output
}

func TestEmitIdentity(t *testing.T) {
	a, out, argBits := compile(t, "function main:8 { main = main; return main; }")
	code := Emit("identity", a.Pool, argBits, out)
	if !strings.Contains(code, "char* identity(char* input)") {
		t.Errorf("Emit() = %q, missing expected signature", code)
	}
	got := simulate(a.Pool, argBits, out, []byte{0xA5})
	if got[0] != 0xA5 {
		t.Errorf("simulate() = %#02x, want 0xa5 (S1)", got[0])
	}
}

func TestEmitNot(t *testing.T) {
	a, out, argBits := compile(t, "function main:4 { main = ~main; return main; }")
	got := simulate(a.Pool, argBits, out, []byte{0x50})
	// high nibble 0101 negated -> 1010, placed back into the high nibble.
	if got[0] != 0xA0 {
		t.Errorf("simulate() = %#02x, want 0xa0 (S2)", got[0])
	}
}

func TestEmitAndWithLiteral(t *testing.T) {
	a, out, argBits := compile(t, "function main:8 { main = main & 0xF0; return main; }")
	got := simulate(a.Pool, argBits, out, []byte{0xA5})
	if got[0] != 0xA0 {
		t.Errorf("simulate() = %#02x, want 0xa0 (S3)", got[0])
	}
}

func TestEmitConcatAndSliceIsIdentityOverFullWidth(t *testing.T) {
	a, out, argBits := compile(t, "function main:4 { a = main[0:2] :: main[2:4]; return a; }")
	for _, input := range []byte{0x00, 0x50, 0xF0, 0xA0} {
		got := simulate(a.Pool, argBits, out, []byte{input})
		// only the high nibble is addressed by a 4-bit main.
		want := input & 0xF0
		if got[0] != want {
			t.Errorf("simulate(%#02x) = %#02x, want %#02x (S4)", input, got[0], want)
		}
	}
}

func TestEmitRotation(t *testing.T) {
	a, out, argBits := compile(t, "function main:8 { r = main >>> 0x1; return r; }")
	got := simulate(a.Pool, argBits, out, []byte{0x81})
	if got[0] != 0xC0 {
		t.Errorf("simulate() = %#02x, want 0xc0 (S6)", got[0])
	}
}

func TestEmitOutputByteCountRoundsUp(t *testing.T) {
	a, out, argBits := compile(t, "function main:3 { a = main[0:1]; return a; }")
	code := Emit("f", a.Pool, argBits, out)
	if !strings.Contains(code, "static char output[1]") {
		t.Errorf("Emit() = %q, want a 1-byte static output buffer for a 1-bit result", code)
	}
}
