package analyzer

import (
	"reflect"
	"testing"

	"bitforge/lexer"
	"bitforge/parser"
)

func analyzeSource(t *testing.T, source string) ([]int, *Analyzer) {
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
	a := New()
	out, err := a.Analyze(program)
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	return out, a
}

func TestAnalyzeIdentity(t *testing.T) {
	out, _ := analyzeSource(t, "function main:8 { main = main; return main; }")
	want := []int{2, 3, 4, 5, 6, 7, 8, 9}
	if !reflect.DeepEqual(out, want) {
		t.Errorf("out = %v, want %v", out, want)
	}
}

func TestAnalyzeNotAllocatesOneBitPerInput(t *testing.T) {
	out, a := analyzeSource(t, "function main:4 { main = ~main; return main; }")
	if len(out) != 4 {
		t.Fatalf("got %d output bits, want 4", len(out))
	}
	for i, idx := range out {
		b := a.Pool[idx]
		if b.Op != OpNot {
			t.Fatalf("bit %d: op = %v, want OpNot", i, b.Op)
		}
		wantLhs := 2 + i
		if b.Lhs != wantLhs {
			t.Errorf("bit %d: Lhs = %d, want %d", i, b.Lhs, wantLhs)
		}
	}
}

func TestAnalyzeDoubleNegationOnConstantIsIdempotent(t *testing.T) {
	out, _ := analyzeSource(t, "function main:1 { x = ~0x1; y = ~x; return y; }")
	// 0x1 decodes to 4 bits (one hex digit): 0,0,0,1 - NOT each: 1,1,1,0 -
	// NOT again: back to the original constants 0,0,0,1.
	want := []int{constFalseIndex, constFalseIndex, constFalseIndex, constTrueIndex}
	if !reflect.DeepEqual(out, want) {
		t.Errorf("out = %v, want %v", out, want)
	}
}

func TestAnalyzeAndWithHexLiteralFoldsConstantHalf(t *testing.T) {
	out, _ := analyzeSource(t, "function main:8 { main = main & 0xF0; return main; }")
	if len(out) != 8 {
		t.Fatalf("got %d output bits, want 8", len(out))
	}
	// high nibble ANDed with all-1s folds to the input bit itself.
	for i := 0; i < 4; i++ {
		want := 2 + i
		if out[i] != want {
			t.Errorf("out[%d] = %d, want %d (the input bit, AND-with-1 identity)", i, out[i], want)
		}
	}
	// low nibble ANDed with all-0s folds to constant-false.
	for i := 4; i < 8; i++ {
		if out[i] != constFalseIndex {
			t.Errorf("out[%d] = %d, want constFalseIndex", i, out[i])
		}
	}
}

func TestAnalyzeConcatOfSlicesReconstructsOriginal(t *testing.T) {
	out, _ := analyzeSource(t, "function main:4 { a = main[0:2] :: main[2:4]; return a; }")
	want := []int{2, 3, 4, 5}
	if !reflect.DeepEqual(out, want) {
		t.Errorf("out = %v, want %v", out, want)
	}
}

func TestAnalyzeSliceOmittedBoundsIsFullSequence(t *testing.T) {
	out, _ := analyzeSource(t, "function main:4 { a = main[:]; return a; }")
	want := []int{2, 3, 4, 5}
	if !reflect.DeepEqual(out, want) {
		t.Errorf("out = %v, want %v", out, want)
	}
}

func TestAnalyzeSliceToZeroIsEmpty(t *testing.T) {
	out, _ := analyzeSource(t, "function main:4 { a = main[:0]; return a; }")
	if len(out) != 0 {
		t.Errorf("out = %v, want empty", out)
	}
}

func TestAnalyzeRotationByOne(t *testing.T) {
	out, _ := analyzeSource(t, "function main:8 { r = main >>> 0x1; return r; }")
	want := []int{9, 2, 3, 4, 5, 6, 7, 8}
	if !reflect.DeepEqual(out, want) {
		t.Errorf("out = %v, want %v", out, want)
	}
}

func TestAnalyzeRotationByFullWidthIsIdentity(t *testing.T) {
	out, _ := analyzeSource(t, "function main:8 { r = main >>> 8; return r; }")
	want := []int{2, 3, 4, 5, 6, 7, 8, 9}
	if !reflect.DeepEqual(out, want) {
		t.Errorf("out = %v, want %v", out, want)
	}
}

func TestAnalyzeShiftByFullWidthIsAllZero(t *testing.T) {
	out, _ := analyzeSource(t, "function main:8 { r = main << 8; return r; }")
	for i, idx := range out {
		if idx != constFalseIndex {
			t.Errorf("out[%d] = %d, want constFalseIndex", i, idx)
		}
	}
}

func TestAnalyzeXorOfIdenticalSequenceFoldsToZero(t *testing.T) {
	out, _ := analyzeSource(t, "function main:4 { main = main ^ main; return main; }")
	for i, idx := range out {
		if idx != constFalseIndex {
			t.Errorf("out[%d] = %d, want constFalseIndex", i, idx)
		}
	}
}

func TestAnalyzeMissingMainIsEntryError(t *testing.T) {
	lex := lexer.New("function helper { return helper; }")
	tokens, err := lex.Scan()
	if err != nil {
		t.Fatalf("lexer error: %v", err)
	}
	program, err := parser.Make(tokens).Parse()
	if err != nil {
		t.Fatalf("parser error: %v", err)
	}
	_, err = New().Analyze(program)
	if _, ok := err.(EntryError); !ok {
		t.Fatalf("error = %v (%T), want EntryError", err, err)
	}
}

func TestAnalyzeUnknownVariableIsNameError(t *testing.T) {
	lex := lexer.New("function main:4 { r = ghost; return r; }")
	tokens, err := lex.Scan()
	if err != nil {
		t.Fatalf("lexer error: %v", err)
	}
	program, err := parser.Make(tokens).Parse()
	if err != nil {
		t.Fatalf("parser error: %v", err)
	}
	_, err = New().Analyze(program)
	if _, ok := err.(NameError); !ok {
		t.Fatalf("error = %v (%T), want NameError", err, err)
	}
}

func TestAnalyzeShiftWithNonLiteralAmountIsOperatorError(t *testing.T) {
	lex := lexer.New("function main:4 { n = main; r = main >> n; return r; }")
	tokens, err := lex.Scan()
	if err != nil {
		t.Fatalf("lexer error: %v", err)
	}
	program, err := parser.Make(tokens).Parse()
	if err != nil {
		t.Fatalf("parser error: %v", err)
	}
	_, err = New().Analyze(program)
	if _, ok := err.(OperatorError); !ok {
		t.Fatalf("error = %v (%T), want OperatorError", err, err)
	}
}

func TestAnalyzeIndexOutOfRangeIsRangeError(t *testing.T) {
	lex := lexer.New("function main:4 { r = main[10]; return r; }")
	tokens, err := lex.Scan()
	if err != nil {
		t.Fatalf("lexer error: %v", err)
	}
	program, err := parser.Make(tokens).Parse()
	if err != nil {
		t.Fatalf("parser error: %v", err)
	}
	_, err = New().Analyze(program)
	if _, ok := err.(RangeError); !ok {
		t.Fatalf("error = %v (%T), want RangeError", err, err)
	}
}

func TestAnalyzeUnknownFunctionCallIsCallError(t *testing.T) {
	lex := lexer.New("function main:4 { r = ghost(main); return r; }")
	tokens, err := lex.Scan()
	if err != nil {
		t.Fatalf("lexer error: %v", err)
	}
	program, err := parser.Make(tokens).Parse()
	if err != nil {
		t.Fatalf("parser error: %v", err)
	}
	_, err = New().Analyze(program)
	if _, ok := err.(CallError); !ok {
		t.Fatalf("error = %v (%T), want CallError", err, err)
	}
}

func TestAnalyzeCallInlinesCalleeBody(t *testing.T) {
	out, a := analyzeSource(t, "function helper { helper = ~helper; return helper; } function main:4 { r = helper(main); return r; }")
	if len(out) != 4 {
		t.Fatalf("got %d output bits, want 4", len(out))
	}
	for i, idx := range out {
		if a.Pool[idx].Op != OpNot {
			t.Errorf("out[%d]: op = %v, want OpNot (helper negates its argument)", i, a.Pool[idx].Op)
		}
	}
}

func TestAnalyzeEveryPoolIndexInBoundsInvariant(t *testing.T) {
	out, a := analyzeSource(t, "function main:2 { a = main[0:1]; b = main[1:2]; c = a & b; return c; }")
	if len(out) != 1 {
		t.Fatalf("got %d output bits, want 1", len(out))
	}
	if a.Pool[out[0]].Op != OpAnd {
		t.Fatalf("output bit op = %v, want OpAnd (two distinct symbolic inputs don't fold)", a.Pool[out[0]].Op)
	}
	for _, idx := range out {
		if idx < 0 || idx >= len(a.Pool) {
			t.Fatalf("index %d out of pool bounds [0,%d)", idx, len(a.Pool))
		}
	}
	for i, b := range a.Pool {
		if b.Op == OpAnd || b.Op == OpOr || b.Op == OpXor {
			if b.Lhs >= i || b.Rhs >= i {
				t.Errorf("bit %d: operand indices (%d,%d) not strictly smaller than %d", i, b.Lhs, b.Rhs, i)
			}
		}
		if b.Op == OpNot && b.Lhs >= i {
			t.Errorf("bit %d: operand index %d not strictly smaller than %d", i, b.Lhs, i)
		}
	}
}

func TestAnalyzeIndexAssignmentMutatesSinglePosition(t *testing.T) {
	out, _ := analyzeSource(t, "function main:4 { main[0] = 0x1; return main; }")
	if len(out) != 4 {
		t.Fatalf("got %d output bits, want 4", len(out))
	}
	// 0x1 decodes to 4 bits 0,0,0,1; index assignment takes rhs[0] = const-false.
	if out[0] != constFalseIndex {
		t.Errorf("out[0] = %d, want constFalseIndex", out[0])
	}
	if out[1] != 3 || out[2] != 4 || out[3] != 5 {
		t.Errorf("out[1:] = %v, want untouched input bits [3 4 5]", out[1:])
	}
}
