package parser

import (
	"encoding/json"
	"fmt"
	"os"

	"bitforge/ast"
)

const (
	colorYellow = "\033[33m"
	colorReset  = "\033[0m"
)

// exprToMap converts one expression node into a JSON-friendly value via a
// type switch over the closed set of ast.Expr kinds. There is no
// Accept/Visit indirection to generalize over - every kind is listed here.
func exprToMap(e ast.Expr) any {
	switch v := e.(type) {
	case ast.Data:
		return map[string]any{"type": "Data", "kind": v.Kind.String(), "digits": v.Digits}
	case ast.Variable:
		return map[string]any{"type": "Variable", "name": v.Name.Lexeme}
	case ast.VariableIndex:
		return map[string]any{
			"type":  "VariableIndex",
			"name":  v.Name.Lexeme,
			"index": exprToMap(v.Index),
		}
	case ast.VariableSlice:
		return map[string]any{
			"type":  "VariableSlice",
			"name":  v.Name.Lexeme,
			"start": boundToMap(v.Start),
			"end":   boundToMap(v.End),
		}
	case ast.Not:
		return map[string]any{"type": "Not", "operand": exprToMap(v.Operand)}
	case ast.Concat:
		operands := make([]any, 0, len(v.Operands))
		for _, op := range v.Operands {
			operands = append(operands, exprToMap(op))
		}
		return map[string]any{"type": "Concat", "operands": operands}
	case ast.Binary:
		return map[string]any{
			"type":     "Binary",
			"operator": v.Op.Lexeme,
			"left":     exprToMap(v.Left),
			"right":    exprToMap(v.Right),
		}
	case ast.Call:
		return map[string]any{"type": "Call", "callee": v.Callee.Lexeme, "arg": exprToMap(v.Arg)}
	default:
		return map[string]any{"type": fmt.Sprintf("unknown(%T)", v)}
	}
}

func boundToMap(b ast.Bound) any {
	if b.Omitted() {
		return nil
	}
	return exprToMap(*b.Literal)
}

func stmtToMap(s ast.Stmt) any {
	switch v := s.(type) {
	case ast.Assign:
		return map[string]any{"type": "Assign", "target": exprToMap(v.Target), "value": exprToMap(v.Value)}
	case ast.Return:
		return map[string]any{"type": "Return", "value": exprToMap(v.Value)}
	default:
		return map[string]any{"type": fmt.Sprintf("unknown(%T)", v)}
	}
}

func funcToMap(fn *ast.Func) any {
	body := make([]any, 0, len(fn.Body))
	for _, stmt := range fn.Body {
		body = append(body, stmtToMap(stmt))
	}
	entry := map[string]any{
		"type": "Func",
		"name": fn.Name.Lexeme,
		"body": body,
	}
	if fn.HasArgBits {
		entry["argBits"] = fn.ArgBits
	}
	return entry
}

// PrintASTJSON renders the program as prettified JSON to standard output
// and also returns the rendered string.
func PrintASTJSON(program *ast.Program) (string, error) {
	funcs := make([]any, 0, len(program.Funcs))
	for _, fn := range program.Funcs {
		funcs = append(funcs, funcToMap(fn))
	}
	bytes, err := json.MarshalIndent(funcs, "", "  ")
	if err != nil {
		return "", err
	}
	jsonStr := string(bytes)
	fmt.Println(colorYellow + "----- AST JSON -----")
	fmt.Println(colorYellow + jsonStr)
	fmt.Println(colorYellow + "-----" + colorReset)
	return jsonStr, nil
}

// WriteASTJSONToFile writes the program's AST JSON to the given file path.
func WriteASTJSONToFile(program *ast.Program, path string) error {
	jsonStr, err := PrintASTJSON(program)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating AST file: %w", err)
	}
	defer f.Close()
	if _, err := f.Write([]byte(jsonStr)); err != nil {
		return fmt.Errorf("error writing AST to file: %w", err)
	}
	return nil
}
