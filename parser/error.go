package parser

import "fmt"

// SyntaxError is raised for any grammar violation: an unexpected token, a
// missing delimiter, or a binary operator the grammar recognizes but the
// evaluator cannot implement (see rejectedOperators in parser.go).
type SyntaxError struct {
	Line    int32
	Column  int
	Message string
}

func CreateSyntaxError(line int32, column int, message string) SyntaxError {
	return SyntaxError{Line: line, Column: column, Message: message}
}

func (e SyntaxError) Error() string {
	return fmt.Sprintf("💥 bitforge syntax error:\nline:%d, column:%d - %s", e.Line, e.Column, e.Message)
}
