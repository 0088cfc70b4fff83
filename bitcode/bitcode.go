// Package bitcode gives the analyzer's bit pool a byte-level
// representation: one fixed-width instruction per bit record, an
// assemble/disassemble pair, and hex-dump/human-readable file output for
// inspecting a compilation's pool outside of the C emitter.
//
// The shape (Opcode, OpCodeDefinition, MakeInstruction, Instructions)
// follows the reference compiler's bytecode package. That package's own
// disassemble/assemble-back and OPCODE_TOTAL_BYTES pieces were never
// completed there, so this package rebuilds the pattern from scratch
// against the bit pool's own, much smaller instruction set rather than
// inheriting half-finished pieces (see DESIGN.md).
package bitcode

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"bitforge/analyzer"
)

// Opcode identifies the shape of one encoded bit record.
type Opcode byte

const (
	OP_CONST Opcode = iota
	OP_NOT
	OP_AND
	OP_OR
	OP_XOR
)

// OpCodeDefinition names an opcode and the byte width of each of its
// operands, in encoding order.
type OpCodeDefinition struct {
	Name          string
	OperandWidths []int
}

var definitions = map[Opcode]*OpCodeDefinition{
	OP_CONST: {Name: "OP_CONST", OperandWidths: []int{1}},
	OP_NOT:   {Name: "OP_NOT", OperandWidths: []int{4}},
	OP_AND:   {Name: "OP_AND", OperandWidths: []int{4, 4}},
	OP_OR:    {Name: "OP_OR", OperandWidths: []int{4, 4}},
	OP_XOR:   {Name: "OP_XOR", OperandWidths: []int{4, 4}},
}

func Get(op Opcode) (*OpCodeDefinition, error) {
	def, ok := definitions[op]
	if !ok {
		return nil, fmt.Errorf("bitcode: opcode %d undefined", op)
	}
	return def, nil
}

func opFromBitOp(op analyzer.BitOp) Opcode {
	switch op {
	case analyzer.OpNot:
		return OP_NOT
	case analyzer.OpAnd:
		return OP_AND
	case analyzer.OpOr:
		return OP_OR
	case analyzer.OpXor:
		return OP_XOR
	default:
		return OP_CONST
	}
}

// Instructions is a flat, concatenated sequence of encoded bit records.
type Instructions []byte

// MakeInstruction encodes one opcode and its operands into a byte slice,
// each operand written big-endian at its defined width.
func MakeInstruction(op Opcode, operands ...int) []byte {
	def, err := Get(op)
	if err != nil {
		return []byte{}
	}

	length := 1
	for _, w := range def.OperandWidths {
		length += w
	}
	instruction := make([]byte, length)
	instruction[0] = byte(op)

	offset := 1
	for i, operand := range operands {
		width := def.OperandWidths[i]
		switch width {
		case 1:
			instruction[offset] = byte(operand)
		case 4:
			binary.BigEndian.PutUint32(instruction[offset:], uint32(operand))
		}
		offset += width
	}
	return instruction
}

// ReadOperands decodes the operands of one instruction starting at ins[0]
// (the opcode byte must already be consumed by the caller), returning the
// decoded operands and the number of bytes read.
func ReadOperands(def *OpCodeDefinition, ins []byte) ([]int, int) {
	operands := make([]int, len(def.OperandWidths))
	offset := 0
	for i, width := range def.OperandWidths {
		switch width {
		case 1:
			operands[i] = int(ins[offset])
		case 4:
			operands[i] = int(binary.BigEndian.Uint32(ins[offset:]))
		}
		offset += width
	}
	return operands, offset
}

// Assemble encodes an entire bit pool as one concatenated Instructions
// stream, one instruction per pool index in order.
func Assemble(pool []analyzer.Bit) Instructions {
	var out Instructions
	for _, b := range pool {
		op := opFromBitOp(b.Op)
		switch op {
		case OP_CONST:
			value := 0
			if b.Value {
				value = 1
			}
			out = append(out, MakeInstruction(op, value)...)
		case OP_NOT:
			out = append(out, MakeInstruction(op, b.Lhs)...)
		default:
			out = append(out, MakeInstruction(op, b.Lhs, b.Rhs)...)
		}
	}
	return out
}

// Disassemble renders an Instructions stream as human-readable text, one
// line per decoded instruction, each prefixed with its byte offset -
// mirroring the reference compiler's intended (but never implemented)
// disassembly format.
func Disassemble(ins Instructions) (string, error) {
	var out strings.Builder
	offset := 0
	for offset < len(ins) {
		op := Opcode(ins[offset])
		def, err := Get(op)
		if err != nil {
			return "", err
		}
		operands, read := ReadOperands(def, ins[offset+1:])
		fmt.Fprintf(&out, "%04d %s %s\n", offset, def.Name, formatOperands(operands))
		offset += 1 + read
	}
	return out.String(), nil
}

func formatOperands(operands []int) string {
	parts := make([]string, len(operands))
	for i, o := range operands {
		parts[i] = fmt.Sprintf("%d", o)
	}
	return strings.Join(parts, " ")
}

// DumpHexToFile writes the hex-encoded Instructions stream to path, one
// long hex line - a compact, diffable artifact for inspecting a
// compilation's pool.
func DumpHexToFile(ins Instructions, path string) error {
	encoded := hex.EncodeToString(ins)
	return os.WriteFile(path, []byte(encoded+"\n"), 0o644)
}

// WriteDisassemblyToFile writes Disassemble's human-readable rendering of
// ins to path.
func WriteDisassemblyToFile(ins Instructions, path string) error {
	text, err := Disassemble(ins)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(text), 0o644)
}
