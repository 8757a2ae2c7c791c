package nanotpl

import (
	"fmt"
	"strings"
)

// Op is a single bytecode instruction's opcode. Values match spec.md
// §4.3's table exactly (and tests/_bytecode.py's Op IntEnum in
// original_source, which this table is kept in sync with).
type Op byte

const (
	OpNull Op = iota
	OpConstant
	OpEnterFrame
	OpFalse
	OpGetLocal
	OpGlobal
	OpIterInit
	OpIterNext
	OpJumpIfFalsy
	OpJumpIfTruthy
	OpJump
	OpLeaveFrame
	OpNot
	OpPop
	OpRender
	OpSelector
	OpSetLocal
	OpText
	OpTrue
)

// opDef describes one opcode's mnemonic and the byte width of each of its
// operands, in order. GET_LOCAL carries two one-byte operands (slot,
// frame-depth) per spec.md §4.3's prose note; every other multi-byte
// operand is a big-endian uint16 constant-pool index or jump target.
type opDef struct {
	name    string
	widths  []int
}

var opDefs = [...]opDef{
	OpNull:         {"NULL", nil},
	OpConstant:     {"CONSTANT", []int{2}},
	OpEnterFrame:   {"ENTER_FRAME", []int{1}},
	OpFalse:        {"FALSE", nil},
	OpGetLocal:     {"GET_LOCAL", []int{1, 1}},
	OpGlobal:       {"GLOBAL", []int{2}},
	OpIterInit:     {"ITER_INIT", nil},
	OpIterNext:     {"ITER_NEXT", nil},
	OpJumpIfFalsy:  {"JUMP_IF_FALSY", []int{2}},
	OpJumpIfTruthy: {"JUMP_IF_TRUTHY", []int{2}},
	OpJump:         {"JUMP", []int{2}},
	OpLeaveFrame:   {"LEAVE_FRAME", nil},
	OpNot:          {"NOT", nil},
	OpPop:          {"POP", nil},
	OpRender:       {"RENDER", nil},
	OpSelector:     {"SELECTOR", []int{2}},
	OpSetLocal:     {"SET_LOCAL", []int{1}},
	OpText:         {"TEXT", []int{2}},
	OpTrue:         {"TRUE", nil},
}

func (op Op) def() opDef {
	if int(op) < 0 || int(op) >= len(opDefs) {
		return opDef{name: fmt.Sprintf("UNKNOWN(%d)", byte(op))}
	}
	return opDefs[op]
}

func (op Op) String() string { return op.def().name }

// instructionWidth returns 1 (the opcode byte) plus the sum of this
// instruction's operand widths.
func (op Op) instructionWidth() int {
	w := 1
	for _, n := range op.def().widths {
		w += n
	}
	return w
}

func putUint(buf []byte, n int, v int) {
	for i := 0; i < n; i++ {
		shift := uint(n-1-i) * 8
		buf[i] = byte(v >> shift)
	}
}

func readUint(buf []byte) int {
	v := 0
	for _, b := range buf {
		v = v<<8 | int(b)
	}
	return v
}

// Disassemble renders code as a human readable listing, one instruction
// per line: "<offset> <MNEMONIC> <operands...>". It's used by tests
// asserting compiler-disassembly parity (spec.md §8) and by the `disasm`
// CLI subcommand.
func Disassemble(code []byte) string {
	var sb strings.Builder
	offset := 0
	for offset < len(code) {
		op := Op(code[offset])
		def := op.def()
		operandStart := offset + 1
		var parts []string
		parts = append(parts, fmt.Sprintf("%04d", offset))
		parts = append(parts, def.name)
		pos := operandStart
		for _, w := range def.widths {
			if pos+w > len(code) {
				break
			}
			parts = append(parts, fmt.Sprintf("%d", readUint(code[pos:pos+w])))
			pos += w
		}
		sb.WriteString(strings.Join(parts, " "))
		sb.WriteByte('\n')
		offset = pos
	}
	return sb.String()
}
