package nanotpl

import "strings"

// vmFrame is one activation record, pushed by ENTER_FRAME and popped by
// LEAVE_FRAME. A for-loop declares one local (its loop variable), plus an
// entered-flag slot when it has an else branch, so locals is sized at
// ENTER_FRAME time from its operand.
type vmFrame struct {
	locals []Value
}

// vmState is the per-render execution state: an operand stack, a frame
// stack, and an output buffer. Nothing here is shared across renders; a
// Program is immutable and any number of vmStates may execute against it
// concurrently (spec.md §5). ITER_INIT pushes its iterator onto this same
// operand stack (spec.md §4.3: "peek iterator on top") rather than a
// side stack; it is popped explicitly by the compiled POP that follows the
// loop, same as any other value.
type vmState struct {
	constants []Value
	code      []byte

	stack  []Value
	frames []vmFrame

	binding    Binding
	policy     UndefinedPolicy
	serializer Serializer

	out strings.Builder
}

func (vm *vmState) push(v Value) { vm.stack = append(vm.stack, v) }

func (vm *vmState) pop() (Value, error) {
	n := len(vm.stack)
	if n == 0 {
		return Value{}, newInternalError("operand stack underflow")
	}
	v := vm.stack[n-1]
	vm.stack = vm.stack[:n-1]
	return v, nil
}

func (vm *vmState) run() (string, error) {
	ip := 0
	for ip < len(vm.code) {
		op := Op(vm.code[ip])
		widths := op.def().widths
		operandStart := ip + 1
		operands := make([]int, len(widths))
		pos := operandStart
		for i, w := range widths {
			if pos+w > len(vm.code) {
				return "", newInternalError("truncated operand for %s at offset %d", op, ip)
			}
			operands[i] = readUint(vm.code[pos : pos+w])
			pos += w
		}
		next := pos

		switch op {
		case OpNull:
			vm.push(Null)
		case OpTrue:
			vm.push(Bool(true))
		case OpFalse:
			vm.push(Bool(false))
		case OpConstant:
			v, err := vm.constant(operands[0])
			if err != nil {
				return "", err
			}
			vm.push(v)
		case OpText:
			v, err := vm.constant(operands[0])
			if err != nil {
				return "", err
			}
			s, _ := v.AsString()
			vm.out.WriteString(s)
		case OpGlobal:
			key, err := vm.constant(operands[0])
			if err != nil {
				return "", err
			}
			name, _ := key.AsString()
			if v, ok := vm.binding[name]; ok {
				vm.push(v)
			} else {
				vm.push(Undefined(name, 0, 0))
			}
		case OpSelector:
			key, err := vm.constant(operands[0])
			if err != nil {
				return "", err
			}
			container, err := vm.pop()
			if err != nil {
				return "", err
			}
			vm.push(container.selector(key, 0, 0))
		case OpGetLocal:
			slot, depth := operands[0], operands[1]
			idx := len(vm.frames) - 1 - depth
			if idx < 0 || idx >= len(vm.frames) {
				return "", newInternalError("GET_LOCAL frame depth %d out of range (have %d frames)", depth, len(vm.frames))
			}
			locals := vm.frames[idx].locals
			if slot < 0 || slot >= len(locals) {
				return "", newInternalError("GET_LOCAL slot %d out of range", slot)
			}
			vm.push(locals[slot])
		case OpSetLocal:
			v, err := vm.pop()
			if err != nil {
				return "", err
			}
			n := len(vm.frames)
			if n == 0 {
				return "", newInternalError("SET_LOCAL with no active frame")
			}
			locals := vm.frames[n-1].locals
			slot := operands[0]
			if slot < 0 || slot >= len(locals) {
				return "", newInternalError("SET_LOCAL slot %d out of range", slot)
			}
			locals[slot] = v
		case OpEnterFrame:
			vm.frames = append(vm.frames, vmFrame{locals: make([]Value, operands[0])})
		case OpLeaveFrame:
			n := len(vm.frames)
			if n == 0 {
				return "", newInternalError("LEAVE_FRAME with no active frame")
			}
			vm.frames = vm.frames[:n-1]
		case OpIterInit:
			v, err := vm.pop()
			if err != nil {
				return "", err
			}
			items, err := vm.iterableItems(v)
			if err != nil {
				return "", err
			}
			vm.push(iteratorValue(items))
		case OpIterNext:
			n := len(vm.stack)
			if n == 0 || vm.stack[n-1].Kind != kindIterator {
				return "", newInternalError("ITER_NEXT with no active iterator")
			}
			cur := vm.stack[n-1].iter
			if cur.pos < len(cur.items) {
				elem := cur.items[cur.pos]
				cur.pos++
				vm.push(elem)
				vm.push(Bool(true))
			} else {
				vm.push(Bool(false))
			}
		case OpJump:
			ip = operands[0]
			continue
		case OpJumpIfFalsy:
			// Peeks, never pops (spec.md §4.3): the compiler always emits
			// an explicit POP on whichever path needs the value gone, and
			// the short-circuit `and`/`or` lowering relies on the jumped
			// path leaving its operand on the stack as the result.
			n := len(vm.stack)
			if n == 0 {
				return "", newInternalError("JUMP_IF_FALSY with empty operand stack")
			}
			if !vm.stack[n-1].Truthy() {
				ip = operands[0]
				continue
			}
		case OpJumpIfTruthy:
			n := len(vm.stack)
			if n == 0 {
				return "", newInternalError("JUMP_IF_TRUTHY with empty operand stack")
			}
			if vm.stack[n-1].Truthy() {
				ip = operands[0]
				continue
			}
		case OpNot:
			v, err := vm.pop()
			if err != nil {
				return "", err
			}
			vm.push(Bool(!v.Truthy()))
		case OpPop:
			if _, err := vm.pop(); err != nil {
				return "", err
			}
		case OpRender:
			v, err := vm.pop()
			if err != nil {
				return "", err
			}
			s, err := vm.stringify(v)
			if err != nil {
				return "", err
			}
			vm.out.WriteString(s)
		default:
			return "", newInternalError("unknown opcode %d at offset %d", byte(op), ip)
		}
		ip = next
	}
	return vm.out.String(), nil
}

func (vm *vmState) constant(idx int) (Value, error) {
	if idx < 0 || idx >= len(vm.constants) {
		return Value{}, newInternalError("constant pool index %d out of range", idx)
	}
	return vm.constants[idx], nil
}

// stringify renders a Value for RENDER, consulting the UndefinedPolicy
// when v is Undefined (spec.md §4.4's policy-consultation point) and
// falling back to the configured Serializer otherwise.
func (vm *vmState) stringify(v Value) (string, error) {
	if v.IsUndefined() {
		return vm.policy.Stringify(v)
	}
	return vm.serializer(v)
}

// iterableItems converts a Value into the slice ITER_INIT walks (spec.md
// §4.4: "ITER_INIT accepts: arrays (element order), strings (character
// sequence), mappings (key sequence, insertion order)"). Undefined
// consults the UndefinedPolicy's Iterate hook; every other kind (numbers,
// booleans, null) yields zero iterations rather than an error — this is
// the documented mechanism by which `{% for … else %}` fires on
// non-iterables.
func (vm *vmState) iterableItems(v Value) ([]Value, error) {
	if v.IsUndefined() {
		return vm.policy.Iterate(v)
	}
	if items, ok := v.AsArray(); ok {
		return items, nil
	}
	if s, ok := v.AsString(); ok {
		runes := []rune(s)
		items := make([]Value, len(runes))
		for i, r := range runes {
			items[i] = String(string(r))
		}
		return items, nil
	}
	if keys, _, ok := v.AsObject(); ok {
		items := make([]Value, len(keys))
		for i, k := range keys {
			items[i] = String(k)
		}
		return items, nil
	}
	return nil, nil
}
