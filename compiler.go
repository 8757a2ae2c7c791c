package nanotpl

import "fmt"

// compiler lowers an AST into a Program. It keeps a compile-time mirror of
// the VM's frame stack (scopeNames) so that a Path referencing the
// innermost enclosing {% for %} variable compiles to GET_LOCAL instead of
// GLOBAL (spec.md §4.3's frame/local-slot model).
type compiler struct {
	code       []byte
	constants  []Value
	constIndex map[string]int
	scopeNames []string
}

// Compile lowers a parsed template into a Program (spec.md §4.3). The empty
// template compiles to zero instructions and an empty constant pool.
func Compile(nodes []Node) (*Program, error) {
	c := &compiler{constIndex: make(map[string]int)}
	if err := c.compileNodes(nodes); err != nil {
		return nil, err
	}
	return &Program{Code: c.code, Constants: c.constants}, nil
}

func (c *compiler) compileNodes(nodes []Node) error {
	for _, n := range nodes {
		if err := c.compileNode(n); err != nil {
			return err
		}
	}
	return nil
}

func (c *compiler) compileNode(n Node) error {
	switch node := n.(type) {
	case *TextNode:
		if node.Text == "" {
			return nil
		}
		idx := c.addConstant(String(node.Text))
		c.emit(OpText, idx)
		return nil
	case *OutputNode:
		if err := c.compileExpr(node.Expr); err != nil {
			return err
		}
		c.emit(OpRender)
		return nil
	case *IfNode:
		return c.compileIf(node)
	case *ForNode:
		return c.compileFor(node)
	default:
		return newInternalError("unknown AST node type %T", n)
	}
}

// compileIf lowers a chain of if/elif/else branches, following spec.md
// §4.3 literally: per branch, cond; JUMP_IF_FALSY NEXT; POP; body; JUMP
// END; patch NEXT; POP. JUMP_IF_FALSY only peeks its condition (it never
// pops), so both the fallthrough path (cond was truthy) and the landing
// site of a failed branch (cond was falsy) need their own explicit POP.
func (c *compiler) compileIf(node *IfNode) error {
	var endJumps []int
	for _, branch := range node.Branches {
		if err := c.compileExpr(branch.Cond); err != nil {
			return err
		}
		falsyJump := c.emitPlaceholder(OpJumpIfFalsy)
		c.emit(OpPop)
		if err := c.compileNodes(branch.Body); err != nil {
			return err
		}
		endJumps = append(endJumps, c.emitPlaceholder(OpJump))
		c.patchJumpHere(falsyJump)
		c.emit(OpPop)
	}
	if node.Else != nil {
		if err := c.compileNodes(node.Else); err != nil {
			return err
		}
	}
	for _, j := range endJumps {
		c.patchJumpHere(j)
	}
	return nil
}

// compileFor lowers {% for Var in Iter %} body {% else %} elseBody
// {% endfor %}, following spec.md §4.3's lowering rules for For literally:
// one ENTER_FRAME/LEAVE_FRAME pair wraps the whole loop (not one per
// iteration), ITER_NEXT's false case pushes only Bool(false), and the
// else-branch uses a dedicated "entered" flag in slot 1 rather than
// special-casing the first ITER_NEXT.
func (c *compiler) compileFor(node *ForNode) error {
	if node.Else == nil {
		return c.compileForNoElse(node)
	}
	return c.compileForWithElse(node)
}

// compileForNoElse: ENTER_FRAME 1; compile(it); ITER_INIT; loop top L:
// ITER_NEXT; JUMP_IF_FALSY E; POP; SET_LOCAL 0; body; JUMP L; patch E;
// POP; POP (iterator); LEAVE_FRAME.
func (c *compiler) compileForNoElse(node *ForNode) error {
	c.emit(OpEnterFrame, 1)
	c.scopeNames = append(c.scopeNames, node.Var)

	if err := c.compileExpr(node.Iter); err != nil {
		return err
	}
	c.emit(OpIterInit)

	loopTop := len(c.code)
	c.emit(OpIterNext)
	toEnd := c.emitPlaceholder(OpJumpIfFalsy)
	c.emit(OpPop)
	c.emit(OpSetLocal, 0)
	if err := c.compileNodes(node.Body); err != nil {
		return err
	}
	c.emitOperand(OpJump, loopTop)

	c.patchJumpHere(toEnd)
	c.emit(OpPop) // the terminating Bool(false)
	c.emit(OpPop) // the iterator itself

	c.scopeNames = c.scopeNames[:len(c.scopeNames)-1]
	c.emit(OpLeaveFrame)
	return nil
}

// compileForWithElse: ENTER_FRAME 2 (slot 0 = var, slot 1 = entered-flag);
// FALSE; SET_LOCAL 1; compile(it); ITER_INIT; loop top L: ITER_NEXT;
// JUMP_IF_FALSY E; POP; SET_LOCAL 0; TRUE; SET_LOCAL 1; body; JUMP L;
// patch E; POP; POP (iterator); GET_LOCAL 1 0; JUMP_IF_TRUTHY SKIP;
// else body; patch SKIP; POP; LEAVE_FRAME. The entered-flag stays on the
// stack while the else body runs, so the single POP at SKIP discards it on
// both paths.
func (c *compiler) compileForWithElse(node *ForNode) error {
	c.emit(OpEnterFrame, 2)
	c.scopeNames = append(c.scopeNames, node.Var)
	c.emit(OpFalse)
	c.emit(OpSetLocal, 1)

	if err := c.compileExpr(node.Iter); err != nil {
		return err
	}
	c.emit(OpIterInit)

	loopTop := len(c.code)
	c.emit(OpIterNext)
	toEnd := c.emitPlaceholder(OpJumpIfFalsy)
	c.emit(OpPop)
	c.emit(OpSetLocal, 0)
	c.emit(OpTrue)
	c.emit(OpSetLocal, 1)
	if err := c.compileNodes(node.Body); err != nil {
		return err
	}
	c.emitOperand(OpJump, loopTop)

	c.patchJumpHere(toEnd)
	c.emit(OpPop) // the terminating Bool(false)
	c.emit(OpPop) // the iterator itself

	c.emit(OpGetLocal, 1, 0) // entered-flag, current frame
	toSkip := c.emitPlaceholder(OpJumpIfTruthy)
	if err := c.compileNodes(node.Else); err != nil {
		return err
	}
	c.patchJumpHere(toSkip)
	c.emit(OpPop)

	c.scopeNames = c.scopeNames[:len(c.scopeNames)-1]
	c.emit(OpLeaveFrame)
	return nil
}

func (c *compiler) compileExpr(e Expr) error {
	switch expr := e.(type) {
	case *StringLit:
		c.emit(OpConstant, c.addConstant(String(expr.Text)))
		return nil
	case *IntLit:
		c.emit(OpConstant, c.addConstant(Int(expr.Value)))
		return nil
	case *BoolLit:
		if expr.Value {
			c.emit(OpTrue)
		} else {
			c.emit(OpFalse)
		}
		return nil
	case *NullLit:
		c.emit(OpNull)
		return nil
	case *UnaryExpr:
		if err := c.compileExpr(expr.Inner); err != nil {
			return err
		}
		c.emit(OpNot)
		return nil
	case *BinaryExpr:
		return c.compileBinary(expr)
	case *Path:
		return c.compilePath(expr)
	default:
		return newInternalError("unknown expression node type %T", e)
	}
}

// compileBinary lowers short-circuit `and`/`or`. Neither operator coerces
// its result to a Bool: the winning operand's own Value is left on the
// stack, matching original_source's observed behavior (`{{ a and b }}`
// with a falsy a renders a's own stringification, e.g. "" for an empty
// string, rather than a coerced "false").
func (c *compiler) compileBinary(expr *BinaryExpr) error {
	if err := c.compileExpr(expr.Left); err != nil {
		return err
	}
	var skip int
	if expr.Op == OpAnd {
		skip = c.emitPlaceholder(OpJumpIfFalsy)
	} else {
		skip = c.emitPlaceholder(OpJumpIfTruthy)
	}
	c.emit(OpPop)
	if err := c.compileExpr(expr.Right); err != nil {
		return err
	}
	c.patchJumpHere(skip)
	return nil
}

// compilePath lowers a.b.c[...] access. If the head identifier names the
// innermost enclosing for-loop variable (or an outer one), it resolves to
// GET_LOCAL; otherwise it's a GLOBAL lookup into the render-time Binding.
func (c *compiler) compilePath(p *Path) error {
	if depth, ok := c.resolveLocal(p.Head); ok {
		c.emit(OpGetLocal, 0, depth)
	} else {
		c.emit(OpGlobal, c.addConstant(String(p.Head)))
	}
	for _, seg := range p.Segments {
		switch seg.Kind {
		case SegDotName:
			c.emit(OpSelector, c.addConstant(String(seg.Name)))
		case SegIndex:
			switch {
			case seg.Sub != nil:
				return newSyntaxError("dynamic bracket keys (a path used inside []) are not supported: SELECTOR's operand must be a compile-time constant", seg.Start, seg.Stop)
			case seg.Name != "":
				c.emit(OpSelector, c.addConstant(String(seg.Name)))
			default:
				c.emit(OpSelector, c.addConstant(Int(seg.Int)))
			}
		}
	}
	return nil
}

func (c *compiler) resolveLocal(name string) (depth int, ok bool) {
	for i := len(c.scopeNames) - 1; i >= 0; i-- {
		if c.scopeNames[i] == name {
			return len(c.scopeNames) - 1 - i, true
		}
	}
	return 0, false
}

// addConstant dedupes by (Kind, value) so that e.g. two `{{ user.name }}`
// references share one "name" string constant (spec.md §4.3).
func (c *compiler) addConstant(v Value) int {
	key := constantKey(v)
	if idx, ok := c.constIndex[key]; ok {
		return idx
	}
	idx := len(c.constants)
	c.constants = append(c.constants, v)
	c.constIndex[key] = idx
	return idx
}

func constantKey(v Value) string {
	switch v.Kind {
	case KindString:
		s, _ := v.AsString()
		return "s:" + s
	case KindInt:
		n, _ := v.AsInt()
		return fmt.Sprintf("i:%d", n)
	default:
		return fmt.Sprintf("?:%v", v)
	}
}

func (c *compiler) emit(op Op, operands ...int) int {
	pos := len(c.code)
	c.code = append(c.code, byte(op))
	widths := op.def().widths
	for i, w := range widths {
		operand := 0
		if i < len(operands) {
			operand = operands[i]
		}
		buf := make([]byte, w)
		putUint(buf, w, operand)
		c.code = append(c.code, buf...)
	}
	return pos
}

// emitOperand emits an instruction whose single 2-byte operand is an
// absolute code offset (used for JUMP/JUMP_IF_FALSY/JUMP_IF_TRUTHY back-
// edges, where the target is already known).
func (c *compiler) emitOperand(op Op, target int) int {
	return c.emit(op, target)
}

// emitPlaceholder emits a jump instruction with a zero operand, to be
// fixed up later by patchJumpHere once the jump target is known.
func (c *compiler) emitPlaceholder(op Op) int {
	return c.emit(op, 0)
}

// patchJumpHere rewrites the 2-byte operand at pos+1 to the current end of
// the code buffer.
func (c *compiler) patchJumpHere(pos int) {
	target := len(c.code)
	putUint(c.code[pos+1:pos+3], 2, target)
}
