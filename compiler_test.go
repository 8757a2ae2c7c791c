package nanotpl

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileEmptyTemplateProducesNoInstructions(t *testing.T) {
	nodes, err := Parse("")
	require.NoError(t, err)
	program, err := Compile(nodes)
	require.NoError(t, err)
	assert.Empty(t, program.Code)
	assert.Empty(t, program.Constants)
}

func TestCompileSimpleOutputMatchesGlobalRenderSequence(t *testing.T) {
	nodes, err := Parse("{{ a }}")
	require.NoError(t, err)
	program, err := Compile(nodes)
	require.NoError(t, err)

	require.Len(t, program.Constants, 1)
	assert.Equal(t, String("a"), program.Constants[0])

	want := "0000 GLOBAL 0\n0003 RENDER\n"
	assert.Equal(t, want, program.Disassemble())
}

func TestCompileDedupesIdenticalConstants(t *testing.T) {
	nodes, err := Parse("{{ user.name }} and {{ user.name }} again")
	require.NoError(t, err)
	program, err := Compile(nodes)
	require.NoError(t, err)

	var strs []string
	for _, c := range program.Constants {
		s, ok := c.AsString()
		require.True(t, ok)
		strs = append(strs, s)
	}
	// "user" and "name" each appear once despite two accesses.
	assert.Equal(t, []string{"user", "name", " and ", " again"}, strs)
}

func TestCompileIfElseProducesBalancedJumps(t *testing.T) {
	nodes, err := Parse("{% if a %}yes{% else %}no{% endif %}")
	require.NoError(t, err)
	program, err := Compile(nodes)
	require.NoError(t, err)

	// Every jump target must land within the code buffer.
	offset := 0
	for offset < len(program.Code) {
		op := Op(program.Code[offset])
		width := op.instructionWidth()
		if op == OpJump || op == OpJumpIfFalsy || op == OpJumpIfTruthy {
			target := readUint(program.Code[offset+1 : offset+3])
			assert.LessOrEqualf(t, target, len(program.Code), "jump at %d targets %d beyond code length %d", offset, target, len(program.Code))
		}
		offset += width
	}
}

func TestCompileForLoopUsesLocalNotGlobalForLoopVar(t *testing.T) {
	nodes, err := Parse("{% for item in items %}{{ item }}{% endfor %}")
	require.NoError(t, err)
	program, err := Compile(nodes)
	require.NoError(t, err)

	containsGetLocal := false
	for _, b := range program.Code {
		if Op(b) == OpGetLocal {
			containsGetLocal = true
		}
	}
	assert.True(t, containsGetLocal, "expected GET_LOCAL for the loop variable, got:\n%s", program.Disassemble())

	// "items" is the only GLOBAL reference: the loop variable never is.
	var globalNames []string
	offset := 0
	for offset < len(program.Code) {
		op := Op(program.Code[offset])
		if op == OpGlobal {
			idx := readUint(program.Code[offset+1 : offset+3])
			s, _ := program.Constants[idx].AsString()
			globalNames = append(globalNames, s)
		}
		offset += op.instructionWidth()
	}
	assert.Equal(t, []string{"items"}, globalNames)
}

// TestCompileForLoopMatchesDocumentedByteSequence pins the exact
// instruction sequence spec.md §4.3's For-without-else lowering rule
// describes, so a future change to ENTER_FRAME placement or ITER_NEXT's
// push contract is caught here rather than only by behavioral tests.
func TestCompileForLoopMatchesDocumentedByteSequence(t *testing.T) {
	nodes, err := Parse("{% for x in items %}{{ x }}{% endfor %}")
	require.NoError(t, err)
	program, err := Compile(nodes)
	require.NoError(t, err)

	want := "0000 ENTER_FRAME 1\n" +
		"0002 GLOBAL 0\n" +
		"0005 ITER_INIT\n" +
		"0006 ITER_NEXT\n" +
		"0007 JUMP_IF_FALSY 20\n" +
		"0010 POP\n" +
		"0011 SET_LOCAL 0\n" +
		"0013 GET_LOCAL 0 0\n" +
		"0016 RENDER\n" +
		"0017 JUMP 6\n" +
		"0020 POP\n" +
		"0021 POP\n" +
		"0022 LEAVE_FRAME\n"
	assert.Equal(t, want, program.Disassemble())
}

// TestCompileForElseMatchesDocumentedByteSequence does the same for the
// for/else lowering's entered-flag slot.
func TestCompileForElseMatchesDocumentedByteSequence(t *testing.T) {
	nodes, err := Parse("{% for x in items %}{{ x }}{% else %}empty{% endfor %}")
	require.NoError(t, err)
	program, err := Compile(nodes)
	require.NoError(t, err)

	want := "0000 ENTER_FRAME 2\n" +
		"0002 FALSE\n" +
		"0003 SET_LOCAL 1\n" +
		"0005 GLOBAL 0\n" +
		"0008 ITER_INIT\n" +
		"0009 ITER_NEXT\n" +
		"0010 JUMP_IF_FALSY 26\n" +
		"0013 POP\n" +
		"0014 SET_LOCAL 0\n" +
		"0016 TRUE\n" +
		"0017 SET_LOCAL 1\n" +
		"0019 GET_LOCAL 0 0\n" +
		"0022 RENDER\n" +
		"0023 JUMP 9\n" +
		"0026 POP\n" +
		"0027 POP\n" +
		"0028 GET_LOCAL 1 0\n" +
		"0031 JUMP_IF_TRUTHY 37\n" +
		"0034 TEXT 1\n" +
		"0037 POP\n" +
		"0038 LEAVE_FRAME\n"
	assert.Equal(t, want, program.Disassemble())
}

func TestCompileDynamicBracketKeyIsRejected(t *testing.T) {
	nodes, err := Parse("{{ a[b.c] }}")
	require.NoError(t, err)
	_, err = Compile(nodes)
	require.Error(t, err)
}

func TestDisassembleIsStableAcrossEquivalentPrograms(t *testing.T) {
	n1, err := Parse("{{ a }}")
	require.NoError(t, err)
	n2, err := Parse("{{   a   }}")
	require.NoError(t, err)

	p1, err := Compile(n1)
	require.NoError(t, err)
	p2, err := Compile(n2)
	require.NoError(t, err)

	if diff := cmp.Diff(p1.Disassemble(), p2.Disassemble()); diff != "" {
		t.Errorf("disassembly differs (-p1 +p2):\n%s", diff)
	}
}
