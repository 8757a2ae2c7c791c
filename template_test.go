package nanotpl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateRenderEndToEnd(t *testing.T) {
	tpl, err := FromString("hi {{ name }}")
	require.NoError(t, err)
	out, err := tpl.Render(Binding{"name": String("Ada")})
	require.NoError(t, err)
	assert.Equal(t, "hi Ada", out)
}

func TestMustPanicsOnSyntaxError(t *testing.T) {
	assert.Panics(t, func() {
		Must(FromString("{% if a %}"))
	})
}

func TestCompiledTemplateRevisionChangesPerCompile(t *testing.T) {
	tpl, err := FromString("{{ a }}")
	require.NoError(t, err)

	c1, err := tpl.Compile()
	require.NoError(t, err)
	c2, err := tpl.Compile()
	require.NoError(t, err)

	assert.NotEmpty(t, c1.Revision())
	assert.NotEmpty(t, c2.Revision())
	assert.NotEqual(t, c1.Revision(), c2.Revision(), "two Compile calls must mint distinct revisions")
	assert.Equal(t, c1.Disassemble(), c2.Disassemble(), "identical source compiles to identical bytecode regardless of revision")
}

func TestDumpASTAndDumpProgramProduceNonEmptyOutput(t *testing.T) {
	nodes, err := Parse("{% if a %}{{ a }}{% endif %}")
	require.NoError(t, err)
	assert.Contains(t, DumpAST(nodes), "IfNode")

	program, err := Compile(nodes)
	require.NoError(t, err)
	assert.Contains(t, DumpProgram(program), "GLOBAL")
}

func TestDiffProgramsIsEmptyForEquivalentSourceAndNonEmptyOtherwise(t *testing.T) {
	n1, err := Parse("{{ a }}")
	require.NoError(t, err)
	n2, err := Parse("{{   a   }}")
	require.NoError(t, err)
	n3, err := Parse("{{ b }}")
	require.NoError(t, err)

	p1, err := Compile(n1)
	require.NoError(t, err)
	p2, err := Compile(n2)
	require.NoError(t, err)
	p3, err := Compile(n3)
	require.NoError(t, err)

	assert.Empty(t, DiffPrograms(p1, p2))
	assert.NotEmpty(t, DiffPrograms(p1, p3))
}
