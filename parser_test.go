package nanotpl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEmptyTemplate(t *testing.T) {
	nodes, err := Parse("")
	require.NoError(t, err)
	assert.Empty(t, nodes)
}

func TestParseTextAndOutput(t *testing.T) {
	nodes, err := Parse("hi {{ name }}!")
	require.NoError(t, err)
	require.Len(t, nodes, 3)
	assert.IsType(t, &TextNode{}, nodes[0])
	out, ok := nodes[1].(*OutputNode)
	require.True(t, ok)
	path, ok := out.Expr.(*Path)
	require.True(t, ok)
	assert.Equal(t, "name", path.Head)
	assert.IsType(t, &TextNode{}, nodes[2])
}

func TestParseDottedAndBracketedPath(t *testing.T) {
	nodes, err := Parse(`{{ user.addresses[0]['city'] }}`)
	require.NoError(t, err)
	out := nodes[0].(*OutputNode)
	path := out.Expr.(*Path)
	require.Len(t, path.Segments, 3)
	assert.Equal(t, SegDotName, path.Segments[0].Kind)
	assert.Equal(t, "addresses", path.Segments[0].Name)
	assert.Equal(t, SegIndex, path.Segments[1].Kind)
	assert.Equal(t, int64(0), path.Segments[1].Int)
}

func TestParseTrueFalseNullLiterals(t *testing.T) {
	nodes, err := Parse("{{ true }}{{ false }}{{ null }}")
	require.NoError(t, err)
	require.Len(t, nodes, 3)
	assert.Equal(t, &BoolLit{Value: true}, nodes[0].(*OutputNode).Expr)
	assert.Equal(t, &BoolLit{Value: false}, nodes[1].(*OutputNode).Expr)
	assert.Equal(t, &NullLit{}, nodes[2].(*OutputNode).Expr)
}

func TestParseNotBindsTighterThanAnd(t *testing.T) {
	nodes, err := Parse("{{ not a and b }}")
	require.NoError(t, err)
	expr := nodes[0].(*OutputNode).Expr.(*BinaryExpr)
	assert.Equal(t, OpAnd, expr.Op)
	assert.IsType(t, &UnaryExpr{}, expr.Left)
	assert.IsType(t, &Path{}, expr.Right)
}

func TestParseIfElifElse(t *testing.T) {
	nodes, err := Parse("{% if a %}A{% elif b %}B{% else %}C{% endif %}")
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	ifNode := nodes[0].(*IfNode)
	require.Len(t, ifNode.Branches, 2)
	require.NotNil(t, ifNode.Else)
	assert.Equal(t, "A", ifNode.Branches[0].Body[0].(*TextNode).Text)
	assert.Equal(t, "B", ifNode.Branches[1].Body[0].(*TextNode).Text)
	assert.Equal(t, "C", ifNode.Else[0].(*TextNode).Text)
}

func TestParseForElse(t *testing.T) {
	nodes, err := Parse("{% for x in items %}{{ x }}{% else %}empty{% endfor %}")
	require.NoError(t, err)
	forNode := nodes[0].(*ForNode)
	assert.Equal(t, "x", forNode.Var)
	require.NotNil(t, forNode.Else)
	assert.Equal(t, "empty", forNode.Else[0].(*TextNode).Text)
}

func TestParseMissingEndifIsSyntaxError(t *testing.T) {
	_, err := Parse("{% if a %}x")
	require.Error(t, err)
	var synErr *TemplateSyntaxError
	require.ErrorAs(t, err, &synErr)
}

func TestParseUnknownTagSuggestsClosestName(t *testing.T) {
	_, err := Parse("{% iff a %}x{% endif %}")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "did you mean")
}

func TestParseWhitespaceControlHyphenStripsAdjacentText(t *testing.T) {
	nodes, err := Parse("a \n {%- if true -%} \n b \n {%- endif -%} \n c")
	require.NoError(t, err)
	require.Len(t, nodes, 3)
	assert.Equal(t, "a", nodes[0].(*TextNode).Text)
	ifNode := nodes[1].(*IfNode)
	assert.Equal(t, "b", ifNode.Branches[0].Body[0].(*TextNode).Text)
	assert.Equal(t, "c", nodes[2].(*TextNode).Text)
}

func TestParseElseOutsideIfIsError(t *testing.T) {
	_, err := Parse("{% else %}x{% endif %}")
	require.Error(t, err)
}
