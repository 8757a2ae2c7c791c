package nanotpl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(toks []Token) []TokenKind {
	out := make([]TokenKind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestTokenizeEmptySourceYieldsOnlyEOF(t *testing.T) {
	toks, err := Tokenize("")
	require.NoError(t, err)
	require.Len(t, toks, 1)
	assert.Equal(t, TokEOF, toks[0].Kind)
}

func TestTokenizePlainText(t *testing.T) {
	toks, err := Tokenize("hello world")
	require.NoError(t, err)
	require.Len(t, toks, 2)
	assert.Equal(t, TokOther, toks[0].Kind)
	assert.Equal(t, "hello world", toks[0].Val)
}

func TestTokenizeOutput(t *testing.T) {
	toks, err := Tokenize("{{ user.name }}")
	require.NoError(t, err)
	assert.Equal(t, []TokenKind{TokOutStart, TokWord, TokDot, TokWord, TokOutEnd, TokEOF}, kinds(toks))
}

func TestTokenizeIfKeywordsAreDedicatedKinds(t *testing.T) {
	toks, err := Tokenize("{% if a and not b or c in d %}x{% endif %}")
	require.NoError(t, err)
	assert.Equal(t, []TokenKind{
		TokTagStart, TokIfTag, TokWord, TokAnd, TokNot, TokWord, TokOr, TokWord, TokIn, TokWord, TokTagEnd,
		TokOther,
		TokTagStart, TokEndifTag, TokTagEnd,
		TokEOF,
	}, kinds(toks))
}

// Per original_source's own tokenizer tests (test_tokenize.py::test_if),
// true/false/null lex as plain WORD tokens, not dedicated keyword kinds.
func TestTokenizeTrueFalseNullAreWords(t *testing.T) {
	toks, err := Tokenize("{{ true }}{{ false }}{{ null }}")
	require.NoError(t, err)
	var words []string
	for _, tok := range toks {
		if tok.Kind == TokWord {
			words = append(words, tok.Val)
		}
	}
	assert.Equal(t, []string{"true", "false", "null"}, words)
}

func TestTokenizeStringEscapes(t *testing.T) {
	toks, err := Tokenize(`{{ 'a\nb\tA' }}`)
	require.NoError(t, err)
	require.Len(t, toks, 4)
	assert.Equal(t, "a\nb\tA", toks[1].Val)
}

func TestTokenizeSurrogatePairEscape(t *testing.T) {
	toks, err := Tokenize(`{{ "\uD834\uDD1E" }}`)
	require.NoError(t, err)
	require.Len(t, toks, 4)
	assert.Equal(t, "\U0001D11E", toks[1].Val)
}

func TestTokenizeWhitespaceControlMarkers(t *testing.T) {
	toks, err := Tokenize("{{- x -}}")
	require.NoError(t, err)
	assert.Equal(t, []TokenKind{TokOutStart, TokWCHyphen, TokWord, TokWCHyphen, TokOutEnd, TokEOF}, kinds(toks))
}

func TestTokenizeNewlineInsideTagIsSkippedAsWhitespace(t *testing.T) {
	toks, err := Tokenize("{{ a\nb }}")
	require.NoError(t, err)
	assert.Equal(t, []TokenKind{TokOutStart, TokWord, TokWord, TokOutEnd, TokEOF}, kinds(toks))
}

func TestTokenizeUnterminatedStringIsError(t *testing.T) {
	_, err := Tokenize(`{{ 'abc }}`)
	require.Error(t, err)
}

func TestTokenizeAllSpansWithinSource(t *testing.T) {
	source := "before {{ a.b }} middle {% if c %}x{% endif %} after"
	toks, err := Tokenize(source)
	require.NoError(t, err)
	for _, tok := range toks {
		if tok.Kind == TokEOF {
			continue
		}
		assert.GreaterOrEqualf(t, tok.Start, 0, "token %v", tok)
		assert.LessOrEqualf(t, tok.End, len(source), "token %v", tok)
	}
}
