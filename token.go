package nanotpl

import "fmt"

// TokenKind classifies a single lexical token. The set is closed: every
// kind a template can produce is enumerated here.
type TokenKind int

const (
	TokOther TokenKind = iota // literal text outside any tag
	TokOutStart
	TokOutEnd
	TokTagStart
	TokTagEnd
	TokWCHyphen // '-' adjacent to a delimiter
	TokWCTilde  // '~' adjacent to a delimiter
	TokWord     // identifier
	TokDot
	TokLBracket
	TokRBracket
	TokSingleQuoteString
	TokDoubleQuoteString
	TokInt
	TokAnd
	TokOr
	TokNot
	TokIn
	TokIfTag
	TokElifTag
	TokElseTag
	TokEndifTag
	TokForTag
	TokEndforTag
	TokTrue
	TokFalse
	TokNull
	TokEOF
)

var tokenKindNames = map[TokenKind]string{
	TokOther:             "OTHER",
	TokOutStart:          "OUT_START",
	TokOutEnd:            "OUT_END",
	TokTagStart:          "TAG_START",
	TokTagEnd:            "TAG_END",
	TokWCHyphen:          "WC_HYPHEN",
	TokWCTilde:           "WC_TILDE",
	TokWord:              "WORD",
	TokDot:               "DOT",
	TokLBracket:          "LBRACKET",
	TokRBracket:          "RBRACKET",
	TokSingleQuoteString: "SINGLE_QUOTE_STRING",
	TokDoubleQuoteString: "DOUBLE_QUOTE_STRING",
	TokInt:               "INT",
	TokAnd:               "AND",
	TokOr:                "OR",
	TokNot:                "NOT",
	TokIn:                "IN",
	TokIfTag:             "IF_TAG",
	TokElifTag:           "ELIF_TAG",
	TokElseTag:           "ELSE_TAG",
	TokEndifTag:          "ENDIF_TAG",
	TokForTag:            "FOR_TAG",
	TokEndforTag:         "ENDFOR_TAG",
	TokTrue:              "TRUE",
	TokFalse:             "FALSE",
	TokNull:              "NULL",
	TokEOF:               "EOF",
}

func (k TokenKind) String() string {
	if s, ok := tokenKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("TokenKind(%d)", int(k))
}

// Token is a single lexical element. Start/End are byte offsets into the
// original source; the lexer never copies the source text for OTHER/WORD
// tokens (consumers borrow via Start:End). String/int literals carry their
// decoded value in Val since escape processing already consumed the raw
// bytes.
type Token struct {
	Kind  TokenKind
	Start int
	End   int
	Val   string

	// Tilde is not set by the lexer: whitespace control tells a tilde
	// marker from a hyphen marker by Kind (WC_TILDE vs WC_HYPHEN).
	Tilde bool
}

func (t *Token) String() string {
	return fmt.Sprintf("<Token %s [%d:%d] %q>", t.Kind, t.Start, t.End, t.Val)
}

var keywordKinds = map[string]TokenKind{
	// true/false/null are deliberately NOT here: original_source's own
	// tokenizer tests (test_tokenize.py::test_if) show `true` lexed as a
	// plain TOK_WORD, not a dedicated keyword token. The parser's primary
	// rule disambiguates by comparing a WORD token's text.
	"and": TokAnd,
	"or":  TokOr,
	"not": TokNot,
	"in":  TokIn,
}

var tagKeywordKinds = map[string]TokenKind{
	"if":      TokIfTag,
	"elif":    TokElifTag,
	"else":    TokElseTag,
	"endif":   TokEndifTag,
	"for":     TokForTag,
	"endfor":  TokEndforTag,
}
