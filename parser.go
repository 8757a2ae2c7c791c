package nanotpl

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

var knownTagNames = []string{"if", "elif", "else", "endif", "for", "endfor"}

// parser walks a token stream produced by Tokenize (after whitespace-control
// folding) and builds the AST. It borrows the teacher's token-stream-helper
// style: a cursor plus small current/advance/expect methods, rather than a
// generated grammar.
type parser struct {
	toks []Token
	pos  int
}

// Parse builds a template's AST from source text (spec.md §3/§4.2). It is
// the package-level `parse` stage: Tokenize followed by recursive descent.
func Parse(source string) ([]Node, error) {
	toks, err := Tokenize(source)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: applyWhitespaceControl(toks)}
	nodes, stop, err := p.parseDocElements()
	if err != nil {
		return nil, err
	}
	if stop != TokEOF {
		return nil, p.errorAt(p.cur(), "unexpected %s outside of if/for", tagWordFor(stop))
	}
	return nodes, nil
}

func (p *parser) cur() Token {
	if p.pos >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos]
}

func (p *parser) peekKind(ahead int) TokenKind {
	i := p.pos + ahead
	if i >= len(p.toks) {
		return TokEOF
	}
	return p.toks[i].Kind
}

func (p *parser) advance() Token {
	t := p.cur()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *parser) expect(kind TokenKind, what string) (Token, error) {
	if p.cur().Kind != kind {
		return Token{}, p.errorAt(p.cur(), "expected %s, found %s", what, p.cur().Kind)
	}
	return p.advance(), nil
}

func (p *parser) errorAt(tok Token, format string, args ...any) error {
	return newSyntaxError(fmt.Sprintf(format, args...), tok.Start, tok.End)
}

func tagWordFor(kind TokenKind) string {
	switch kind {
	case TokElifTag:
		return "{% elif %}"
	case TokElseTag:
		return "{% else %}"
	case TokEndifTag:
		return "{% endif %}"
	case TokEndforTag:
		return "{% endfor %}"
	default:
		return kind.String()
	}
}

// parseDocElements consumes TEXT/output/if/for nodes until EOF or until it
// encounters a TAG_START whose tag kind appears in stops, in which case it
// returns without consuming that tag (the caller, e.g. parseIf, consumes
// it). This is how {% elif %}/{% else %}/{% endif %}/{% endfor %} act as
// soft terminators shared between nested parse calls.
func (p *parser) parseDocElements(stops ...TokenKind) ([]Node, TokenKind, error) {
	var nodes []Node
	for {
		tok := p.cur()
		switch tok.Kind {
		case TokEOF:
			return nodes, TokEOF, nil
		case TokOther:
			p.advance()
			nodes = append(nodes, &TextNode{Text: tok.Val})
		case TokOutStart:
			node, err := p.parseOutput()
			if err != nil {
				return nil, 0, err
			}
			nodes = append(nodes, node)
		case TokTagStart:
			nextKind := p.peekKind(1)
			for _, s := range stops {
				if nextKind == s {
					return nodes, nextKind, nil
				}
			}
			switch nextKind {
			case TokIfTag:
				node, err := p.parseIf()
				if err != nil {
					return nil, 0, err
				}
				nodes = append(nodes, node)
			case TokForTag:
				node, err := p.parseFor()
				if err != nil {
					return nil, 0, err
				}
				nodes = append(nodes, node)
			case TokElifTag, TokElseTag, TokEndifTag, TokEndforTag:
				return nil, 0, p.errorAt(p.toks[p.pos+1], "%s outside of its opening tag", tagWordFor(nextKind))
			default:
				return nil, 0, p.unknownTagError()
			}
		default:
			return nil, 0, p.errorAt(tok, "unexpected token %s", tok.Kind)
		}
	}
}

func (p *parser) unknownTagError() error {
	nameTok := p.toks[p.pos+1]
	msg := fmt.Sprintf("unknown tag %q", nameTok.Val)
	matches := fuzzy.RankFindNormalizedFold(nameTok.Val, knownTagNames)
	sort.Sort(matches)
	suggestion := ""
	if len(matches) > 0 {
		suggestion = matches[0].Target
	} else {
		// A misspelling with extra letters ("iff") is not a subsequence of
		// any tag name; fall back to the longest tag name it contains.
		for _, name := range knownTagNames {
			if len(name) > len(suggestion) && fuzzy.MatchNormalizedFold(name, nameTok.Val) {
				suggestion = name
			}
		}
	}
	if suggestion != "" {
		msg = fmt.Sprintf("%s, did you mean %q?", msg, suggestion)
	}
	return p.errorAt(nameTok, "%s", msg)
}

// parseOutput parses `{{` expr `}}`. The whitespace-control markers, if
// any, have already been folded out of the stream by Parse.
func (p *parser) parseOutput() (Node, error) {
	p.advance() // OUT_START
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokOutEnd, "}}"); err != nil {
		return nil, err
	}
	return &OutputNode{Expr: expr}, nil
}

// parseIf parses `{% if cond %} body ({% elif cond %} body)* ({% else %}
// body)? {% endif %}`.
func (p *parser) parseIf() (Node, error) {
	openTok := p.cur()
	node := &IfNode{}
	for {
		p.advance() // TAG_START
		p.advance() // IF_TAG or ELIF_TAG
		cond, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokTagEnd, "%}"); err != nil {
			return nil, err
		}
		body, stop, err := p.parseDocElements(TokElifTag, TokElseTag, TokEndifTag)
		if err != nil {
			return nil, err
		}
		node.Branches = append(node.Branches, IfBranch{Cond: cond, Body: body})
		switch stop {
		case TokEOF:
			return nil, p.errorAt(openTok, "unterminated {%% if %%}, missing {%% endif %%}")
		case TokElifTag:
			continue
		case TokElseTag:
			p.advance() // TAG_START
			p.advance() // ELSE_TAG
			if _, err := p.expect(TokTagEnd, "%}"); err != nil {
				return nil, err
			}
			elseBody, stop2, err := p.parseDocElements(TokEndifTag)
			if err != nil {
				return nil, err
			}
			if stop2 == TokEOF {
				return nil, p.errorAt(openTok, "unterminated {%% if %%}, missing {%% endif %%}")
			}
			node.Else = elseBody
			p.advance() // TAG_START
			p.advance() // ENDIF_TAG
			if _, err := p.expect(TokTagEnd, "%}"); err != nil {
				return nil, err
			}
			return node, nil
		case TokEndifTag:
			p.advance() // TAG_START
			p.advance() // ENDIF_TAG
			if _, err := p.expect(TokTagEnd, "%}"); err != nil {
				return nil, err
			}
			return node, nil
		}
	}
}

// parseFor parses `{% for Var in Iter %} body ({% else %} body)? {% endfor %}`.
func (p *parser) parseFor() (Node, error) {
	openTok := p.cur()
	p.advance() // TAG_START
	p.advance() // FOR_TAG
	varTok, err := p.expect(TokWord, "loop variable")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokIn, "'in'"); err != nil {
		return nil, err
	}
	iter, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokTagEnd, "%}"); err != nil {
		return nil, err
	}

	body, stop, err := p.parseDocElements(TokElseTag, TokEndforTag)
	if err != nil {
		return nil, err
	}
	node := &ForNode{Var: varTok.Val, Iter: iter, Body: body}
	switch stop {
	case TokEOF:
		return nil, p.errorAt(openTok, "unterminated {%% for %%}, missing {%% endfor %%}")
	case TokElseTag:
		p.advance() // TAG_START
		p.advance() // ELSE_TAG
		if _, err := p.expect(TokTagEnd, "%}"); err != nil {
			return nil, err
		}
		elseBody, stop2, err := p.parseDocElements(TokEndforTag)
		if err != nil {
			return nil, err
		}
		if stop2 == TokEOF {
			return nil, p.errorAt(openTok, "unterminated {%% for %%}, missing {%% endfor %%}")
		}
		node.Else = elseBody
	}
	p.advance() // TAG_START
	p.advance() // ENDFOR_TAG
	if _, err := p.expect(TokTagEnd, "%}"); err != nil {
		return nil, err
	}
	return node, nil
}

func parseIntLiteral(tok Token) (int64, error) {
	n, err := strconv.ParseInt(tok.Val, 10, 64)
	if err != nil {
		return 0, newSyntaxError(fmt.Sprintf("malformed integer literal %q", tok.Val), tok.Start, tok.End)
	}
	return n, nil
}
