package nanotpl

// parseExpr parses an `or_expr`, the top of the expression grammar
// (spec.md §3/§4.3): `or_expr := and_expr ('or' and_expr)*`, left
// associative.
func (p *parser) parseExpr() (Expr, error) {
	return p.parseOr()
}

func (p *parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.cur().Kind == TokOr {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: OpOr, Left: left, Right: right}
	}
	return left, nil
}

// and_expr := not_expr ('and' not_expr)*, left associative.
func (p *parser) parseAnd() (Expr, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.cur().Kind == TokAnd {
		p.advance()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: OpAnd, Left: left, Right: right}
	}
	return left, nil
}

// not_expr := 'not' not_expr | primary. `not` is right-associative and
// binds tighter than and/or but looser than path/bracket access, since it
// recurses into another not_expr (which bottoms out at a full primary/path
// chain) rather than into a bare primary.
func (p *parser) parseNot() (Expr, error) {
	if p.cur().Kind == TokNot {
		p.advance()
		inner, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Inner: inner}, nil
	}
	return p.parsePrimary()
}

// primary := STRING | INT | 'true' | 'false' | 'null' | path
//
// true/false/null lex as plain WORD tokens (see token.go's keywordKinds
// comment); this is where the distinction from an ordinary path head is
// actually made.
func (p *parser) parsePrimary() (Expr, error) {
	tok := p.cur()
	switch tok.Kind {
	case TokSingleQuoteString, TokDoubleQuoteString:
		p.advance()
		return &StringLit{Text: tok.Val}, nil
	case TokInt:
		p.advance()
		n, err := parseIntLiteral(tok)
		if err != nil {
			return nil, err
		}
		return &IntLit{Value: n}, nil
	case TokWord:
		switch tok.Val {
		case "true":
			p.advance()
			return &BoolLit{Value: true}, nil
		case "false":
			p.advance()
			return &BoolLit{Value: false}, nil
		case "null":
			p.advance()
			return &NullLit{}, nil
		default:
			return p.parsePath()
		}
	default:
		return nil, p.errorAt(tok, "expected an expression, found %s", tok.Kind)
	}
}

// path := WORD ( '.' WORD | '[' (STRING | INT | path) ']' )*
func (p *parser) parsePath() (Expr, error) {
	head, err := p.expect(TokWord, "identifier")
	if err != nil {
		return nil, err
	}
	path := &Path{Head: head.Val, HeadStart: head.Start, HeadStop: head.End}

	for {
		switch p.cur().Kind {
		case TokDot:
			p.advance()
			name, err := p.expect(TokWord, "field name")
			if err != nil {
				return nil, err
			}
			path.Segments = append(path.Segments, PathSegment{
				Kind: SegDotName, Name: name.Val, Start: name.Start, Stop: name.End,
			})
		case TokLBracket:
			p.advance()
			seg, err := p.parseBracketKey()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(TokRBracket, "]"); err != nil {
				return nil, err
			}
			path.Segments = append(path.Segments, seg)
		default:
			return path, nil
		}
	}
}

// parseBracketKey parses the contents of `a[ ... ]`. The grammar allows a
// string, an int, or a nested path as the key; the compiler can only lower
// string/int keys to the fixed-width SELECTOR instruction (its operand is
// always a constant-pool index, never a value popped off the stack), so a
// path key is accepted here and rejected later, at compile time, with a
// clear error rather than here with a parse error (spec.md's own Open
// Questions note this corner is under-specified).
func (p *parser) parseBracketKey() (PathSegment, error) {
	tok := p.cur()
	switch tok.Kind {
	case TokSingleQuoteString, TokDoubleQuoteString:
		p.advance()
		return PathSegment{Kind: SegIndex, Name: tok.Val, Start: tok.Start, Stop: tok.End}, nil
	case TokInt:
		p.advance()
		n, err := parseIntLiteral(tok)
		if err != nil {
			return PathSegment{}, err
		}
		return PathSegment{Kind: SegIndex, Int: n, Start: tok.Start, Stop: tok.End}, nil
	case TokWord:
		sub, err := p.parsePath()
		if err != nil {
			return PathSegment{}, err
		}
		subPath := sub.(*Path)
		return PathSegment{Kind: SegIndex, Sub: sub, Start: subPath.HeadStart, Stop: tok.End}, nil
	default:
		return PathSegment{}, p.errorAt(tok, "expected a string, integer, or path inside [], found %s", tok.Kind)
	}
}
