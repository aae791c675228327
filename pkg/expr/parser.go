package expr

import (
	"fmt"
	"strconv"
)

// node is an element of the parsed expression tree.
type node interface {
	// String renders the node fully parenthesised.
	String() string
	// usesX reports whether the subtree references the variable.
	usesX() bool
}

type numberNode struct {
	value float64
	name  string // constant name, empty for literals
}

type variableNode struct{}

type unaryNode struct {
	op  byte // '-'
	arg node
	pos int
}

type binaryNode struct {
	op          byte // + - * / ^
	left, right node
	pos         int
}

type callNode struct {
	fn  *function
	arg node
	pos int
}

func (n *numberNode) String() string {
	if n.name != "" {
		return n.name
	}
	return strconv.FormatFloat(n.value, 'g', -1, 64)
}

func (n *variableNode) String() string { return variable }
func (n *unaryNode) String() string    { return "(" + string(n.op) + n.arg.String() + ")" }
func (n *binaryNode) String() string {
	return "(" + n.left.String() + " " + string(n.op) + " " + n.right.String() + ")"
}
func (n *callNode) String() string { return n.fn.name + "(" + n.arg.String() + ")" }

func (n *numberNode) usesX() bool   { return false }
func (n *variableNode) usesX() bool { return true }
func (n *unaryNode) usesX() bool    { return n.arg.usesX() }
func (n *binaryNode) usesX() bool   { return n.left.usesX() || n.right.usesX() }
func (n *callNode) usesX() bool     { return n.arg.usesX() }

// parser is a recursive-descent parser over a pre-lexed token slice.
type parser struct {
	src  string
	toks []token
	pos  int
}

// parse turns src into an expression tree.
func parse(src string) (node, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{src: src, toks: toks}
	if p.peek().kind == tokEOF {
		return nil, newSyntaxError(src, 0, "empty expression")
	}
	n, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		if tok.kind == tokRParen {
			return nil, p.errorf(tok, "unmatched ')'")
		}
		return nil, p.errorf(tok, "unexpected %s", tok.describe())
	}
	return n, nil
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	tok := p.toks[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) isOp(op string) bool {
	tok := p.peek()
	return tok.kind == tokOp && tok.text == op
}

func (p *parser) errorf(tok token, format string, args ...any) *SyntaxError {
	return newSyntaxError(p.src, tok.pos, fmt.Sprintf(format, args...))
}

func (p *parser) parseExpr() (node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.isOp("+") || p.isOp("-") {
		op := p.next()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: op.text[0], left: left, right: right, pos: op.pos}
	}
	return left, nil
}

func (p *parser) parseTerm() (node, error) {
	left, err := p.parsePower()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		switch {
		case p.isOp("*") || p.isOp("/"):
			p.next()
		case startsOperand(tok):
			// juxtaposition: 2x, 3(x+1), (x+1)(x-1)
		default:
			return left, nil
		}
		right, err := p.parsePower()
		if err != nil {
			return nil, err
		}
		op := byte('*')
		if tok.kind == tokOp {
			op = tok.text[0]
		}
		left = &binaryNode{op: op, left: left, right: right, pos: tok.pos}
	}
}

func (p *parser) parsePower() (node, error) {
	base, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	if !p.isOp("^") {
		return base, nil
	}
	op := p.next()
	exp, err := p.parsePower()
	if err != nil {
		return nil, err
	}
	return &binaryNode{op: '^', left: base, right: exp, pos: op.pos}, nil
}

func (p *parser) parseUnary() (node, error) {
	if p.isOp("-") || p.isOp("+") {
		op := p.next()
		arg, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if op.text == "+" {
			return arg, nil
		}
		return &unaryNode{op: '-', arg: arg, pos: op.pos}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (node, error) {
	tok := p.next()
	switch tok.kind {
	case tokNumber:
		return &numberNode{value: tok.num}, nil
	case tokIdent:
		return p.parseIdent(tok)
	case tokLParen:
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectClose(tok); err != nil {
			return nil, err
		}
		return inner, nil
	case tokEOF:
		return nil, p.errorf(tok, "unexpected end of input")
	case tokRParen:
		return nil, p.errorf(tok, "unexpected ')'")
	}
	return nil, p.errorf(tok, "unexpected %s", tok.describe())
}

func (p *parser) parseIdent(tok token) (node, error) {
	if tok.text == variable {
		return &variableNode{}, nil
	}
	if v, ok := constants[tok.text]; ok {
		return &numberNode{value: v, name: tok.text}, nil
	}
	fn, ok := functions[tok.text]
	if !ok {
		if p.peek().kind == tokLParen {
			return nil, p.errorf(tok, "unknown function %q", tok.text)
		}
		return nil, p.errorf(tok, "unknown identifier %q (the only variable is x)", tok.text)
	}
	open := p.peek()
	if open.kind != tokLParen {
		return nil, p.errorf(tok, "function %s requires parentheses, e.g. %s(x)", fn.name, fn.name)
	}
	p.next()
	if p.peek().kind == tokRParen {
		return nil, p.errorf(p.peek(), "function %s takes exactly 1 argument", fn.name)
	}
	arg, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.peek().kind == tokComma {
		return nil, p.errorf(p.peek(), "function %s takes exactly 1 argument", fn.name)
	}
	if err := p.expectClose(open); err != nil {
		return nil, err
	}
	return &callNode{fn: fn, arg: arg, pos: tok.pos}, nil
}

// expectClose consumes a ')' matching the '(' at open.
func (p *parser) expectClose(open token) error {
	tok := p.peek()
	if tok.kind == tokRParen {
		p.next()
		return nil
	}
	if tok.kind == tokEOF {
		return p.errorf(tok, "unexpected end of input, missing ')' for '(' at column %d", open.pos+1)
	}
	return p.errorf(tok, "expected ')', found %s", tok.describe())
}

func startsOperand(tok token) bool {
	switch tok.kind {
	case tokNumber, tokIdent, tokLParen:
		return true
	}
	return false
}
