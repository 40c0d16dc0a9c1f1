package expr

import (
	"errors"
	"fmt"
	"strconv"
)

// Grammar:
//
//	expression = term { ("+" | "-") term }
//	term       = unary { ("*" | "/") unary }
//	unary      = ("+" | "-") unary | primary
//	primary    = number | "(" expression ")"

// Node is a parsed arithmetic expression.
type Node interface {
	Pos() int
	String() string
}

// Number is a numeric literal.
type Number struct {
	Value  float64
	Offset int
}

// Unary is a sign applied to an operand.
type Unary struct {
	Op     byte
	X      Node
	Offset int
}

// Binary is an infix arithmetic operation.
type Binary struct {
	Op     byte
	X, Y   Node
	Offset int
}

func (n *Number) Pos() int { return n.Offset }
func (n *Unary) Pos() int  { return n.Offset }
func (n *Binary) Pos() int { return n.Offset }

func (n *Number) String() string {
	return strconv.FormatFloat(n.Value, 'g', -1, 64)
}

func (n *Unary) String() string {
	return fmt.Sprintf("(%c%s)", n.Op, n.X)
}

func (n *Binary) String() string {
	return fmt.Sprintf("(%s %c %s)", n.X, n.Op, n.Y)
}

// SyntaxError reports malformed input at a byte offset.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at offset %d: %s", e.Pos, e.Msg)
}

// Parse parses src into an expression tree.
func Parse(src string) (Node, error) {
	tokens, err := Tokenize(src)
	if err != nil {
		return nil, err
	}

	p := &parser{tokens: tokens}
	if p.peek().Kind == TokenEOF {
		return nil, &SyntaxError{Pos: 0, Msg: "empty expression"}
	}

	node, err := p.expression()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.Kind != TokenEOF {
		return nil, &SyntaxError{Pos: tok.Pos, Msg: fmt.Sprintf("unexpected %s", tok.Kind)}
	}
	return node, nil
}

type parser struct {
	tokens []Token
	pos    int
}

func (p *parser) peek() Token {
	return p.tokens[p.pos]
}

func (p *parser) next() Token {
	tok := p.tokens[p.pos]
	if tok.Kind != TokenEOF {
		p.pos++
	}
	return tok
}

func (p *parser) expression() (Node, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		if tok.Kind != TokenPlus && tok.Kind != TokenMinus {
			return left, nil
		}
		p.next()
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: opByte(tok.Kind), X: left, Y: right, Offset: tok.Pos}
	}
}

func (p *parser) term() (Node, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		if tok.Kind != TokenStar && tok.Kind != TokenSlash {
			return left, nil
		}
		p.next()
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: opByte(tok.Kind), X: left, Y: right, Offset: tok.Pos}
	}
}

func (p *parser) unary() (Node, error) {
	tok := p.peek()
	if tok.Kind == TokenPlus || tok.Kind == TokenMinus {
		p.next()
		x, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &Unary{Op: opByte(tok.Kind), X: x, Offset: tok.Pos}, nil
	}
	return p.primary()
}

func (p *parser) primary() (Node, error) {
	tok := p.next()
	switch tok.Kind {
	case TokenNumber:
		v, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return nil, &SyntaxError{Pos: tok.Pos, Msg: fmt.Sprintf("invalid number %q", tok.Text)}
		}
		// Out-of-range literals keep the ±Inf ParseFloat returns.
		return &Number{Value: v, Offset: tok.Pos}, nil

	case TokenLParen:
		inner, err := p.expression()
		if err != nil {
			return nil, err
		}
		closing := p.next()
		if closing.Kind != TokenRParen {
			return nil, &SyntaxError{Pos: closing.Pos, Msg: fmt.Sprintf("expected ')', found %s", closing.Kind)}
		}
		return inner, nil

	default:
		return nil, &SyntaxError{Pos: tok.Pos, Msg: fmt.Sprintf("unexpected %s", tok.Kind)}
	}
}

func opByte(k TokenKind) byte {
	switch k {
	case TokenPlus:
		return '+'
	case TokenMinus:
		return '-'
	case TokenStar:
		return '*'
	case TokenSlash:
		return '/'
	}
	return '?'
}
