package expr

import (
	"fmt"
	"unicode/utf8"
)

// TokenKind identifies a lexical token.
type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenNumber
	TokenPlus
	TokenMinus
	TokenStar
	TokenSlash
	TokenLParen
	TokenRParen
)

// String returns a human-readable name for the token kind
func (k TokenKind) String() string {
	switch k {
	case TokenEOF:
		return "end of input"
	case TokenNumber:
		return "number"
	case TokenPlus:
		return "'+'"
	case TokenMinus:
		return "'-'"
	case TokenStar:
		return "'*'"
	case TokenSlash:
		return "'/'"
	case TokenLParen:
		return "'('"
	case TokenRParen:
		return "')'"
	default:
		return fmt.Sprintf("TokenKind(%d)", k)
	}
}

// Token is a lexeme with its byte offset in the source.
type Token struct {
	Kind TokenKind
	Text string
	Pos  int
}

// Tokenize splits src into tokens, ending with a TokenEOF.
//
// Numbers are decimal literals with an optional fractional part: "5", "5.",
// ".5" and "05" are accepted, "." alone is not. The display glyphs '×' and
// '÷' are read as '*' and '/'.
func Tokenize(src string) ([]Token, error) {
	var tokens []Token
	pos := 0

	for pos < len(src) {
		r, size := utf8.DecodeRuneInString(src[pos:])

		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			pos += size
			continue

		case isDigit(r) || r == '.':
			end, err := scanNumber(src, pos)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, Token{Kind: TokenNumber, Text: src[pos:end], Pos: pos})
			pos = end
			continue
		}

		kind, ok := operatorKind(r)
		if !ok {
			return nil, &SyntaxError{Pos: pos, Msg: fmt.Sprintf("unexpected character %q", r)}
		}
		tokens = append(tokens, Token{Kind: kind, Text: src[pos : pos+size], Pos: pos})
		pos += size
	}

	tokens = append(tokens, Token{Kind: TokenEOF, Pos: len(src)})
	return tokens, nil
}

// scanNumber returns the end offset of the numeric literal starting at start.
func scanNumber(src string, start int) (int, error) {
	pos := start
	digits := 0
	for pos < len(src) && isDigit(rune(src[pos])) {
		pos++
		digits++
	}
	if pos < len(src) && src[pos] == '.' {
		pos++
		for pos < len(src) && isDigit(rune(src[pos])) {
			pos++
			digits++
		}
	}
	if digits == 0 {
		return 0, &SyntaxError{Pos: start, Msg: "decimal point without digits"}
	}
	return pos, nil
}

func operatorKind(r rune) (TokenKind, bool) {
	switch r {
	case '+':
		return TokenPlus, true
	case '-':
		return TokenMinus, true
	case '*', '×':
		return TokenStar, true
	case '/', '÷':
		return TokenSlash, true
	case '(':
		return TokenLParen, true
	case ')':
		return TokenRParen, true
	}
	return TokenEOF, false
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
