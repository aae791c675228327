package expr

import (
	"fmt"
	"strconv"
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokIdent
	tokOp // + - * / ^
	tokLParen
	tokRParen
	tokComma
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokNumber:
		return "number"
	case tokIdent:
		return "identifier"
	case tokOp:
		return "operator"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	case tokComma:
		return "','"
	}
	return "token"
}

type token struct {
	kind tokenKind
	text string
	num  float64
	pos  int // byte offset into the source
}

func (t token) describe() string {
	switch t.kind {
	case tokEOF:
		return "end of input"
	case tokNumber, tokIdent:
		return fmt.Sprintf("%s %q", t.kind, t.text)
	}
	return fmt.Sprintf("%q", t.text)
}

// lex splits src into tokens. The returned slice always ends with tokEOF.
func lex(src string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(src) {
		r, size := utf8.DecodeRuneInString(src[i:])
		switch {
		case r == utf8.RuneError && size == 1:
			return nil, newSyntaxError(src, i, "invalid UTF-8 encoding")
		case unicode.IsSpace(r):
			i += size
		case isDigit(r) || r == '.':
			tok, err := lexNumber(src, i)
			if err != nil {
				return nil, err
			}
			toks = append(toks, tok)
			i += len(tok.text)
		case isIdentStart(r):
			start := i
			for i < len(src) {
				r, size := utf8.DecodeRuneInString(src[i:])
				if !isIdentStart(r) && !isDigit(r) {
					break
				}
				i += size
			}
			toks = append(toks, token{kind: tokIdent, text: src[start:i], pos: start})
		default:
			kind, ok := punct[r]
			if !ok {
				return nil, newSyntaxError(src, i, fmt.Sprintf("unexpected character %q", r))
			}
			toks = append(toks, token{kind: kind, text: string(r), pos: i})
			i += size
		}
	}
	return append(toks, token{kind: tokEOF, pos: len(src)}), nil
}

var punct = map[rune]tokenKind{
	'+': tokOp,
	'-': tokOp,
	'*': tokOp,
	'/': tokOp,
	'^': tokOp,
	'(': tokLParen,
	')': tokRParen,
	',': tokComma,
}

// lexNumber scans a decimal literal starting at offset start. An exponent is
// only consumed when digits follow it, so "2e" lexes as 2 followed by the
// constant e.
func lexNumber(src string, start int) (token, error) {
	i := start
	digits := 0
	for i < len(src) && isDigit(rune(src[i])) {
		i++
		digits++
	}
	if i < len(src) && src[i] == '.' {
		i++
		for i < len(src) && isDigit(rune(src[i])) {
			i++
			digits++
		}
	}
	if digits == 0 || (i < len(src) && src[i] == '.') {
		return token{}, newSyntaxError(src, start, "malformed number")
	}
	if i < len(src) && (src[i] == 'e' || src[i] == 'E') {
		j := i + 1
		if j < len(src) && (src[j] == '+' || src[j] == '-') {
			j++
		}
		if j < len(src) && isDigit(rune(src[j])) {
			for j < len(src) && isDigit(rune(src[j])) {
				j++
			}
			i = j
		}
	}
	text := src[start:i]
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return token{}, newSyntaxError(src, start, fmt.Sprintf("malformed number %q", text))
	}
	return token{kind: tokNumber, text: text, num: v, pos: start}, nil
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}
