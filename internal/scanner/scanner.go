package scanner

import (
	"github.com/xirelogy/go-rox/internal/token"
)

// Scanner converts source text into tokens on demand.
// It never fails: malformed input yields token.Error tokens whose Lexeme is the message.
type Scanner struct {
	input   string
	start   int // first byte of the lexeme being scanned
	current int // next byte to read
	line    int
}

// New creates a scanner for the provided source text.
func New(input string) *Scanner {
	return &Scanner{
		input: input,
		line:  1,
	}
}

// ScanToken returns the next token. Once the input is exhausted every call returns EOF.
func (s *Scanner) ScanToken() token.Token {
	s.skipWhitespace()
	s.start = s.current

	if s.atEnd() {
		return s.makeToken(token.EOF)
	}

	ch := s.advance()
	if isAlpha(ch) {
		return s.identifier()
	}
	if isDigit(ch) {
		return s.number()
	}

	switch ch {
	case '(':
		return s.makeToken(token.LeftParen)
	case ')':
		return s.makeToken(token.RightParen)
	case '{':
		return s.makeToken(token.LeftBrace)
	case '}':
		return s.makeToken(token.RightBrace)
	case ';':
		return s.makeToken(token.Semicolon)
	case ',':
		return s.makeToken(token.Comma)
	case '.':
		return s.makeToken(token.Dot)
	case '-':
		return s.makeToken(token.Minus)
	case '+':
		return s.makeToken(token.Plus)
	case '/':
		return s.makeToken(token.Slash)
	case '*':
		return s.makeToken(token.Star)
	case '!':
		return s.makeToken(s.pick('=', token.BangEqual, token.Bang))
	case '=':
		return s.makeToken(s.pick('=', token.EqualEqual, token.Equal))
	case '<':
		return s.makeToken(s.pick('=', token.LessEqual, token.Less))
	case '>':
		return s.makeToken(s.pick('=', token.GreaterEqual, token.Greater))
	case '"':
		return s.str()
	}

	return s.errorToken("Unexpected character.")
}

func (s *Scanner) makeToken(t token.Type) token.Token {
	return token.Token{
		Type:   t,
		Lexeme: s.input[s.start:s.current],
		Line:   s.line,
	}
}

func (s *Scanner) errorToken(msg string) token.Token {
	return token.Token{
		Type:   token.Error,
		Lexeme: msg,
		Line:   s.line,
	}
}

// pick consumes expected if it is next and returns matched, otherwise single.
func (s *Scanner) pick(expected byte, matched, single token.Type) token.Type {
	if s.match(expected) {
		return matched
	}
	return single
}

func (s *Scanner) skipWhitespace() {
	for {
		switch s.peek() {
		case ' ', '\r', '\t':
			s.advance()
		case '\n':
			s.line++
			s.advance()
		case '/':
			if s.peekNext() != '/' {
				return
			}
			for s.peek() != '\n' && !s.atEnd() {
				s.advance()
			}
		default:
			return
		}
	}
}

func (s *Scanner) identifier() token.Token {
	for isAlpha(s.peek()) || isDigit(s.peek()) {
		s.advance()
	}
	return s.makeToken(token.LookupIdent(s.input[s.start:s.current]))
}

func (s *Scanner) number() token.Token {
	for isDigit(s.peek()) {
		s.advance()
	}
	// a trailing '.' without digits is left for the caller
	if s.peek() == '.' && isDigit(s.peekNext()) {
		s.advance()
		for isDigit(s.peek()) {
			s.advance()
		}
	}
	return s.makeToken(token.Number)
}

func (s *Scanner) str() token.Token {
	for s.peek() != '"' && !s.atEnd() {
		if s.peek() == '\n' {
			s.line++
		}
		s.advance()
	}
	if s.atEnd() {
		return s.errorToken("Unterminated string.")
	}
	s.advance() // closing quote
	return s.makeToken(token.String)
}

func (s *Scanner) atEnd() bool {
	return s.current >= len(s.input)
}

func (s *Scanner) advance() byte {
	ch := s.input[s.current]
	s.current++
	return ch
}

func (s *Scanner) match(expected byte) bool {
	if s.atEnd() || s.input[s.current] != expected {
		return false
	}
	s.current++
	return true
}

func (s *Scanner) peek() byte {
	if s.atEnd() {
		return 0
	}
	return s.input[s.current]
}

func (s *Scanner) peekNext() byte {
	if s.current+1 >= len(s.input) {
		return 0
	}
	return s.input[s.current+1]
}

func isAlpha(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}
