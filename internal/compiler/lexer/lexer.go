package lexer

import (
	"github.com/Sivdeg/a5-triangle-tools/internal/compiler/report"
	"github.com/Sivdeg/a5-triangle-tools/internal/compiler/token"
)

type Lexer struct {
	input        string
	position     int  // current char index
	readPosition int  // next char index
	ch           byte // current char

	line   int // current line number (1-indexed)
	column int // current column number (1-indexed)

	reporter *report.Reporter
}

func NewLexer(input string, reporter *report.Reporter) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0, reporter: reporter}
	l.readChar()
	return l
}

// readChar advances the lexer's position and updates the current character.
// It handles EOF and tracks line/column numbers.
func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0 // ASCII NULL (EOF)
	} else {
		l.ch = l.input[l.readPosition]
	}

	l.position = l.readPosition
	l.readPosition++

	if l.ch == '\n' {
		l.line++
		l.column = 0
	} else if l.ch != 0 {
		l.column++
	}
}

// peekChar returns the next character without consuming it.
func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

func (l *Lexer) NextToken() token.Token {
	l.skipWhitespaceAndComments()

	startLine := l.line
	startCol := l.column

	switch l.ch {
	case '.':
		return l.singleChar(token.TokenDot, startLine, startCol)
	case ';':
		return l.singleChar(token.TokenSemicolon, startLine, startCol)
	case ',':
		return l.singleChar(token.TokenComma, startLine, startCol)
	case '~':
		return l.singleChar(token.TokenIs, startLine, startCol)
	case '(':
		return l.singleChar(token.TokenLParen, startLine, startCol)
	case ')':
		return l.singleChar(token.TokenRParen, startLine, startCol)
	case '[':
		return l.singleChar(token.TokenLBracket, startLine, startCol)
	case ']':
		return l.singleChar(token.TokenRBracket, startLine, startCol)
	case '{':
		return l.singleChar(token.TokenLBrace, startLine, startCol)
	case '}':
		return l.singleChar(token.TokenRBrace, startLine, startCol)
	case ':':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return token.Token{Type: token.TokenBecomes, Literal: ":=", Line: startLine, Column: startCol}
		}
		return l.singleChar(token.TokenColon, startLine, startCol)
	case '\'':
		return l.readCharLiteral(startLine, startCol)
	case 0:
		return token.Token{Type: token.TokenEOF, Literal: "", Line: startLine, Column: startCol}
	default:
		if isLetter(l.ch) {
			ident := l.readIdentifier()
			return token.Token{Type: token.LookupIdent(ident), Literal: ident, Line: startLine, Column: startCol}
		}
		if isDigit(l.ch) {
			return l.readInteger(startLine, startCol)
		}
		if isOperatorChar(l.ch) {
			return l.readOperator(startLine, startCol)
		}
		// Unrecognized character: report it and keep scanning. Lexical
		// errors are not fatal to the rest of the token stream.
		l.reporter.Error(startLine, startCol, "unrecognized character %q", string(l.ch))
		tok := token.Token{Type: token.TokenIllegal, Literal: string(l.ch), Line: startLine, Column: startCol}
		l.readChar()
		return tok
	}
}

func (l *Lexer) singleChar(tokenType token.TokenType, line, col int) token.Token {
	tok := token.Token{Type: tokenType, Literal: string(l.ch), Line: line, Column: col}
	l.readChar()
	return tok
}

// skipWhitespaceAndComments consumes blanks and '!' comments, which run to
// the end of the line.
func (l *Lexer) skipWhitespaceAndComments() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\n' || l.ch == '\t' || l.ch == '\r':
			l.readChar()
		case l.ch == '!':
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
		default:
			return
		}
	}
}

func (l *Lexer) readIdentifier() string {
	start := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

func (l *Lexer) readInteger(startLine, startCol int) token.Token {
	start := l.position
	for isDigit(l.ch) {
		l.readChar()
	}
	literal := l.input[start:l.position]
	return token.Token{Type: token.TokenInt, Literal: literal, Line: startLine, Column: startCol}
}

// readOperator consumes a maximal run of operator characters, so "<=" and
// "/\" come out as one token (longest match).
func (l *Lexer) readOperator(startLine, startCol int) token.Token {
	start := l.position
	for isOperatorChar(l.ch) {
		l.readChar()
	}
	literal := l.input[start:l.position]
	return token.Token{Type: token.TokenOperator, Literal: literal, Line: startLine, Column: startCol}
}

// readCharLiteral reads 'x'. The literal carried on the token is the
// single character between the quotes.
func (l *Lexer) readCharLiteral(startLine, startCol int) token.Token {
	l.readChar() // consume opening quote
	if l.ch == 0 || l.ch == '\n' {
		l.reporter.Error(startLine, startCol, "unterminated character literal")
		return token.Token{Type: token.TokenIllegal, Literal: "'", Line: startLine, Column: startCol}
	}
	lit := string(l.ch)
	l.readChar()
	if l.ch != '\'' {
		l.reporter.Error(startLine, startCol, "unterminated character literal")
		return token.Token{Type: token.TokenIllegal, Literal: lit, Line: startLine, Column: startCol}
	}
	l.readChar() // consume closing quote
	return token.Token{Type: token.TokenChar, Literal: lit, Line: startLine, Column: startCol}
}

func isLetter(ch byte) bool {
	return ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z')
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isOperatorChar(ch byte) bool {
	switch ch {
	case '+', '-', '*', '/', '=', '<', '>', '\\', '&', '@', '%', '^', '?':
		return true
	}
	return false
}
