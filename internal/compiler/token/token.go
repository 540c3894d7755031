package token

type TokenType string

const (
	// Literals & Identifiers
	TokenIdent    TokenType = "IDENT"    // x, putint
	TokenInt      TokenType = "INTLIT"   // 42
	TokenChar     TokenType = "CHARLIT"  // 'a'
	TokenOperator TokenType = "OPERATOR" // +, <=, /\, \=

	// Punctuation
	TokenDot       TokenType = "DOT"       // .
	TokenColon     TokenType = "COLON"     // :
	TokenSemicolon TokenType = "SEMICOLON" // ;
	TokenComma     TokenType = "COMMA"     // ,
	TokenBecomes   TokenType = "BECOMES"   // :=
	TokenIs        TokenType = "IS"        // ~
	TokenLParen    TokenType = "LPAREN"    // (
	TokenRParen    TokenType = "RPAREN"    // )
	TokenLBracket  TokenType = "LBRACKET"  // [
	TokenRBracket  TokenType = "RBRACKET"  // ]
	TokenLBrace    TokenType = "LBRACE"    // {
	TokenRBrace    TokenType = "RBRACE"    // }

	// Reserved words
	TokenArray  TokenType = "ARRAY"
	TokenBegin  TokenType = "BEGIN"
	TokenConst  TokenType = "CONST"
	TokenDo     TokenType = "DO"
	TokenElse   TokenType = "ELSE"
	TokenEnd    TokenType = "END"
	TokenFunc   TokenType = "FUNC"
	TokenIf     TokenType = "IF"
	TokenIn     TokenType = "IN"
	TokenLet    TokenType = "LET"
	TokenOf     TokenType = "OF"
	TokenProc   TokenType = "PROC"
	TokenRecord TokenType = "RECORD"
	TokenThen   TokenType = "THEN"
	TokenTypeKw TokenType = "TYPE"
	TokenVar    TokenType = "VAR"
	TokenWhile  TokenType = "WHILE"

	// Special
	TokenEOF     TokenType = "EOF"
	TokenIllegal TokenType = "ILLEGAL"
)

type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int
}

// keywords maps identifier strings to their corresponding token types.
var keywords = map[string]TokenType{
	"array":  TokenArray,
	"begin":  TokenBegin,
	"const":  TokenConst,
	"do":     TokenDo,
	"else":   TokenElse,
	"end":    TokenEnd,
	"func":   TokenFunc,
	"if":     TokenIf,
	"in":     TokenIn,
	"let":    TokenLet,
	"of":     TokenOf,
	"proc":   TokenProc,
	"record": TokenRecord,
	"then":   TokenThen,
	"type":   TokenTypeKw,
	"var":    TokenVar,
	"while":  TokenWhile,
}

// LookupIdent checks if an identifier is a reserved word, returning the
// keyword's token type or TokenIdent if it's not a keyword.
func LookupIdent(ident string) TokenType {
	if tokType, ok := keywords[ident]; ok {
		return tokType
	}
	return TokenIdent
}
