package cant

// TokenType identifies the lexical category of a token.
type TokenType string

const (
	tokenIllegal TokenType = "ILLEGAL"
	tokenEOF     TokenType = "EOF"

	tokenIdent  TokenType = "IDENT"
	tokenInt    TokenType = "INT"
	tokenFloat  TokenType = "FLOAT"
	tokenString TokenType = "STRING"

	tokenAssign   TokenType = "="
	tokenPlus     TokenType = "+"
	tokenMinus    TokenType = "-"
	tokenBang     TokenType = "!"
	tokenAsterisk TokenType = "*"
	tokenSlash    TokenType = "/"
	tokenPercent  TokenType = "%"
	tokenLT       TokenType = "<"
	tokenGT       TokenType = ">"
	tokenLTE      TokenType = "<="
	tokenGTE      TokenType = ">="
	tokenEQ       TokenType = "=="
	tokenNotEQ    TokenType = "!="
	tokenAnd      TokenType = "&&"
	tokenOr       TokenType = "||"

	tokenComma    TokenType = ","
	tokenColon    TokenType = ":"
	tokenDot      TokenType = "."
	tokenRange    TokenType = ".."
	tokenLParen   TokenType = "("
	tokenRParen   TokenType = ")"
	tokenLBrace   TokenType = "{"
	tokenRBrace   TokenType = "}"
	tokenLBracket TokenType = "["
	tokenRBracket TokenType = "]"
	tokenArrow    TokenType = "=>"

	tokenDef    TokenType = "DEF"
	tokenEnd    TokenType = "END"
	tokenReturn TokenType = "RETURN"
	tokenFor    TokenType = "FOR"
	tokenWhile  TokenType = "WHILE"
	tokenIn     TokenType = "IN"
	tokenIf     TokenType = "IF"
	tokenElsif  TokenType = "ELSIF"
	tokenElse   TokenType = "ELSE"
	tokenBreak  TokenType = "BREAK"
	tokenNext   TokenType = "NEXT"
	tokenTry    TokenType = "TRY"
	tokenRescue TokenType = "RESCUE"
	tokenEnsure TokenType = "ENSURE"
	tokenRaise  TokenType = "RAISE"
	tokenAwait  TokenType = "AWAIT"
	tokenTrue   TokenType = "TRUE"
	tokenFalse  TokenType = "FALSE"
	tokenNil    TokenType = "NIL"
)

// Token captures lexical information for the parser.
type Token struct {
	Type    TokenType
	Literal string
	Pos     Position
}

// Position identifies a line/column location in the source text.
type Position struct {
	Line   int
	Column int
}
