package cant

import (
	"fmt"
	"strconv"
	"unicode"
	"unicode/utf8"
)

// parseError is a single syntax problem found while parsing.
type parseError struct {
	pos Position
	msg string
}

type prefixParseFn func() Expression

type infixParseFn func(Expression) Expression

const (
	lowestPrec = iota
	precOr
	precAnd
	precEquality
	precComparison
	precRange
	precSum
	precProduct
	precPrefix
	precCall
)

var precedences = map[TokenType]int{
	tokenOr:       precOr,
	tokenAnd:      precAnd,
	tokenEQ:       precEquality,
	tokenNotEQ:    precEquality,
	tokenLT:       precComparison,
	tokenGT:       precComparison,
	tokenLTE:      precComparison,
	tokenGTE:      precComparison,
	tokenRange:    precRange,
	tokenPlus:     precSum,
	tokenMinus:    precSum,
	tokenAsterisk: precProduct,
	tokenSlash:    precProduct,
	tokenPercent:  precProduct,
	tokenLParen:   precCall,
	tokenDot:      precCall,
	tokenLBracket: precCall,
}

type parser struct {
	lexer *lexer

	curToken  Token
	peekToken Token

	errors []parseError

	prefixFns map[TokenType]prefixParseFn
	infixFns  map[TokenType]infixParseFn
}

func newParser(input string) *parser {
	p := &parser{lexer: newLexer(input)}

	p.prefixFns = map[TokenType]prefixParseFn{
		tokenIdent:    p.parseIdentifier,
		tokenInt:      p.parseIntLiteral,
		tokenFloat:    p.parseFloatLiteral,
		tokenString:   p.parseStringLiteral,
		tokenTrue:     p.parseBoolLiteral,
		tokenFalse:    p.parseBoolLiteral,
		tokenNil:      p.parseNilLiteral,
		tokenBang:     p.parsePrefixExpression,
		tokenMinus:    p.parsePrefixExpression,
		tokenLParen:   p.parseGroupedExpression,
		tokenLBracket: p.parseArrayLiteral,
		tokenLBrace:   p.parseHashLiteral,
		tokenAwait:    p.parseAwaitExpression,
	}

	p.infixFns = map[TokenType]infixParseFn{
		tokenPlus:     p.parseInfixExpression,
		tokenMinus:    p.parseInfixExpression,
		tokenAsterisk: p.parseInfixExpression,
		tokenSlash:    p.parseInfixExpression,
		tokenPercent:  p.parseInfixExpression,
		tokenEQ:       p.parseInfixExpression,
		tokenNotEQ:    p.parseInfixExpression,
		tokenLT:       p.parseInfixExpression,
		tokenGT:       p.parseInfixExpression,
		tokenLTE:      p.parseInfixExpression,
		tokenGTE:      p.parseInfixExpression,
		tokenAnd:      p.parseInfixExpression,
		tokenOr:       p.parseInfixExpression,
		tokenRange:    p.parseRangeExpression,
		tokenLParen:   p.parseCallExpression,
		tokenDot:      p.parseMemberExpression,
		tokenLBracket: p.parseIndexExpression,
	}

	p.nextToken()
	p.nextToken()

	return p
}

func (p *parser) ParseProgram() (*Program, []parseError) {
	program := &Program{}

	for p.curToken.Type != tokenEOF {
		stmt := p.parseStatement()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
		p.nextToken()
	}

	return program, p.errors
}

func (p *parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.lexer.NextToken()
}

func (p *parser) curPrecedence() int {
	if prec, ok := precedences[p.curToken.Type]; ok {
		return prec
	}
	return lowestPrec
}

func (p *parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return lowestPrec
}

func (p *parser) expectPeek(tt TokenType) bool {
	if p.peekToken.Type == tt {
		p.nextToken()
		return true
	}
	p.errorf(p.peekToken.Pos, "expected %s, got %s", tt, p.peekToken.Type)
	return false
}

func (p *parser) errorf(pos Position, format string, args ...any) {
	p.errors = append(p.errors, parseError{pos: pos, msg: fmt.Sprintf(format, args...)})
}

func (p *parser) errorUnexpected() {
	p.errorf(p.curToken.Pos, "unexpected token %s", p.curToken.Type)
}

// startsExpression reports whether a token of the given type can begin
// an expression. Driven by the prefix registration table.
func (p *parser) startsExpression(tt TokenType) bool {
	_, ok := p.prefixFns[tt]
	return ok
}

func (p *parser) parseStatement() Statement {
	switch p.curToken.Type {
	case tokenDef:
		return p.parseFunctionStatement()
	case tokenReturn:
		return p.parseReturnStatement()
	case tokenRaise:
		return p.parseRaiseStatement()
	case tokenIf:
		return p.parseIfStatement()
	case tokenWhile:
		return p.parseWhileStatement()
	case tokenFor:
		return p.parseForStatement()
	case tokenTry:
		return p.parseTryStatement()
	case tokenBreak:
		return &BreakStmt{position: p.curToken.Pos}
	case tokenNext:
		return &NextStmt{position: p.curToken.Pos}
	case tokenIdent:
		if p.curToken.Literal == "assert" && p.startsExpression(p.peekToken.Type) {
			return p.parseAssertStatement()
		}
		return p.parseExpressionOrAssignStatement()
	default:
		return p.parseExpressionOrAssignStatement()
	}
}

func (p *parser) parseFunctionStatement() Statement {
	stmt := &FunctionStmt{position: p.curToken.Pos}

	if !p.expectPeek(tokenIdent) {
		return nil
	}
	stmt.Name = p.curToken.Literal

	if !p.expectPeek(tokenLParen) {
		return nil
	}

	if p.peekToken.Type != tokenRParen {
		if !p.expectPeek(tokenIdent) {
			return nil
		}
		stmt.Params = append(stmt.Params, p.curToken.Literal)

		for p.peekToken.Type == tokenComma {
			p.nextToken()
			if !p.expectPeek(tokenIdent) {
				return nil
			}
			stmt.Params = append(stmt.Params, p.curToken.Literal)
		}
	}

	if !p.expectPeek(tokenRParen) {
		return nil
	}

	stmt.Body = p.parseBlock(tokenEnd)
	if p.curToken.Type != tokenEnd {
		p.errorf(p.curToken.Pos, "expected %s, got %s", tokenEnd, p.curToken.Type)
		return nil
	}

	return stmt
}

func (p *parser) parseReturnStatement() Statement {
	stmt := &ReturnStmt{position: p.curToken.Pos}

	if p.startsExpression(p.peekToken.Type) {
		p.nextToken()
		stmt.Value = p.parseExpression(lowestPrec)
	}

	return stmt
}

func (p *parser) parseRaiseStatement() Statement {
	stmt := &RaiseStmt{position: p.curToken.Pos}

	if p.startsExpression(p.peekToken.Type) {
		p.nextToken()
		stmt.Value = p.parseExpression(lowestPrec)
	}

	return stmt
}

func (p *parser) parseAssertStatement() Statement {
	stmt := &AssertStmt{position: p.curToken.Pos}

	p.nextToken()
	stmt.Condition = p.parseExpression(lowestPrec)
	if stmt.Condition == nil {
		return nil
	}

	if p.peekToken.Type == tokenComma {
		p.nextToken()
		p.nextToken()
		stmt.Message = p.parseExpression(lowestPrec)
	}

	return stmt
}

func (p *parser) parseIfStatement() Statement {
	stmt := &IfStmt{position: p.curToken.Pos}

	p.nextToken()
	stmt.Condition = p.parseExpression(lowestPrec)
	if stmt.Condition == nil {
		return nil
	}

	stmt.Consequent = p.parseBlock(tokenElsif, tokenElse, tokenEnd)

	for p.curToken.Type == tokenElsif {
		clause := &IfStmt{position: p.curToken.Pos}
		p.nextToken()
		clause.Condition = p.parseExpression(lowestPrec)
		if clause.Condition == nil {
			return nil
		}
		clause.Consequent = p.parseBlock(tokenElsif, tokenElse, tokenEnd)
		stmt.ElseIf = append(stmt.ElseIf, clause)
	}

	if p.curToken.Type == tokenElse {
		stmt.Alternate = p.parseBlock(tokenEnd)
	}

	if p.curToken.Type != tokenEnd {
		p.errorf(p.curToken.Pos, "expected %s, got %s", tokenEnd, p.curToken.Type)
		return nil
	}

	return stmt
}

func (p *parser) parseWhileStatement() Statement {
	stmt := &WhileStmt{position: p.curToken.Pos}

	p.nextToken()
	stmt.Condition = p.parseExpression(lowestPrec)
	if stmt.Condition == nil {
		return nil
	}

	stmt.Body = p.parseBlock(tokenEnd)
	if p.curToken.Type != tokenEnd {
		p.errorf(p.curToken.Pos, "expected %s, got %s", tokenEnd, p.curToken.Type)
		return nil
	}

	return stmt
}

func (p *parser) parseForStatement() Statement {
	stmt := &ForStmt{position: p.curToken.Pos}

	if !p.expectPeek(tokenIdent) {
		return nil
	}
	stmt.Iterator = p.curToken.Literal

	if !p.expectPeek(tokenIn) {
		return nil
	}

	p.nextToken()
	stmt.Iterable = p.parseExpression(lowestPrec)
	if stmt.Iterable == nil {
		return nil
	}

	stmt.Body = p.parseBlock(tokenEnd)
	if p.curToken.Type != tokenEnd {
		p.errorf(p.curToken.Pos, "expected %s, got %s", tokenEnd, p.curToken.Type)
		return nil
	}

	return stmt
}

// parseTryStatement parses try/rescue/ensure/end. An identifier right
// after rescue names an error kind only when it starts with an
// uppercase letter; anything else is the first statement of the
// handler body. Kind names follow that convention (RuntimeError,
// TypeError, CapabilityError).
func (p *parser) parseTryStatement() Statement {
	stmt := &TryStmt{position: p.curToken.Pos}

	stmt.Body = p.parseBlock(tokenRescue, tokenEnsure, tokenEnd)

	if p.curToken.Type == tokenRescue {
		stmt.HasRescue = true

		if p.peekToken.Type == tokenIdent && startsUpper(p.peekToken.Literal) {
			p.nextToken()
			stmt.RescueKind = p.curToken.Literal
		}

		if p.peekToken.Type == tokenArrow {
			p.nextToken()
			if !p.expectPeek(tokenIdent) {
				return nil
			}
			stmt.RescueVar = p.curToken.Literal
		}

		stmt.Rescue = p.parseBlock(tokenEnsure, tokenEnd)
	}

	if p.curToken.Type == tokenEnsure {
		stmt.Ensure = p.parseBlock(tokenEnd)
	}

	if p.curToken.Type != tokenEnd {
		p.errorf(p.curToken.Pos, "expected %s, got %s", tokenEnd, p.curToken.Type)
		return nil
	}

	return stmt
}

func startsUpper(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(r)
}

func (p *parser) parseExpressionOrAssignStatement() Statement {
	pos := p.curToken.Pos

	expr := p.parseExpression(lowestPrec)
	if expr == nil {
		return nil
	}

	if p.peekToken.Type == tokenAssign && p.peekToken.Pos.Line == p.curToken.Pos.Line && isAssignable(expr) {
		p.nextToken()
		p.nextToken()
		value := p.parseExpression(lowestPrec)
		if value == nil {
			return nil
		}
		return &AssignStmt{Target: expr, Value: value, position: pos}
	}

	return &ExprStmt{Value: expr, position: pos}
}

func isAssignable(expr Expression) bool {
	switch expr.(type) {
	case *Identifier, *MemberExpr, *IndexExpr:
		return true
	}
	return false
}

// parseBlock consumes statements until one of the stop tokens or EOF.
// It leaves curToken on the stop token.
func (p *parser) parseBlock(stop ...TokenType) []Statement {
	stopSet := make(map[TokenType]bool, len(stop))
	for _, tt := range stop {
		stopSet[tt] = true
	}

	var stmts []Statement

	p.nextToken()
	for !stopSet[p.curToken.Type] && p.curToken.Type != tokenEOF {
		stmt := p.parseStatement()
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
		p.nextToken()
	}

	return stmts
}

func (p *parser) parseExpression(prec int) Expression {
	prefix := p.prefixFns[p.curToken.Type]
	if prefix == nil {
		p.errorUnexpected()
		return nil
	}
	left := prefix()

	for left != nil && prec < p.peekPrecedence() {
		// A line break ends the expression. Without this, a line
		// opening with (, [, . or an operator glues onto the
		// previous statement as a call, index, or operation.
		if p.peekToken.Pos.Line != p.curToken.Pos.Line {
			return left
		}
		infix := p.infixFns[p.peekToken.Type]
		if infix == nil {
			return left
		}
		p.nextToken()
		left = infix(left)
	}

	return left
}

func (p *parser) parseIdentifier() Expression {
	return &Identifier{Name: p.curToken.Literal, position: p.curToken.Pos}
}

func (p *parser) parseIntLiteral() Expression {
	value, err := strconv.ParseInt(p.curToken.Literal, 10, 64)
	if err != nil {
		p.errorf(p.curToken.Pos, "invalid integer literal %q", p.curToken.Literal)
		return nil
	}
	return &IntLiteral{Value: value, position: p.curToken.Pos}
}

func (p *parser) parseFloatLiteral() Expression {
	value, err := strconv.ParseFloat(p.curToken.Literal, 64)
	if err != nil {
		p.errorf(p.curToken.Pos, "invalid float literal %q", p.curToken.Literal)
		return nil
	}
	return &FloatLiteral{Value: value, position: p.curToken.Pos}
}

func (p *parser) parseStringLiteral() Expression {
	return &StringLiteral{Value: p.curToken.Literal, position: p.curToken.Pos}
}

func (p *parser) parseBoolLiteral() Expression {
	return &BoolLiteral{Value: p.curToken.Type == tokenTrue, position: p.curToken.Pos}
}

func (p *parser) parseNilLiteral() Expression {
	return &NilLiteral{position: p.curToken.Pos}
}

func (p *parser) parsePrefixExpression() Expression {
	expr := &UnaryExpr{Operator: p.curToken.Literal, position: p.curToken.Pos}

	p.nextToken()
	expr.Operand = p.parseExpression(precPrefix)
	if expr.Operand == nil {
		return nil
	}

	return expr
}

func (p *parser) parseAwaitExpression() Expression {
	expr := &AwaitExpr{position: p.curToken.Pos}

	p.nextToken()
	expr.Value = p.parseExpression(precPrefix)
	if expr.Value == nil {
		return nil
	}

	return expr
}

func (p *parser) parseGroupedExpression() Expression {
	p.nextToken()

	expr := p.parseExpression(lowestPrec)
	if expr == nil {
		return nil
	}

	if !p.expectPeek(tokenRParen) {
		return nil
	}

	return expr
}

func (p *parser) parseArrayLiteral() Expression {
	array := &ArrayLiteral{position: p.curToken.Pos}

	if p.peekToken.Type == tokenRBracket {
		p.nextToken()
		return array
	}

	p.nextToken()
	item := p.parseExpression(lowestPrec)
	if item == nil {
		return nil
	}
	array.Items = append(array.Items, item)

	for p.peekToken.Type == tokenComma {
		p.nextToken()
		p.nextToken()
		item := p.parseExpression(lowestPrec)
		if item == nil {
			return nil
		}
		array.Items = append(array.Items, item)
	}

	if !p.expectPeek(tokenRBracket) {
		return nil
	}

	return array
}

func (p *parser) parseHashLiteral() Expression {
	hash := &HashLiteral{position: p.curToken.Pos}

	if p.peekToken.Type == tokenRBrace {
		p.nextToken()
		return hash
	}

	p.nextToken()
	pair, ok := p.parseHashPair()
	if !ok {
		return nil
	}
	hash.Pairs = append(hash.Pairs, pair)

	for p.peekToken.Type == tokenComma {
		p.nextToken()
		p.nextToken()
		pair, ok := p.parseHashPair()
		if !ok {
			return nil
		}
		hash.Pairs = append(hash.Pairs, pair)
	}

	if !p.expectPeek(tokenRBrace) {
		return nil
	}

	return hash
}

// Hash keys are bare identifiers or string literals; both mean the
// literal string key.
func (p *parser) parseHashPair() (HashPair, bool) {
	var key string
	switch p.curToken.Type {
	case tokenIdent, tokenString:
		key = p.curToken.Literal
	default:
		p.errorf(p.curToken.Pos, "expected hash key, got %s", p.curToken.Type)
		return HashPair{}, false
	}

	if !p.expectPeek(tokenColon) {
		return HashPair{}, false
	}

	p.nextToken()
	value := p.parseExpression(lowestPrec)
	if value == nil {
		return HashPair{}, false
	}

	return HashPair{Key: key, Value: value}, true
}

func (p *parser) parseInfixExpression(left Expression) Expression {
	expr := &BinaryExpr{Operator: p.curToken.Literal, Left: left, position: p.curToken.Pos}

	prec := p.curPrecedence()
	p.nextToken()
	expr.Right = p.parseExpression(prec)
	if expr.Right == nil {
		return nil
	}

	return expr
}

func (p *parser) parseRangeExpression(left Expression) Expression {
	expr := &RangeExpr{Start: left, position: p.curToken.Pos}

	prec := p.curPrecedence()
	p.nextToken()
	expr.End = p.parseExpression(prec)
	if expr.End == nil {
		return nil
	}

	return expr
}

func (p *parser) parseCallExpression(callee Expression) Expression {
	call := &CallExpr{Callee: callee, position: p.curToken.Pos}

	if p.peekToken.Type == tokenRParen {
		p.nextToken()
		return call
	}

	p.nextToken()
	if !p.parseCallArgument(call) {
		return nil
	}

	for p.peekToken.Type == tokenComma {
		p.nextToken()
		p.nextToken()
		if !p.parseCallArgument(call) {
			return nil
		}
	}

	if !p.expectPeek(tokenRParen) {
		return nil
	}

	return call
}

func (p *parser) parseCallArgument(call *CallExpr) bool {
	if p.curToken.Type == tokenIdent && p.peekToken.Type == tokenColon {
		name := p.curToken.Literal
		p.nextToken()
		p.nextToken()
		value := p.parseExpression(lowestPrec)
		if value == nil {
			return false
		}
		call.KwArgs = append(call.KwArgs, KeywordArg{Name: name, Value: value})
		return true
	}

	value := p.parseExpression(lowestPrec)
	if value == nil {
		return false
	}
	call.Args = append(call.Args, value)
	return true
}

func (p *parser) parseMemberExpression(object Expression) Expression {
	expr := &MemberExpr{Object: object, position: p.curToken.Pos}

	if !p.expectPeek(tokenIdent) {
		return nil
	}
	expr.Property = p.curToken.Literal

	return expr
}

func (p *parser) parseIndexExpression(object Expression) Expression {
	expr := &IndexExpr{Object: object, position: p.curToken.Pos}

	p.nextToken()
	expr.Index = p.parseExpression(lowestPrec)
	if expr.Index == nil {
		return nil
	}

	if !p.expectPeek(tokenRBracket) {
		return nil
	}

	return expr
}
