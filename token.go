package mathvm

import (
	"fmt"
	"strconv"
)

type TokenType byte

const (
	TokenNumber TokenType = iota
	TokenVariable
	TokenFunction
	TokenOperator
	TokenOpenParen
	TokenCloseParen
	TokenComma
	TokenSemicolon
	TokenLock
	TokenUnlock
)

var tokenTypeNames = [...]string{
	TokenNumber:     "number",
	TokenVariable:   "variable",
	TokenFunction:   "function",
	TokenOperator:   "operator",
	TokenOpenParen:  "(",
	TokenCloseParen: ")",
	TokenComma:      ",",
	TokenSemicolon:  ";",
	TokenLock:       "{",
	TokenUnlock:     "}",
}

func (t TokenType) String() string {
	if int(t) < len(tokenTypeNames) {
		return tokenTypeNames[t]
	}
	return fmt.Sprintf("TokenType(%d)", t)
}

// Token is one lexeme of the source. Functions and operators carry an index into
// the VM function table or the operator table instead of the callable itself.
// Only DetectedArity is written after tokenization, by the compiler.
type Token struct {
	Type  TokenType
	Value float64
	// Name of a variable or a function
	Name string
	// Code indexes the function table (TokenFunction) or the operator table (TokenOperator)
	Code       int
	Precedence int
	// Arity is the declared arity of a function, < 0 means variadic
	Arity         int
	DetectedArity int
	Line          int
	Column        int
}

func (t *Token) String() string {
	switch t.Type {
	case TokenNumber:
		return strconv.FormatFloat(t.Value, 'g', -1, 64)
	case TokenVariable:
		return t.Name
	case TokenFunction:
		return fmt.Sprintf("%s/%d", t.Name, t.DetectedArity)
	case TokenOperator:
		return operators[t.Code].sym
	}
	return t.Type.String()
}

func numberToken(v float64, line, col int) Token {
	return Token{Type: TokenNumber, Value: v, Line: line, Column: col}
}

func operatorToken(code opCode, line, col int) Token {
	return Token{
		Type:       TokenOperator,
		Code:       int(code),
		Precedence: operators[code].precedence,
		Line:       line,
		Column:     col,
	}
}
