package mathvm

import (
	"fmt"
	"strconv"
	"strings"
)

// symbolTable resolves identifiers while tokenizing
type symbolTable interface {
	lookupFunction(name string) (code int, arity int, ok bool)
	lookupConst(name string) (float64, bool)
}

type tokenizer struct {
	syms   symbolTable
	src    []rune
	pos    int
	line   int
	column int
	// pending identifier
	acc       strings.Builder
	accLine   int
	accColumn int
	// sign applied to the next operand
	sign      float64
	inComment bool
	parens    int
	locked    bool
	tokens    []Token
}

func tokenize(source string, syms symbolTable) ([]Token, error) {
	tz := &tokenizer{
		syms:   syms,
		src:    []rune(source),
		line:   1,
		sign:   1,
		tokens: make([]Token, 0, len(source)/2+1),
	}
	if err := tz.run(); err != nil {
		return nil, err
	}
	return tz.tokens, nil
}

func (tz *tokenizer) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("%s @ line %d, column %d", fmt.Sprintf(format, args...), tz.line, tz.column)
}

func (tz *tokenizer) run() error {
	for tz.pos < len(tz.src) {
		c := tz.src[tz.pos]
		tz.pos++
		tz.column++

		if tz.inComment {
			if c == '\n' || c == '#' {
				tz.inComment = false
			}
			if c == '\n' {
				tz.newLine()
			}
			continue
		}

		var err error
		switch {
		case isDigit(c) && tz.acc.Len() > 0:
			// digits glued to an identifier extend it
			tz.acc.WriteRune(c)
		case isDigit(c) || c == '.':
			err = tz.number(c)
		case isLetter(c):
			err = tz.letter(c)
		case c == '-' || c == '+':
			err = tz.signOrOperator(c)
		case c == '*':
			err = tz.operator(opMul)
		case c == '/':
			err = tz.operator(opDiv)
		case c == '%':
			err = tz.operator(opMod)
		case c == '=':
			err = tz.operator(opAssign)
		case c == '(':
			if err = tz.flush(false); err == nil {
				if err = tz.applyPendingSign(); err == nil {
					tz.parens++
					err = tz.add(Token{Type: TokenOpenParen})
				}
			}
		case c == ')':
			if tz.parens > 0 {
				tz.parens--
			}
			err = tz.punctuation(TokenCloseParen)
		case c == ',':
			err = tz.punctuation(TokenComma)
		case c == ';':
			err = tz.punctuation(TokenSemicolon)
		case c == '{':
			err = tz.lock()
		case c == '}':
			err = tz.unlock()
		case c == '#':
			err = tz.flush(false)
			tz.inComment = true
		case c == ' ' || c == '\t' || c == '\r':
			err = tz.flush(false)
		case c == '\n':
			err = tz.flush(false)
			tz.newLine()
		default:
			err = tz.errorf("Unexpected char: %c", c)
		}
		if err != nil {
			return err
		}
	}
	if err := tz.flush(true); err != nil {
		return err
	}
	if n := len(tz.tokens); n > 0 && tz.tokens[n-1].Type == TokenFunction {
		return tz.errorf("Expected open parenthesis after function %s", tz.tokens[n-1].Name)
	}
	return nil
}

func (tz *tokenizer) newLine() {
	tz.line++
	tz.column = 0
}

// add appends a token, rejecting anything but '(' right after a function name
func (tz *tokenizer) add(tok Token) error {
	if tok.Line == 0 {
		tok.Line, tok.Column = tz.line, tz.column
	}
	if n := len(tz.tokens); n > 0 {
		prev := &tz.tokens[n-1]
		if prev.Type == TokenFunction && tok.Type != TokenOpenParen {
			return tz.errorf("Expected open parenthesis after function %s", prev.Name)
		}
	}
	tz.tokens = append(tz.tokens, tok)
	return nil
}

// flush resolves the pending identifier into a function, constant or variable token
func (tz *tokenizer) flush(last bool) error {
	if tz.acc.Len() == 0 {
		return nil
	}
	name := tz.acc.String()
	tz.acc.Reset()

	if code, arity, ok := tz.syms.lookupFunction(name); ok {
		if last {
			return tz.errorf("Expected open parenthesis after function %s", name)
		}
		return tz.add(Token{
			Type:   TokenFunction,
			Name:   name,
			Code:   code,
			Arity:  arity,
			Line:   tz.accLine,
			Column: tz.accColumn,
		})
	}
	if v, ok := tz.syms.lookupConst(name); ok {
		return tz.add(numberToken(v, tz.accLine, tz.accColumn))
	}
	return tz.add(Token{Type: TokenVariable, Name: name, Line: tz.accLine, Column: tz.accColumn})
}

// unaryPosition is true where '+' and '-' cannot be binary operators
func (tz *tokenizer) unaryPosition() bool {
	if len(tz.tokens) == 0 {
		return true
	}
	switch tz.tokens[len(tz.tokens)-1].Type {
	case TokenOpenParen, TokenOperator, TokenComma, TokenSemicolon, TokenLock, TokenUnlock:
		return true
	}
	return false
}

func (tz *tokenizer) signOrOperator(c rune) error {
	if err := tz.flush(false); err != nil {
		return err
	}
	if tz.unaryPosition() {
		if c == '-' {
			tz.sign = -tz.sign
		}
		return nil
	}
	tz.sign = 1
	if c == '-' {
		return tz.add(operatorToken(opSub, tz.line, tz.column))
	}
	return tz.add(operatorToken(opAdd, tz.line, tz.column))
}

// applyPendingSign turns a pending minus in front of a non-literal operand into "-1 neg"
func (tz *tokenizer) applyPendingSign() error {
	if tz.sign > 0 {
		return nil
	}
	tz.sign = 1
	if err := tz.add(numberToken(-1, tz.line, tz.column)); err != nil {
		return err
	}
	return tz.add(operatorToken(opNegate, tz.line, tz.column))
}

func (tz *tokenizer) letter(c rune) error {
	if tz.acc.Len() == 0 {
		if err := tz.applyPendingSign(); err != nil {
			return err
		}
		tz.accLine, tz.accColumn = tz.line, tz.column
	}
	tz.acc.WriteRune(c)
	return nil
}

func (tz *tokenizer) operator(code opCode) error {
	if err := tz.flush(false); err != nil {
		return err
	}
	tz.sign = 1
	return tz.add(operatorToken(code, tz.line, tz.column))
}

func (tz *tokenizer) punctuation(t TokenType) error {
	if err := tz.flush(false); err != nil {
		return err
	}
	tz.sign = 1
	return tz.add(Token{Type: t})
}

func (tz *tokenizer) lock() error {
	if err := tz.flush(false); err != nil {
		return err
	}
	if tz.locked || tz.parens > 0 {
		return tz.errorf("Unexpected Lock")
	}
	tz.locked = true
	tz.sign = 1
	return tz.add(Token{Type: TokenLock})
}

func (tz *tokenizer) unlock() error {
	if err := tz.flush(false); err != nil {
		return err
	}
	if tz.parens > 0 {
		return tz.errorf("Unexpected Unlock")
	}
	if !tz.locked {
		return tz.errorf("Unlock without Lock")
	}
	tz.locked = false
	tz.sign = 1
	return tz.add(Token{Type: TokenUnlock})
}

// number scans digits, an optional fraction and an optional exponent.
// The first rune is already consumed.
func (tz *tokenizer) number(first rune) error {
	if err := tz.flush(false); err != nil {
		return err
	}
	line, col := tz.line, tz.column
	start := tz.pos - 1

	if first != '.' {
		tz.skipDigits()
		if tz.peek() == '.' {
			tz.advance()
			tz.skipDigits()
		}
	} else {
		tz.skipDigits()
	}
	if p := tz.peek(); p == 'e' || p == 'E' {
		save, saveCol := tz.pos, tz.column
		tz.advance()
		if s := tz.peek(); s == '+' || s == '-' {
			tz.advance()
		}
		if !isDigit(tz.peek()) {
			// not an exponent, the 'e' belongs to whatever follows
			tz.pos, tz.column = save, saveCol
		} else {
			tz.skipDigits()
		}
	}
	literal := string(tz.src[start:tz.pos])
	v, err := strconv.ParseFloat(literal, 64)
	if err != nil {
		return fmt.Errorf("Invalid number %s @ line %d, column %d", literal, line, col)
	}
	tok := numberToken(v*tz.sign, line, col)
	tz.sign = 1
	return tz.add(tok)
}

func (tz *tokenizer) peek() rune {
	if tz.pos < len(tz.src) {
		return tz.src[tz.pos]
	}
	return 0
}

func (tz *tokenizer) advance() {
	tz.pos++
	tz.column++
}

func (tz *tokenizer) skipDigits() {
	for isDigit(tz.peek()) {
		tz.advance()
	}
}

func isDigit(c rune) bool {
	return c >= '0' && c <= '9'
}

func isLetter(c rune) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || c == '_'
}
