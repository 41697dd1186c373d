package mathvm

import (
	"fmt"

	"github.com/gammazero/deque"
)

type compiler struct {
	tokens []Token
	// indices into tokens
	output    deque.Deque[int]
	operators deque.Deque[int]
	// one entry per open function call
	functionsArgsStack       []int
	functionHasFirstArgStack []bool
	locked                   bool
	statements               []Statement
}

// compile turns the token sequence into postfix statements. It fills DetectedArity of function tokens in place.
func compile(tokens []Token) ([]Statement, error) {
	c := &compiler{
		tokens:     tokens,
		statements: make([]Statement, 0, 4),
	}
	if err := c.run(); err != nil {
		return nil, err
	}
	return c.statements, nil
}

func (c *compiler) run() error {
	for i := range c.tokens {
		if err := c.step(i); err != nil {
			return err
		}
	}
	if err := c.popAll(); err != nil {
		return err
	}
	c.emitStatement()
	if c.locked {
		return fmt.Errorf("Lock without Unlock")
	}
	return nil
}

func (c *compiler) markFirstArg() {
	if n := len(c.functionHasFirstArgStack); n > 0 {
		c.functionHasFirstArgStack[n-1] = true
	}
}

func (c *compiler) topIs(t TokenType) bool {
	return c.operators.Len() > 0 && c.tokens[c.operators.Back()].Type == t
}

func (c *compiler) step(i int) error {
	tok := &c.tokens[i]
	switch tok.Type {
	case TokenNumber, TokenVariable:
		c.markFirstArg()
		c.output.PushBack(i)

	case TokenFunction:
		c.operators.PushBack(i)
		c.markFirstArg()
		c.functionHasFirstArgStack = append(c.functionHasFirstArgStack, false)
		c.functionsArgsStack = append(c.functionsArgsStack, 0)

	case TokenOperator:
		for c.topIs(TokenOperator) && c.tokens[c.operators.Back()].Precedence <= tok.Precedence {
			c.output.PushBack(c.operators.PopBack())
		}
		c.operators.PushBack(i)

	case TokenComma:
		for c.operators.Len() > 0 && !c.topIs(TokenOpenParen) {
			c.output.PushBack(c.operators.PopBack())
		}
		n := len(c.functionHasFirstArgStack)
		if n == 0 || !c.functionHasFirstArgStack[n-1] {
			return fmt.Errorf("Commas are expected only after the first argument of a function")
		}
		c.functionsArgsStack[n-1]++
		c.functionHasFirstArgStack[n-1] = false

	case TokenOpenParen:
		c.operators.PushBack(i)

	case TokenCloseParen:
		for c.operators.Len() > 0 && !c.topIs(TokenOpenParen) {
			c.output.PushBack(c.operators.PopBack())
		}
		if !c.topIs(TokenOpenParen) {
			return fmt.Errorf("Expected open parenthesis")
		}
		c.operators.PopBack()
		if c.topIs(TokenFunction) {
			return c.closeFunction()
		}

	case TokenSemicolon:
		if err := c.popAll(); err != nil {
			return err
		}
		c.emitStatement()

	case TokenLock, TokenUnlock:
		return c.lockBoundary(i)
	}
	return nil
}

func (c *compiler) closeFunction() error {
	fi := c.operators.PopBack()
	fun := &c.tokens[fi]

	n := len(c.functionsArgsStack)
	fun.DetectedArity = c.functionsArgsStack[n-1]
	if c.functionHasFirstArgStack[n-1] {
		fun.DetectedArity++
	}
	c.functionsArgsStack = c.functionsArgsStack[:n-1]
	c.functionHasFirstArgStack = c.functionHasFirstArgStack[:n-1]

	if fun.Arity >= 0 && fun.DetectedArity != fun.Arity {
		plural := "s"
		if fun.Arity == 1 {
			plural = ""
		}
		return fmt.Errorf("Function %s expects %d argument%s (detected %d)", fun.Name, fun.Arity, plural, fun.DetectedArity)
	}
	c.output.PushBack(fi)
	return nil
}

// popAll moves the whole operator stack to the output
func (c *compiler) popAll() error {
	for c.operators.Len() > 0 {
		if c.topIs(TokenOpenParen) {
			return fmt.Errorf("Mismatched parenthesis")
		}
		c.output.PushBack(c.operators.PopBack())
	}
	return nil
}

func (c *compiler) emitStatement() {
	st := make(Statement, c.output.Len())
	for i := range st {
		st[i] = c.output.At(i)
	}
	c.statements = append(c.statements, st)
	c.output.Clear()
	c.operators.Clear()
	c.functionsArgsStack = c.functionsArgsStack[:0]
	c.functionHasFirstArgStack = c.functionHasFirstArgStack[:0]
}

// lockBoundary emits the Lock/Unlock sentinel as its own statement. Pending operands are closed into a
// statement first, pending operators are an error.
func (c *compiler) lockBoundary(i int) error {
	isLock := c.tokens[i].Type == TokenLock
	name := "Unlock"
	if isLock {
		name = "Lock"
	}
	if c.operators.Len() > 0 {
		return fmt.Errorf("Unexpected %s", name)
	}
	if c.output.Len() > 0 {
		c.emitStatement()
	}
	switch {
	case isLock && c.locked:
		return fmt.Errorf("Lock without Unlock")
	case !isLock && !c.locked:
		return fmt.Errorf("Unlock without Lock")
	}
	c.locked = isLock
	c.statements = append(c.statements, Statement{i})
	return nil
}
