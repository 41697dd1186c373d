package mathvm

import (
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Statement is one ';'-delimited clause in postfix order, as indices into the program tokens
type Statement []int

// Program is the immutable result of compilation. It is safe for concurrent executions.
type Program struct {
	source      string
	tokens      []Token
	statements  []Statement
	resultCap   int
	fingerprint [32]byte
}

func Fingerprint(source string) [32]byte {
	return blake2b.Sum256([]byte(source))
}

func newProgram(source string, tokens []Token, statements []Statement) *Program {
	ret := &Program{
		source:      source,
		tokens:      tokens,
		statements:  statements,
		fingerprint: Fingerprint(source),
	}
	for i := range tokens {
		if tokens[i].Type == TokenOperator || tokens[i].Type == TokenFunction {
			ret.resultCap++
		}
	}
	return ret
}

func (p *Program) Source() string {
	return p.source
}

func (p *Program) Fingerprint() [32]byte {
	return p.fingerprint
}

// Tokens returns a copy of the program tokens
func (p *Program) Tokens() []Token {
	ret := make([]Token, len(p.tokens))
	copy(ret, p.tokens)
	return ret
}

func (p *Program) NumStatements() int {
	return len(p.statements)
}

// Statement returns tokens of the i-th statement in postfix order
func (p *Program) Statement(i int) []Token {
	ret := make([]Token, len(p.statements[i]))
	for j, idx := range p.statements[i] {
		ret[j] = p.tokens[idx]
	}
	return ret
}

// String renders each statement in postfix notation, one per line
func (p *Program) String() string {
	var buf strings.Builder
	for i, st := range p.statements {
		if i > 0 {
			buf.WriteByte('\n')
		}
		for j, idx := range st {
			if j > 0 {
				buf.WriteByte(' ')
			}
			buf.WriteString(p.tokens[idx].String())
		}
	}
	return buf.String()
}
