package mathvm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func tokenTypes(tokens []Token) []TokenType {
	ret := make([]TokenType, len(tokens))
	for i := range tokens {
		ret[i] = tokens[i].Type
	}
	return ret
}

func mustTokenize(t *testing.T, src string) []Token {
	vm := New()
	t.Helper()
	tz := vm.registryMutex.RLock()
	defer vm.registryMutex.RUnlock(tz)
	ret, err := tokenize(src, vm)
	require.NoError(t, err)
	return ret
}

func tokenizeErr(src string) error {
	vm := New()
	tz := vm.registryMutex.RLock()
	defer vm.registryMutex.RUnlock(tz)
	_, err := tokenize(src, vm)
	return err
}

func TestTokenize(t *testing.T) {
	t.Run("numbers and operators", func(t *testing.T) {
		tokens := mustTokenize(t, "1 + 2 * 3")
		require.EqualValues(t, []TokenType{TokenNumber, TokenOperator, TokenNumber, TokenOperator, TokenNumber}, tokenTypes(tokens))
		require.EqualValues(t, 1, tokens[0].Value)
		require.EqualValues(t, precedenceAdd, tokens[1].Precedence)
		require.EqualValues(t, precedenceMul, tokens[3].Precedence)
	})
	t.Run("empty", func(t *testing.T) {
		require.EqualValues(t, 0, len(mustTokenize(t, "")))
		require.EqualValues(t, 0, len(mustTokenize(t, "  \n\t ")))
	})
	t.Run("numbers", func(t *testing.T) {
		for src, exp := range map[string]float64{
			"17":       17,
			"3.5":      3.5,
			".25":      0.25,
			"2.5e10":   2.5e10,
			"2.5E-2":   0.025,
			"1e+3":     1000,
			"-3.5":     -3.5,
			"--2":      2,
			"+4":       4,
			"- 3":      -3,
			"1000.123": 1000.123,
		} {
			tokens := mustTokenize(t, src)
			require.EqualValues(t, 1, len(tokens), src)
			require.EqualValues(t, TokenNumber, tokens[0].Type, src)
			require.InDelta(t, exp, tokens[0].Value, 1e-12, src)
		}
	})
	t.Run("binary minus", func(t *testing.T) {
		tokens := mustTokenize(t, "x-3")
		require.EqualValues(t, []TokenType{TokenVariable, TokenOperator, TokenNumber}, tokenTypes(tokens))
		require.EqualValues(t, 3, tokens[2].Value)

		tokens = mustTokenize(t, "(1)-3")
		require.EqualValues(t, TokenOperator, tokens[3].Type)
		require.EqualValues(t, 3, tokens[4].Value)
	})
	t.Run("unary minus after operator", func(t *testing.T) {
		tokens := mustTokenize(t, "2*-3")
		require.EqualValues(t, []TokenType{TokenNumber, TokenOperator, TokenNumber}, tokenTypes(tokens))
		require.EqualValues(t, -3, tokens[2].Value)

		tokens = mustTokenize(t, "min(1,-3)")
		require.EqualValues(t, -3, tokens[4].Value)
	})
	t.Run("unary minus before identifier", func(t *testing.T) {
		tokens := mustTokenize(t, "-x")
		require.EqualValues(t, []TokenType{TokenNumber, TokenOperator, TokenVariable}, tokenTypes(tokens))
		require.EqualValues(t, -1, tokens[0].Value)
		require.EqualValues(t, precedenceNegate, tokens[1].Precedence)
	})
	t.Run("identifiers", func(t *testing.T) {
		tokens := mustTokenize(t, "x17 = var_2")
		require.EqualValues(t, []TokenType{TokenVariable, TokenOperator, TokenVariable}, tokenTypes(tokens))
		require.EqualValues(t, "x17", tokens[0].Name)
		require.EqualValues(t, "var_2", tokens[2].Name)
	})
	t.Run("point flushes identifier", func(t *testing.T) {
		tokens := mustTokenize(t, "x.5")
		require.EqualValues(t, []TokenType{TokenVariable, TokenNumber}, tokenTypes(tokens))
		require.EqualValues(t, 0.5, tokens[1].Value)
	})
	t.Run("functions", func(t *testing.T) {
		tokens := mustTokenize(t, "pow(2, 3)")
		require.EqualValues(t, []TokenType{TokenFunction, TokenOpenParen, TokenNumber, TokenComma, TokenNumber, TokenCloseParen}, tokenTypes(tokens))
		require.EqualValues(t, "pow", tokens[0].Name)
		require.EqualValues(t, 2, tokens[0].Arity)
	})
	t.Run("constants", func(t *testing.T) {
		tokens := mustTokenize(t, "PI")
		require.EqualValues(t, 1, len(tokens))
		require.EqualValues(t, TokenNumber, tokens[0].Type)
	})
	t.Run("comments", func(t *testing.T) {
		tokens := mustTokenize(t, "# hello # 17")
		require.EqualValues(t, 1, len(tokens))
		require.EqualValues(t, 17, tokens[0].Value)

		tokens = mustTokenize(t, "# hello \n# test# 22")
		require.EqualValues(t, 1, len(tokens))
		require.EqualValues(t, 22, tokens[0].Value)
		require.EqualValues(t, 2, tokens[0].Line)
	})
	t.Run("lock", func(t *testing.T) {
		tokens := mustTokenize(t, "{x = 1;}")
		require.EqualValues(t, TokenLock, tokens[0].Type)
		require.EqualValues(t, TokenUnlock, tokens[len(tokens)-1].Type)
	})
}

func TestTokenizeErrors(t *testing.T) {
	t.Run("unexpected char", func(t *testing.T) {
		err := tokenizeErr("1 $ 2")
		require.Error(t, err)
		require.Contains(t, err.Error(), "Unexpected char: $")
		require.Contains(t, err.Error(), "line 1, column 3")
	})
	t.Run("function without parenthesis", func(t *testing.T) {
		err := tokenizeErr("sin")
		require.Error(t, err)
		require.Contains(t, err.Error(), "Expected open parenthesis after function sin")

		err = tokenizeErr("sin + 1")
		require.Error(t, err)
		require.Contains(t, err.Error(), "Expected open parenthesis after function sin")
	})
	t.Run("function at end of input", func(t *testing.T) {
		for _, src := range []string{"sin ", "1 + sin # c", "sin\n", "x = sin\t# trailing\n"} {
			err := tokenizeErr(src)
			require.Error(t, err, src)
			require.Contains(t, err.Error(), "Expected open parenthesis after function sin", src)
		}
	})
	t.Run("nested lock", func(t *testing.T) {
		err := tokenizeErr("{{x = 1;}}")
		require.Error(t, err)
		require.Contains(t, err.Error(), "Unexpected Lock")
	})
	t.Run("lock inside parenthesis", func(t *testing.T) {
		err := tokenizeErr("(1 + {")
		require.Error(t, err)
		require.Contains(t, err.Error(), "Unexpected Lock")
	})
	t.Run("unlock without lock", func(t *testing.T) {
		err := tokenizeErr("x = 1; }")
		require.Error(t, err)
		require.Contains(t, err.Error(), "Unlock without Lock")
	})
	t.Run("bad number", func(t *testing.T) {
		err := tokenizeErr(".")
		require.Error(t, err)
		require.Contains(t, err.Error(), "Invalid number")
	})
}
