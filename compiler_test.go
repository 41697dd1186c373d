package mathvm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func mustCompile(t *testing.T, src string) *Program {
	vm := New()
	require.NoError(t, vm.TokenizeAndCompile(src))
	return vm.Program()
}

func compileErr(src string) error {
	return New().TokenizeAndCompile(src)
}

func TestCompile(t *testing.T) {
	t.Run("precedence", func(t *testing.T) {
		p := mustCompile(t, "1 + 2 * 3")
		require.EqualValues(t, 1, p.NumStatements())
		require.EqualValues(t, "1 2 3 * +", p.String())
	})
	t.Run("parenthesis", func(t *testing.T) {
		p := mustCompile(t, "(1 + 2) * 3")
		require.EqualValues(t, "1 2 + 3 *", p.String())
	})
	t.Run("left associative", func(t *testing.T) {
		p := mustCompile(t, "8 - 4 - 2")
		require.EqualValues(t, "8 4 - 2 -", p.String())
		p = mustCompile(t, "8 / 4 * 2")
		require.EqualValues(t, "8 4 / 2 *", p.String())
	})
	t.Run("assignment last", func(t *testing.T) {
		p := mustCompile(t, "x = x + 5")
		require.EqualValues(t, "x x 5 + =", p.String())
	})
	t.Run("statements", func(t *testing.T) {
		p := mustCompile(t, "x = 17; x = x + 5")
		require.EqualValues(t, 2, p.NumStatements())
		require.EqualValues(t, "x 17 =\nx x 5 + =", p.String())
	})
	t.Run("trailing semicolon", func(t *testing.T) {
		p := mustCompile(t, "1;2;3;")
		require.EqualValues(t, 4, p.NumStatements())
		require.EqualValues(t, 0, len(p.Statement(3)))
	})
	t.Run("empty", func(t *testing.T) {
		p := mustCompile(t, "")
		require.EqualValues(t, 1, p.NumStatements())
		require.EqualValues(t, 0, len(p.Statement(0)))
	})
	t.Run("functions", func(t *testing.T) {
		p := mustCompile(t, "pow(2, 1 + 2)")
		require.EqualValues(t, "2 1 2 + pow/2", p.String())
	})
	t.Run("nested functions", func(t *testing.T) {
		p := mustCompile(t, "max(sin(0), 2, abs(-3))")
		require.EqualValues(t, "0 sin/1 2 -3 abs/1 max/3", p.String())
	})
	t.Run("variadic arity", func(t *testing.T) {
		p := mustCompile(t, "length(1, 2, 3); length(4)")
		require.EqualValues(t, 3, p.Statement(0)[3].DetectedArity)
		require.EqualValues(t, 1, p.Statement(1)[1].DetectedArity)
	})
	t.Run("no arguments", func(t *testing.T) {
		p := mustCompile(t, "any()")
		require.EqualValues(t, "any/0", p.String())
	})
	t.Run("negation binds tighter than division", func(t *testing.T) {
		p := mustCompile(t, "a / -b")
		require.EqualValues(t, "a -1 b neg /", p.String())
	})
	t.Run("lock", func(t *testing.T) {
		p := mustCompile(t, "{x = x + i;}")
		require.EqualValues(t, 4, p.NumStatements())
		require.EqualValues(t, TokenLock, p.Statement(0)[0].Type)
		require.EqualValues(t, "x x i + =", tokensString(p.Statement(1)))
		require.EqualValues(t, TokenUnlock, p.Statement(2)[0].Type)
	})
	t.Run("lock terminates pending operand", func(t *testing.T) {
		p := mustCompile(t, "y {x = x + y;}")
		require.EqualValues(t, "y\n{\nx x y + =\n}\n", p.String())
	})
	t.Run("fingerprint", func(t *testing.T) {
		p1 := mustCompile(t, "1 + 2")
		p2 := mustCompile(t, "1 + 2")
		p3 := mustCompile(t, "1 + 3")
		require.EqualValues(t, p1.Fingerprint(), p2.Fingerprint())
		require.NotEqual(t, p1.Fingerprint(), p3.Fingerprint())
	})
}

func tokensString(tokens []Token) string {
	ret := ""
	for i := range tokens {
		if i > 0 {
			ret += " "
		}
		ret += tokens[i].String()
	}
	return ret
}

func TestCompileErrors(t *testing.T) {
	t.Run("mismatched parenthesis", func(t *testing.T) {
		err := compileErr("(1 + 2")
		require.Error(t, err)
		require.Contains(t, err.Error(), "Mismatched parenthesis")

		err = compileErr("(1 + 2; 3")
		require.Error(t, err)
		require.Contains(t, err.Error(), "Mismatched parenthesis")
	})
	t.Run("expected open parenthesis", func(t *testing.T) {
		err := compileErr("1 + 2)")
		require.Error(t, err)
		require.Contains(t, err.Error(), "Expected open parenthesis")

		vm := New()
		require.Error(t, vm.TokenizeAndCompile("1 + sin # trailing"))
		require.Nil(t, vm.Program())
	})
	t.Run("comma outside function", func(t *testing.T) {
		err := compileErr("1, 2")
		require.Error(t, err)
		require.Contains(t, err.Error(), "Commas are expected only after the first argument of a function")
	})
	t.Run("leading comma", func(t *testing.T) {
		err := compileErr("max(, 2)")
		require.Error(t, err)
		require.Contains(t, err.Error(), "Commas are expected only after the first argument of a function")
	})
	t.Run("arity", func(t *testing.T) {
		err := compileErr("pow(1, 2, 3)")
		require.Error(t, err)
		require.EqualValues(t, "Function pow expects 2 arguments (detected 3)", err.Error())

		err = compileErr("sin(1, 2)")
		require.Error(t, err)
		require.EqualValues(t, "Function sin expects 1 argument (detected 2)", err.Error())

		err = compileErr("sin()")
		require.Error(t, err)
		require.EqualValues(t, "Function sin expects 1 argument (detected 0)", err.Error())
	})
	t.Run("lock without unlock", func(t *testing.T) {
		err := compileErr("{x = 1;")
		require.Error(t, err)
		require.Contains(t, err.Error(), "Lock without Unlock")
	})
	t.Run("lock with pending operators", func(t *testing.T) {
		for src, msg := range map[string]string{
			"1 + { 2 }":       "Unexpected Lock",
			"x = { y = 2; }":  "Unexpected Lock",
			"y = 1 {x = 2;}":  "Unexpected Lock",
			"{x = 2}":         "Unexpected Unlock",
			"{x = x + 1 }; y": "Unexpected Unlock",
		} {
			err := compileErr(src)
			require.Error(t, err, src)
			require.EqualValues(t, msg, err.Error(), src)
		}
	})
	t.Run("lock inside function", func(t *testing.T) {
		err := compileErr("max(1 {")
		require.Error(t, err)
		require.Contains(t, err.Error(), "Unexpected Lock")
	})
}
