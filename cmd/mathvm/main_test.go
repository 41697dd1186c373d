package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func runCmd(t *testing.T, stdin string, args ...string) (int, string, string) {
	var out, errOut bytes.Buffer
	args = append([]string{"-env", filepath.Join(t.TempDir(), "missing.env")}, args...)
	code := run(args, strings.NewReader(stdin), &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestEval(t *testing.T) {
	t.Run("expression", func(t *testing.T) {
		code, out, _ := runCmd(t, "", "eval", "1 + 2 * 3")
		require.EqualValues(t, 0, code)
		require.EqualValues(t, "7\n", out)
	})
	t.Run("variables", func(t *testing.T) {
		code, out, _ := runCmd(t, "", "eval", "-n", "2", "-v", "x=1", "-v", "y=2.5", "x; y")
		require.EqualValues(t, 0, code)
		require.EqualValues(t, "2.5\n1\n", out)
	})
	t.Run("suggestion", func(t *testing.T) {
		code, _, errOut := runCmd(t, "", "eval", "gradien + 1")
		require.EqualValues(t, 1, code)
		require.Contains(t, errOut, "Unset variable gradien")
		require.Contains(t, errOut, "did you mean gradient")
	})
	t.Run("compile error", func(t *testing.T) {
		code, _, errOut := runCmd(t, "", "eval", "(1 + 2")
		require.EqualValues(t, 1, code)
		require.Contains(t, errOut, "Mismatched parenthesis")
	})
	t.Run("bad variable", func(t *testing.T) {
		code, _, _ := runCmd(t, "", "eval", "-v", "x", "x")
		require.EqualValues(t, 1, code)
	})
}

func TestCommands(t *testing.T) {
	t.Run("usage", func(t *testing.T) {
		code, _, errOut := runCmd(t, "")
		require.EqualValues(t, 2, code)
		require.Contains(t, errOut, "usage: mathvm")

		code, _, errOut = runCmd(t, "", "what")
		require.EqualValues(t, 2, code)
		require.Contains(t, errOut, "unknown command 'what'")
	})
	t.Run("tokens", func(t *testing.T) {
		code, out, _ := runCmd(t, "", "tokens", "y = 1 + x")
		require.EqualValues(t, 0, code)
		require.Contains(t, out, "1:1\tvariable\ty\n")
		require.Contains(t, out, "-- 1 statement(s)\ny 1 x + =\n")
	})
	t.Run("run", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "script.mvm")
		require.NoError(t, os.WriteFile(path, []byte("# script #\na = 2;\nb = a * 3\n"), 0o644))
		code, out, _ := runCmd(t, "", "run", "-v", "c=1", path)
		require.EqualValues(t, 0, code)
		require.EqualValues(t, "a = 2\nb = 6\nc = 1\n", out)
	})
	t.Run("repl", func(t *testing.T) {
		code, out, _ := runCmd(t, "", "repl")
		require.EqualValues(t, 0, code)
		require.EqualValues(t, "", out)

		code, out, _ = runCmd(t, "x = 2\nx * 3\n\n:locals\nbogus\n:what\n:reset\n:locals\n:quit\nx\n", "repl")
		require.EqualValues(t, 0, code)
		require.EqualValues(t, "6\nx = 2\nline 5: Unset variable bogus for result 0\nline 6: unknown command :what, type :help\n", out)
	})
	t.Run("plot", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "plot.png")
		code, out, errOut := runCmd(t, "", "plot", "-e", "y = x / 10", "-samples", "11", "-collect", "y:#ff0000",
			"-min", "0", "-max", "1", "-width", "11", "-height", "11", "-o", path)
		require.EqualValues(t, 0, code, errOut)
		require.Contains(t, out, "11 sample(s), 0 failure(s)")
		_, err := os.Stat(path)
		require.NoError(t, err)
	})
	t.Run("plot bad color", func(t *testing.T) {
		code, _, errOut := runCmd(t, "", "plot", "-e", "y = x", "-collect", "y:#ff", "-o", filepath.Join(t.TempDir(), "p.png"))
		require.EqualValues(t, 1, code)
		require.Contains(t, errOut, "invalid color")
	})
}

const manifest = `
resources:
  - name: stats
    kind: table
    rows:
      - [1, 2]
      - [3, 4]
`

func TestConfig(t *testing.T) {
	t.Run("resources", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "resources.yaml")
		require.NoError(t, os.WriteFile(path, []byte(manifest), 0o644))

		code, out, _ := runCmd(t, "", "-resources", path, "eval", "read(stats, 1, 1)")
		require.EqualValues(t, 0, code)
		require.EqualValues(t, "4\n", out)

		t.Setenv(envResources, path)
		code, out, _ = runCmd(t, "", "eval", "read(stats, 1, 0)")
		require.EqualValues(t, 0, code)
		require.EqualValues(t, "3\n", out)
	})
	t.Run("env file", func(t *testing.T) {
		t.Setenv(envWorkers, "")
		t.Setenv(envDebug, "")
		require.NoError(t, os.Unsetenv(envWorkers))
		require.NoError(t, os.Unsetenv(envDebug))

		path := filepath.Join(t.TempDir(), "test.env")
		require.NoError(t, os.WriteFile(path, []byte("MATHVM_WORKERS=3\nMATHVM_DEBUG=true\n"), 0o644))
		cfg, err := loadConfig(path)
		require.NoError(t, err)
		require.EqualValues(t, 3, cfg.workers)
		require.True(t, cfg.debug)
	})
	t.Run("invalid", func(t *testing.T) {
		t.Setenv(envWorkers, "many")
		_, err := loadConfig(filepath.Join(t.TempDir(), "missing.env"))
		require.Error(t, err)
	})
	t.Run("vars", func(t *testing.T) {
		v := varsFlag{}
		require.NoError(t, v.Set("x = 1.5"))
		require.EqualValues(t, 1.5, v["x"])
		require.Error(t, v.Set("x"))
		require.Error(t, v.Set("1x=1"))
		require.Error(t, v.Set("x=one"))
	})
	t.Run("collect", func(t *testing.T) {
		var c collectFlag
		require.NoError(t, c.Set("y:#ff0000"))
		require.NoError(t, c.Set("z"))
		require.NoError(t, c.Set("y:#00ff00"))
		require.EqualValues(t, []string{"y", "z"}, c.names)
		require.EqualValues(t, "#00ff00", c.colors["y"])
		require.EqualValues(t, "#000000", c.colors["z"])
		require.Error(t, c.Set("1y"))
	})
}
