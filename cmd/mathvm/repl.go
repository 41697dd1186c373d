package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/lunfardo314/mathvm"
	"github.com/peterh/liner"
	"golang.org/x/term"
)

const (
	promptMain = "mathvm> "
	banner     = "mathvm REPL, Ctrl+D to exit. Type :help for commands."
	helpText   = `REPL commands:
  :help       show this help
  :globals    list global variables
  :locals     list local variables of the session
  :stats      show compile and execution counters
  :reset      forget local variables and the compiled program
  :quit       exit
`
)

type session struct {
	vm     *mathvm.VM
	locals map[string]float64
	out    io.Writer
}

func (a *app) repl() error {
	vm, err := newVM(a.cfg, a.log)
	if err != nil {
		return err
	}
	s := &session{
		vm:     vm,
		locals: make(map[string]float64),
		out:    a.out,
	}
	if f, ok := a.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return s.interactive(a.cfg.history)
	}
	return s.batch(a.in)
}

// batch executes the lines of a non-interactive input without prompts
func (s *session) batch(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		quit, err := s.handle(scanner.Text())
		if err != nil {
			fmt.Fprintf(s.out, "line %d: %v\n", lineNo, err)
		}
		if quit {
			break
		}
	}
	return scanner.Err()
}

func (s *session) interactive(historyPath string) error {
	fmt.Fprintln(s.out, banner)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetTabCompletionStyle(liner.TabPrints)
	ln.SetCompleter(s.complete)

	if historyPath != "" {
		if f, err := os.Open(historyPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
	}
	for {
		line, err := ln.Prompt(promptMain)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				continue
			}
			// io.EOF on Ctrl+D
			fmt.Fprintln(s.out)
			break
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		ln.AppendHistory(line)
		quit, err := s.handle(line)
		if err != nil {
			fmt.Fprintln(s.out, err)
		}
		if quit {
			break
		}
	}
	if historyPath != "" {
		if f, err := os.Create(historyPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}
	return nil
}

func (s *session) handle(line string) (bool, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false, nil
	}
	if strings.HasPrefix(line, ":") {
		return s.command(line)
	}
	if err := s.vm.TokenizeAndCompile(line); err != nil {
		return false, err
	}
	res, err := s.vm.ExecuteAll(s.locals)
	if err != nil {
		return false, explain(s.vm, err)
	}
	if len(res) > 0 {
		fmt.Fprintln(s.out, formatFloat(res[0]))
	}
	return false, nil
}

func (s *session) command(line string) (bool, error) {
	switch strings.Fields(line)[0] {
	case ":quit", ":exit":
		return true, nil
	case ":help":
		fmt.Fprint(s.out, helpText)
	case ":globals":
		printVariables(s.out, s.vm.GlobalVariables())
	case ":locals":
		printVariables(s.out, s.locals)
	case ":stats":
		st := s.vm.Stats()
		fmt.Fprintf(s.out, "compilations: %d (%d failed)\nexecutions: %d (%d failed)\n",
			st.Compilations, st.CompileFailures, st.Executions, st.ExecutionFailures)
	case ":reset":
		s.locals = make(map[string]float64)
		s.vm.Reset()
	default:
		return false, fmt.Errorf("unknown command %s, type :help", line)
	}
	return false, nil
}

// complete extends the identifier at the end of line with known names and session locals
func (s *session) complete(line string) []string {
	start := len(line)
	for start > 0 && isIdentChar(line[start-1]) {
		start--
	}
	prefix := line[start:]
	if prefix == "" {
		return nil
	}
	names := s.vm.Names()
	for name := range s.locals {
		names = append(names, name)
	}
	sort.Strings(names)

	ret := make([]string, 0)
	var last string
	for _, name := range names {
		if name == last || !strings.HasPrefix(name, prefix) {
			continue
		}
		last = name
		ret = append(ret, line[:start]+name)
	}
	return ret
}

func isIdentChar(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
