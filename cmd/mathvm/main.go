package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/lunfardo314/mathvm/util/logger"
	"go.uber.org/zap"
)

const usage = `usage: mathvm [-debug] [-resources manifest.yaml] [-env file] <command> [arguments]

commands:
  eval [-n results] [-v name=value ...] expr    evaluate an expression and print popped results
  run [-n results] [-v name=value ...] file     execute a script file and print its local variables
  tokens expr                                   print the token stream and the compiled statements
  repl                                          interactive session, locals persist between lines
  plot [flags] file                             sample a script and plot collected variables to PNG
`

type app struct {
	cfg *config
	log *zap.SugaredLogger
	out io.Writer
	in  io.Reader
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, in io.Reader, out, errOut io.Writer) int {
	fs := flag.NewFlagSet("mathvm", flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.Usage = func() { fmt.Fprint(errOut, usage) }
	envFile := fs.String("env", ".env", "file with environment variables")
	debug := fs.Bool("debug", false, "debug logging, overrides "+envDebug)
	manifest := fs.String("resources", "", "resource manifest, overrides "+envResources)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	cfg, err := loadConfig(*envFile)
	if err != nil {
		fmt.Fprintf(errOut, "mathvm: %v\n", err)
		return 1
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "debug":
			cfg.debug = *debug
		case "resources":
			cfg.resources = *manifest
		}
	})
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}
	a := &app{
		cfg: cfg,
		log: logger.New(cfg.debug),
		out: out,
		in:  in,
	}
	defer func() { _ = a.log.Sync() }()

	cmd, cmdArgs := fs.Arg(0), fs.Args()[1:]
	switch cmd {
	case "eval":
		err = a.eval(cmdArgs)
	case "run":
		err = a.runFile(cmdArgs)
	case "tokens":
		err = a.tokens(cmdArgs)
	case "repl":
		err = a.repl()
	case "plot":
		err = a.plot(cmdArgs)
	default:
		fmt.Fprintf(errOut, "mathvm: unknown command '%s'\n", cmd)
		fs.Usage()
		return 2
	}
	if err != nil {
		fmt.Fprintf(errOut, "mathvm %s: %v\n", cmd, err)
		return 1
	}
	return 0
}
