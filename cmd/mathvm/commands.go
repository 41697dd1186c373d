package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image/color"
	"io"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"

	"github.com/lunfardo314/mathvm"
	"github.com/lunfardo314/mathvm/sampler"
)

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// explain adds a suggestion to errors about unset variables
func explain(vm *mathvm.VM, err error) error {
	var unset *mathvm.UnsetVariableError
	if !errors.As(err, &unset) {
		return err
	}
	if s := vm.Suggest(unset.Name); len(s) > 0 {
		return fmt.Errorf("%w (did you mean %s?)", err, strings.Join(s, ", "))
	}
	return err
}

func (a *app) compile(src string) (*mathvm.VM, error) {
	vm, err := newVM(a.cfg, a.log)
	if err != nil {
		return nil, err
	}
	if err = vm.TokenizeAndCompile(src); err != nil {
		return nil, err
	}
	return vm, nil
}

func (a *app) eval(args []string) error {
	fs := flag.NewFlagSet("eval", flag.ContinueOnError)
	n := fs.Int("n", 1, "number of results to pop")
	vars := varsFlag{}
	fs.Var(vars, "v", "local variable name=value, repeatable")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("expression expected")
	}
	vm, err := a.compile(strings.Join(fs.Args(), " "))
	if err != nil {
		return err
	}
	res, err := vm.Execute(vars, *n)
	if err != nil {
		return explain(vm, err)
	}
	for _, v := range res {
		fmt.Fprintln(a.out, formatFloat(v))
	}
	return nil
}

func (a *app) runFile(args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	n := fs.Int("n", 0, "number of results to pop")
	vars := varsFlag{}
	fs.Var(vars, "v", "local variable name=value, repeatable")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("script file expected")
	}
	src, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return err
	}
	vm, err := a.compile(string(src))
	if err != nil {
		return err
	}
	res, err := vm.Execute(vars, *n)
	if err != nil {
		return explain(vm, err)
	}
	for _, v := range res {
		fmt.Fprintln(a.out, formatFloat(v))
	}
	printVariables(a.out, vars)
	return nil
}

func printVariables(w io.Writer, vars map[string]float64) {
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "%s = %s\n", name, formatFloat(vars[name]))
	}
}

func (a *app) tokens(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("expression expected")
	}
	vm, err := a.compile(strings.Join(args, " "))
	if err != nil {
		return err
	}
	prog := vm.Program()
	for _, tok := range prog.Tokens() {
		fmt.Fprintf(a.out, "%d:%d\t%s\t%s\n", tok.Line, tok.Column, tok.Type, tok.String())
	}
	fmt.Fprintf(a.out, "-- %d statement(s)\n", prog.NumStatements())
	fmt.Fprintln(a.out, prog.String())
	return nil
}

func (a *app) plot(args []string) error {
	fs := flag.NewFlagSet("plot", flag.ContinueOnError)
	samples := fs.Int("samples", 256, "number of samples")
	sampleVar := fs.String("var", "x", "local variable receiving the sample index")
	var collect collectFlag
	fs.Var(&collect, "collect", "variable to plot as name:#rrggbb[aa], repeatable")
	domainMin := fs.Float64("min", -1, "lower bound of the plotted values")
	domainMax := fs.Float64("max", 1, "upper bound of the plotted values")
	width := fs.Int("width", 512, "image width")
	height := fs.Int("height", 256, "image height")
	workers := fs.Int("workers", a.cfg.workers, "parallel executions, 0 is the number of CPUs")
	output := fs.String("o", "plot.png", "output PNG file")
	expr := fs.String("e", "", "script text instead of a file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	src := *expr
	if src == "" {
		if fs.NArg() != 1 {
			return fmt.Errorf("script file or -e expected")
		}
		data, err := os.ReadFile(fs.Arg(0))
		if err != nil {
			return err
		}
		src = string(data)
	}
	colors := make(map[string]color.NRGBA, len(collect.names))
	for _, name := range collect.names {
		c, err := sampler.ParseColor(collect.colors[name])
		if err != nil {
			return err
		}
		colors[name] = c
	}
	vm, err := a.compile(src)
	if err != nil {
		return err
	}
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	res, err := sampler.Run(ctx, vm, sampler.Config{
		Samples:        *samples,
		Workers:        *workers,
		SampleVariable: *sampleVar,
		Collect:        collect.names,
		Log:            a.log,
	})
	if err != nil {
		return err
	}
	if res.Failures > 0 {
		a.log.Warnf("%d of %d sample(s) failed, last error: %s", res.Failures, res.Samples, vm.GetError())
	}
	img, err := sampler.Plot(res, sampler.PlotConfig{
		Width:     *width,
		Height:    *height,
		DomainMin: *domainMin,
		DomainMax: *domainMax,
		Colors:    colors,
	})
	if err != nil {
		return err
	}
	if err = sampler.WritePNG(*output, img); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s: %d sample(s), %d failure(s)\n", *output, res.Samples, res.Failures)
	return nil
}
