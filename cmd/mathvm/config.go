package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/lunfardo314/mathvm"
	"github.com/lunfardo314/mathvm/resources"
	"go.uber.org/zap"
)

const (
	envDebug     = "MATHVM_DEBUG"
	envHistory   = "MATHVM_HISTORY"
	envResources = "MATHVM_RESOURCES"
	envWorkers   = "MATHVM_WORKERS"

	defaultHistoryFile = ".mathvm_history"
)

type config struct {
	debug     bool
	history   string
	resources string
	workers   int
}

// loadConfig reads envFile into the environment if it exists, then reads the MATHVM_* variables
func loadConfig(envFile string) (*config, error) {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading %s: %w", envFile, err)
	}
	ret := &config{
		history:   os.Getenv(envHistory),
		resources: os.Getenv(envResources),
	}
	if s := os.Getenv(envDebug); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", envDebug, err)
		}
		ret.debug = b
	}
	if s := os.Getenv(envWorkers); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%s: invalid number of workers '%s'", envWorkers, s)
		}
		ret.workers = n
	}
	if ret.history == "" {
		if home, err := os.UserHomeDir(); err == nil {
			ret.history = filepath.Join(home, defaultHistoryFile)
		}
	}
	return ret, nil
}

// newVM creates a VM with the resources of the manifest, if any
func newVM(cfg *config, log *zap.SugaredLogger) (*mathvm.VM, error) {
	vm := mathvm.New(mathvm.WithLogger(log))
	if cfg.resources == "" {
		return vm, nil
	}
	m, err := resources.LoadManifest(cfg.resources)
	if err != nil {
		return nil, err
	}
	indices, err := m.Register(vm)
	if err != nil {
		return nil, err
	}
	log.Debugf("registered %d resource(s) from %s", len(indices), cfg.resources)
	return vm, nil
}

// varsFlag collects repeated -v name=value flags
type varsFlag map[string]float64

func (v varsFlag) String() string {
	parts := make([]string, 0, len(v))
	for name, val := range v {
		parts = append(parts, name+"="+strconv.FormatFloat(val, 'g', -1, 64))
	}
	return strings.Join(parts, ",")
}

func (v varsFlag) Set(s string) error {
	name, val, found := strings.Cut(s, "=")
	if !found {
		return fmt.Errorf("expected name=value, got '%s'", s)
	}
	name = strings.TrimSpace(name)
	if !mathvm.ValidName(name) {
		return fmt.Errorf("invalid variable name '%s'", name)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
	if err != nil {
		return fmt.Errorf("variable %s: %w", name, err)
	}
	v[name] = f
	return nil
}

// collectFlag collects repeated -collect name:#rrggbb flags, keeping the order
type collectFlag struct {
	names  []string
	colors map[string]string
}

func (c *collectFlag) String() string {
	return strings.Join(c.names, ",")
}

func (c *collectFlag) Set(s string) error {
	name, col, found := strings.Cut(s, ":")
	if !found {
		col = "#000000"
	}
	if !mathvm.ValidName(name) {
		return fmt.Errorf("invalid variable name '%s'", name)
	}
	if c.colors == nil {
		c.colors = make(map[string]string)
	}
	if _, ok := c.colors[name]; !ok {
		c.names = append(c.names, name)
	}
	c.colors[name] = col
	return nil
}
