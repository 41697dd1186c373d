package mathvm

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/lunfardo314/unitrie/common"
	"github.com/puzpuzpuz/xsync"
	"go.uber.org/zap"
)

var (
	ErrInvalidName = errors.New("invalid name")
	ErrConstExists = errors.New("constant already registered")
	ErrNotCompiled = errors.New("nothing compiled")
)

// Function is a callable registered into the VM. It pushes its result with ctx.PushResult.
// args is only valid during the call.
type Function func(ctx *CallContext, args []float64) error

type funDescriptor struct {
	name  string
	arity int
	eval  Function
}

const maxCachedPrograms = 64

// PopAll as popResults pops everything left on the stack
const PopAll = -1

// VM compiles a program once and executes it any number of times, concurrently if needed.
// Each execution has its own local variables, global variables are shared.
type VM struct {
	log *zap.SugaredLogger

	// guards functions, constants and resources
	registryMutex *xsync.RBMutex
	functions     []*funDescriptor
	funByName     map[string]int
	constants     map[string]float64
	resources     []Resource

	globals *Globals

	programMutex sync.RWMutex
	program      *Program
	cache        map[[32]byte]*Program

	// held between Lock and Unlock statements
	blockMutex sync.Mutex

	errMutex  sync.Mutex
	lastError string

	randMutex sync.Mutex
	rnd       *rand.Rand

	stats stats
}

type Option func(vm *VM)

func WithLogger(log *zap.SugaredLogger) Option {
	return func(vm *VM) {
		vm.log = log
	}
}

func WithRandSeed(seed int64) Option {
	return func(vm *VM) {
		vm.rnd = rand.New(rand.NewSource(seed))
	}
}

func withoutBuiltins(vm *VM) {
	vm.functions = vm.functions[:0]
	vm.funByName = make(map[string]int)
}

// WithoutBuiltins leaves the function table empty. PI is still registered.
func WithoutBuiltins() Option {
	return withoutBuiltins
}

func New(opts ...Option) *VM {
	ret := &VM{
		log:           zap.NewNop().Sugar(),
		registryMutex: new(xsync.RBMutex),
		funByName:     make(map[string]int),
		constants:     make(map[string]float64),
		globals:       NewGlobals(),
		cache:         make(map[[32]byte]*Program),
		rnd:           rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	registerBuiltins(ret)
	common.AssertNoError(ret.RegisterConst("PI", math.Pi))

	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// RegisterFunction adds or replaces a function. Negative arity means any number of arguments.
func (vm *VM) RegisterFunction(name string, fun Function, arity int) error {
	if !ValidName(name) {
		return fmt.Errorf("RegisterFunction '%s': %w", name, ErrInvalidName)
	}
	common.Assert(fun != nil, "RegisterFunction '%s': nil function", name)

	vm.registryMutex.Lock()
	defer vm.registryMutex.Unlock()

	dscr := &funDescriptor{name: name, arity: arity, eval: fun}
	// copy on write, running executions keep the table they started with
	functions := make([]*funDescriptor, len(vm.functions), len(vm.functions)+1)
	copy(functions, vm.functions)
	if idx, ok := vm.funByName[name]; ok {
		functions[idx] = dscr
	} else {
		vm.funByName[name] = len(functions)
		functions = append(functions, dscr)
	}
	vm.functions = functions
	vm.invalidateCache()
	return nil
}

func (vm *VM) HasFunction(name string) bool {
	t := vm.registryMutex.RLock()
	defer vm.registryMutex.RUnlock(t)

	_, ok := vm.funByName[name]
	return ok
}

// RegisterConst fails if the constant already exists
func (vm *VM) RegisterConst(name string, v float64) error {
	if !ValidName(name) {
		return fmt.Errorf("RegisterConst '%s': %w", name, ErrInvalidName)
	}
	vm.registryMutex.Lock()
	defer vm.registryMutex.Unlock()

	if _, ok := vm.constants[name]; ok {
		return fmt.Errorf("RegisterConst '%s': %w", name, ErrConstExists)
	}
	vm.constants[name] = v
	vm.invalidateCache()
	return nil
}

func (vm *VM) HasConst(name string) bool {
	_, ok := vm.GetConst(name)
	return ok
}

func (vm *VM) GetConst(name string) (float64, bool) {
	t := vm.registryMutex.RLock()
	defer vm.registryMutex.RUnlock(t)

	v, ok := vm.constants[name]
	return v, ok
}

// RegisterGlobalVariable creates or overwrites a global variable
func (vm *VM) RegisterGlobalVariable(name string, v float64) error {
	if !ValidName(name) {
		return fmt.Errorf("RegisterGlobalVariable '%s': %w", name, ErrInvalidName)
	}
	vm.globals.Set(name, v)
	return nil
}

func (vm *VM) HasGlobalVariable(name string) bool {
	return vm.globals.Has(name)
}

// GetGlobalVariable returns 0 for an unknown name
func (vm *VM) GetGlobalVariable(name string) float64 {
	v, _ := vm.globals.Get(name)
	return v
}

func (vm *VM) SetGlobalVariable(name string, v float64) {
	vm.globals.Set(name, v)
}

// GlobalVariables returns a snapshot of all global variables
func (vm *VM) GlobalVariables() map[string]float64 {
	return vm.globals.Snapshot()
}

// lookupFunction and lookupConst are called with registryMutex held
func (vm *VM) lookupFunction(name string) (int, int, bool) {
	idx, ok := vm.funByName[name]
	if !ok {
		return 0, 0, false
	}
	return idx, vm.functions[idx].arity, true
}

func (vm *VM) lookupConst(name string) (float64, bool) {
	v, ok := vm.constants[name]
	return v, ok
}

func (vm *VM) invalidateCache() {
	vm.programMutex.Lock()
	defer vm.programMutex.Unlock()

	vm.cache = make(map[[32]byte]*Program)
}

// TokenizeAndCompile replaces the current program. On failure the VM is left without a program.
func (vm *VM) TokenizeAndCompile(source string) error {
	prog, err := vm.compileCached(source)

	vm.programMutex.Lock()
	vm.program = prog
	vm.programMutex.Unlock()

	if err != nil {
		vm.stats.compileFailures.Inc()
		vm.setError(err)
		vm.log.Debugf("compile failed: %v", err)
		return err
	}
	return nil
}

func (vm *VM) compileCached(source string) (*Program, error) {
	key := Fingerprint(source)

	vm.programMutex.RLock()
	prog, ok := vm.cache[key]
	vm.programMutex.RUnlock()
	if ok {
		return prog, nil
	}

	t := vm.registryMutex.RLock()
	tokens, err := tokenize(source, vm)
	vm.registryMutex.RUnlock(t)
	if err != nil {
		return nil, err
	}
	statements, err := compile(tokens)
	if err != nil {
		return nil, err
	}
	prog = newProgram(source, tokens, statements)
	vm.stats.compilations.Inc()
	vm.log.Debugf("compiled %d statement(s) from %d token(s)", len(statements), len(tokens))

	vm.programMutex.Lock()
	if len(vm.cache) >= maxCachedPrograms {
		vm.cache = make(map[[32]byte]*Program)
	}
	vm.cache[key] = prog
	vm.programMutex.Unlock()
	return prog, nil
}

// Program returns the compiled program or nil
func (vm *VM) Program() *Program {
	vm.programMutex.RLock()
	defer vm.programMutex.RUnlock()

	return vm.program
}

// Reset drops the compiled program. Registrations and global variables are kept.
func (vm *VM) Reset() {
	vm.programMutex.Lock()
	defer vm.programMutex.Unlock()

	vm.program = nil
}

// Execute runs the program with the given local variables and pops popResults values, last pushed first.
// Assignments to new or existing locals are written into locals.
func (vm *VM) Execute(locals map[string]float64, popResults int) ([]float64, error) {
	return vm.ExecuteWith(nil, locals, popResults)
}

// ExecuteWith is Execute with an opaque value available to functions through CallContext.LocalContext
func (vm *VM) ExecuteWith(local interface{}, locals map[string]float64, popResults int) ([]float64, error) {
	ret, err := vm.execute(local, locals, popResults)
	vm.stats.executions.Inc()
	if err != nil {
		vm.stats.executionFailures.Inc()
		vm.setError(err)
		vm.log.Debugf("execution failed: %v", err)
		return nil, err
	}
	return ret, nil
}

func (vm *VM) execute(local interface{}, locals map[string]float64, popResults int) ([]float64, error) {
	prog := vm.Program()
	if prog == nil {
		return nil, ErrNotCompiled
	}
	if locals == nil {
		locals = make(map[string]float64)
	}
	t := vm.registryMutex.RLock()
	functions := vm.functions
	vm.registryMutex.RUnlock(t)

	ctx := newCallContext(vm, prog, functions, locals, local)
	var ret []float64
	err := common.CatchPanicOrError(func() error {
		defer ctx.unlock()

		if err := ctx.run(); err != nil {
			return err
		}
		var err error
		ret, err = ctx.popResults(popResults)
		return err
	})
	return ret, err
}

func (vm *VM) ExecuteAndDiscard(locals map[string]float64) error {
	_, err := vm.Execute(locals, 0)
	return err
}

func (vm *VM) ExecuteOne(locals map[string]float64) (float64, error) {
	ret, err := vm.Execute(locals, 1)
	if err != nil {
		return 0, err
	}
	return ret[0], nil
}

// ExecuteAll returns every value left on the stack, last pushed first
func (vm *VM) ExecuteAll(locals map[string]float64) ([]float64, error) {
	return vm.Execute(locals, PopAll)
}

// ExecuteStealth executes and discards results. The error is only recorded for GetError.
func (vm *VM) ExecuteStealth(locals map[string]float64) bool {
	return vm.ExecuteAndDiscard(locals) == nil
}

func (vm *VM) setError(err error) {
	vm.errMutex.Lock()
	defer vm.errMutex.Unlock()

	vm.lastError = err.Error()
}

// GetError returns the message of the last failed call
func (vm *VM) GetError() string {
	vm.errMutex.Lock()
	defer vm.errMutex.Unlock()

	return vm.lastError
}

func (vm *VM) randRange(min, max float64) float64 {
	vm.randMutex.Lock()
	defer vm.randMutex.Unlock()

	return min + vm.rnd.Float64()*(max-min)
}
