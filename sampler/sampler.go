// Package sampler evaluates a compiled program over a range of sample indices in parallel
// and renders the collected local variables as line plots.
package sampler

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"time"

	"github.com/lunfardo314/mathvm"
	"github.com/lunfardo314/mathvm/util/workqueue"
	"github.com/oklog/ulid/v2"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

type Config struct {
	// number of executions, sample indices are 0..Samples-1
	Samples int
	// 0 means runtime.NumCPU()
	Workers int
	// local variable which receives the sample index
	SampleVariable string
	// local variables to collect after every execution
	Collect []string
	Log     *zap.SugaredLogger
}

type Result struct {
	RunID   ulid.ULID
	Samples int
	// Series holds one value per sample for every collected variable.
	// NaN when the execution failed or did not set the variable
	Series   map[string][]float64
	Failures int
	Duration time.Duration
}

var ErrInvalidConfig = errors.New("invalid sampler config")

func (cfg *Config) validate() error {
	if cfg.Samples < 1 {
		return fmt.Errorf("%w: invalid number of samples %d", ErrInvalidConfig, cfg.Samples)
	}
	if !mathvm.ValidName(cfg.SampleVariable) {
		return fmt.Errorf("%w: invalid sample variable '%s'", ErrInvalidConfig, cfg.SampleVariable)
	}
	if len(cfg.Collect) == 0 {
		return fmt.Errorf("%w: nothing to collect", ErrInvalidConfig)
	}
	for _, name := range cfg.Collect {
		if !mathvm.ValidName(name) {
			return fmt.Errorf("%w: invalid variable '%s'", ErrInvalidConfig, name)
		}
	}
	return nil
}

// Run executes the compiled program of vm once per sample, each time with fresh local variables
// where SampleVariable is set to the sample index
func Run(ctx context.Context, vm *mathvm.VM, cfg Config) (*Result, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if vm.Program() == nil {
		return nil, mathvm.ErrNotCompiled
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	log := cfg.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	ret := &Result{
		RunID:   ulid.Make(),
		Samples: cfg.Samples,
		Series:  make(map[string][]float64, len(cfg.Collect)),
	}
	log = log.Named("sampler").With("run", ret.RunID.String())
	for _, name := range cfg.Collect {
		ret.Series[name] = make([]float64, cfg.Samples)
	}

	log.Infof("sampling %d sample(s) with %d worker(s)", cfg.Samples, workers)
	start := time.Now()

	var failures atomic.Int64
	queue := workqueue.New[int]()
	go func() {
		for i := 0; i < cfg.Samples; i++ {
			if ctx.Err() != nil {
				queue.CloseNow()
				return
			}
			queue.Write(i)
		}
		queue.Close()
	}()

	queue.ConsumeParallel(workers, func(i int) {
		locals := map[string]float64{cfg.SampleVariable: float64(i)}
		err := vm.ExecuteAndDiscard(locals)
		ok := err == nil
		if !ok {
			failures.Inc()
			log.Debugf("sample %d failed: %v", i, err)
		}
		for _, name := range cfg.Collect {
			v, found := locals[name]
			if !ok || !found {
				v = math.NaN()
			}
			// every sample index is written by exactly one worker
			ret.Series[name][i] = v
		}
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ret.Failures = int(failures.Load())
	ret.Duration = time.Since(start)
	log.Infof("sampled in %v, %d failure(s)", ret.Duration, ret.Failures)
	return ret, nil
}
