package mathvm

import (
	"fmt"
	"math"

	"github.com/lunfardo314/unitrie/common"
)

// variadic arity
const anyNumArgs = -1

func registerBuiltins(vm *VM) {
	// trigonometry
	embed(vm, "sin", 1, unary(math.Sin))
	embed(vm, "cos", 1, unary(math.Cos))
	embed(vm, "tan", 1, unary(math.Tan))
	embed(vm, "asin", 1, unary(math.Asin))
	embed(vm, "acos", 1, unary(math.Acos))
	embed(vm, "atan", 1, unary(math.Atan))
	embed(vm, "degrees", 1, unary(func(x float64) float64 { return x * 180 / math.Pi }))
	embed(vm, "radians", 1, unary(func(x float64) float64 { return x * math.Pi / 180 }))
	// rounding
	embed(vm, "abs", 1, unary(math.Abs))
	embed(vm, "ceil", 1, unary(math.Ceil))
	embed(vm, "floor", 1, unary(math.Floor))
	embed(vm, "round", 1, unary(math.Round))
	embed(vm, "round_even", 1, unary(math.RoundToEven))
	embed(vm, "trunc", 1, unary(math.Trunc))
	embed(vm, "fract", 1, unary(fract))
	embed(vm, "sign", 1, unary(sign))
	// comparison, 1 is true and 0 is false
	embed(vm, "less", 2, binary(func(a, b float64) float64 { return boolValue(a < b) }))
	embed(vm, "less_equal", 2, binary(func(a, b float64) float64 { return boolValue(a <= b) }))
	embed(vm, "greater", 2, binary(func(a, b float64) float64 { return boolValue(a > b) }))
	embed(vm, "greater_equal", 2, binary(func(a, b float64) float64 { return boolValue(a >= b) }))
	embed(vm, "step", 2, binary(func(edge, x float64) float64 { return boolValue(x >= edge) }))
	embed(vm, "not", 1, unary(func(x float64) float64 { return boolValue(x == 0) }))
	embed(vm, "equal", anyNumArgs, evalEqual)
	embed(vm, "all", anyNumArgs, evalAll)
	embed(vm, "any", anyNumArgs, evalAny)
	// reductions
	embed(vm, "min", anyNumArgs, evalMin)
	embed(vm, "max", anyNumArgs, evalMax)
	embed(vm, "mean", anyNumArgs, evalMean)
	embed(vm, "length", anyNumArgs, evalLength)
	embed(vm, "distance", anyNumArgs, evalDistance)
	embed(vm, "dot", anyNumArgs, evalDot)
	// interpolation
	embed(vm, "clamp", 3, evalClamp)
	embed(vm, "lerp", 3, evalLerp)
	embed(vm, "map", 5, evalMap)
	embed(vm, "gradient", anyNumArgs, evalGradient)
	// exponential
	embed(vm, "exp", 1, unary(math.Exp))
	embed(vm, "exp2", 1, unary(math.Exp2))
	embed(vm, "log", 1, unary(math.Log))
	embed(vm, "log2", 1, unary(math.Log2))
	embed(vm, "log10", 1, unary(math.Log10))
	embed(vm, "logx", 2, binary(func(base, x float64) float64 { return math.Log(x) / math.Log(base) }))
	embed(vm, "pow", 2, binary(math.Pow))
	embed(vm, "sqrt", 1, unary(math.Sqrt))
	embed(vm, "mod", 2, binary(math.Mod))
	// colors
	embed(vm, "hue2r", 1, unary(func(h float64) float64 { return clamp(math.Abs(h*6-3)-1, 0, 1) }))
	embed(vm, "hue2g", 1, unary(func(h float64) float64 { return clamp(2-math.Abs(h*6-2), 0, 1) }))
	embed(vm, "hue2b", 1, unary(func(h float64) float64 { return clamp(2-math.Abs(h*6-4), 0, 1) }))
	// randomness
	embed(vm, "rand", 2, evalRand)
	// resources
	embed(vm, "read", anyNumArgs, evalRead)
	embed(vm, "write", anyNumArgs, evalWrite)
}

func embed(vm *VM, name string, arity int, fun Function) {
	common.Assert(!vm.HasFunction(name), "repeating builtin '%s'", name)
	common.AssertNoError(vm.RegisterFunction(name, fun, arity))
}

func unary(f func(float64) float64) Function {
	return func(ctx *CallContext, args []float64) error {
		ctx.PushResult(f(args[0]))
		return nil
	}
}

func binary(f func(float64, float64) float64) Function {
	return func(ctx *CallContext, args []float64) error {
		ctx.PushResult(f(args[0], args[1]))
		return nil
	}
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func fract(x float64) float64 {
	_, f := math.Modf(x)
	return f
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

func clamp(x, min, max float64) float64 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}

func lerp(a, b, alpha float64) float64 {
	return a + alpha*(b-a)
}

func atLeast(name string, args []float64, n int) error {
	if len(args) < n {
		plural := "s"
		if n == 1 {
			plural = ""
		}
		return fmt.Errorf("%s expects at least %d argument%s", name, n, plural)
	}
	return nil
}

func evenPairs(name string, args []float64) error {
	if err := atLeast(name, args, 2); err != nil {
		return err
	}
	if len(args)%2 != 0 {
		return fmt.Errorf("%s number of arguments must be even", name)
	}
	return nil
}

func evalEqual(ctx *CallContext, args []float64) error {
	if err := atLeast("equal", args, 2); err != nil {
		return err
	}
	for _, a := range args[1:] {
		if a != args[0] {
			ctx.PushResult(0)
			return nil
		}
	}
	ctx.PushResult(1)
	return nil
}

func evalAll(ctx *CallContext, args []float64) error {
	for _, a := range args {
		if a == 0 {
			ctx.PushResult(0)
			return nil
		}
	}
	ctx.PushResult(1)
	return nil
}

func evalAny(ctx *CallContext, args []float64) error {
	for _, a := range args {
		if a != 0 {
			ctx.PushResult(1)
			return nil
		}
	}
	ctx.PushResult(0)
	return nil
}

func evalMin(ctx *CallContext, args []float64) error {
	if err := atLeast("min", args, 2); err != nil {
		return err
	}
	ret := args[0]
	for _, a := range args[1:] {
		ret = math.Min(ret, a)
	}
	ctx.PushResult(ret)
	return nil
}

func evalMax(ctx *CallContext, args []float64) error {
	if err := atLeast("max", args, 2); err != nil {
		return err
	}
	ret := args[0]
	for _, a := range args[1:] {
		ret = math.Max(ret, a)
	}
	ctx.PushResult(ret)
	return nil
}

func evalMean(ctx *CallContext, args []float64) error {
	if err := atLeast("mean", args, 1); err != nil {
		return err
	}
	var sum float64
	for _, a := range args {
		sum += a
	}
	ctx.PushResult(sum / float64(len(args)))
	return nil
}

func evalLength(ctx *CallContext, args []float64) error {
	var sum float64
	for _, a := range args {
		sum += a * a
	}
	ctx.PushResult(math.Sqrt(sum))
	return nil
}

// evalDistance takes two points of the same dimension, coordinates of the first one come first
func evalDistance(ctx *CallContext, args []float64) error {
	if err := evenPairs("distance", args); err != nil {
		return err
	}
	n := len(args) / 2
	var sum float64
	for i := 0; i < n; i++ {
		d := args[n+i] - args[i]
		sum += d * d
	}
	ctx.PushResult(math.Sqrt(sum))
	return nil
}

func evalDot(ctx *CallContext, args []float64) error {
	if err := evenPairs("dot", args); err != nil {
		return err
	}
	n := len(args) / 2
	var sum float64
	for i := 0; i < n; i++ {
		sum += args[i] * args[n+i]
	}
	ctx.PushResult(sum)
	return nil
}

func evalClamp(ctx *CallContext, args []float64) error {
	ctx.PushResult(clamp(args[0], args[1], args[2]))
	return nil
}

func evalLerp(ctx *CallContext, args []float64) error {
	ctx.PushResult(lerp(args[0], args[1], args[2]))
	return nil
}

// evalMap maps v from the range (x0, x1) onto (y0, y1) without clamping: map(v, x0, y0, x1, y1)
func evalMap(ctx *CallContext, args []float64) error {
	v, x0, y0, x1, y1 := args[0], args[1], args[2], args[3], args[4]
	if x1 == x0 {
		ctx.PushResult(y0)
		return nil
	}
	ctx.PushResult(lerp(y0, y1, (v-x0)/(x1-x0)))
	return nil
}

// evalGradient interpolates v over (key, value) stops with keys in ascending order: gradient(v, k0, v0, k1, v1, ...).
// Outside the keys the first or the last segment is extrapolated.
func evalGradient(ctx *CallContext, args []float64) error {
	if err := atLeast("gradient", args, 5); err != nil {
		return err
	}
	if (len(args)-1)%2 != 0 {
		return fmt.Errorf("gradient expects (key, value) pairs after the value")
	}
	v := args[0]
	stops := args[1:]
	n := len(stops) / 2
	for i := 1; i < n; i++ {
		if stops[2*i] < stops[2*(i-1)] {
			return fmt.Errorf("gradient keys must be in ascending order")
		}
	}
	seg := n - 2
	for i := 0; i < n; i++ {
		if stops[2*i] >= v {
			seg = i - 1
			break
		}
	}
	if seg < 0 {
		seg = 0
	}
	k0, v0 := stops[2*seg], stops[2*seg+1]
	k1, v1 := stops[2*seg+2], stops[2*seg+3]
	if k1 == k0 {
		ctx.PushResult(v1)
		return nil
	}
	ctx.PushResult(lerp(v0, v1, (v-k0)/(k1-k0)))
	return nil
}

func evalRand(ctx *CallContext, args []float64) error {
	ctx.PushResult(ctx.vm.randRange(args[0], args[1]))
	return nil
}

// evalRead is read(index, args...)
func evalRead(ctx *CallContext, args []float64) error {
	if err := atLeast("read", args, 1); err != nil {
		return err
	}
	ctx.PushResult(ctx.ReadResource(int(args[0]), args[1:]))
	return nil
}

// evalWrite is write(index, args...). It pushes nothing.
func evalWrite(ctx *CallContext, args []float64) error {
	if err := atLeast("write", args, 1); err != nil {
		return err
	}
	ctx.WriteResource(int(args[0]), args[1:])
	return nil
}
