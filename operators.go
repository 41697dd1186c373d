package mathvm

import "errors"

type opCode byte

const (
	opAdd opCode = iota
	opSub
	opMul
	opDiv
	opMod
	opAssign
	// opNegate binds a unary minus to the operand that follows it
	opNegate
)

// lower value binds tighter
const (
	precedenceNegate = 3
	precedenceMul    = 5
	precedenceAdd    = 6
	precedenceAssign = 17
)

type operatorDescriptor struct {
	sym        string
	precedence int
	eval       func(ctx *CallContext) error
}

var ErrDivisionByZero = errors.New("Division by zero")

var operators = [...]operatorDescriptor{
	opAdd:    {"+", precedenceAdd, evalAdd},
	opSub:    {"-", precedenceAdd, evalSub},
	opMul:    {"*", precedenceMul, evalMul},
	opDiv:    {"/", precedenceMul, evalDiv},
	opMod:    {"%", precedenceMul, evalMod},
	opAssign: {"=", precedenceAssign, evalAssign},
	opNegate: {"neg", precedenceNegate, evalMul},
}

func popOperands(ctx *CallContext) (float64, float64, error) {
	b, err := ctx.PopArgument()
	if err != nil {
		return 0, 0, err
	}
	a, err := ctx.PopArgument()
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

func evalAdd(ctx *CallContext) error {
	a, b, err := popOperands(ctx)
	if err != nil {
		return err
	}
	ctx.PushResult(a + b)
	return nil
}

func evalSub(ctx *CallContext) error {
	a, b, err := popOperands(ctx)
	if err != nil {
		return err
	}
	ctx.PushResult(a - b)
	return nil
}

func evalMul(ctx *CallContext) error {
	a, b, err := popOperands(ctx)
	if err != nil {
		return err
	}
	ctx.PushResult(a * b)
	return nil
}

// evalDiv checks the divisor before the dividend is popped
func evalDiv(ctx *CallContext) error {
	b, err := ctx.PopArgument()
	if err != nil {
		return err
	}
	if b == 0 {
		return ErrDivisionByZero
	}
	a, err := ctx.PopArgument()
	if err != nil {
		return err
	}
	ctx.PushResult(a / b)
	return nil
}

// evalMod is the integer remainder of both operands truncated to int64
func evalMod(ctx *CallContext) error {
	a, b, err := popOperands(ctx)
	if err != nil {
		return err
	}
	if int64(b) == 0 {
		return ErrDivisionByZero
	}
	ctx.PushResult(float64(int64(a) % int64(b)))
	return nil
}

// evalAssign writes to an existing local, then to an existing global, otherwise creates a local.
// Nothing is pushed back.
func evalAssign(ctx *CallContext) error {
	v, err := ctx.PopArgument()
	if err != nil {
		return err
	}
	name, err := ctx.PopName()
	if err != nil {
		return err
	}
	if _, ok := ctx.locals[name]; ok {
		ctx.locals[name] = v
		return nil
	}
	if ctx.vm.globals.Has(name) {
		ctx.vm.globals.Set(name, v)
		return nil
	}
	ctx.locals[name] = v
	return nil
}
