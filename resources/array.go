package resources

import (
	"sync"

	"github.com/lunfardo314/mathvm"
)

// DoubleArray is a fixed size array of float64: read(i) and write(i, v).
// Indices outside the array read as 0 and writes to them are ignored
type DoubleArray struct {
	mutex sync.RWMutex
	data  []float64
}

var _ mathvm.Resource = &DoubleArray{}

func NewDoubleArray(size int) *DoubleArray {
	if size < 0 {
		size = 0
	}
	return &DoubleArray{data: make([]float64, size)}
}

func (a *DoubleArray) Read(args []float64) float64 {
	if len(args) < 1 {
		return 0
	}
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	if i, ok := validIndex(args[0], len(a.data)); ok {
		return a.data[i]
	}
	return 0
}

func (a *DoubleArray) Write(args []float64) {
	if len(args) < 2 {
		return
	}
	a.mutex.Lock()
	defer a.mutex.Unlock()

	if i, ok := validIndex(args[0], len(a.data)); ok {
		a.data[i] = args[1]
	}
}

func (a *DoubleArray) Len() int {
	return len(a.data)
}

// Values returns a copy of the array
func (a *DoubleArray) Values() []float64 {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	ret := make([]float64, len(a.data))
	copy(ret, a.data)
	return ret
}

// validIndex truncates v toward zero
func validIndex(v float64, length int) (int, bool) {
	if v != v || v <= -1 || v >= float64(length) {
		return 0, false
	}
	return int(v), true
}
