package resources

import (
	"fmt"
	"sort"

	"github.com/lunfardo314/mathvm"
)

type Key struct {
	Time  float64
	Value float64
}

// Curve is a set of piecewise linear curves: read(curve, t).
// Before the first key and after the last one the curve is constant
type Curve struct {
	curves [][]Key
}

var _ mathvm.Resource = &Curve{}

// NewCurve sorts keys of every curve by time
func NewCurve(curves ...[]Key) *Curve {
	ret := &Curve{curves: make([][]Key, len(curves))}
	for i, keys := range curves {
		sorted := make([]Key, len(keys))
		copy(sorted, keys)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Time < sorted[j].Time
		})
		ret.curves[i] = sorted
	}
	return ret
}

// KeysFromPairs converts [time, value] pairs
func KeysFromPairs(pairs [][]float64) ([]Key, error) {
	ret := make([]Key, len(pairs))
	for i, p := range pairs {
		if len(p) != 2 {
			return nil, fmt.Errorf("key %d: expected [time, value], got %d number(s)", i, len(p))
		}
		ret[i] = Key{Time: p[0], Value: p[1]}
	}
	return ret, nil
}

func (c *Curve) NumCurves() int {
	return len(c.curves)
}

func (c *Curve) Eval(curve int, t float64) float64 {
	if curve < 0 || curve >= len(c.curves) {
		return 0
	}
	keys := c.curves[curve]
	switch {
	case len(keys) == 0:
		return 0
	case t <= keys[0].Time:
		return keys[0].Value
	case t >= keys[len(keys)-1].Time:
		return keys[len(keys)-1].Value
	}
	i := sort.Search(len(keys), func(i int) bool {
		return keys[i].Time > t
	})
	k0, k1 := keys[i-1], keys[i]
	if k1.Time == k0.Time {
		return k1.Value
	}
	return k0.Value + (t-k0.Time)/(k1.Time-k0.Time)*(k1.Value-k0.Value)
}

func (c *Curve) Read(args []float64) float64 {
	if len(args) < 2 {
		return 0
	}
	i, ok := validIndex(args[0], len(c.curves))
	if !ok {
		return 0
	}
	return c.Eval(i, args[1])
}

func (c *Curve) Write(_ []float64) {}
