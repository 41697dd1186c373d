package mathvm

import "github.com/puzpuzpuz/xsync"

// Globals is the variable store shared by all executions of a VM
type Globals struct {
	m *xsync.MapOf[string, float64]
}

func NewGlobals() *Globals {
	return &Globals{m: xsync.NewMapOf[float64]()}
}

func (g *Globals) Has(name string) bool {
	_, ok := g.m.Load(name)
	return ok
}

func (g *Globals) Get(name string) (float64, bool) {
	return g.m.Load(name)
}

func (g *Globals) Set(name string, v float64) {
	g.m.Store(name, v)
}

func (g *Globals) Len() int {
	return g.m.Size()
}

// Snapshot copies the current values. Values written concurrently may or may not be seen.
func (g *Globals) Snapshot() map[string]float64 {
	ret := make(map[string]float64, g.m.Size())
	g.m.Range(func(name string, v float64) bool {
		ret[name] = v
		return true
	})
	return ret
}

func (g *Globals) names() []string {
	ret := make([]string, 0, g.m.Size())
	g.m.Range(func(name string, _ float64) bool {
		ret = append(ret, name)
		return true
	})
	return ret
}
