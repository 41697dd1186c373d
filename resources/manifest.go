package resources

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lunfardo314/mathvm"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

const (
	KindArray   = "array"
	KindTexture = "texture"
	KindCurve   = "curve"
	KindTable   = "table"
	KindKV      = "kv"
)

type (
	// ManifestEntry is one resource definition of the YAML manifest.
	// Which fields are used depends on Kind
	ManifestEntry struct {
		Name   string        `yaml:"name"`
		Kind   string        `yaml:"kind"`
		Size   int           `yaml:"size,omitempty"`
		Path   string        `yaml:"path,omitempty"`
		Curves [][][]float64 `yaml:"curves,omitempty"`
		Rows   [][]float64   `yaml:"rows,omitempty"`
		Values [][]float64   `yaml:"values,omitempty"`
	}

	manifestYAML struct {
		Resources []ManifestEntry `yaml:"resources"`
	}

	Named struct {
		Name     string
		Resource mathvm.Resource
	}

	// Manifest is an ordered list of named resources
	Manifest struct {
		Resources []Named
	}
)

func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseManifest(data, filepath.Dir(path))
}

// ParseManifest builds resources from YAML. Texture paths are relative to baseDir.
// All invalid entries are reported in one error
func ParseManifest(data []byte, baseDir string) (*Manifest, error) {
	var m manifestYAML
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("ParseManifest: %w", err)
	}
	ret := &Manifest{Resources: make([]Named, 0, len(m.Resources))}
	seen := make(map[string]struct{})
	var errs error
	for i := range m.Resources {
		e := &m.Resources[i]
		if !mathvm.ValidName(e.Name) {
			errs = multierr.Append(errs, fmt.Errorf("resource #%d: invalid name '%s'", i, e.Name))
			continue
		}
		if _, dup := seen[e.Name]; dup {
			errs = multierr.Append(errs, fmt.Errorf("resource '%s': repeating name", e.Name))
			continue
		}
		seen[e.Name] = struct{}{}
		r, err := e.build(baseDir)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("resource '%s': %w", e.Name, err))
			continue
		}
		ret.Resources = append(ret.Resources, Named{Name: e.Name, Resource: r})
	}
	if errs != nil {
		return nil, errs
	}
	return ret, nil
}

func (e *ManifestEntry) build(baseDir string) (mathvm.Resource, error) {
	switch e.Kind {
	case KindArray:
		if e.Size <= 0 {
			return nil, fmt.Errorf("array size must be positive")
		}
		return NewDoubleArray(e.Size), nil
	case KindTexture:
		if e.Path == "" {
			return nil, fmt.Errorf("texture path is empty")
		}
		path := e.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		return LoadTexture(path)
	case KindCurve:
		curves := make([][]Key, len(e.Curves))
		for i, pairs := range e.Curves {
			keys, err := KeysFromPairs(pairs)
			if err != nil {
				return nil, fmt.Errorf("curve %d: %w", i, err)
			}
			curves[i] = keys
		}
		return NewCurve(curves...), nil
	case KindTable:
		return NewTable(e.Rows), nil
	case KindKV:
		ret := NewKVInMemory()
		for i, p := range e.Values {
			if len(p) != 2 {
				return nil, fmt.Errorf("value %d: expected [key, value], got %d number(s)", i, len(p))
			}
			ret.Set(p[0], p[1])
		}
		return ret, nil
	}
	return nil, fmt.Errorf("unknown kind '%s'", e.Kind)
}

// Register adds all resources to the VM in manifest order and makes every name a constant holding its index
func (m *Manifest) Register(vm *mathvm.VM) (map[string]int, error) {
	ret := make(map[string]int, len(m.Resources))
	var errs error
	for _, n := range m.Resources {
		idx := vm.RegisterResource(n.Resource)
		ret[n.Name] = idx
		errs = multierr.Append(errs, vm.RegisterConst(n.Name, float64(idx)))
	}
	return ret, errs
}
