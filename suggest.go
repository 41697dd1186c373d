package mathvm

import (
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

const maxSuggestions = 3

// Names returns all function, constant and global variable names
func (vm *VM) Names() []string {
	t := vm.registryMutex.RLock()
	ret := make([]string, 0, len(vm.funByName)+len(vm.constants))
	for name := range vm.funByName {
		ret = append(ret, name)
	}
	for name := range vm.constants {
		ret = append(ret, name)
	}
	vm.registryMutex.RUnlock(t)

	ret = append(ret, vm.globals.names()...)
	sort.Strings(ret)
	return ret
}

// Suggest returns up to 3 known names close to name, best match first
func (vm *VM) Suggest(name string) []string {
	if name == "" {
		return nil
	}
	ranks := fuzzy.RankFindFold(name, vm.Names())
	sort.Sort(ranks)

	ret := make([]string, 0, maxSuggestions)
	for _, r := range ranks {
		if len(ret) == maxSuggestions {
			break
		}
		ret = append(ret, r.Target)
	}
	return ret
}
