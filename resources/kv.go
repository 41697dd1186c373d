package resources

import (
	"sync"

	"github.com/lunfardo314/mathvm"
	"github.com/lunfardo314/unitrie/common"
)

type kvStore interface {
	common.KVReader
	common.KVWriter
	common.Traversable
}

// KV is a sparse float64 map on a key/value store: read(key) and write(key, v).
// A missing key reads as 0
type KV struct {
	mutex sync.RWMutex
	store kvStore
}

var _ mathvm.Resource = &KV{}

func NewKV(store kvStore) *KV {
	return &KV{store: store}
}

// NewKVInMemory mostly for testing
func NewKVInMemory() *KV {
	return NewKV(common.NewInMemoryKVStore())
}

func (kv *KV) Get(key float64) (float64, bool) {
	kv.mutex.RLock()
	defer kv.mutex.RUnlock()

	return decodeFloat(kv.store.Get(encodeFloat(key)))
}

func (kv *KV) Set(key, value float64) {
	if key != key {
		return
	}
	kv.mutex.Lock()
	defer kv.mutex.Unlock()

	kv.store.Set(encodeFloat(key), encodeFloat(value))
}

// Len is the number of keys. Iterates the whole store
func (kv *KV) Len() int {
	kv.mutex.RLock()
	defer kv.mutex.RUnlock()

	ret := 0
	kv.store.Iterator(nil).IterateKeys(func(_ []byte) bool {
		ret++
		return true
	})
	return ret
}

func (kv *KV) Read(args []float64) float64 {
	if len(args) < 1 {
		return 0
	}
	v, _ := kv.Get(args[0])
	return v
}

func (kv *KV) Write(args []float64) {
	if len(args) < 2 {
		return
	}
	kv.Set(args[0], args[1])
}
