package resources

import (
	"encoding/binary"
	"math"
)

// always assume littleendian
var byteOrder = binary.LittleEndian

func encodeFloat(v float64) []byte {
	if v == 0 {
		// -0 and +0 are the same key
		v = 0
	}
	var ret [8]byte
	byteOrder.PutUint64(ret[:], math.Float64bits(v))
	return ret[:]
}

func decodeFloat(data []byte) (float64, bool) {
	if len(data) != 8 {
		return 0, false
	}
	return math.Float64frombits(byteOrder.Uint64(data)), true
}
