package fingerprint

import (
	"encoding/binary"
	"math"
	"strconv"

	"github.com/crimson-sun/beacon/internal/model"
)

// 64-bit FNV parameters, multiply-then-XOR update. The constants, byte
// order, and update rule are a wire contract: identical models must produce
// identical digests on every platform.
const (
	offsetBasis uint64 = 14695981039346656037
	prime       uint64 = 1099511628211
)

// WeightSampleCap bounds how many float32 values per layer feed the digest.
// Hashing a fixed prefix keeps cost flat on arbitrarily large models while
// keeping collisions unlikely enough for telemetry.
const WeightSampleCap = 256

// Digest reduces a model to a decimal string digest: streaming FNV over
// each layer's name bytes followed by the little-endian bytes of the first
// WeightSampleCap weights, in layer order.
func Digest(m model.Model) string {
	h := offsetBasis
	for _, layer := range m.Layers {
		h = absorbString(h, layer.Name)
		n := len(layer.Weights)
		if n > WeightSampleCap {
			n = WeightSampleCap
		}
		h = absorbFloats(h, layer.Weights[:n])
	}
	return strconv.FormatUint(h, 10)
}

// TotalWeightBytes sums the declared dataset byte length of every layer.
// It reflects the full model, not the sampled prefix Digest hashes.
func TotalWeightBytes(m model.Model) int64 {
	var total int64
	for _, layer := range m.Layers {
		total += layer.DatasetBytes
	}
	return total
}

// absorbString updates the accumulator with the UTF-8 bytes of s.
func absorbString(h uint64, s string) uint64 {
	for i := 0; i < len(s); i++ {
		h = (h * prime) ^ uint64(s[i])
	}
	return h
}

// absorbFloats updates the accumulator with the little-endian IEEE 754
// bytes of each value, 4 bytes per float.
func absorbFloats(h uint64, values []float32) uint64 {
	var buf [4]byte
	for _, v := range values {
		binary.LittleEndian.PutUint32(buf[:], math.Float32bits(v))
		for _, b := range buf {
			h = (h * prime) ^ uint64(b)
		}
	}
	return h
}
