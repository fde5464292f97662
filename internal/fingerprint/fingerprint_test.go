package fingerprint

import (
	"encoding/binary"
	"hash/fnv"
	"math"
	"strconv"
	"testing"

	"github.com/crimson-sun/beacon/internal/model"
)

// oracle computes the expected digest with the standard library's FNV-1
// implementation fed the same byte stream.
func oracle(layers []model.Layer) string {
	h := fnv.New64()
	var buf [4]byte
	for _, l := range layers {
		h.Write([]byte(l.Name))
		n := len(l.Weights)
		if n > WeightSampleCap {
			n = WeightSampleCap
		}
		for _, v := range l.Weights[:n] {
			binary.LittleEndian.PutUint32(buf[:], math.Float32bits(v))
			h.Write(buf[:])
		}
	}
	return strconv.FormatUint(h.Sum64(), 10)
}

func denseModel(weights ...float32) model.Model {
	return model.Model{Layers: []model.Layer{{Name: "Dense1", Weights: weights}}}
}

func TestDigestMatchesOracle(t *testing.T) {
	m := model.Model{Layers: []model.Layer{
		{Name: "Dense1", Weights: []float32{1.0, 2.0}},
		{Name: "Dense2", Weights: []float32{-0.5, 3.25, 0}},
		{Name: "bias", Weights: nil},
	}}
	if got, want := Digest(m), oracle(m.Layers); got != want {
		t.Fatalf("Digest = %s, oracle = %s", got, want)
	}
}

func TestDigestDeterministic(t *testing.T) {
	m := denseModel(1.0, 2.0, 3.0)
	first := Digest(m)
	for i := 0; i < 5; i++ {
		if got := Digest(m); got != first {
			t.Fatalf("call %d: Digest = %s, want %s", i, got, first)
		}
	}
}

func TestDigestEmptyModel(t *testing.T) {
	want := strconv.FormatUint(14695981039346656037, 10)
	if got := Digest(model.Model{}); got != want {
		t.Fatalf("empty model digest = %s, want untouched basis %s", got, want)
	}
}

func TestDigestNilWeightsSameAsEmpty(t *testing.T) {
	nilModel := model.Model{Layers: []model.Layer{{Name: "Dense1", Weights: nil}}}
	emptyModel := model.Model{Layers: []model.Layer{{Name: "Dense1", Weights: []float32{}}}}
	if Digest(nilModel) != Digest(emptyModel) {
		t.Fatal("nil and zero-length weight buffers should digest identically")
	}
}

func TestDigestSensitiveToExtraWeight(t *testing.T) {
	if Digest(denseModel(1.0, 2.0)) == Digest(denseModel(1.0, 2.0, 3.0)) {
		t.Fatal("appending a weight below the sample cap must change the digest")
	}
}

func TestDigestSensitiveToLayerName(t *testing.T) {
	a := model.Model{Layers: []model.Layer{{Name: "Dense1", Weights: []float32{1}}}}
	b := model.Model{Layers: []model.Layer{{Name: "Dense2", Weights: []float32{1}}}}
	if Digest(a) == Digest(b) {
		t.Fatal("layer name must feed the digest")
	}
}

func TestDigestSampleCap(t *testing.T) {
	weights := make([]float32, 300)
	for i := range weights {
		weights[i] = float32(i)
	}
	base := Digest(denseModel(weights...))

	// Mutations past the cap are invisible.
	beyond := make([]float32, 300)
	copy(beyond, weights)
	for i := WeightSampleCap; i < len(beyond); i++ {
		beyond[i] = -1
	}
	if got := Digest(denseModel(beyond...)); got != base {
		t.Fatalf("mutating weights past index %d changed the digest", WeightSampleCap-1)
	}

	// The last sampled weight still matters.
	edge := make([]float32, 300)
	copy(edge, weights)
	edge[WeightSampleCap-1] = -1
	if got := Digest(denseModel(edge...)); got == base {
		t.Fatalf("mutating weight %d should change the digest", WeightSampleCap-1)
	}
}

func TestDigestCappedMatchesOracle(t *testing.T) {
	weights := make([]float32, 1000)
	for i := range weights {
		weights[i] = float32(i) * 0.25
	}
	m := denseModel(weights...)
	if got, want := Digest(m), oracle(m.Layers); got != want {
		t.Fatalf("capped Digest = %s, oracle = %s", got, want)
	}
}

func TestTotalWeightBytesDeclaredLengths(t *testing.T) {
	m := model.Model{Layers: []model.Layer{
		{Name: "a", DatasetBytes: 10, Weights: []float32{1, 2, 3, 4, 5, 6, 7}},
		{Name: "b", DatasetBytes: 0, Weights: []float32{9}},
		{Name: "c", DatasetBytes: 5},
	}}
	if got := TotalWeightBytes(m); got != 15 {
		t.Fatalf("TotalWeightBytes = %d, want 15", got)
	}
}

func TestTotalWeightBytesEmpty(t *testing.T) {
	if got := TotalWeightBytes(model.Model{}); got != 0 {
		t.Fatalf("TotalWeightBytes = %d, want 0", got)
	}
}
