package model

import "testing"

func TestCanonicalNameTrims(t *testing.T) {
	if got := CanonicalName("  MyBehavior\t"); got != "MyBehavior" {
		t.Fatalf("CanonicalName = %q, want %q", got, "MyBehavior")
	}
}

func TestCanonicalNameNFC(t *testing.T) {
	// "é" as 'e' + combining acute accent should normalize to the
	// precomposed form.
	decomposed := "café"
	composed := "café"
	if got := CanonicalName(decomposed); got != composed {
		t.Fatalf("CanonicalName = %q, want %q", got, composed)
	}
}

func TestNormalizeProducerPassthrough(t *testing.T) {
	p, v := NormalizeProducer("onnxruntime", "1.26.0")
	if p != "onnxruntime" || v != "1.26.0" {
		t.Fatalf("NormalizeProducer = %q/%q, want onnxruntime/1.26.0", p, v)
	}
}

func TestNormalizeProducerLegacy(t *testing.T) {
	p, v := NormalizeProducer(LegacyProducer, "0.3.1")
	if p != "(converted)" || v != "(unknown)" {
		t.Fatalf("legacy producer mapped to %q/%q", p, v)
	}
}
