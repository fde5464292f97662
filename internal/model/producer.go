package model

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// LegacyProducer is the producer string written by the deprecated
// tensorflow-to-barracuda converter. Models carrying it predate proper
// producer metadata, so the displayed fields get placeholders instead.
const LegacyProducer = "tensorflow_to_barracuda"

const (
	legacyProducerDisplay = "(converted)"
	legacyVersionDisplay  = "(unknown)"
)

// CanonicalName trims and NFC-normalizes a free-text metadata field.
// Applied to display fields only — never to digest input bytes, which are
// absorbed exactly as the host supplied them.
func CanonicalName(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// NormalizeProducer returns the producer and producer-version strings to
// display for a model, substituting placeholders for the legacy converter.
func NormalizeProducer(producer, version string) (string, string) {
	producer = CanonicalName(producer)
	if producer == LegacyProducer {
		return legacyProducerDisplay, legacyVersionDisplay
	}
	return producer, CanonicalName(version)
}
