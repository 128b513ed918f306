package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prosecheck-hq/prosecheck/domain"
)

func TestWeightBucketSum(t *testing.T) {
	w := WeightBucket{Morphological: 0.25, Contextual: 0.25, Domain: 0.25, Discourse: 0.25}
	if got := w.Sum(); got != 1.0 {
		t.Fatalf("expected sum 1.0, got %v", got)
	}
}

func TestConfidenceWeightsValidateRejectsOffSumBucket(t *testing.T) {
	weights := ConfidenceWeights{
		Default: WeightBucket{Morphological: 0.5, Contextual: 0.5, Domain: 0, Discourse: 0},
		PerRule: map[string]WeightBucket{
			"grammar.subject_verb_agreement": {Morphological: 0.1, Contextual: 0.1, Domain: 0.1, Discourse: 0.1},
		},
	}
	err := weights.validate("confidence_weights.yaml")
	if err == nil {
		t.Fatalf("expected a validation error for a bucket summing to 0.4")
	}
	if _, ok := err.(*ValidationError); !ok {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
}

func TestConfidenceWeightsValidateAcceptsWithinTolerance(t *testing.T) {
	weights := ConfidenceWeights{
		Default: WeightBucket{Morphological: 0.2505, Contextual: 0.2495, Domain: 0.25, Discourse: 0.25},
	}
	if err := weights.validate("confidence_weights.yaml"); err != nil {
		t.Fatalf("expected bucket within 1e-3 tolerance to validate, got %v", err)
	}
}

func TestLinguisticAnchorsApplyDefaults(t *testing.T) {
	var a LinguisticAnchors
	a.applyDefaults()
	if a.MaxBoost != 0.30 {
		t.Fatalf("expected default max boost 0.30, got %v", a.MaxBoost)
	}
	if a.MaxPenalty != 0.35 {
		t.Fatalf("expected default max penalty 0.35, got %v", a.MaxPenalty)
	}

	custom := LinguisticAnchors{MaxBoost: 0.5, MaxPenalty: 0.6}
	custom.applyDefaults()
	if custom.MaxBoost != 0.5 || custom.MaxPenalty != 0.6 {
		t.Fatalf("expected explicit values preserved, got %+v", custom)
	}
}

func TestValidationThresholdsApplyDefaults(t *testing.T) {
	var v ValidationThresholds
	v.applyDefaults()
	if v.UniversalThreshold != 0.35 {
		t.Fatalf("expected default threshold 0.35, got %v", v.UniversalThreshold)
	}
	if v.CacheSize != 1000 {
		t.Fatalf("expected default cache size 1000, got %d", v.CacheSize)
	}
	if v.PerPassTimeoutMS != 30_000 {
		t.Fatalf("expected default per-pass timeout 30000ms, got %d", v.PerPassTimeoutMS)
	}
	if v.MaxStations != 8 {
		t.Fatalf("expected default max stations 8, got %d", v.MaxStations)
	}
}

func TestModifierMatrixConvertsRawStringsToDomainTypes(t *testing.T) {
	v := ValidationThresholds{
		Modifiers: map[string]map[string]float64{
			"technical": {"grammar": 1.1, "tone": 0.9},
		},
	}
	matrix := v.ModifierMatrix()
	inner, ok := matrix[domain.ContentType("technical")]
	if !ok {
		t.Fatalf("expected a technical content-type entry")
	}
	if inner[domain.CategoryGrammar] != 1.1 {
		t.Fatalf("expected grammar modifier 1.1, got %v", inner[domain.CategoryGrammar])
	}
}

func TestLoadYAMLLayerMissingFileIsNotAnError(t *testing.T) {
	var weights ConfidenceWeights
	data, err := loadYAMLLayer(filepath.Join(t.TempDir(), "missing.yaml"), &weights)
	if err != nil {
		t.Fatalf("expected no error for a missing file, got %v", err)
	}
	if data != nil {
		t.Fatalf("expected nil data for a missing file")
	}
}

func TestLoadYAMLLayerParsesPresentFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "confidence_weights.yaml")
	contents := "default:\n  morphological: 0.25\n  contextual: 0.25\n  domain: 0.25\n  discourse: 0.25\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	var weights ConfidenceWeights
	if _, err := loadYAMLLayer(path, &weights); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if weights.Default.Sum() != 1.0 {
		t.Fatalf("expected parsed default bucket to sum to 1.0, got %v", weights.Default.Sum())
	}
}

func TestContentHashIsStableAndOrderSensitive(t *testing.T) {
	a := contentHash([]byte("one"), []byte("two"))
	b := contentHash([]byte("one"), []byte("two"))
	if a != b {
		t.Fatalf("expected deterministic hash")
	}
	c := contentHash([]byte("two"), []byte("one"))
	if a == c {
		t.Fatalf("expected order to affect the hash")
	}
}

func TestEnvFloatFallsBackWhenUnsetOrUnparsable(t *testing.T) {
	if got := envFloat("PROSECHECK_TEST_UNSET_VAR", 0.35); got != 0.35 {
		t.Fatalf("expected fallback 0.35, got %v", got)
	}

	t.Setenv("PROSECHECK_TEST_THRESHOLD", "0.42")
	if got := envFloat("PROSECHECK_TEST_THRESHOLD", 0.35); got != 0.42 {
		t.Fatalf("expected overridden 0.42, got %v", got)
	}

	t.Setenv("PROSECHECK_TEST_THRESHOLD", "not-a-number")
	if got := envFloat("PROSECHECK_TEST_THRESHOLD", 0.35); got != 0.35 {
		t.Fatalf("expected fallback on unparsable value, got %v", got)
	}
}
