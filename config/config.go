// Package config implements the layered, typed, cached configuration
// loader: built-in defaults merged with YAML on disk and environment
// overrides, with TTL-based cache invalidation, a content hash recorded on
// each snapshot, and an fsnotify-driven hot reload. The hash is not compared
// on access: a file changed on disk is picked up when the TTL expires or the
// watcher reloads.
package config

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/prosecheck-hq/prosecheck/domain"
)

// LoadError wraps a failure to read or parse a config layer
// (ConfigurationLoadError, spec §4.8).
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string { return fmt.Sprintf("config: loading %s: %v", e.Path, e.Err) }
func (e *LoadError) Unwrap() error { return e.Err }

// ValidationError reports a schema or range violation
// (ConfigurationValidationError, spec §4.8).
type ValidationError struct {
	Path    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: validating %s: %s", e.Path, e.Message)
}

// WeightBucket is the {morphological, contextual, domain, discourse} mix
// for one rule or content-type bucket in confidence_weights.yaml.
type WeightBucket struct {
	Morphological float64 `yaml:"morphological"`
	Contextual    float64 `yaml:"contextual"`
	Domain        float64 `yaml:"domain"`
	Discourse     float64 `yaml:"discourse"`
}

const weightSumTolerance = 1e-3

// Sum returns the bucket's total weight.
func (w WeightBucket) Sum() float64 {
	return w.Morphological + w.Contextual + w.Domain + w.Discourse
}

// ConfidenceWeights is confidence_weights.yaml: a default mix plus
// per-rule and per-content-type overrides.
type ConfidenceWeights struct {
	Default        WeightBucket            `yaml:"default"`
	PerRule        map[string]WeightBucket `yaml:"per_rule"`
	PerContentType map[string]WeightBucket `yaml:"per_content_type"`
}

func (c ConfidenceWeights) validate(path string) error {
	check := func(label string, b WeightBucket) error {
		if math.Abs(b.Sum()-1.0) > weightSumTolerance {
			return &ValidationError{Path: path, Message: fmt.Sprintf("weight bucket %q sums to %.4f, want 1.0 ± %.3g", label, b.Sum(), weightSumTolerance)}
		}
		return nil
	}
	if err := check("default", c.Default); err != nil {
		return err
	}
	for rule, b := range c.PerRule {
		if err := check("per_rule."+rule, b); err != nil {
			return err
		}
	}
	for ct, b := range c.PerContentType {
		if err := check("per_content_type."+ct, b); err != nil {
			return err
		}
	}
	return nil
}

// AnchorGroupConfig is one named pattern group from linguistic_anchors.yaml.
type AnchorGroupConfig struct {
	Name    string  `yaml:"name"`
	Amount  float64 `yaml:"amount"`
	Window  int     `yaml:"window"`
	Pattern string  `yaml:"pattern"`
}

// LinguisticAnchors is linguistic_anchors.yaml.
type LinguisticAnchors struct {
	Groups     []AnchorGroupConfig `yaml:"groups"`
	MaxBoost   float64             `yaml:"max_boost"`
	MaxPenalty float64             `yaml:"max_penalty"`
}

func (a *LinguisticAnchors) applyDefaults() {
	if a.MaxBoost == 0 {
		a.MaxBoost = 0.30
	}
	if a.MaxPenalty == 0 {
		a.MaxPenalty = 0.35
	}
}

// ValidationThresholds is validation_thresholds.yaml.
type ValidationThresholds struct {
	UniversalThreshold float64                       `yaml:"universal_threshold"`
	CacheSize          int                           `yaml:"cache_size"`
	PerPassTimeoutMS   int                           `yaml:"per_pass_timeout_ms"`
	MaxStations        int                           `yaml:"max_stations"`
	Reliability        map[string]float64            `yaml:"reliability"`
	Modifiers          map[string]map[string]float64 `yaml:"modifiers"`
}

func (v *ValidationThresholds) applyDefaults() {
	if v.UniversalThreshold == 0 {
		v.UniversalThreshold = 0.35
	}
	if v.CacheSize == 0 {
		v.CacheSize = 1000
	}
	if v.PerPassTimeoutMS == 0 {
		v.PerPassTimeoutMS = 30_000
	}
	if v.MaxStations == 0 {
		v.MaxStations = 8
	}
}

// ModifierMatrix converts the raw YAML modifier map into the
// domain-typed nested map confidence.NewModifierMatrix expects.
func (v *ValidationThresholds) ModifierMatrix() map[domain.ContentType]map[domain.Category]float64 {
	out := make(map[domain.ContentType]map[domain.Category]float64, len(v.Modifiers))
	for ct, byCategory := range v.Modifiers {
		inner := make(map[domain.Category]float64, len(byCategory))
		for cat, val := range byCategory {
			inner[domain.Category(cat)] = val
		}
		out[domain.ContentType(ct)] = inner
	}
	return out
}

// Snapshot is one immutable, fully merged and validated configuration
// version (spec §4.8, "swapping in a new copy-on-write snapshot").
type Snapshot struct {
	Weights    ConfidenceWeights
	Anchors    LinguisticAnchors
	Thresholds ValidationThresholds
	hash       string
}

// Hash returns the content hash this snapshot was built from.
func (s Snapshot) Hash() string { return s.hash }

// loadYAMLLayer reads one YAML file into out and returns its raw bytes; a
// missing file yields (nil, nil) and leaves out untouched. Defaults and the
// env override are applied afterwards by Loader.reload, mirroring the
// teacher's LoadScanConfig built-in-defaults-then-disk pattern generalized
// with an env layer.
func loadYAMLLayer(path string, out any) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &LoadError{Path: path, Err: err}
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return data, nil
}

// contentHash returns a stable hex digest over the concatenation of every
// layer's raw bytes, exposed as Snapshot.Hash. Reloads do not compare it.
func contentHash(parts ...[]byte) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write(p)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// envFloat reads an environment override, falling back to cur when unset
// or unparsable.
func envFloat(key string, cur float64) float64 {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return cur
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return cur
	}
	return v
}
