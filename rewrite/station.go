// Package rewrite implements the assembly-line rewriter: a staged,
// block-scoped rewrite pipeline with per-station progress streaming and a
// concurrency-safe progress tracker.
package rewrite

import (
	"github.com/prosecheck-hq/prosecheck/domain"
	"github.com/prosecheck-hq/prosecheck/rules"
)

// DefaultMaxStations bounds the StationRegistry (spec §4.7, default 8
// from validation_thresholds.yaml).
const DefaultMaxStations = 8

// Station is one named step of the assembly line: an instruction template
// plus a predicate selecting which errors it addresses.
type Station struct {
	ID          string
	Instruction string
	Applies     func(category domain.Category) bool
}

// CanonicalStations returns the five design-level stations in their fixed
// order (spec §4.5): urgent_grammar, clarity, structure, tone,
// final_polish.
func CanonicalStations() []Station {
	return []Station{
		{
			ID:          "urgent_grammar",
			Instruction: "Fix grammar and subject-verb agreement errors without changing meaning.",
			Applies:     func(c domain.Category) bool { return c == domain.CategoryGrammar },
		},
		{
			ID:          "clarity",
			Instruction: "Rewrite passive or vague sentences in the active voice for clarity.",
			Applies: func(c domain.Category) bool {
				return c == domain.CategoryWordUsage || c == domain.CategoryClaims
			},
		},
		{
			ID:          "structure",
			Instruction: "Fix heading capitalization and structural formatting issues.",
			Applies:     func(c domain.Category) bool { return c == domain.CategoryStructure },
		},
		{
			ID:          "tone",
			Instruction: "Adjust tone and register to match the target content type.",
			Applies:     func(c domain.Category) bool { return c == domain.CategoryTone || c == domain.CategoryPronouns },
		},
		{
			ID:          "final_polish",
			Instruction: "Apply remaining punctuation and reference corrections.",
			Applies: func(c domain.Category) bool {
				return c == domain.CategoryPunctuation || c == domain.CategoryReferences || c == domain.CategoryCommands
			},
		},
	}
}

// StationRegistry holds ordered stations and enforces a configurable cap
// (spec §4.7, Open Question #4 resolution: "registry-driven").
type StationRegistry struct {
	stations    []Station
	maxStations int
}

// NewStationRegistry returns a registry seeded with the canonical five
// stations.
func NewStationRegistry(maxStations int) *StationRegistry {
	if maxStations <= 0 {
		maxStations = DefaultMaxStations
	}
	return &StationRegistry{stations: CanonicalStations(), maxStations: maxStations}
}

// ErrTooManyStations is returned by AddStation once the registry is at
// capacity.
type ErrTooManyStations struct{ Max int }

func (e *ErrTooManyStations) Error() string {
	return "rewrite: station registry is at its configured maximum"
}

// AddStation appends a custom station beyond the canonical five, subject
// to the registry's cap.
func (r *StationRegistry) AddStation(s Station) error {
	if len(r.stations) >= r.maxStations {
		return &ErrTooManyStations{Max: r.maxStations}
	}
	r.stations = append(r.stations, s)
	return nil
}

// Stations returns every registered station, in order.
func (r *StationRegistry) Stations() []Station {
	out := make([]Station, len(r.stations))
	copy(out, r.stations)
	return out
}

// ApplicableStations filters the registry to stations with at least one
// matching error, preserving registry order (spec §4.5, "Applicability").
func (r *StationRegistry) ApplicableStations(errs []rules.Error) []Station {
	categories := make(map[domain.Category]bool, len(errs))
	for _, e := range errs {
		categories[e.Category] = true
	}

	var out []Station
	for _, s := range r.stations {
		for cat := range categories {
			if s.Applies(cat) {
				out = append(out, s)
				break
			}
		}
	}
	return out
}
