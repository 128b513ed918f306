package rewrite

import (
	"testing"

	"github.com/prosecheck-hq/prosecheck/domain"
	"github.com/prosecheck-hq/prosecheck/rules"
)

func TestCanonicalStationsOrder(t *testing.T) {
	stations := CanonicalStations()
	want := []string{"urgent_grammar", "clarity", "structure", "tone", "final_polish"}
	if len(stations) != len(want) {
		t.Fatalf("expected %d stations, got %d", len(want), len(stations))
	}
	for i, s := range stations {
		if s.ID != want[i] {
			t.Fatalf("station %d: expected %q, got %q", i, want[i], s.ID)
		}
	}
}

func TestStationRegistryEnforcesMaxCap(t *testing.T) {
	r := NewStationRegistry(5)
	if err := r.AddStation(Station{ID: "extra"}); err == nil {
		t.Fatalf("expected ErrTooManyStations, registry already has 5 canonical stations")
	}
}

func TestApplicableStationsPreservesRegistryOrder(t *testing.T) {
	r := NewStationRegistry(DefaultMaxStations)
	errs := []rules.Error{
		{Category: domain.CategoryTone},
		{Category: domain.CategoryGrammar},
	}

	applicable := r.ApplicableStations(errs)
	if len(applicable) != 2 {
		t.Fatalf("expected 2 applicable stations, got %d", len(applicable))
	}
	if applicable[0].ID != "urgent_grammar" || applicable[1].ID != "tone" {
		t.Fatalf("expected registry order urgent_grammar,tone; got %s,%s", applicable[0].ID, applicable[1].ID)
	}
}

func TestApplicableStationsSkipsUnmatchedCategories(t *testing.T) {
	r := NewStationRegistry(DefaultMaxStations)
	errs := []rules.Error{{Category: domain.CategoryStructure}}

	applicable := r.ApplicableStations(errs)
	if len(applicable) != 1 || applicable[0].ID != "structure" {
		t.Fatalf("expected only structure station, got %+v", applicable)
	}
}
