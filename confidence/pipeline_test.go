package confidence

import (
	"testing"
	"time"

	"github.com/prosecheck-hq/prosecheck/domain"
)

func newTestPipeline() *Pipeline {
	rel := NewReliabilityTable(map[string]float64{
		"references.product_names.first_mention": 0.9,
		"grammar.passive_voice":                   0.6,
	})
	mods := NewModifierMatrix(map[domain.ContentType]map[domain.Category]float64{
		domain.ContentTechnical: {domain.CategoryReferences: 1.2},
	})
	return New(rel, mods, DefaultThreshold, 1000, time.Minute)
}

func TestNormalizeIsPureFunction(t *testing.T) {
	p := newTestPipeline()
	in := RawInput{Signal: 0.8, Text: "Watson supports many languages.", Position: 0}

	c1, b1 := p.Normalize(in, "references.product_names.first_mention", domain.CategoryReferences, domain.ContentTechnical, nil)
	c2, b2 := p.Normalize(in, "references.product_names.first_mention", domain.CategoryReferences, domain.ContentTechnical, nil)

	if c1 != c2 {
		t.Fatalf("expected identical confidence across calls, got %v vs %v", c1, c2)
	}
	if b1 != b2 {
		t.Fatalf("expected identical provenance across calls, got %+v vs %+v", b1, b2)
	}
}

func TestNormalizeClampsToRange(t *testing.T) {
	p := newTestPipeline()
	in := RawInput{Signal: 5.0, Text: "x", Position: 0}
	conf, bd := p.Normalize(in, "unknown.rule", domain.CategoryOther, domain.ContentGeneral, nil)
	if conf < 0 || conf > 1 {
		t.Fatalf("confidence out of range: %v", conf)
	}
	if bd.FinalConfidence != conf {
		t.Fatalf("breakdown final confidence mismatch: %v vs %v", bd.FinalConfidence, conf)
	}
}

func TestUnknownRuleGetsConservativeDefaults(t *testing.T) {
	p := newTestPipeline()
	in := RawInput{Signal: 0.5, Text: "hello", Position: 0}
	_, bd := p.Normalize(in, "totally.unknown.rule", domain.CategoryOther, domain.ContentGeneral, nil)
	if bd.RuleReliability != 0.5 {
		t.Fatalf("expected default reliability 0.5, got %v", bd.RuleReliability)
	}
	if bd.ContentModifier != 1.0 {
		t.Fatalf("expected default modifier 1.0, got %v", bd.ContentModifier)
	}
	if bd.FloorGuardTriggered {
		t.Fatalf("floor guard should not trigger without evidence")
	}
}

func TestFloorGuardRequiresBothEvidenceAndReliability(t *testing.T) {
	p := newTestPipeline()

	// High evidence, high reliability: guard should trigger.
	in := RawInput{Signal: 0.1, Evidence: 0.95, HasEvidence: true, Text: "x", Position: 0}
	conf, bd := p.Normalize(in, "references.product_names.first_mention", domain.CategoryReferences, domain.ContentMarketing, nil)
	if !bd.FloorGuardTriggered {
		t.Fatalf("expected floor guard to trigger with e=0.95, r=0.9")
	}
	if conf < floorGuardMinFinal {
		t.Fatalf("expected floor-guarded confidence >= %v, got %v", floorGuardMinFinal, conf)
	}

	// High evidence, but low reliability: guard must NOT trigger (Open
	// Question #3 resolution: both e and r required).
	in2 := RawInput{Signal: 0.1, Evidence: 0.95, HasEvidence: true, Text: "x", Position: 0}
	_, bd2 := p.Normalize(in2, "grammar.passive_voice", domain.CategoryGrammar, domain.ContentMarketing, nil)
	if bd2.FloorGuardTriggered {
		t.Fatalf("floor guard should not trigger when reliability < 0.85")
	}
}

func TestEmptyTextDefaultsSignalToHalf(t *testing.T) {
	p := newTestPipeline()
	in := RawInput{Signal: 0.9, Text: "", Position: 0}
	_, bd := p.Normalize(in, "some.rule", domain.CategoryOther, domain.ContentGeneral, nil)
	if bd.Signal != 0.5 {
		t.Fatalf("expected signal 0.5 for empty text, got %v", bd.Signal)
	}
}

func TestThresholdOverrideWinsOverPipelineDefault(t *testing.T) {
	p := newTestPipeline()
	override := 0.99
	in := RawInput{Signal: 0.9, Text: "hello world", Position: 0}
	_, bd := p.Normalize(in, "grammar.passive_voice", domain.CategoryGrammar, domain.ContentGeneral, &override)
	if bd.UniversalThreshold != override {
		t.Fatalf("expected override threshold %v, got %v", override, bd.UniversalThreshold)
	}
}

func TestProvenanceReconstructsMeetsThreshold(t *testing.T) {
	p := newTestPipeline()
	in := RawInput{Signal: 0.9, Text: "hello world", Position: 0}
	_, bd := p.Normalize(in, "references.product_names.first_mention", domain.CategoryReferences, domain.ContentTechnical, nil)
	if bd.Reconstruct() != bd.MeetsThreshold {
		t.Fatalf("reconstructed meets_threshold (%v) != stored (%v)", bd.Reconstruct(), bd.MeetsThreshold)
	}
}

func TestThresholdOneHidesEverything(t *testing.T) {
	p := newTestPipeline()
	one := 1.0
	in := RawInput{Signal: 1.0, Evidence: 1.0, HasEvidence: true, Text: "x"}
	conf, bd := p.Normalize(in, "references.product_names.first_mention", domain.CategoryReferences, domain.ContentTechnical, &one)
	if bd.MeetsThreshold && conf < 1.0 {
		t.Fatalf("threshold=1.0 should only meet for a perfect score")
	}
}

func TestThresholdZeroShowsEverything(t *testing.T) {
	p := newTestPipeline()
	zero := 0.0
	in := RawInput{Signal: 0.01, Text: "x"}
	_, bd := p.Normalize(in, "unknown", domain.CategoryOther, domain.ContentGeneral, &zero)
	if !bd.MeetsThreshold {
		t.Fatalf("threshold=0.0 should always meet")
	}
}

func TestCombineAnchorsDiminishingReturns(t *testing.T) {
	groups := []AnchorGroup{
		{Name: "a", Amount: 0.2},
		{Name: "b", Amount: 0.2},
		{Name: "c", Amount: 0.2},
	}
	total := CombineAnchors(groups, 0.30, 0.35)
	// 0.2 + 0.2*0.8 + 0.2*0.64 = 0.2 + 0.16 + 0.128 = 0.488, capped at 0.30.
	if total != 0.30 {
		t.Fatalf("expected cap at 0.30, got %v", total)
	}
}

func TestCombineAnchorsPenaltyCap(t *testing.T) {
	groups := []AnchorGroup{
		{Name: "a", Amount: -0.3},
		{Name: "b", Amount: -0.3},
	}
	total := CombineAnchors(groups, 0.30, 0.35)
	if total != -0.35 {
		t.Fatalf("expected penalty cap at -0.35, got %v", total)
	}
}

func TestClassifyKeywordProfiles(t *testing.T) {
	got := Classify("Click the button, then select configure and follow the steps to install the package.")
	if got != domain.ContentProcedural {
		t.Fatalf("expected procedural classification, got %v", got)
	}
}

func TestModifierMatrixDefaultsMissingEntry(t *testing.T) {
	m := NewModifierMatrix(nil)
	if m.Lookup(domain.ContentGeneral, domain.CategoryGrammar) != 1.0 {
		t.Fatalf("expected default modifier 1.0 for missing entry")
	}
}

func TestAdjustmentLayerIsBoundedAndOptIn(t *testing.T) {
	layer := NewAdjustmentLayer()
	layer.Set("r1", domain.ContentGeneral, 10.0) // should clamp to 0.05
	got := layer.Apply("r1", domain.ContentGeneral, 1.0)
	if got != 1.05 {
		t.Fatalf("expected bounded adjustment to 1.05, got %v", got)
	}

	p := newTestPipeline()
	before, _ := p.Normalize(RawInput{Signal: 0.5, Text: "x"}, "r1", domain.CategoryGrammar, domain.ContentGeneral, nil)
	p.SetAdjustmentLayer(layer)
	p.InvalidateCache()
	after, _ := p.Normalize(RawInput{Signal: 0.5, Text: "x"}, "r1", domain.CategoryGrammar, domain.ContentGeneral, nil)
	if after < before {
		t.Fatalf("expected adjustment layer to raise confidence, got before=%v after=%v", before, after)
	}
}
