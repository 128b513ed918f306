package confidence

import (
	"fmt"
	"sync/atomic"

	"github.com/prosecheck-hq/prosecheck/domain"
)

// defaultModifier is used for any (content_type, category) pair with no
// explicit entry (spec §3, ContentTypeModifier: "a missing entry defaults
// to 1.0").
const defaultModifier = 1.0

// modifierKey identifies one cell of the modifier matrix.
type modifierKey struct {
	ContentType domain.ContentType
	Category    domain.Category
}

// ModifierMatrix is the dynamic per-(content_type, category) multiplier
// table, range [0.5, 1.5] (spec §3). It is swapped wholesale on reload.
type ModifierMatrix struct {
	ptr atomic.Pointer[map[modifierKey]float64]
}

// NewModifierMatrix returns a matrix seeded with the given multipliers.
func NewModifierMatrix(values map[domain.ContentType]map[domain.Category]float64) *ModifierMatrix {
	m := &ModifierMatrix{}
	snapshot := flattenModifiers(values)
	m.ptr.Store(&snapshot)
	return m
}

// Lookup returns the modifier for (contentType, category), defaulting to
// 1.0 when no entry exists.
func (m *ModifierMatrix) Lookup(contentType domain.ContentType, category domain.Category) float64 {
	snap := m.ptr.Load()
	if snap == nil {
		return defaultModifier
	}
	if v, ok := (*snap)[modifierKey{contentType, category}]; ok {
		return v
	}
	return defaultModifier
}

// Swap atomically replaces the matrix's contents.
func (m *ModifierMatrix) Swap(values map[domain.ContentType]map[domain.Category]float64) {
	snapshot := flattenModifiers(values)
	m.ptr.Store(&snapshot)
}

// ValidateComplete does not check pair coverage: Lookup already resolves
// every ContentType x Category pair without an explicit entry to the
// documented 1.0 default. It verifies that every explicit entry in values
// is within the documented [0.5, 1.5] range (a config-authoring check).
// The config loader does not call it.
func (m *ModifierMatrix) ValidateComplete(values map[domain.ContentType]map[domain.Category]float64) error {
	for ct, byCategory := range values {
		for cat, v := range byCategory {
			if v < 0.5 || v > 1.5 {
				return fmt.Errorf("content modifier for (%s, %s) = %v out of range [0.5, 1.5]", ct, cat, v)
			}
		}
	}
	return nil
}

func flattenModifiers(values map[domain.ContentType]map[domain.Category]float64) map[modifierKey]float64 {
	out := make(map[modifierKey]float64)
	for ct, byCategory := range values {
		for cat, v := range byCategory {
			out[modifierKey{ct, cat}] = v
		}
	}
	return out
}
