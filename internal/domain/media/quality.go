// Package media holds the quality ladder, rendition entity and the ports the
// rendition pipeline is built from.
package media

import "fmt"

// Quality is a closed, ordered video quality tier. The order is load-bearing:
// it defines "best available", "closest to requested" and the subset
// relationship used for entitlement filtering.
type Quality string

const (
	QualityP4K   Quality = "P4K"
	QualityP1080 Quality = "P1080"
	QualityP720  Quality = "P720"
	QualityP480  Quality = "P480"
	QualityP360  Quality = "P360"
	QualityP240  Quality = "P240"
)

// qualityOrder lists tiers best-first. Rank is the index here.
var qualityOrder = []Quality{
	QualityP4K,
	QualityP1080,
	QualityP720,
	QualityP480,
	QualityP360,
	QualityP240,
}

// QualityOrder returns the tier ordering, best first.
func QualityOrder() []Quality {
	out := make([]Quality, len(qualityOrder))
	copy(out, qualityOrder)
	return out
}

// Rank returns the tier's position in the ordering (0 = best). Invalid
// qualities rank below every valid one.
func (q Quality) Rank() int {
	for i, known := range qualityOrder {
		if known == q {
			return i
		}
	}
	return len(qualityOrder)
}

// BetterThan reports whether q outranks other.
func (q Quality) BetterThan(other Quality) bool {
	return q.Rank() < other.Rank()
}

func (q Quality) IsValid() bool {
	return q.Rank() < len(qualityOrder)
}

func (q Quality) String() string {
	return string(q)
}

// ParseQuality rejects unknown tier names at the boundary so invalid values
// never reach selection logic.
func ParseQuality(s string) (Quality, error) {
	q := Quality(s)
	if !q.IsValid() {
		return "", fmt.Errorf("unknown quality %q", s)
	}
	return q, nil
}

// QualitySet is the set of tiers an entitlement permits. The zero value and
// the empty set both mean "unrestricted": a plan with no allowed-quality rows
// grants everything, not nothing.
type QualitySet struct {
	allowed map[Quality]struct{}
}

// NewQualitySet builds a set from the given tiers. No tiers means unrestricted.
func NewQualitySet(qualities ...Quality) QualitySet {
	if len(qualities) == 0 {
		return QualitySet{}
	}
	allowed := make(map[Quality]struct{}, len(qualities))
	for _, q := range qualities {
		allowed[q] = struct{}{}
	}
	return QualitySet{allowed: allowed}
}

// Unrestricted returns the set that permits every tier.
func Unrestricted() QualitySet {
	return QualitySet{}
}

// Unrestricted reports whether the set permits every tier.
func (s QualitySet) Unrestricted() bool {
	return len(s.allowed) == 0
}

// Permits reports whether the set allows the given tier.
func (s QualitySet) Permits(q Quality) bool {
	if s.Unrestricted() {
		return true
	}
	_, ok := s.allowed[q]
	return ok
}

// List returns the permitted tiers best-first, or nil when unrestricted.
func (s QualitySet) List() []Quality {
	if s.Unrestricted() {
		return nil
	}
	out := make([]Quality, 0, len(s.allowed))
	for _, q := range qualityOrder {
		if _, ok := s.allowed[q]; ok {
			out = append(out, q)
		}
	}
	return out
}
