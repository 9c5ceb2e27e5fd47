// internal/domain/shipping/resolver.go
package shipping

import (
	"sort"
	"strings"
)

// Responsibility says who operates shipping for the marketplace.
type Responsibility int

const (
	ResponsibilityPlatform Responsibility = iota
	ResponsibilityVendor
)

func ParseResponsibility(s string) Responsibility {
	if strings.TrimSpace(s) == "vendor" {
		return ResponsibilityVendor
	}
	return ResponsibilityPlatform
}

func (r Responsibility) String() string {
	if r == ResponsibilityVendor {
		return "vendor"
	}
	return "platform"
}

// Candidate is one selectable (zone, rate) pair for a destination.
type Candidate struct {
	Zone Zone `json:"zone"`
	Rate Rate `json:"rate"`
}

// CandidateRates enumerates every (zone, rate) pair whose zone covers dest
// and orders the result by preferredOrder.
//
// There is no per-rate filtering here: rate eligibility (free-shipping
// minimums) is a selection-time concern evaluated by RateMeetsCriteria.
//
// Ordering: rates whose key appears in preferredOrder come first, in
// preferredOrder's order; the rest keep their enumeration order after all
// ranked entries. Enumeration walks zones in slice order and each zone's
// rates in sorted key order, so the result is deterministic for identical
// inputs.
func CandidateRates(zones []Zone, dest Destination, preferredOrder []string) []Candidate {
	var out []Candidate
	for _, zone := range zones {
		if !ZoneApplies(zone, dest) {
			continue
		}
		keys := make([]string, 0, len(zone.Rates))
		for k := range zone.Rates {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			out = append(out, Candidate{Zone: zone, Rate: zone.Rates[k]})
		}
	}

	if len(preferredOrder) == 0 || len(out) < 2 {
		return out
	}

	rank := make(map[string]int, len(preferredOrder))
	for i, key := range preferredOrder {
		if _, seen := rank[key]; !seen {
			rank[key] = i
		}
	}
	unranked := len(preferredOrder)

	rankOf := func(c Candidate) int {
		if r, ok := rank[c.Rate.Key]; ok {
			return r
		}
		return unranked
	}

	sort.SliceStable(out, func(i, j int) bool {
		return rankOf(out[i]) < rankOf(out[j])
	})
	return out
}
