// internal/domain/shipping/resolver_test.go
package shipping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testZones() []Zone {
	return []Zone{
		{
			Key:       "domestic",
			Countries: map[string]bool{"US": true},
			Rates: map[string]Rate{
				"standard": {Key: "standard", Type: RateTypeFlat, CalcMethod: CalcPerOrder, AmountPerUnit: 500},
				"express":  {Key: "express", Type: RateTypeFixed, CalcMethod: CalcPerOrder, AmountPerUnit: 1500},
				"free":     {Key: "free", Type: RateTypeFree, Requirements: RequirementMinOrderAmount, MinimumOrderAmount: 5000},
			},
		},
		{
			Key:       "west-coast",
			Countries: map[string]bool{"US": true},
			Regions:   []Region{{Country: "US", States: []string{"CA", "OR", "WA"}}},
			Rates: map[string]Rate{
				"local": {Key: "local", Type: RateTypeFlat, CalcMethod: CalcPerOrder, AmountPerUnit: 300},
			},
		},
		{
			Key:       "europe",
			Countries: map[string]bool{"FR": true, "DE": true},
			Rates: map[string]Rate{
				"intl": {Key: "intl", Type: RateTypeFlat, CalcMethod: CalcPerOrder, AmountPerUnit: 2500},
			},
		},
	}
}

func rateKeys(cs []Candidate) []string {
	keys := make([]string, 0, len(cs))
	for _, c := range cs {
		keys = append(keys, c.Rate.Key)
	}
	return keys
}

func TestCandidateRatesZoneFiltering(t *testing.T) {
	zones := testZones()

	// Texas: domestic only (west-coast region rejects, europe wrong country).
	tx := CandidateRates(zones, Destination{Country: "US", State: "TX"}, nil)
	assert.ElementsMatch(t, []string{"standard", "express", "free"}, rateKeys(tx))

	// California picks up the regional zone too.
	ca := CandidateRates(zones, Destination{Country: "US", State: "CA"}, nil)
	assert.ElementsMatch(t, []string{"standard", "express", "free", "local"}, rateKeys(ca))

	// No matching zone is a valid non-result, not an error.
	jp := CandidateRates(zones, Destination{Country: "JP"}, nil)
	assert.Empty(t, jp)
}

func TestCandidateRatesPreferredOrder(t *testing.T) {
	zones := testZones()
	dest := Destination{Country: "US", State: "CA"}

	got := CandidateRates(zones, dest, []string{"local", "free", "express"})

	// Ranked keys first in preferred order; unranked ("standard") after all
	// ranked entries, keeping its enumeration position.
	assert.Equal(t, []string{"local", "free", "express", "standard"}, rateKeys(got))
}

func TestCandidateRatesUnrankedKeepEnumerationOrder(t *testing.T) {
	zones := testZones()
	dest := Destination{Country: "US", State: "CA"}

	// Only one ranked key: everything else keeps the deterministic
	// enumeration order (zone slice order, rate keys sorted per zone).
	got := CandidateRates(zones, dest, []string{"local"})
	assert.Equal(t, []string{"local", "express", "free", "standard"}, rateKeys(got))
}

func TestCandidateRatesDeterministic(t *testing.T) {
	zones := testZones()
	dest := Destination{Country: "US", State: "CA", Zip: "94103"}
	order := []string{"free", "standard"}

	first := CandidateRates(zones, dest, order)
	for i := 0; i < 10; i++ {
		assert.Equal(t, rateKeys(first), rateKeys(CandidateRates(zones, dest, order)))
	}
}

func TestResolveThenCostIsPure(t *testing.T) {
	// Fixed config + cart + destination: resolving and costing the selected
	// rate must be deterministic across repeated calls.
	zones := testZones()
	dest := Destination{Country: "US", State: "CA"}
	items := []LineItem{
		{Shippable: true, Quantity: 2, TotalAmount: 3000},
		{Shippable: true, Quantity: 1, TotalAmount: 2500},
	}

	candidates := CandidateRates(zones, dest, []string{"standard"})
	require.NotEmpty(t, candidates)
	selected := candidates[0]

	first := PlatformCost(selected.Rate, items)
	require.NotNil(t, first)
	for i := 0; i < 5; i++ {
		again := PlatformCost(selected.Rate, items)
		require.NotNil(t, again)
		assert.Equal(t, *first, *again)
	}
}
