// internal/domain/shipping/region_test.go
package shipping

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestZoneAppliesCountryOnly(t *testing.T) {
	zone := Zone{
		Key:       "us",
		Countries: map[string]bool{"US": true},
	}

	// No regions: any US destination matches regardless of state/zip.
	assert.True(t, ZoneApplies(zone, Destination{Country: "US"}))
	assert.True(t, ZoneApplies(zone, Destination{Country: "US", State: "TX", Zip: "00000"}))
	assert.False(t, ZoneApplies(zone, Destination{Country: "CA"}))
	assert.False(t, ZoneApplies(zone, Destination{}))
}

func TestZoneAppliesStates(t *testing.T) {
	zone := Zone{
		Key:       "us-coasts",
		Countries: map[string]bool{"US": true},
		Regions: []Region{
			{Country: "US", States: []string{"CA", "NY"}},
		},
	}

	assert.True(t, ZoneApplies(zone, Destination{Country: "US", State: "CA"}))
	assert.True(t, ZoneApplies(zone, Destination{Country: "US", State: "NY"}))
	assert.False(t, ZoneApplies(zone, Destination{Country: "US", State: "TX"}))
	assert.False(t, ZoneApplies(zone, Destination{Country: "US"}))
}

func TestZoneAppliesRegionsMakeCountryInsufficient(t *testing.T) {
	// Regions declared but none for the destination country: no match even
	// though the country set contains it.
	zone := Zone{
		Key:       "na",
		Countries: map[string]bool{"US": true, "CA": true},
		Regions: []Region{
			{Country: "CA"},
		},
	}

	assert.True(t, ZoneApplies(zone, Destination{Country: "CA"}))
	assert.False(t, ZoneApplies(zone, Destination{Country: "US"}))
}

func TestZoneAppliesZipRules(t *testing.T) {
	zone := Zone{
		Key:       "manhattan",
		Countries: map[string]bool{"US": true},
		Regions: []Region{
			{
				Country:         "US",
				States:          []string{"NY"},
				ZipCodesEnabled: true,
				ZipCodes:        "10000...10299",
			},
		},
	}

	assert.True(t, ZoneApplies(zone, Destination{Country: "US", State: "NY", Zip: "10001"}))
	assert.False(t, ZoneApplies(zone, Destination{Country: "US", State: "NY", Zip: "11201"}))

	// Disabled ZIP rules are ignored even when text is present.
	zone.Regions[0].ZipCodesEnabled = false
	assert.True(t, ZoneApplies(zone, Destination{Country: "US", State: "NY", Zip: "11201"}))

	// Enabled but blank ZIP rules mean no constraint.
	zone.Regions[0].ZipCodesEnabled = true
	zone.Regions[0].ZipCodes = "   "
	assert.True(t, ZoneApplies(zone, Destination{Country: "US", State: "NY", Zip: "11201"}))
}
