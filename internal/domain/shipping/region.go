// internal/domain/shipping/region.go
package shipping

import "strings"

// ZoneApplies decides whether zone covers dest.
//
// The same predicate is used for platform zones and vendor zones; vendor
// zones are not special-cased anywhere.
//
// Rules, in order:
//  1. dest.Country must be in zone.Countries.
//  2. No regions declared -> the country match alone is enough.
//  3. Regions declared but none for dest.Country -> no match (declaring
//     regions makes country-level membership insufficient).
//  4. The region's state allow-list, when non-empty, must contain dest.State.
//  5. The region's ZIP rules, when enabled and non-blank, must match dest.Zip.
func ZoneApplies(zone Zone, dest Destination) bool {
	country := strings.TrimSpace(dest.Country)
	if country == "" || !zone.Countries[country] {
		return false
	}

	if len(zone.Regions) == 0 {
		return true
	}

	region, ok := regionFor(zone.Regions, country)
	if !ok {
		return false
	}

	if len(region.States) > 0 {
		state := strings.TrimSpace(dest.State)
		found := false
		for _, s := range region.States {
			if s == state {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if region.ZipCodesEnabled && strings.TrimSpace(region.ZipCodes) != "" {
		if !MatchesZip(dest.Zip, region.ZipCodes) {
			return false
		}
	}

	return true
}

func regionFor(regions []Region, country string) (Region, bool) {
	for _, r := range regions {
		if strings.TrimSpace(r.Country) == country {
			return r, true
		}
	}
	return Region{}, false
}
