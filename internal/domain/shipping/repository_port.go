// internal/domain/shipping/repository_port.go
package shipping

import "context"

// Repository is the read port for shipping configuration.
//
// Storage recommendation (Postgres):
// - shipping_zones(key, countries text[], vendor_id nullable)
// - shipping_zone_regions(zone_key, country, states text[], zip_codes_enabled, zip_codes)
// - shipping_rates(zone_key, key, type, calculation_method, amount_per_unit,
//   shipping_classes jsonb, requirements, minimum_order_amount, delivery_estimate)
//
// Zones are immutable configuration: implementations may cache freely.
type Repository interface {
	// PlatformZones returns the marketplace operator's zones.
	PlatformZones(ctx context.Context) ([]Zone, error)

	// VendorZones returns one vendor's own zones. Empty slice when the
	// vendor has none configured (not an error).
	VendorZones(ctx context.Context, vendorID int64) ([]Zone, error)

	// PreferredRateOrder returns the configured display/ranking order of
	// rate keys used by CandidateRates.
	PreferredRateOrder(ctx context.Context) ([]string, error)
}
