// internal/adapters/out/db/shippingZone_repository_pg.go
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lib/pq"

	shipdom "marketcart/internal/domain/shipping"
)

// ShippingZoneRepositoryPG implements shipping.Repository on Postgres.
//
// Schema:
//
//	shipping_zones(zone_key PK, vendor_id BIGINT NULL, countries TEXT[])
//	shipping_zone_regions(zone_key, country, states TEXT[], zip_codes_enabled BOOL, zip_codes TEXT)
//	shipping_rates(zone_key, rate_key, rate_type, calculation_method,
//	               amount_per_unit BIGINT, shipping_classes JSONB,
//	               requirements TEXT, minimum_order_amount BIGINT,
//	               delivery_estimate TEXT)
//	shipping_rate_order(rate_key, position INT)
//
// vendor_id NULL marks a platform zone.
type ShippingZoneRepositoryPG struct {
	DB *sql.DB
}

func NewShippingZoneRepositoryPG(db *sql.DB) *ShippingZoneRepositoryPG {
	return &ShippingZoneRepositoryPG{DB: db}
}

// ========================
// shipping.Repository impl
// ========================

func (r *ShippingZoneRepositoryPG) PlatformZones(ctx context.Context) ([]shipdom.Zone, error) {
	return r.zonesWhere(ctx, "vendor_id IS NULL")
}

func (r *ShippingZoneRepositoryPG) VendorZones(ctx context.Context, vendorID int64) ([]shipdom.Zone, error) {
	return r.zonesWhere(ctx, "vendor_id = $1", vendorID)
}

func (r *ShippingZoneRepositoryPG) PreferredRateOrder(ctx context.Context) ([]string, error) {
	const q = `
SELECT rate_key
FROM shipping_rate_order
ORDER BY position ASC, rate_key ASC`
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("shipping_zone_repository_pg: rate order: %w", err)
	}
	defer rows.Close()

	var order []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		order = append(order, key)
	}
	return order, rows.Err()
}

// ========================
// internals
// ========================

func (r *ShippingZoneRepositoryPG) zonesWhere(ctx context.Context, where string, args ...any) ([]shipdom.Zone, error) {
	q := fmt.Sprintf(`
SELECT zone_key, countries
FROM shipping_zones
WHERE %s
ORDER BY zone_key ASC`, where)

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("shipping_zone_repository_pg: zones: %w", err)
	}
	defer rows.Close()

	var zones []shipdom.Zone
	for rows.Next() {
		var (
			key       string
			countries pq.StringArray
		)
		if err := rows.Scan(&key, &countries); err != nil {
			return nil, err
		}

		zone := shipdom.Zone{
			Key:       key,
			Countries: make(map[string]bool, len(countries)),
			Rates:     map[string]shipdom.Rate{},
		}
		for _, c := range countries {
			if cc := strings.TrimSpace(c); cc != "" {
				zone.Countries[cc] = true
			}
		}
		zones = append(zones, zone)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range zones {
		regions, err := r.regionsFor(ctx, zones[i].Key)
		if err != nil {
			return nil, err
		}
		zones[i].Regions = regions

		rates, err := r.ratesFor(ctx, zones[i].Key)
		if err != nil {
			return nil, err
		}
		zones[i].Rates = rates

		if err := zones[i].Validate(); err != nil {
			return nil, fmt.Errorf("shipping_zone_repository_pg: %w", err)
		}
	}
	return zones, nil
}

func (r *ShippingZoneRepositoryPG) regionsFor(ctx context.Context, zoneKey string) ([]shipdom.Region, error) {
	const q = `
SELECT country, states, zip_codes_enabled, COALESCE(zip_codes, '')
FROM shipping_zone_regions
WHERE zone_key = $1
ORDER BY country ASC`
	rows, err := r.DB.QueryContext(ctx, q, zoneKey)
	if err != nil {
		return nil, fmt.Errorf("shipping_zone_repository_pg: regions: %w", err)
	}
	defer rows.Close()

	var regions []shipdom.Region
	for rows.Next() {
		var (
			reg    shipdom.Region
			states pq.StringArray
		)
		if err := rows.Scan(&reg.Country, &states, &reg.ZipCodesEnabled, &reg.ZipCodes); err != nil {
			return nil, err
		}
		reg.States = []string(states)
		regions = append(regions, reg)
	}
	return regions, rows.Err()
}

func (r *ShippingZoneRepositoryPG) ratesFor(ctx context.Context, zoneKey string) (map[string]shipdom.Rate, error) {
	const q = `
SELECT rate_key, rate_type, calculation_method, amount_per_unit,
       COALESCE(shipping_classes, '{}'::jsonb), COALESCE(requirements, ''),
       COALESCE(minimum_order_amount, 0), COALESCE(delivery_estimate, '')
FROM shipping_rates
WHERE zone_key = $1`
	rows, err := r.DB.QueryContext(ctx, q, zoneKey)
	if err != nil {
		return nil, fmt.Errorf("shipping_zone_repository_pg: rates: %w", err)
	}
	defer rows.Close()

	rates := map[string]shipdom.Rate{}
	for rows.Next() {
		var (
			rate       shipdom.Rate
			rateType   string
			calcMethod string
			classesRaw []byte
		)
		if err := rows.Scan(
			&rate.Key, &rateType, &calcMethod, &rate.AmountPerUnit,
			&classesRaw, &rate.Requirements,
			&rate.MinimumOrderAmount, &rate.DeliveryEstimate,
		); err != nil {
			return nil, err
		}

		rate.Type = shipdom.ParseRateType(rateType)
		rate.CalcMethod = shipdom.ParseCalcMethod(calcMethod)

		if len(classesRaw) > 0 {
			if err := json.Unmarshal(classesRaw, &rate.ShippingClasses); err != nil {
				return nil, fmt.Errorf("shipping_zone_repository_pg: shipping_classes (rate=%s): %w", rate.Key, err)
			}
		}

		rates[rate.Key] = rate
	}
	return rates, rows.Err()
}
