// internal/application/usecase/shipping_usecase.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"

	cartdom "marketcart/internal/domain/cart"
	shipdom "marketcart/internal/domain/shipping"
)

var (
	ErrShippingNotConfigured = errors.New("shipping_usecase: repository not configured")
)

// RateOption is one selectable shipping option with its computed cost.
// A nil Cost means "not computable" for the current calculation policy,
// which is a valid non-result, not an error. Ineligible options are
// returned (cost intact) but flagged so the caller disables them.
type RateOption struct {
	Zone     shipdom.Zone `json:"zone"`
	Rate     shipdom.Rate `json:"rate"`
	Cost     *int64       `json:"cost"`
	Eligible bool         `json:"eligible"`
}

// ShippingUsecase resolves the shipping options offered for a destination,
// for both platform-operated and vendor-operated responsibility modes.
type ShippingUsecase struct {
	repo shipdom.Repository
}

func NewShippingUsecase(repo shipdom.Repository) *ShippingUsecase {
	return &ShippingUsecase{repo: repo}
}

// PlatformOptions resolves options against the platform's zones. The
// eligibility scope is the whole cart.
func (uc *ShippingUsecase) PlatformOptions(ctx context.Context, items map[string]cartdom.Item, dest shipdom.Destination) ([]RateOption, error) {
	if uc == nil || uc.repo == nil {
		return nil, ErrShippingNotConfigured
	}

	zones, err := uc.repo.PlatformZones(ctx)
	if err != nil {
		log.Printf("[shipping_usecase] platform zones fetch failed: %v", err)
		return nil, fmt.Errorf("shipping_usecase: platform zones: %w", err)
	}
	order, err := uc.repo.PreferredRateOrder(ctx)
	if err != nil {
		// Ordering is cosmetic; fall back to enumeration order.
		log.Printf("[shipping_usecase] preferred rate order fetch failed: %v (using enumeration order)", err)
		order = nil
	}

	lines := cartdom.ShippingViews(items)
	total := shipdom.OrderTotal(lines)

	candidates := shipdom.CandidateRates(zones, dest, order)
	options := make([]RateOption, 0, len(candidates))
	for _, c := range candidates {
		options = append(options, RateOption{
			Zone:     c.Zone,
			Rate:     c.Rate,
			Cost:     shipdom.PlatformCost(c.Rate, lines),
			Eligible: shipdom.RateMeetsCriteria(c.Rate, total),
		})
	}
	return options, nil
}

// VendorOptions resolves options per vendor bucket. Buckets without
// shippable products are skipped. Each vendor's eligibility scope is its
// own items only.
//
// A vendor's zones ride on its cart lines when present; otherwise they
// are loaded from configuration. The platform bucket (platform-sold items
// in a vendor-mode cart) ships under the platform's own zones.
func (uc *ShippingUsecase) VendorOptions(ctx context.Context, buckets map[string]*cartdom.VendorBucket, dest shipdom.Destination) (map[string][]RateOption, error) {
	if uc == nil || uc.repo == nil {
		return nil, ErrShippingNotConfigured
	}

	order, err := uc.repo.PreferredRateOrder(ctx)
	if err != nil {
		log.Printf("[shipping_usecase] preferred rate order fetch failed: %v (using enumeration order)", err)
		order = nil
	}

	out := make(map[string][]RateOption, len(buckets))
	for _, key := range cartdom.SortedBucketKeys(buckets) {
		bucket := buckets[key]
		if !bucket.HasShippableProducts {
			continue
		}

		zones := bucket.ShippingZones
		if len(zones) == 0 {
			if id, ok := bucket.Identity.VendorID(); ok {
				zones, err = uc.repo.VendorZones(ctx, id)
				if err != nil {
					log.Printf("[shipping_usecase] vendor zones fetch failed vendor=%s: %v", key, err)
					return nil, fmt.Errorf("shipping_usecase: vendor zones (%s): %w", key, err)
				}
			} else {
				zones, err = uc.repo.PlatformZones(ctx)
				if err != nil {
					log.Printf("[shipping_usecase] platform zones fetch failed for platform bucket: %v", err)
					return nil, fmt.Errorf("shipping_usecase: platform zones (%s): %w", key, err)
				}
			}
		}

		lines := cartdom.ShippingViews(bucket.Items)
		total := shipdom.OrderTotal(lines)

		candidates := shipdom.CandidateRates(zones, dest, order)
		options := make([]RateOption, 0, len(candidates))
		for _, c := range candidates {
			options = append(options, RateOption{
				Zone:     c.Zone,
				Rate:     c.Rate,
				Cost:     shipdom.VendorCost(c.Rate, lines),
				Eligible: shipdom.RateMeetsCriteria(c.Rate, total),
			})
		}
		out[key] = options
	}
	return out, nil
}
