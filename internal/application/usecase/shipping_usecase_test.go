// internal/application/usecase/shipping_usecase_test.go
package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartdom "marketcart/internal/domain/cart"
	shipdom "marketcart/internal/domain/shipping"
)

type fakeZoneRepo struct {
	platform []shipdom.Zone
	vendors  map[int64][]shipdom.Zone
	order    []string
}

func (f *fakeZoneRepo) PlatformZones(ctx context.Context) ([]shipdom.Zone, error) {
	return f.platform, nil
}

func (f *fakeZoneRepo) VendorZones(ctx context.Context, vendorID int64) ([]shipdom.Zone, error) {
	return f.vendors[vendorID], nil
}

func (f *fakeZoneRepo) PreferredRateOrder(ctx context.Context) ([]string, error) {
	return f.order, nil
}

func usZone(key string, rates map[string]shipdom.Rate) shipdom.Zone {
	return shipdom.Zone{Key: key, Countries: map[string]bool{"US": true}, Rates: rates}
}

func TestPlatformOptions(t *testing.T) {
	repo := &fakeZoneRepo{
		platform: []shipdom.Zone{
			usZone("domestic", map[string]shipdom.Rate{
				"standard": {Key: "standard", Type: shipdom.RateTypeFlat, CalcMethod: shipdom.CalcPerOrder, AmountPerUnit: 500},
				"free": {
					Key: "free", Type: shipdom.RateTypeFree,
					Requirements: shipdom.RequirementMinOrderAmount, MinimumOrderAmount: 5000,
				},
			}),
		},
		order: []string{"free", "standard"},
	}
	uc := NewShippingUsecase(repo)

	items := map[string]cartdom.Item{
		"a": {
			Key:      "a",
			Shipping: cartdom.ShippingInfo{IsShippable: true},
			Pricing:  cartdom.Pricing{TotalAmount: 3000},
			Stock:    cartdom.Stock{Quantity: 1}, ProductMode: cartdom.ProductModeRegular,
		},
	}

	opts, err := uc.PlatformOptions(context.Background(), items, shipdom.Destination{Country: "US"})
	require.NoError(t, err)
	require.Len(t, opts, 2)

	// Preferred order puts free first even while ineligible.
	assert.Equal(t, "free", opts[0].Rate.Key)
	assert.False(t, opts[0].Eligible, "cart total 3000 is under the 5000 minimum")
	require.NotNil(t, opts[0].Cost)
	assert.Equal(t, int64(0), *opts[0].Cost, "ineligible free shipping still costs 0, never a fabricated value")

	assert.Equal(t, "standard", opts[1].Rate.Key)
	assert.True(t, opts[1].Eligible)
	require.NotNil(t, opts[1].Cost)
	assert.Equal(t, int64(500), *opts[1].Cost)
}

func TestVendorOptionsSkipsNonShippableBuckets(t *testing.T) {
	id7, id9 := int64(7), int64(9)
	repo := &fakeZoneRepo{
		vendors: map[int64][]shipdom.Zone{
			7: {usZone("v7", map[string]shipdom.Rate{
				"flat": {Key: "flat", Type: shipdom.RateTypeFlat, CalcMethod: shipdom.CalcPerOrder, AmountPerUnit: 800},
			})},
		},
	}
	uc := NewShippingUsecase(repo)

	buckets := cartdom.GroupByVendor(map[string]cartdom.Item{
		"a": {Key: "a", Vendor: cartdom.VendorInfo{ID: &id7}, Shipping: cartdom.ShippingInfo{IsShippable: true}},
		"b": {Key: "b", Vendor: cartdom.VendorInfo{ID: &id9}}, // digital only
	})

	out, err := uc.VendorOptions(context.Background(), buckets, shipdom.Destination{Country: "US"})
	require.NoError(t, err)
	require.Len(t, out, 1, "buckets without shippable products are skipped")

	opts := out["vendor_7"]
	require.Len(t, opts, 1)
	require.NotNil(t, opts[0].Cost)
	assert.Equal(t, int64(800), *opts[0].Cost)
}

func TestVendorOptionsMixedCartServesPlatformBucket(t *testing.T) {
	id7 := int64(7)
	repo := &fakeZoneRepo{
		platform: []shipdom.Zone{usZone("domestic", map[string]shipdom.Rate{
			"standard": {Key: "standard", Type: shipdom.RateTypeFlat, CalcMethod: shipdom.CalcPerOrder, AmountPerUnit: 500},
		})},
		vendors: map[int64][]shipdom.Zone{
			7: {usZone("v7", map[string]shipdom.Rate{
				"flat": {Key: "flat", Type: shipdom.RateTypeFlat, CalcMethod: shipdom.CalcPerOrder, AmountPerUnit: 800},
			})},
		},
	}
	uc := NewShippingUsecase(repo)

	// A platform-sold shippable item alongside a vendor item puts the cart
	// in vendor mode, so the platform bucket needs selectable rates too.
	items := map[string]cartdom.Item{
		"p": {Key: "p", Shipping: cartdom.ShippingInfo{IsShippable: true}},
		"v": {Key: "v", Vendor: cartdom.VendorInfo{ID: &id7}, Shipping: cartdom.ShippingInfo{IsShippable: true}},
	}
	buckets := cartdom.GroupByVendor(items)
	require.True(t, cartdom.UseVendorShipping(true, shipdom.ResponsibilityVendor, buckets))

	out, err := uc.VendorOptions(context.Background(), buckets, shipdom.Destination{Country: "US"})
	require.NoError(t, err)

	opts := out[cartdom.PlatformBucketKey]
	require.Len(t, opts, 1, "platform bucket falls back to the platform zones")
	assert.Equal(t, "domestic", opts[0].Zone.Key)
	require.NotNil(t, opts[0].Cost)
	assert.Equal(t, int64(500), *opts[0].Cost)

	// With a selection for every shippable bucket the gate opens.
	cfg := platformConfig()
	cfg.Multivendor = true
	cfg.Responsibility = shipdom.ResponsibilityVendor
	chk := NewCheckoutUsecase(newMemSessions(), nil, cfg)
	ctx := context.Background()
	_, err = chk.UpdateDestination(ctx, "s1", DestinationUpdate{Country: "US", Zip: "10001"})
	require.NoError(t, err)
	_, err = chk.SelectVendorRate(ctx, "s1", "vendor_7", "v7", "flat")
	require.NoError(t, err)
	sess, err := chk.SelectVendorRate(ctx, "s1", cartdom.PlatformBucketKey, "domestic", "standard")
	require.NoError(t, err)

	d := chk.Readiness(sess, items, true)
	assert.True(t, d.OK, "blocked: %s", d.Reason)
}

func TestVendorOptionsPreferZonesOnCartLines(t *testing.T) {
	id7 := int64(7)
	lineZones := []shipdom.Zone{usZone("line", map[string]shipdom.Rate{
		"flat": {Key: "flat", Type: shipdom.RateTypeFixed, CalcMethod: shipdom.CalcPerOrder, AmountPerUnit: 300},
	})}
	repo := &fakeZoneRepo{
		vendors: map[int64][]shipdom.Zone{7: {usZone("config", nil)}},
	}
	uc := NewShippingUsecase(repo)

	buckets := cartdom.GroupByVendor(map[string]cartdom.Item{
		"a": {
			Key:      "a",
			Vendor:   cartdom.VendorInfo{ID: &id7, ShippingZones: lineZones},
			Shipping: cartdom.ShippingInfo{IsShippable: true},
		},
	})

	out, err := uc.VendorOptions(context.Background(), buckets, shipdom.Destination{Country: "US"})
	require.NoError(t, err)
	require.Len(t, out["vendor_7"], 1)
	assert.Equal(t, "line", out["vendor_7"][0].Zone.Key)
}
