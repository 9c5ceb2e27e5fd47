// internal/domain/cart/vendor_test.go
package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketcart/internal/domain/shipping"
)

func vendorPtr(id int64) *int64 { return &id }

func TestVendorIdentity(t *testing.T) {
	p := PlatformIdentity()
	assert.True(t, p.IsPlatform())
	assert.Equal(t, "platform", p.BucketKey())
	_, ok := p.VendorID()
	assert.False(t, ok)

	v := VendorIdentityOf(42)
	assert.False(t, v.IsPlatform())
	assert.Equal(t, "vendor_42", v.BucketKey())
	id, ok := v.VendorID()
	require.True(t, ok)
	assert.Equal(t, int64(42), id)
}

func TestGroupByVendor(t *testing.T) {
	items := map[string]Item{
		"a": {Key: "a", Vendor: VendorInfo{ID: nil}, Shipping: ShippingInfo{IsShippable: true}},
		"b": {Key: "b", Vendor: VendorInfo{ID: vendorPtr(7), DisplayName: "Acme"}},
		"c": {Key: "c", Vendor: VendorInfo{ID: vendorPtr(7)}, Shipping: ShippingInfo{IsShippable: true}},
		"d": {Key: "d", Vendor: VendorInfo{ID: vendorPtr(9), DisplayName: "Globex"}},
	}

	buckets := GroupByVendor(items)
	require.Len(t, buckets, 3)

	platform := buckets["platform"]
	require.NotNil(t, platform, "nil vendor id lands in the platform bucket")
	assert.Len(t, platform.Items, 1)
	assert.True(t, platform.HasShippableProducts)

	acme := buckets["vendor_7"]
	require.NotNil(t, acme)
	assert.Len(t, acme.Items, 2)
	assert.Equal(t, "Acme", acme.DisplayName)
	assert.True(t, acme.HasShippableProducts)

	globex := buckets["vendor_9"]
	require.NotNil(t, globex)
	assert.False(t, globex.HasShippableProducts)
}

func TestGroupByVendorRecomputesShippability(t *testing.T) {
	items := map[string]Item{
		"a": {Key: "a", Vendor: VendorInfo{ID: vendorPtr(7)}, Shipping: ShippingInfo{IsShippable: true}},
		"b": {Key: "b", Vendor: VendorInfo{ID: vendorPtr(7)}},
	}

	first := GroupByVendor(items)
	require.True(t, first["vendor_7"].HasShippableProducts)

	// Removing the last shippable item flips the flag on the next
	// recomputation; the grouping is a projection, not cached state.
	delete(items, "a")
	second := GroupByVendor(items)
	require.NotNil(t, second["vendor_7"])
	assert.False(t, second["vendor_7"].HasShippableProducts)
}

func TestSortedBucketKeysPlatformFirst(t *testing.T) {
	items := map[string]Item{
		"a": {Key: "a", Vendor: VendorInfo{ID: vendorPtr(9)}},
		"b": {Key: "b", Vendor: VendorInfo{ID: nil}},
		"c": {Key: "c", Vendor: VendorInfo{ID: vendorPtr(2)}},
	}
	keys := SortedBucketKeys(GroupByVendor(items))
	assert.Equal(t, []string{"platform", "vendor_2", "vendor_9"}, keys)
}

func TestUseVendorShipping(t *testing.T) {
	vendorOnly := GroupByVendor(map[string]Item{
		"a": {Key: "a", Vendor: VendorInfo{ID: vendorPtr(7)}},
	})
	platformOnly := GroupByVendor(map[string]Item{
		"a": {Key: "a", Vendor: VendorInfo{ID: nil}},
	})
	mixed := GroupByVendor(map[string]Item{
		"a": {Key: "a", Vendor: VendorInfo{ID: nil}},
		"b": {Key: "b", Vendor: VendorInfo{ID: vendorPtr(7)}},
	})

	// Vendor mode needs multivendor + vendor responsibility + a real vendor.
	assert.True(t, UseVendorShipping(true, shipping.ResponsibilityVendor, vendorOnly))
	assert.True(t, UseVendorShipping(true, shipping.ResponsibilityVendor, mixed))
	assert.False(t, UseVendorShipping(true, shipping.ResponsibilityVendor, platformOnly))
	assert.False(t, UseVendorShipping(false, shipping.ResponsibilityVendor, mixed))
	assert.False(t, UseVendorShipping(true, shipping.ResponsibilityPlatform, mixed))
}

func TestUnitCountByProductMode(t *testing.T) {
	regular := Item{Key: "r", ProductMode: ProductModeRegular, Stock: Stock{Quantity: 3}, Variations: Variations{Quantity: 9}}
	variable := Item{Key: "v", ProductMode: ProductModeVariable, Stock: Stock{Quantity: 3}, Variations: Variations{Quantity: 9}}

	assert.Equal(t, 3, regular.UnitCount())
	assert.Equal(t, 9, variable.UnitCount())
}
