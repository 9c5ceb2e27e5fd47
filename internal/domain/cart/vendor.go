// internal/domain/cart/vendor.go
package cart

import (
	"fmt"
	"sort"

	"marketcart/internal/domain/shipping"
)

// PlatformBucketKey is the derived map key for lines sold by the
// marketplace operator itself. Derived from VendorIdentity at the map
// edge only; logic branches on the identity, never on this string.
const PlatformBucketKey = "platform"

// VendorIdentity is a tagged identity: either the platform itself or a
// concrete vendor. The zero value is the platform.
type VendorIdentity struct {
	vendor bool
	id     int64
}

func PlatformIdentity() VendorIdentity { return VendorIdentity{} }

func VendorIdentityOf(id int64) VendorIdentity {
	return VendorIdentity{vendor: true, id: id}
}

func (v VendorIdentity) IsPlatform() bool { return !v.vendor }

// VendorID returns the vendor id and true, or (0, false) for the platform.
func (v VendorIdentity) VendorID() (int64, bool) {
	if !v.vendor {
		return 0, false
	}
	return v.id, true
}

// BucketKey derives the string key used in grouped maps and wire payloads.
func (v VendorIdentity) BucketKey() string {
	if !v.vendor {
		return PlatformBucketKey
	}
	return fmt.Sprintf("vendor_%d", v.id)
}

// VendorBucket is one vendor's slice of the cart, derived, never persisted.
type VendorBucket struct {
	Identity             VendorIdentity  `json:"-"`
	Key                  string          `json:"key"`
	DisplayName          string          `json:"display_name,omitempty"`
	Items                map[string]Item `json:"items"`
	HasShippableProducts bool            `json:"has_shippable_products"`
	ShippingZones        []shipping.Zone `json:"shipping_zones,omitempty"`
	ShippingCountries    []string        `json:"shipping_countries,omitempty"`
}

// GroupByVendor partitions items into vendor buckets.
//
// A pure projection of the item map: recomputed on every item-map change,
// never mutated incrementally. HasShippableProducts is derived from the
// bucket's own items, so removing a vendor's last shippable item flips it
// on the next recomputation.
func GroupByVendor(items map[string]Item) map[string]*VendorBucket {
	buckets := make(map[string]*VendorBucket)

	for key, it := range items {
		identity := it.VendorIdentity()
		bk := identity.BucketKey()

		b, ok := buckets[bk]
		if !ok {
			b = &VendorBucket{
				Identity: identity,
				Key:      bk,
				Items:    make(map[string]Item),
			}
			buckets[bk] = b
		}

		b.Items[key] = it
		if it.Shipping.IsShippable {
			b.HasShippableProducts = true
		}

		// Vendor metadata rides on the lines; first non-empty value wins.
		if b.DisplayName == "" {
			b.DisplayName = it.Vendor.DisplayName
		}
		if len(b.ShippingZones) == 0 {
			b.ShippingZones = it.Vendor.ShippingZones
		}
		if len(b.ShippingCountries) == 0 {
			b.ShippingCountries = it.Vendor.ShippingCountries
		}
	}

	return buckets
}

// SortedBucketKeys returns bucket keys in stable order, platform first.
func SortedBucketKeys(buckets map[string]*VendorBucket) []string {
	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i] == PlatformBucketKey {
			return true
		}
		if keys[j] == PlatformBucketKey {
			return false
		}
		return keys[i] < keys[j]
	})
	return keys
}

// UseVendorShipping decides the shipping responsibility mode for the
// current cart: vendor mode applies only when multivendor is enabled,
// responsibility is "vendor", and the cart actually involves a vendor
// (more than one bucket, or a single bucket that is not the platform's).
func UseVendorShipping(multivendor bool, resp shipping.Responsibility, buckets map[string]*VendorBucket) bool {
	if !multivendor || resp != shipping.ResponsibilityVendor {
		return false
	}
	if len(buckets) > 1 {
		return true
	}
	for _, b := range buckets {
		if !b.Identity.IsPlatform() {
			return true
		}
	}
	return false
}
