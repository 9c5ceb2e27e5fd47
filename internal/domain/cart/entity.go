// internal/domain/cart/entity.go
package cart

import (
	"errors"
	"sort"
	"strings"

	"marketcart/internal/domain/shipping"
)

var ErrInvalidItem = errors.New("cart: invalid item")

// ProductMode selects where an item's unit count is read from.
type ProductMode string

const (
	ProductModeRegular  ProductMode = "regular"
	ProductModeVariable ProductMode = "variable"
)

// Pricing carries the line total in integer minor currency units.
type Pricing struct {
	TotalAmount int64 `json:"total_amount"`
}

// QuantityRule is the editable-quantity constraint for a line.
type QuantityRule struct {
	Enabled bool `json:"enabled"`
	Min     int  `json:"min,omitempty"`
	Max     int  `json:"max,omitempty"`
}

// ShippingInfo is the line's shippability flag plus optional class tag.
type ShippingInfo struct {
	IsShippable   bool   `json:"is_shippable"`
	ShippingClass string `json:"shipping_class,omitempty"`
}

// VendorInfo identifies the vendor a line belongs to. A nil ID means the
// marketplace operator itself sells the item (the platform bucket).
type VendorInfo struct {
	ID                *int64          `json:"id"`
	DisplayName       string          `json:"display_name,omitempty"`
	ShippingZones     []shipping.Zone `json:"shipping_zones,omitempty"`
	ShippingCountries []string        `json:"shipping_countries,omitempty"`
}

// Stock holds the selected quantity for regular products.
type Stock struct {
	Quantity int `json:"quantity,omitempty"`
}

// Variations holds the selected quantity for variable products.
type Variations struct {
	Quantity int `json:"quantity,omitempty"`
}

// Item is one cart line.
//
// The item map is owned by the mutation coordinator
// (usecase.CartUsecase); every other component reads it and never writes.
// Disabled marks an item mid-flight during an optimistic quantity update
// to suppress further interaction.
type Item struct {
	Key         string       `json:"key"`
	Pricing     Pricing      `json:"pricing"`
	Quantity    QuantityRule `json:"quantity"`
	Shipping    ShippingInfo `json:"shipping"`
	Vendor      VendorInfo   `json:"vendor"`
	ProductMode ProductMode  `json:"product_mode"`
	Stock       Stock        `json:"stock,omitempty"`
	Variations  Variations   `json:"variations,omitempty"`
	Disabled    bool         `json:"_disabled,omitempty"`
}

// UnitCount reads the selected quantity: stock for regular products,
// variations otherwise. Zero/absent means "treat as 1" downstream.
func (i Item) UnitCount() int {
	if i.ProductMode == ProductModeRegular {
		return i.Stock.Quantity
	}
	return i.Variations.Quantity
}

// VendorIdentity returns the tagged vendor identity for the line.
func (i Item) VendorIdentity() VendorIdentity {
	if i.Vendor.ID == nil {
		return PlatformIdentity()
	}
	return VendorIdentityOf(*i.Vendor.ID)
}

// ShippingView projects the line into the rate engine's item view.
func (i Item) ShippingView() shipping.LineItem {
	return shipping.LineItem{
		Shippable:     i.Shipping.IsShippable,
		ShippingClass: i.Shipping.ShippingClass,
		Quantity:      i.UnitCount(),
		TotalAmount:   i.Pricing.TotalAmount,
	}
}

// Validate rejects a line that cannot participate in checkout. Backends
// occasionally hand back keyless lines; caching one as a direct-checkout
// item would poison every later request on the session.
func (i Item) Validate() error {
	if strings.TrimSpace(i.Key) == "" {
		return ErrInvalidItem
	}
	return nil
}

// ShippingViews projects an item map into rate-engine line items, walking
// keys in sorted order so downstream computations are deterministic.
func ShippingViews(items map[string]Item) []shipping.LineItem {
	keys := make([]string, 0, len(items))
	for k := range items {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]shipping.LineItem, 0, len(keys))
	for _, k := range keys {
		out = append(out, items[k].ShippingView())
	}
	return out
}

// HasShippable reports whether any line in the map is shippable.
func HasShippable(items map[string]Item) bool {
	for _, it := range items {
		if it.Shipping.IsShippable {
			return true
		}
	}
	return false
}

// CloneItems deep-enough copies an item map (values are copied; zone
// slices stay shared since zones are immutable configuration).
func CloneItems(items map[string]Item) map[string]Item {
	out := make(map[string]Item, len(items))
	for k, v := range items {
		out[k] = v
	}
	return out
}
