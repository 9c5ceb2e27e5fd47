// internal/domain/shipping/entity.go
package shipping

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidRate = errors.New("shipping: invalid rate")
	ErrInvalidZone = errors.New("shipping: invalid zone")
)

// RateType is the closed set of rate kinds.
// The zero value is RateTypeUnknown so a missing/unrecognized wire value
// never silently becomes a real type.
type RateType int

const (
	RateTypeUnknown RateType = iota
	RateTypeFlat
	RateTypeFixed
	RateTypeFree
)

const (
	rateTypeFlatWire  = "flat_rate"
	rateTypeFixedWire = "fixed_rate"
	rateTypeFreeWire  = "free_shipping"
)

// ParseRateType maps a wire string to a RateType.
// Unrecognized values map to RateTypeUnknown (not an error: the engine
// treats unknown types as "not computable", see CostFor).
func ParseRateType(s string) RateType {
	switch strings.TrimSpace(s) {
	case rateTypeFlatWire:
		return RateTypeFlat
	case rateTypeFixedWire:
		return RateTypeFixed
	case rateTypeFreeWire:
		return RateTypeFree
	default:
		return RateTypeUnknown
	}
}

func (t RateType) String() string {
	switch t {
	case RateTypeFlat:
		return rateTypeFlatWire
	case RateTypeFixed:
		return rateTypeFixedWire
	case RateTypeFree:
		return rateTypeFreeWire
	default:
		return "unknown"
	}
}

func (t RateType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *RateType) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*t = ParseRateType(s)
	return nil
}

// CalcMethod is the closed set of cost calculation policies.
type CalcMethod int

const (
	CalcUnknown CalcMethod = iota
	CalcPerOrder
	CalcPerItem
	CalcPerClass
)

const (
	calcPerOrderWire = "per_order"
	calcPerItemWire  = "per_item"
	calcPerClassWire = "per_class"
)

func ParseCalcMethod(s string) CalcMethod {
	switch strings.TrimSpace(s) {
	case calcPerOrderWire:
		return CalcPerOrder
	case calcPerItemWire:
		return CalcPerItem
	case calcPerClassWire:
		return CalcPerClass
	default:
		return CalcUnknown
	}
}

func (m CalcMethod) String() string {
	switch m {
	case CalcPerOrder:
		return calcPerOrderWire
	case CalcPerItem:
		return calcPerItemWire
	case CalcPerClass:
		return calcPerClassWire
	default:
		return "unknown"
	}
}

func (m CalcMethod) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *CalcMethod) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*m = ParseCalcMethod(s)
	return nil
}

// RequirementMinOrderAmount is the only rate requirement the engine knows.
// A free_shipping rate carrying it is selectable only once the order total
// for the relevant scope reaches Rate.MinimumOrderAmount.
const RequirementMinOrderAmount = "minimum_order_amount"

// Rate is one shipping rate inside a zone.
// Amounts are integer minor currency units.
type Rate struct {
	Key                string           `json:"key"`
	Type               RateType         `json:"type"`
	CalcMethod         CalcMethod       `json:"calculation_method"`
	AmountPerUnit      int64            `json:"amount_per_unit,omitempty"`
	ShippingClasses    map[string]int64 `json:"shipping_classes,omitempty"`
	Requirements       string           `json:"requirements,omitempty"`
	MinimumOrderAmount int64            `json:"minimum_order_amount,omitempty"`
	DeliveryEstimate   string           `json:"delivery_estimate,omitempty"`
}

func (r Rate) validate() error {
	if strings.TrimSpace(r.Key) == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidRate)
	}
	if r.AmountPerUnit < 0 {
		return fmt.Errorf("%w: negative amount_per_unit (key=%s)", ErrInvalidRate, r.Key)
	}
	for class, amount := range r.ShippingClasses {
		if amount < 0 {
			return fmt.Errorf("%w: negative class amount (key=%s class=%s)", ErrInvalidRate, r.Key, class)
		}
	}
	return nil
}

// Region narrows a zone within one country: optional state allow-list and
// optional ZIP rule text (see MatchesZip for the rule grammar).
type Region struct {
	Country         string   `json:"country"`
	States          []string `json:"states,omitempty"`
	ZipCodesEnabled bool     `json:"zip_codes_enabled,omitempty"`
	ZipCodes        string   `json:"zip_codes,omitempty"`
}

// Zone is an immutable shipping zone: a country set, optional per-country
// regions, and the rates offered inside it. Supplied externally (platform
// config or a vendor's own zone set) and never mutated by the engine.
type Zone struct {
	Key       string          `json:"key"`
	Countries map[string]bool `json:"countries"`
	Regions   []Region        `json:"regions,omitempty"`
	Rates     map[string]Rate `json:"rates"`
}

// Validate checks structural invariants of the zone and its rates.
func (z Zone) Validate() error {
	if strings.TrimSpace(z.Key) == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidZone)
	}
	for _, r := range z.Rates {
		if err := r.validate(); err != nil {
			return fmt.Errorf("zone %s: %w", z.Key, err)
		}
	}
	return nil
}

// Destination is where the order ships to. Only the fields the matching
// predicates read; the full address lives in checkout.ShippingState.
type Destination struct {
	Country string `json:"country"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
}

// LineItem is the view of one cart line the rate engine needs.
// Built from cart items by the caller so this package stays a leaf.
type LineItem struct {
	Shippable     bool
	ShippingClass string
	Quantity      int
	TotalAmount   int64
}

// OrderTotal sums TotalAmount over items. This is the "order total for
// scope" used by free-shipping minimum gating (whole cart for platform
// shipping, one vendor's items for vendor shipping).
func OrderTotal(items []LineItem) int64 {
	var total int64
	for _, it := range items {
		total += it.TotalAmount
	}
	return total
}
