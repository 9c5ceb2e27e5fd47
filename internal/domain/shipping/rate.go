// internal/domain/shipping/rate.go
package shipping

// RateMeetsCriteria evaluates rate eligibility against the order total of
// the relevant scope (whole cart for platform shipping, one vendor's items
// for vendor shipping).
//
// Every rate is eligible except a free_shipping rate that declares the
// minimum_order_amount requirement; that one needs the scope total to reach
// Rate.MinimumOrderAmount (0 when absent, i.e. always met).
//
// Eligibility gates selectability only. It never changes cost: an
// ineligible free_shipping rate still costs 0, it just must not be offered.
func RateMeetsCriteria(rate Rate, orderTotalForScope int64) bool {
	if rate.Type == RateTypeFree && rate.Requirements == RequirementMinOrderAmount {
		return orderTotalForScope >= rate.MinimumOrderAmount
	}
	return true
}

// PlatformCost computes the cost of rate over items under platform-operated
// shipping. A nil result means "not computable" (unknown type or calculation
// method) and is distinct from a zero cost.
func PlatformCost(rate Rate, items []LineItem) *int64 {
	if rate.Type == RateTypeFree {
		return costOf(0)
	}
	if rate.Type == RateTypeUnknown {
		return nil
	}

	switch rate.CalcMethod {
	case CalcPerOrder:
		return costOf(rate.AmountPerUnit)

	case CalcPerItem:
		var total int64
		for _, it := range items {
			if !it.Shippable {
				continue
			}
			total += perUnitFor(rate, it) * quantityOf(it)
		}
		return costOf(total)

	case CalcPerClass:
		// Base cost plus a per-class surcharge for every class-tagged item.
		// Additive on top of the base, unlike per_item where the class
		// amount replaces the base per-unit rate.
		total := rate.AmountPerUnit
		for _, it := range items {
			if it.ShippingClass == "" {
				continue
			}
			if classAmount, ok := rate.ShippingClasses[it.ShippingClass]; ok {
				total += classAmount * quantityOf(it)
			}
		}
		return costOf(total)

	default:
		return nil
	}
}

// VendorCost computes the cost of rate over one vendor's items under
// vendor-operated shipping. Only flat/fixed/free rate types are supported
// in vendor mode; anything else is not computable (nil).
func VendorCost(rate Rate, items []LineItem) *int64 {
	switch rate.Type {
	case RateTypeFree:
		return costOf(0)
	case RateTypeFlat, RateTypeFixed:
		// supported, fall through to the calculation method
	default:
		return nil
	}

	switch rate.CalcMethod {
	case CalcPerOrder:
		return costOf(rate.AmountPerUnit)

	case CalcPerItem:
		var total int64
		for _, it := range items {
			if !it.Shippable {
				continue
			}
			total += perUnitFor(rate, it) * quantityOf(it)
		}
		return costOf(total)

	case CalcPerClass:
		// Vendor per_class takes the maximum per-unit rate across the
		// vendor's shippable items, not a sum. Deliberate asymmetry with
		// platform per_class, preserved as observed behavior.
		var max int64
		found := false
		for _, it := range items {
			if !it.Shippable {
				continue
			}
			found = true
			if v := perUnitFor(rate, it); v > max {
				max = v
			}
		}
		if !found {
			return costOf(0)
		}
		return costOf(max)

	default:
		return nil
	}
}

// perUnitFor returns the item's class override when the rate maps its
// shipping class, else the rate's base per-unit amount.
func perUnitFor(rate Rate, it LineItem) int64 {
	if it.ShippingClass != "" {
		if v, ok := rate.ShippingClasses[it.ShippingClass]; ok {
			return v
		}
	}
	return rate.AmountPerUnit
}

func quantityOf(it LineItem) int64 {
	if it.Quantity <= 0 {
		return 1
	}
	return int64(it.Quantity)
}

func costOf(v int64) *int64 { return &v }
