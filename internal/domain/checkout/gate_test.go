// internal/domain/checkout/gate_test.go
package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"marketcart/internal/domain/cart"
)

func vendorPtr(id int64) *int64 { return &id }

func shippableItem(key string, vendorID *int64) cart.Item {
	return cart.Item{
		Key:      key,
		Vendor:   cart.VendorInfo{ID: vendorID},
		Shipping: cart.ShippingInfo{IsShippable: true},
	}
}

func digitalItem(key string) cart.Item {
	return cart.Item{Key: key, Vendor: cart.VendorInfo{ID: nil}}
}

func TestCanProceedEmptyCart(t *testing.T) {
	d := CanProceed(GateInput{Authenticated: true})
	assert.False(t, d.OK)
	assert.Equal(t, ReasonEmptyCart, d.Reason)
}

func TestCanProceedDigitalOnlyCart(t *testing.T) {
	// Authenticated, nothing shippable: shipping state is irrelevant.
	d := CanProceed(GateInput{
		Items:         map[string]cart.Item{"a": digitalItem("a")},
		Authenticated: true,
	})
	assert.True(t, d.OK)
	assert.Equal(t, ReasonNone, d.Reason)
}

func TestCanProceedGuestChain(t *testing.T) {
	items := map[string]cart.Item{"a": digitalItem("a")}
	policy := GuestPolicy{
		Behavior:            GuestProceedWithEmail,
		RequireVerification: true,
		RequireTerms:        true,
	}

	in := GateInput{Items: items, GuestPolicy: policy, QuickRegister: &QuickRegisterState{}}

	d := CanProceed(in)
	assert.Equal(t, ReasonGuestEmailInvalid, d.Reason)

	in.QuickRegister.Email = "not-an-email"
	assert.Equal(t, ReasonGuestEmailInvalid, CanProceed(in).Reason)

	in.QuickRegister.Email = "shopper@example.com"
	assert.Equal(t, ReasonGuestNotVerified, CanProceed(in).Reason)

	// A sent+entered code counts as verified.
	in.QuickRegister.MarkCodeSent()
	in.QuickRegister.Code = "123456"
	assert.Equal(t, ReasonTermsNotAccepted, CanProceed(in).Reason)

	in.QuickRegister.TermsAgreed = true
	assert.True(t, CanProceed(in).OK)

	// The registered latch also satisfies verification on its own.
	in.QuickRegister = &QuickRegisterState{Email: "shopper@example.com", TermsAgreed: true}
	in.QuickRegister.Register()
	assert.True(t, CanProceed(in).OK)
}

func TestCanProceedGuestLoginRequired(t *testing.T) {
	d := CanProceed(GateInput{
		Items:       map[string]cart.Item{"a": digitalItem("a")},
		GuestPolicy: GuestPolicy{Behavior: GuestLoginRequired},
	})
	assert.Equal(t, ReasonLoginRequired, d.Reason)
}

func TestCanProceedPlatformShipping(t *testing.T) {
	items := map[string]cart.Item{"a": shippableItem("a", nil)}
	ship := NewShippingState()

	in := GateInput{Items: items, Authenticated: true, Shipping: ship}

	assert.Equal(t, ReasonNoDestination, CanProceed(in).Reason)

	ship.SetCountry("US")
	assert.Equal(t, ReasonPlatformRateNotChosen, CanProceed(in).Reason)

	ship.SelectPlatform("domestic", "standard")
	assert.True(t, CanProceed(in).OK)

	// Changing the country clears the selection; the gate closes again.
	ship.SetCountry("FR")
	assert.Equal(t, ReasonPlatformRateNotChosen, CanProceed(in).Reason)
}

func TestCanProceedVendorShipping(t *testing.T) {
	items := map[string]cart.Item{
		"a": shippableItem("a", vendorPtr(7)),
		"b": shippableItem("b", vendorPtr(9)),
		"c": digitalItem("c"),
	}
	ship := NewShippingState()
	ship.SetCountry("US")

	in := GateInput{Items: items, Authenticated: true, VendorMode: true, Shipping: ship}

	assert.Equal(t, ReasonVendorRateMissing, CanProceed(in).Reason)

	ship.SelectVendor("vendor_7", "z1", "standard")
	assert.Equal(t, ReasonVendorRateMissing, CanProceed(in).Reason, "every shippable vendor needs a selection")

	ship.SelectVendor("vendor_9", "z2", "standard")
	assert.True(t, CanProceed(in).OK, "the platform bucket has no shippable items and needs none")
}

func TestCanProceedVendorSetRecomputedAfterMutation(t *testing.T) {
	items := map[string]cart.Item{
		"a": shippableItem("a", vendorPtr(7)),
		"b": shippableItem("b", vendorPtr(9)),
	}
	ship := NewShippingState()
	ship.SetCountry("US")
	ship.SelectVendor("vendor_7", "z1", "standard")

	in := GateInput{Items: items, Authenticated: true, VendorMode: true, Shipping: ship}
	assert.Equal(t, ReasonVendorRateMissing, CanProceed(in).Reason)

	// Removing vendor 9's only shippable item relaxes its requirement
	// immediately: no cached vendor set survives the mutation.
	delete(items, "b")
	assert.True(t, CanProceed(in).OK)
}

func TestSetCountryClearsSelectionsTogether(t *testing.T) {
	ship := NewShippingState()
	ship.SetCountry("US")
	ship.SelectPlatform("domestic", "standard")
	ship.SelectVendor("vendor_7", "z1", "standard")

	ship.SetCountry("DE")
	assert.Nil(t, ship.Platform)
	assert.Nil(t, ship.Vendors)

	// Setting the same country back is not a change and clears nothing.
	ship.SelectPlatform("eu", "intl")
	ship.SetCountry("DE")
	assert.NotNil(t, ship.Platform)
}
