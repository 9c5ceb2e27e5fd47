// internal/domain/checkout/gate.go
package checkout

import (
	"regexp"
	"strings"

	"marketcart/internal/domain/cart"
)

// BlockReason enumerates why checkout cannot proceed, so the caller can
// message the specific blocker instead of a bare false.
type BlockReason string

const (
	ReasonNone                  BlockReason = ""
	ReasonEmptyCart             BlockReason = "empty_cart"
	ReasonLoginRequired         BlockReason = "login_required"
	ReasonGuestEmailInvalid     BlockReason = "guest_email_invalid"
	ReasonGuestNotVerified      BlockReason = "guest_not_verified"
	ReasonTermsNotAccepted      BlockReason = "terms_not_accepted"
	ReasonNoDestination         BlockReason = "no_destination"
	ReasonPlatformRateNotChosen BlockReason = "platform_rate_not_chosen"
	ReasonVendorRateMissing     BlockReason = "vendor_rate_missing"
)

// Decision is the gate's verdict.
type Decision struct {
	OK     bool        `json:"can_proceed"`
	Reason BlockReason `json:"reason,omitempty"`
}

func blocked(r BlockReason) Decision { return Decision{Reason: r} }

var emailRe = regexp.MustCompile(`\S+@\S+\.\S+`)

// ValidEmail applies the deliberately loose guest-email check: anything
// shaped like something@something.something passes. Deliverability is the
// verification code's job, not the regex's.
func ValidEmail(email string) bool {
	return emailRe.MatchString(strings.TrimSpace(email))
}

// GateInput is everything the readiness decision reads. The gate itself
// is a side-effect-free predicate over it.
type GateInput struct {
	Items         map[string]cart.Item
	Authenticated bool
	GuestPolicy   GuestPolicy
	VendorMode    bool
	Shipping      *ShippingState
	QuickRegister *QuickRegisterState
}

// CanProceed evaluates checkout readiness as an ordered chain,
// short-circuiting on the first unmet condition:
//
//  1. cart non-empty
//  2. guest identity (when unauthenticated): valid email, verification
//     when required, terms acceptance when required
//  3. shipping (when anything is shippable): destination chosen, and a
//     zone+rate selection for the platform, or one per vendor bucket with
//     shippable products under vendor mode
//
// Vendor completeness is recomputed from the current item map on every
// call; caching the "vendors with shippable products" set across cart
// mutations would keep gating on a vendor whose last shippable item was
// just removed.
func CanProceed(in GateInput) Decision {
	if len(in.Items) == 0 {
		return blocked(ReasonEmptyCart)
	}

	if !in.Authenticated {
		if d := guestDecision(in.GuestPolicy, in.QuickRegister); !d.OK {
			return d
		}
	}

	if cart.HasShippable(in.Items) {
		if d := shippingDecision(in); !d.OK {
			return d
		}
	}

	return Decision{OK: true}
}

func guestDecision(policy GuestPolicy, q *QuickRegisterState) Decision {
	if policy.Behavior != GuestProceedWithEmail {
		return blocked(ReasonLoginRequired)
	}

	if q == nil || !ValidEmail(q.Email) {
		return blocked(ReasonGuestEmailInvalid)
	}

	if policy.RequireVerification && !q.Verified() {
		return blocked(ReasonGuestNotVerified)
	}

	if policy.RequireTerms && !q.TermsAgreed {
		return blocked(ReasonTermsNotAccepted)
	}

	return Decision{OK: true}
}

func shippingDecision(in GateInput) Decision {
	if in.Shipping == nil || strings.TrimSpace(in.Shipping.Country) == "" {
		return blocked(ReasonNoDestination)
	}

	if !in.VendorMode {
		if !in.Shipping.Platform.chosen() {
			return blocked(ReasonPlatformRateNotChosen)
		}
		return Decision{OK: true}
	}

	// Fresh recomputation per call, see the CanProceed doc.
	for key, bucket := range cart.GroupByVendor(in.Items) {
		if !bucket.HasShippableProducts {
			continue
		}
		if !in.Shipping.VendorSelection(key).chosen() {
			return blocked(ReasonVendorRateMissing)
		}
	}
	return Decision{OK: true}
}
