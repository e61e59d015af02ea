package validation

import (
	"fmt"
	"slices"
	"strings"
)

// ConfidenceLevel is a four-tier reading of the verdict flags.
type ConfidenceLevel string

const (
	ConfidenceHigh      ConfidenceLevel = "high"
	ConfidenceMedium    ConfidenceLevel = "medium"
	ConfidenceLow       ConfidenceLevel = "low"
	ConfidenceUncertain ConfidenceLevel = "uncertain"
)

// AddressType classifies the kind of place an address points to.
type AddressType string

const (
	AddressTypePOBox       AddressType = "po_box"
	AddressTypeLandmark    AddressType = "landmark"
	AddressTypeResidential AddressType = "residential"
	AddressTypeBusiness    AddressType = "business"
	AddressTypeUnknown     AddressType = "unknown"
)

// Validity is the outcome of CheckValidity.
type Validity struct {
	IsValid         bool            `json:"isValid"`
	ConfidenceLevel ConfidenceLevel `json:"confidenceLevel"`
	Issues          []string        `json:"issues"`
}

type derived struct {
	confidence ConfidenceLevel
	validity   Validity
	score      int
}

func (r *Result) compute() *derived {
	r.once.Do(func() {
		r.derived.confidence = r.computeConfidence()
		r.derived.validity = Validity{
			IsValid:         r.verdict.AddressComplete && !r.verdict.HasUnconfirmedComponents,
			ConfidenceLevel: r.derived.confidence,
			Issues:          r.collectIssues(),
		}
		r.derived.score = r.computeScore(r.derived.confidence)
	})
	return &r.derived
}

// ConfidenceLevel evaluates the ladder top-down; the first matching tier wins.
func (r *Result) ConfidenceLevel() ConfidenceLevel {
	return r.compute().confidence
}

func (r *Result) computeConfidence() ConfidenceLevel {
	v := r.verdict
	switch {
	case v.AddressComplete && !v.HasUnconfirmedComponents && !v.HasInferredComponents:
		return ConfidenceHigh
	case v.AddressComplete && !v.HasUnconfirmedComponents:
		return ConfidenceMedium
	case !v.HasUnconfirmedComponents:
		return ConfidenceLow
	default:
		return ConfidenceUncertain
	}
}

// CheckValidity reports whether the address is valid together with every
// issue found, in a fixed order. The returned value is a copy; mutating it
// does not affect later calls.
func (r *Result) CheckValidity() Validity {
	v := r.compute().validity
	v.Issues = slices.Clone(v.Issues)
	return v
}

// IsValid is CheckValidity().IsValid.
func (r *Result) IsValid() bool {
	return r.compute().validity.IsValid
}

// Issues is CheckValidity().Issues.
func (r *Result) Issues() []string {
	return slices.Clone(r.compute().validity.Issues)
}

func (r *Result) collectIssues() []string {
	issues := []string{}

	if !r.verdict.AddressComplete {
		msg := "The address is incomplete."
		if missing := r.address.MissingComponentTypes; len(missing) > 0 {
			msg += fmt.Sprintf(" Missing components: %s.", strings.Join(missing, ", "))
		}
		issues = append(issues, msg)
	}

	if r.verdict.HasUnconfirmedComponents {
		msg := "Some address components could not be confirmed"
		if unconfirmed := r.address.UnconfirmedComponentTypes; len(unconfirmed) > 0 {
			msg += fmt.Sprintf(": %s", strings.Join(unconfirmed, ", "))
		}
		issues = append(issues, msg+".")
	}

	if r.verdict.HasInferredComponents {
		issues = append(issues, "Some address components were inferred and were not part of the input.")
	}

	if r.verdict.HasReplacedComponents {
		issues = append(issues, "Some address components were replaced with corrected values.")
	}

	return issues
}

// Classification

// AddressType applies the rules in order PO box, landmark, residential,
// business. The first match wins.
func (r *Result) AddressType() AddressType {
	switch {
	case r.IsPOBox():
		return AddressTypePOBox
	case r.IsValidLandmark():
		return AddressTypeLandmark
	case r.IsResidential():
		return AddressTypeResidential
	case r.IsBusiness():
		return AddressTypeBusiness
	default:
		return AddressTypeUnknown
	}
}

func (r *Result) IsPOBox() bool {
	return r.metadata.POBox
}

// IsValidLandmark is true for a confirmed address geocoded to a known place.
func (r *Result) IsValidLandmark() bool {
	return !r.verdict.HasUnconfirmedComponents && r.geocode != nil && r.geocode.PlaceID != ""
}

func (r *Result) IsResidential() bool {
	return r.metadata.Residential
}

func (r *Result) IsBusiness() bool {
	return r.metadata.Business
}

// Predicates

func (r *Result) IsUSAddress() bool {
	return r.address.PostalAddress.RegionCode == "US"
}

// IsFullyValidated is true when nothing in the address was unconfirmed,
// inferred or replaced and the address is complete.
func (r *Result) IsFullyValidated() bool {
	v := r.verdict
	return v.AddressComplete &&
		!v.HasUnconfirmedComponents &&
		!v.HasInferredComponents &&
		!v.HasReplacedComponents
}

func (r *Result) IsHighConfidence() bool {
	return r.ConfidenceLevel() == ConfidenceHigh
}

// HasMinimalComponents is true when postal code, locality and at least one
// address line are present.
func (r *Result) HasMinimalComponents() bool {
	p := r.address.PostalAddress
	return p.PostalCode != "" && p.Locality != "" && len(p.AddressLines) > 0
}

func (r *Result) IsExactMatch() bool {
	return !r.verdict.HasInferredComponents && !r.verdict.HasReplacedComponents
}

func (r *Result) IsMinimalValid() bool {
	return r.address.FormattedAddress != "" && r.geocode != nil
}

// IsDeliverable uses the USPS DPV confirmation whenever USPS data is present,
// regardless of region. Otherwise the address must be complete, confirmed
// and geocoded.
func (r *Result) IsDeliverable() bool {
	if r.usps != nil {
		return r.usps.DPVConfirmation == DPVYes
	}
	return r.verdict.AddressComplete && !r.verdict.HasUnconfirmedComponents && r.geocode != nil
}

func (r *Result) IsPreciselyLocated() bool {
	return r.geocode != nil && r.verdict.GeocodeGranularity == GranularityPremise
}

func (r *Result) IsStandardized() bool {
	p := r.address.PostalAddress
	return p.PostalCode != "" && p.Locality != "" && r.address.FormattedAddress != ""
}

// IsShippable defers to IsDeliverable when USPS data is present.
func (r *Result) IsShippable() bool {
	if r.usps != nil {
		return r.IsDeliverable()
	}
	return r.HasMinimalComponents() && !r.verdict.HasUnconfirmedComponents
}

func (r *Result) IsVerificationNeeded() bool {
	v := r.verdict
	return v.HasUnconfirmedComponents || v.HasInferredComponents || !v.AddressComplete
}
