// Package validation interprets address validation responses.
//
// A Result is built once from the raw response payload and is read-only
// afterwards. Every accessor is total: data missing from the payload yields
// a zero value or an empty slice, never an error. Derived judgments such as
// the confidence level, the validity report and the score are computed on
// first use and memoized.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/dukerupert/addressvalidation/internal/address"
)

// ErrNotObject is returned by Parse when the payload is not a JSON object.
var ErrNotObject = errors.New("validation: response payload is not a JSON object")

// Result is an interpreted address validation response.
type Result struct {
	raw          []byte
	responseID   string
	verdict      Verdict
	address      Address
	geocode      *Geocode
	metadata     Metadata
	usps         *USPSData
	englishLatin *Address

	once    sync.Once
	derived derived
}

// Parse builds a Result from a raw response payload. It fails only when the
// payload is not a JSON object. A block of the result whose shape does not
// match is left at its zero value, the same as an absent one.
func Parse(data []byte) (*Result, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, ErrNotObject
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &top); err != nil {
		return nil, fmt.Errorf("validation: decode response: %w", err)
	}

	r := &Result{raw: slices.Clone(trimmed)}
	decodeBlock(top["responseId"], &r.responseID)

	var blocks map[string]json.RawMessage
	if !decodeBlock(top["result"], &blocks) {
		return r, nil
	}
	decodeBlock(blocks["verdict"], &r.verdict)
	decodeBlock(blocks["address"], &r.address)
	decodeBlock(blocks["metadata"], &r.metadata)
	r.geocode = decodeOptional[Geocode](blocks["geocode"])
	r.englishLatin = decodeOptional[Address](blocks["englishLatinAddress"])
	if usps := decodeOptional[USPSData](blocks["uspsData"]); usps != nil && *usps != (USPSData{}) {
		r.usps = usps
	}
	return r, nil
}

// decodeBlock unmarshals raw into v. On a shape mismatch v is reset to its
// zero value and false is returned.
func decodeBlock[T any](raw json.RawMessage, v *T) bool {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		var zero T
		*v = zero
		return false
	}
	return true
}

// decodeOptional returns nil when the block is absent, null or malformed.
func decodeOptional[T any](raw json.RawMessage) *T {
	v := new(T)
	if !decodeBlock(raw, v) {
		return nil
	}
	return v
}

// Raw returns a copy of the payload the result was parsed from.
func (r *Result) Raw() []byte {
	return slices.Clone(r.raw)
}

// ResponseID identifies the response; pass it as previousResponseId when
// revalidating the same address.
func (r *Result) ResponseID() string {
	return r.responseID
}

// Verdict

// Verdict returns a copy of the verdict block.
func (r *Result) Verdict() Verdict {
	return r.verdict
}

func (r *Result) InputGranularity() Granularity {
	return r.verdict.InputGranularity
}

func (r *Result) ValidationGranularity() Granularity {
	return r.verdict.ValidationGranularity
}

func (r *Result) GeocodeGranularity() Granularity {
	return r.verdict.GeocodeGranularity
}

func (r *Result) IsAddressComplete() bool {
	return r.verdict.AddressComplete
}

func (r *Result) HasUnconfirmedComponents() bool {
	return r.verdict.HasUnconfirmedComponents
}

func (r *Result) HasInferredComponents() bool {
	return r.verdict.HasInferredComponents
}

func (r *Result) HasReplacedComponents() bool {
	return r.verdict.HasReplacedComponents
}

func (r *Result) HasSpellCorrectedComponents() bool {
	return r.verdict.HasSpellCorrectedComponents
}

// PossibleNextAction is the service's suggestion for what to do with the
// address (e.g. "FIX", "CONFIRM", "ACCEPT"), or "" if absent.
func (r *Result) PossibleNextAction() string {
	return r.verdict.PossibleNextAction
}

// Address

func (r *Result) FormattedAddress() string {
	return r.address.FormattedAddress
}

// PostalAddress returns a copy of the standardized postal address.
func (r *Result) PostalAddress() address.PostalAddress {
	p := r.address.PostalAddress
	if p.Revision != nil {
		rev := *p.Revision
		p.Revision = &rev
	}
	p.AddressLines = cloneStrings(p.AddressLines)
	p.Recipients = cloneStrings(p.Recipients)
	return p
}

func (r *Result) RegionCode() string {
	return r.address.PostalAddress.RegionCode
}

func (r *Result) PostalCode() string {
	return r.address.PostalAddress.PostalCode
}

func (r *Result) Locality() string {
	return r.address.PostalAddress.Locality
}

func (r *Result) Sublocality() string {
	return r.address.PostalAddress.Sublocality
}

func (r *Result) AdministrativeArea() string {
	return r.address.PostalAddress.AdministrativeArea
}

func (r *Result) AddressLines() []string {
	return cloneStrings(r.address.PostalAddress.AddressLines)
}

func (r *Result) MissingComponentTypes() []string {
	return cloneStrings(r.address.MissingComponentTypes)
}

func (r *Result) UnconfirmedComponentTypes() []string {
	return cloneStrings(r.address.UnconfirmedComponentTypes)
}

func (r *Result) UnresolvedTokens() []string {
	return cloneStrings(r.address.UnresolvedTokens)
}

// EnglishLatinAddress returns the address transliterated to English, present
// only when the request asked for it.
func (r *Result) EnglishLatinAddress() (Address, bool) {
	if r.englishLatin == nil {
		return Address{}, false
	}
	a := *r.englishLatin
	a.AddressComponents = slices.Clone(a.AddressComponents)
	a.MissingComponentTypes = cloneStrings(a.MissingComponentTypes)
	a.UnconfirmedComponentTypes = cloneStrings(a.UnconfirmedComponentTypes)
	a.UnresolvedTokens = cloneStrings(a.UnresolvedTokens)
	return a, true
}

// Components

// Components returns every parsed address component.
func (r *Result) Components() []Component {
	if len(r.address.AddressComponents) == 0 {
		return []Component{}
	}
	return slices.Clone(r.address.AddressComponents)
}

// Component returns the first component of the given type.
func (r *Result) Component(componentType string) (Component, bool) {
	for _, c := range r.address.AddressComponents {
		if c.ComponentType == componentType {
			return c, true
		}
	}
	return Component{}, false
}

// ComponentsWithConfirmation returns the components at the given level.
func (r *Result) ComponentsWithConfirmation(level ConfirmationLevel) []Component {
	return r.filterComponents(func(c Component) bool { return c.ConfirmationLevel == level })
}

// UnconfirmedComponents returns components whose level is anything but CONFIRMED.
func (r *Result) UnconfirmedComponents() []Component {
	return r.filterComponents(func(c Component) bool { return c.ConfirmationLevel != ConfirmationConfirmed })
}

func (r *Result) InferredComponents() []Component {
	return r.filterComponents(func(c Component) bool { return c.Inferred })
}

func (r *Result) ReplacedComponents() []Component {
	return r.filterComponents(func(c Component) bool { return c.Replaced })
}

func (r *Result) SpellCorrectedComponents() []Component {
	return r.filterComponents(func(c Component) bool { return c.SpellCorrected })
}

func (r *Result) UnexpectedComponents() []Component {
	return r.filterComponents(func(c Component) bool { return c.Unexpected })
}

func (r *Result) filterComponents(keep func(Component) bool) []Component {
	out := []Component{}
	for _, c := range r.address.AddressComponents {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

// Geocode

// HasGeocode reports whether the response carried a geocode block.
func (r *Result) HasGeocode() bool {
	return r.geocode != nil
}

// Geocode returns a copy of the geocode block.
func (r *Result) Geocode() (Geocode, bool) {
	if r.geocode == nil {
		return Geocode{}, false
	}
	g := *r.geocode
	g.PlaceTypes = cloneStrings(g.PlaceTypes)
	return g, true
}

func (r *Result) Latitude() float64 {
	if r.geocode == nil {
		return 0
	}
	return r.geocode.Location.Latitude
}

func (r *Result) Longitude() float64 {
	if r.geocode == nil {
		return 0
	}
	return r.geocode.Location.Longitude
}

func (r *Result) PlaceID() string {
	if r.geocode == nil {
		return ""
	}
	return r.geocode.PlaceID
}

func (r *Result) PlaceTypes() []string {
	if r.geocode == nil {
		return []string{}
	}
	return cloneStrings(r.geocode.PlaceTypes)
}

func (r *Result) PlusCode() PlusCode {
	if r.geocode == nil {
		return PlusCode{}
	}
	return r.geocode.PlusCode
}

func (r *Result) Bounds() Viewport {
	if r.geocode == nil {
		return Viewport{}
	}
	return r.geocode.Bounds
}

func (r *Result) FeatureSizeMeters() float64 {
	if r.geocode == nil {
		return 0
	}
	return r.geocode.FeatureSizeMeters
}

// Metadata

func (r *Result) Metadata() Metadata {
	return r.metadata
}

func cloneStrings(s []string) []string {
	if len(s) == 0 {
		return []string{}
	}
	return slices.Clone(s)
}
