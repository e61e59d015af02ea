package validation

import "github.com/dukerupert/addressvalidation/internal/address"

// Granularity is the precision of an address, a validation or a geocode.
type Granularity string

const (
	GranularityUnspecified      Granularity = "GRANULARITY_UNSPECIFIED"
	GranularitySubPremise       Granularity = "SUB_PREMISE"
	GranularityPremise          Granularity = "PREMISE"
	GranularityPremiseProximity Granularity = "PREMISE_PROXIMITY"
	GranularityBlock            Granularity = "BLOCK"
	GranularityRoute            Granularity = "ROUTE"
	GranularityOther            Granularity = "OTHER"
)

// ConfirmationLevel is how sure the service is that a component is correct.
type ConfirmationLevel string

const (
	ConfirmationUnspecified           ConfirmationLevel = "CONFIRMATION_LEVEL_UNSPECIFIED"
	ConfirmationConfirmed             ConfirmationLevel = "CONFIRMED"
	ConfirmationUnconfirmedPlausible  ConfirmationLevel = "UNCONFIRMED_BUT_PLAUSIBLE"
	ConfirmationUnconfirmedSuspicious ConfirmationLevel = "UNCONFIRMED_AND_SUSPICIOUS"
)

// USPS DPV flag values. Flags are tri-state: "Y", "N" or absent.
const (
	DPVYes = "Y"
	DPVNo  = "N"
)

// Verdict is the service's top-level judgment of the address.
type Verdict struct {
	InputGranularity            Granularity `json:"inputGranularity,omitempty"`
	ValidationGranularity       Granularity `json:"validationGranularity,omitempty"`
	GeocodeGranularity          Granularity `json:"geocodeGranularity,omitempty"`
	AddressComplete             bool        `json:"addressComplete,omitempty"`
	HasUnconfirmedComponents    bool        `json:"hasUnconfirmedComponents,omitempty"`
	HasInferredComponents       bool        `json:"hasInferredComponents,omitempty"`
	HasReplacedComponents       bool        `json:"hasReplacedComponents,omitempty"`
	HasSpellCorrectedComponents bool        `json:"hasSpellCorrectedComponents,omitempty"`
	PossibleNextAction          string      `json:"possibleNextAction,omitempty"`
}

// ComponentName is the text of an address component.
type ComponentName struct {
	Text         string `json:"text,omitempty"`
	LanguageCode string `json:"languageCode,omitempty"`
}

// Component is a single parsed piece of the address (street number, route, ...).
type Component struct {
	ComponentName     ComponentName     `json:"componentName"`
	ComponentType     string            `json:"componentType,omitempty"`
	ConfirmationLevel ConfirmationLevel `json:"confirmationLevel,omitempty"`
	Inferred          bool              `json:"inferred,omitempty"`
	SpellCorrected    bool              `json:"spellCorrected,omitempty"`
	Replaced          bool              `json:"replaced,omitempty"`
	Unexpected        bool              `json:"unexpected,omitempty"`
}

// Address is the processed address returned by the service.
type Address struct {
	FormattedAddress          string                `json:"formattedAddress,omitempty"`
	PostalAddress             address.PostalAddress `json:"postalAddress"`
	AddressComponents         []Component           `json:"addressComponents,omitempty"`
	MissingComponentTypes     []string              `json:"missingComponentTypes,omitempty"`
	UnconfirmedComponentTypes []string              `json:"unconfirmedComponentTypes,omitempty"`
	UnresolvedTokens          []string              `json:"unresolvedTokens,omitempty"`
}

// LatLng is a WGS84 coordinate.
type LatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// PlusCode is an Open Location Code reference.
type PlusCode struct {
	GlobalCode   string `json:"globalCode,omitempty"`
	CompoundCode string `json:"compoundCode,omitempty"`
}

// Viewport is a rectangle given by its low and high corners.
type Viewport struct {
	Low  LatLng `json:"low"`
	High LatLng `json:"high"`
}

// Geocode is the location the address was geocoded to.
type Geocode struct {
	Location          LatLng   `json:"location"`
	PlusCode          PlusCode `json:"plusCode"`
	Bounds            Viewport `json:"bounds"`
	FeatureSizeMeters float64  `json:"featureSizeMeters,omitempty"`
	PlaceID           string   `json:"placeId,omitempty"`
	PlaceTypes        []string `json:"placeTypes,omitempty"`
}

// Metadata describes what kind of place the address is.
type Metadata struct {
	Business    bool `json:"business,omitempty"`
	POBox       bool `json:"poBox,omitempty"`
	Residential bool `json:"residential,omitempty"`
}

// USPSAddress is a USPS standardized address.
type USPSAddress struct {
	FirstAddressLine        string `json:"firstAddressLine,omitempty"`
	Firm                    string `json:"firm,omitempty"`
	SecondAddressLine       string `json:"secondAddressLine,omitempty"`
	Urbanization            string `json:"urbanization,omitempty"`
	CityStateZipAddressLine string `json:"cityStateZipAddressLine,omitempty"`
	City                    string `json:"city,omitempty"`
	State                   string `json:"state,omitempty"`
	ZipCode                 string `json:"zipCode,omitempty"`
	ZipCodeExtension        string `json:"zipCodeExtension,omitempty"`
}

// USPSData is returned only for US addresses processed with CASS enabled.
type USPSData struct {
	StandardizedAddress     USPSAddress `json:"standardizedAddress"`
	DeliveryPointCode       string      `json:"deliveryPointCode,omitempty"`
	DeliveryPointCheckDigit string      `json:"deliveryPointCheckDigit,omitempty"`
	DPVConfirmation         string      `json:"dpvConfirmation,omitempty"`
	DPVFootnote             string      `json:"dpvFootnote,omitempty"`
	DPVCMRA                 string      `json:"dpvCmra,omitempty"`
	DPVVacant               string      `json:"dpvVacant,omitempty"`
	DPVNoStat               string      `json:"dpvNoStat,omitempty"`
	CarrierRoute            string      `json:"carrierRoute,omitempty"`
	CarrierRouteIndicator   string      `json:"carrierRouteIndicator,omitempty"`
	PostOfficeCity          string      `json:"postOfficeCity,omitempty"`
	PostOfficeState         string      `json:"postOfficeState,omitempty"`
	County                  string      `json:"county,omitempty"`
	FIPSCountyCode          string      `json:"fipsCountyCode,omitempty"`
	AddressRecordType       string      `json:"addressRecordType,omitempty"`
	PMBDesignator           string      `json:"pmbDesignator,omitempty"`
	PMBNumber               string      `json:"pmbNumber,omitempty"`
	ErrorMessage            string      `json:"errorMessage,omitempty"`
	CASSProcessed           bool        `json:"cassProcessed,omitempty"`
}
