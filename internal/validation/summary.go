package validation

// Summary is a flat, JSON friendly snapshot of every derived judgment.
type Summary struct {
	ResponseID            string          `json:"responseId"`
	FormattedAddress      string          `json:"formattedAddress"`
	RegionCode            string          `json:"regionCode"`
	ConfidenceLevel       ConfidenceLevel `json:"confidenceLevel"`
	IsValid               bool            `json:"isValid"`
	Issues                []string        `json:"issues"`
	AddressType           AddressType     `json:"addressType"`
	Score                 int             `json:"score"`
	Rating                Rating          `json:"rating"`
	InputGranularity      Granularity     `json:"inputGranularity,omitempty"`
	ValidationGranularity Granularity     `json:"validationGranularity,omitempty"`
	GeocodeGranularity    Granularity     `json:"geocodeGranularity,omitempty"`
	PossibleNextAction    string          `json:"possibleNextAction,omitempty"`
	MissingComponents     []string        `json:"missingComponents"`
	UnconfirmedComponents []string        `json:"unconfirmedComponents"`
	UnresolvedTokens      []string        `json:"unresolvedTokens"`
	Flags                 Flags           `json:"flags"`
	Location              *LatLng         `json:"location,omitempty"`
	PlaceID               string          `json:"placeId,omitempty"`
	USPS                  *USPSSummary    `json:"usps,omitempty"`
}

// Flags holds every boolean predicate of a Result.
type Flags struct {
	IsUSAddress              bool `json:"isUsAddress"`
	IsFullyValidated         bool `json:"isFullyValidated"`
	IsHighConfidence         bool `json:"isHighConfidence"`
	HasMinimalComponents     bool `json:"hasMinimalComponents"`
	IsExactMatch             bool `json:"isExactMatch"`
	IsMinimalValid           bool `json:"isMinimalValid"`
	IsDeliverable            bool `json:"isDeliverable"`
	IsPreciselyLocated       bool `json:"isPreciselyLocated"`
	IsStandardized           bool `json:"isStandardized"`
	IsShippable              bool `json:"isShippable"`
	IsVerificationNeeded     bool `json:"isVerificationNeeded"`
	IsPOBox                  bool `json:"isPoBox"`
	IsResidential            bool `json:"isResidential"`
	IsBusiness               bool `json:"isBusiness"`
	IsValidLandmark          bool `json:"isValidLandmark"`
	IsCommercialMailReceiver bool `json:"isCommercialMailReceiver"`
	IsVacant                 bool `json:"isVacant"`
	IsActive                 bool `json:"isActive"`
}

// USPSSummary is the USPS part of a Summary.
type USPSSummary struct {
	StandardizedAddress USPSAddress `json:"standardizedAddress"`
	DPVConfirmation     string      `json:"dpvConfirmation,omitempty"`
	DeliveryPointCode   string      `json:"deliveryPointCode,omitempty"`
	CarrierRoute        string      `json:"carrierRoute,omitempty"`
	CASSProcessed       bool        `json:"cassProcessed"`
	ErrorMessage        string      `json:"errorMessage,omitempty"`
}

// Summary evaluates every judgment of the result.
func (r *Result) Summary() Summary {
	validity := r.CheckValidity()
	s := Summary{
		ResponseID:            r.responseID,
		FormattedAddress:      r.FormattedAddress(),
		RegionCode:            r.RegionCode(),
		ConfidenceLevel:       validity.ConfidenceLevel,
		IsValid:               validity.IsValid,
		Issues:                validity.Issues,
		AddressType:           r.AddressType(),
		Score:                 r.Score(),
		Rating:                r.Rating(),
		InputGranularity:      r.InputGranularity(),
		ValidationGranularity: r.ValidationGranularity(),
		GeocodeGranularity:    r.GeocodeGranularity(),
		PossibleNextAction:    r.PossibleNextAction(),
		MissingComponents:     r.MissingComponentTypes(),
		UnconfirmedComponents: r.UnconfirmedComponentTypes(),
		UnresolvedTokens:      r.UnresolvedTokens(),
		Flags: Flags{
			IsUSAddress:              r.IsUSAddress(),
			IsFullyValidated:         r.IsFullyValidated(),
			IsHighConfidence:         r.IsHighConfidence(),
			HasMinimalComponents:     r.HasMinimalComponents(),
			IsExactMatch:             r.IsExactMatch(),
			IsMinimalValid:           r.IsMinimalValid(),
			IsDeliverable:            r.IsDeliverable(),
			IsPreciselyLocated:       r.IsPreciselyLocated(),
			IsStandardized:           r.IsStandardized(),
			IsShippable:              r.IsShippable(),
			IsVerificationNeeded:     r.IsVerificationNeeded(),
			IsPOBox:                  r.IsPOBox(),
			IsResidential:            r.IsResidential(),
			IsBusiness:               r.IsBusiness(),
			IsValidLandmark:          r.IsValidLandmark(),
			IsCommercialMailReceiver: r.IsCommercialMailReceiver(),
			IsVacant:                 r.IsVacant(),
			IsActive:                 r.IsActive(),
		},
		PlaceID: r.PlaceID(),
	}
	if r.geocode != nil {
		loc := r.geocode.Location
		s.Location = &loc
	}
	if r.usps != nil {
		s.USPS = &USPSSummary{
			StandardizedAddress: r.usps.StandardizedAddress,
			DPVConfirmation:     r.usps.DPVConfirmation,
			DeliveryPointCode:   r.usps.DeliveryPointCode,
			CarrierRoute:        r.usps.CarrierRoute,
			CASSProcessed:       r.usps.CASSProcessed,
			ErrorMessage:        r.usps.ErrorMessage,
		}
	}
	return s
}
