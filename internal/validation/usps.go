package validation

// HasUSPSData reports whether the response carried a non-empty USPS block.
func (r *Result) HasUSPSData() bool {
	return r.usps != nil
}

// USPSData returns a copy of the USPS block.
func (r *Result) USPSData() (USPSData, bool) {
	if r.usps == nil {
		return USPSData{}, false
	}
	return *r.usps, true
}

func (r *Result) USPSStandardizedAddress() USPSAddress {
	if r.usps == nil {
		return USPSAddress{}
	}
	return r.usps.StandardizedAddress
}

func (r *Result) DPVConfirmation() string {
	if r.usps == nil {
		return ""
	}
	return r.usps.DPVConfirmation
}

func (r *Result) DeliveryPointCode() string {
	if r.usps == nil {
		return ""
	}
	return r.usps.DeliveryPointCode
}

func (r *Result) CarrierRoute() string {
	if r.usps == nil {
		return ""
	}
	return r.usps.CarrierRoute
}

func (r *Result) USPSErrorMessage() string {
	if r.usps == nil {
		return ""
	}
	return r.usps.ErrorMessage
}

func (r *Result) IsCASSProcessed() bool {
	return r.usps != nil && r.usps.CASSProcessed
}

// IsCommercialMailReceiver is true when USPS flags the address as a CMRA
// (a private mailbox business).
func (r *Result) IsCommercialMailReceiver() bool {
	return r.usps != nil && r.usps.DPVCMRA == DPVYes
}

func (r *Result) IsVacant() bool {
	return r.usps != nil && r.usps.DPVVacant == DPVYes
}

// IsActive is true only when USPS explicitly reports the address is not a
// no-stat address. An absent flag is not "N".
func (r *Result) IsActive() bool {
	return r.usps != nil && r.usps.DPVNoStat == DPVNo
}
