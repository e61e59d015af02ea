package address

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Field names accepted in a structured address.
// Anything else supplied by the caller is dropped during normalization.
const (
	FieldRevision           = "revision"
	FieldRegionCode         = "regionCode"
	FieldLanguageCode       = "languageCode"
	FieldPostalCode         = "postalCode"
	FieldSortingCode        = "sortingCode"
	FieldAdministrativeArea = "administrativeArea"
	FieldLocality           = "locality"
	FieldSublocality        = "sublocality"
	FieldAddressLines       = "addressLines"
)

// AllowedFields lists the structured fields in the order they are copied.
var AllowedFields = []string{
	FieldRevision,
	FieldRegionCode,
	FieldLanguageCode,
	FieldPostalCode,
	FieldSortingCode,
	FieldAdministrativeArea,
	FieldLocality,
	FieldSublocality,
	FieldAddressLines,
}

// PostalAddress is the postal address shape used by the address validation API,
// both in the request body and in the standardized address of a response.
type PostalAddress struct {
	Revision           *int     `json:"revision,omitempty"`
	RegionCode         string   `json:"regionCode,omitempty"`
	LanguageCode       string   `json:"languageCode,omitempty"`
	PostalCode         string   `json:"postalCode,omitempty"`
	SortingCode        string   `json:"sortingCode,omitempty"`
	AdministrativeArea string   `json:"administrativeArea,omitempty"`
	Locality           string   `json:"locality,omitempty"`
	Sublocality        string   `json:"sublocality,omitempty"`
	AddressLines       []string `json:"addressLines,omitempty"`
	Recipients         []string `json:"recipients,omitempty"`
	Organization       string   `json:"organization,omitempty"`
}

// IsZero reports whether no field of the address is set.
func (p PostalAddress) IsZero() bool {
	return p.Revision == nil &&
		p.RegionCode == "" &&
		p.LanguageCode == "" &&
		p.PostalCode == "" &&
		p.SortingCode == "" &&
		p.AdministrativeArea == "" &&
		p.Locality == "" &&
		p.Sublocality == "" &&
		len(p.AddressLines) == 0 &&
		len(p.Recipients) == 0 &&
		p.Organization == ""
}

// Input is an address as supplied by a caller: either free text or a set of
// structured fields. The zero value is an empty free-text address.
type Input struct {
	text       string
	fields     map[string]any
	structured bool
}

// FromString wraps a free-text address.
func FromString(s string) Input {
	return Input{text: s}
}

// FromFields wraps a structured address. Unknown keys are accepted here and
// dropped by Normalize.
func FromFields(fields map[string]any) Input {
	return Input{fields: fields, structured: true}
}

// FromPostalAddress wraps an already typed address.
func FromPostalAddress(p PostalAddress) Input {
	fields := make(map[string]any, len(AllowedFields))
	if p.Revision != nil {
		fields[FieldRevision] = *p.Revision
	}
	setString(fields, FieldRegionCode, p.RegionCode)
	setString(fields, FieldLanguageCode, p.LanguageCode)
	setString(fields, FieldPostalCode, p.PostalCode)
	setString(fields, FieldSortingCode, p.SortingCode)
	setString(fields, FieldAdministrativeArea, p.AdministrativeArea)
	setString(fields, FieldLocality, p.Locality)
	setString(fields, FieldSublocality, p.Sublocality)
	if len(p.AddressLines) > 0 {
		fields[FieldAddressLines] = append([]string(nil), p.AddressLines...)
	}
	return FromFields(fields)
}

func setString(fields map[string]any, key, value string) {
	if value != "" {
		fields[key] = value
	}
}

// IsStructured reports whether the input was built from fields.
func (in Input) IsStructured() bool {
	return in.structured
}

// Text returns the free-text form of the input, or "" for structured input.
func (in Input) Text() string {
	return in.text
}

// Normalize converts the input to the request shape. A free-text address
// becomes a single address line. Structured input keeps only the allowed
// fields, and a plain string addressLines value becomes a one-element list.
func (in Input) Normalize() PostalAddress {
	if !in.structured {
		return PostalAddress{AddressLines: []string{in.text}}
	}

	var p PostalAddress
	for _, key := range AllowedFields {
		v, ok := in.fields[key]
		if !ok || v == nil {
			continue
		}
		switch key {
		case FieldRevision:
			if n, ok := toInt(v); ok {
				p.Revision = &n
			}
		case FieldRegionCode:
			p.RegionCode = toString(v)
		case FieldLanguageCode:
			p.LanguageCode = toString(v)
		case FieldPostalCode:
			p.PostalCode = toString(v)
		case FieldSortingCode:
			p.SortingCode = toString(v)
		case FieldAdministrativeArea:
			p.AdministrativeArea = toString(v)
		case FieldLocality:
			p.Locality = toString(v)
		case FieldSublocality:
			p.Sublocality = toString(v)
		case FieldAddressLines:
			p.AddressLines = toLines(v)
		}
	}
	return p
}

// MarshalJSON encodes the input in the form a caller would have supplied it.
func (in Input) MarshalJSON() ([]byte, error) {
	if !in.structured {
		return json.Marshal(in.text)
	}
	return json.Marshal(in.fields)
}

// UnmarshalJSON accepts either a JSON string or a JSON object.
func (in *Input) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "\"") {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*in = FromString(s)
		return nil
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("address must be a string or an object: %w", err)
	}
	if fields == nil {
		return fmt.Errorf("address must be a string or an object")
	}
	*in = FromFields(fields)
	return nil
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

func toInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int32:
		return int(t), true
	case int64:
		return int(t), true
	case float64:
		return int(t), true
	case json.Number:
		n, err := t.Int64()
		return int(n), err == nil
	case string:
		n, err := strconv.Atoi(t)
		return n, err == nil
	default:
		return 0, false
	}
}

func toLines(v any) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case []string:
		return append([]string(nil), t...)
	case []any:
		lines := make([]string, 0, len(t))
		for _, line := range t {
			if line == nil {
				continue
			}
			lines = append(lines, toString(line))
		}
		return lines
	default:
		return []string{toString(t)}
	}
}
