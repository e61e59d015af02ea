// Package request assembles the JSON body sent to the address validation API.
package request

import (
	"encoding/json"

	"github.com/dukerupert/addressvalidation/internal/address"
)

// LanguageOptions controls the language of the returned address.
type LanguageOptions struct {
	ReturnEnglishLatinAddress bool `json:"returnEnglishLatinAddress"`
}

// Options are the optional request settings. A nil field means the caller did
// not supply it, which is different from an explicit false.
type Options struct {
	EnableUSPSCASS  *bool
	LanguageOptions *LanguageOptions
}

// Merge returns o with every field that override supplies replaced by the
// override's value. Fields override leaves nil keep o's value.
func (o Options) Merge(override Options) Options {
	merged := o
	if override.EnableUSPSCASS != nil {
		v := *override.EnableUSPSCASS
		merged.EnableUSPSCASS = &v
	}
	if override.LanguageOptions != nil {
		lo := *override.LanguageOptions
		merged.LanguageOptions = &lo
	}
	return merged
}

// Body is the request body of a validateAddress call. Field order is fixed,
// so encoding the same logical request always yields the same bytes.
type Body struct {
	Address            address.PostalAddress `json:"address"`
	PreviousResponseID string                `json:"previousResponseId,omitempty"`
	EnableUSPSCASS     *bool                 `json:"enableUspsCass,omitempty"`
	LanguageOptions    *LanguageOptions      `json:"languageOptions,omitempty"`
	SessionToken       string                `json:"sessionToken,omitempty"`
}

// Build assembles a request body. Keys are only emitted for options that were
// supplied; empty previousResponseID and sessionToken are treated as absent.
// Build never fails and does not inspect the address content.
func Build(addr address.Input, opts Options, previousResponseID, sessionToken string) Body {
	body := Body{
		Address:            addr.Normalize(),
		PreviousResponseID: previousResponseID,
		SessionToken:       sessionToken,
	}
	if opts.EnableUSPSCASS != nil {
		v := *opts.EnableUSPSCASS
		body.EnableUSPSCASS = &v
	}
	if opts.LanguageOptions != nil {
		lo := *opts.LanguageOptions
		body.LanguageOptions = &lo
	}
	return body
}

// Encode returns the canonical JSON encoding of the body.
func (b Body) Encode() ([]byte, error) {
	return json.Marshal(b)
}

// Bool returns a pointer to v, for filling optional flags.
func Bool(v bool) *bool {
	return &v
}

// FeedbackConclusion describes how a validation sequence ended.
type FeedbackConclusion string

const (
	ConclusionUnspecified          FeedbackConclusion = "VALIDATION_CONCLUSION_UNSPECIFIED"
	ConclusionValidatedVersionUsed FeedbackConclusion = "VALIDATED_VERSION_USED"
	ConclusionUserVersionUsed      FeedbackConclusion = "USER_VERSION_USED"
	ConclusionUnvalidatedUsed      FeedbackConclusion = "UNVALIDATED_VERSION_USED"
	ConclusionUnused               FeedbackConclusion = "UNUSED"
)

// Valid reports whether c is one of the known conclusions, excluding the
// unspecified value.
func (c FeedbackConclusion) Valid() bool {
	switch c {
	case ConclusionValidatedVersionUsed, ConclusionUserVersionUsed, ConclusionUnvalidatedUsed, ConclusionUnused:
		return true
	}
	return false
}

// Feedback is the body of a provideValidationFeedback call.
type Feedback struct {
	Conclusion FeedbackConclusion `json:"conclusion"`
	ResponseID string             `json:"responseId"`
}
