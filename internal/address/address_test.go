package address_test

import (
	"encoding/json"
	"testing"

	"github.com/dukerupert/addressvalidation/internal/address"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_FreeText(t *testing.T) {
	in := address.FromString("1600 Amphitheatre Parkway, Mountain View, CA")

	got := in.Normalize()

	assert.Equal(t, []string{"1600 Amphitheatre Parkway, Mountain View, CA"}, got.AddressLines)
	assert.False(t, in.IsStructured())

	data, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `{"addressLines":["1600 Amphitheatre Parkway, Mountain View, CA"]}`, string(data))
}

func TestNormalize_DropsUnknownFields(t *testing.T) {
	in := address.FromFields(map[string]any{
		"foo":        "bar",
		"postalCode": "94043",
	})

	data, err := json.Marshal(in.Normalize())
	require.NoError(t, err)
	assert.JSONEq(t, `{"postalCode":"94043"}`, string(data))
}

func TestNormalize_AllowedFields(t *testing.T) {
	in := address.FromFields(map[string]any{
		"revision":           float64(0),
		"regionCode":         "US",
		"languageCode":       "en",
		"postalCode":         "94043",
		"sortingCode":        "CEDEX 1",
		"administrativeArea": "CA",
		"locality":           "Mountain View",
		"sublocality":        "Shoreline",
		"addressLines":       []any{"1600 Amphitheatre Pkwy", "Bldg 40"},
		"recipients":         []any{"ignored"},
	})

	got := in.Normalize()

	require.NotNil(t, got.Revision)
	assert.Equal(t, 0, *got.Revision)
	assert.Equal(t, "US", got.RegionCode)
	assert.Equal(t, "en", got.LanguageCode)
	assert.Equal(t, "94043", got.PostalCode)
	assert.Equal(t, "CEDEX 1", got.SortingCode)
	assert.Equal(t, "CA", got.AdministrativeArea)
	assert.Equal(t, "Mountain View", got.Locality)
	assert.Equal(t, "Shoreline", got.Sublocality)
	assert.Equal(t, []string{"1600 Amphitheatre Pkwy", "Bldg 40"}, got.AddressLines)
	assert.Nil(t, got.Recipients, "recipients is not an allowed request field")
}

func TestNormalize_StringAddressLines(t *testing.T) {
	in := address.FromFields(map[string]any{
		"addressLines": "221B Baker Street",
		"regionCode":   "GB",
	})

	got := in.Normalize()

	assert.Equal(t, []string{"221B Baker Street"}, got.AddressLines)
	assert.Equal(t, "GB", got.RegionCode)
}

func TestNormalize_NumericPostalCode(t *testing.T) {
	in := address.FromFields(map[string]any{"postalCode": float64(94043)})

	assert.Equal(t, "94043", in.Normalize().PostalCode)
}

func TestFromPostalAddress(t *testing.T) {
	p := address.PostalAddress{
		RegionCode:   "US",
		Locality:     "Seattle",
		AddressLines: []string{"123 Main St"},
	}

	got := address.FromPostalAddress(p).Normalize()

	assert.Equal(t, p, got)
}

func TestPostalAddress_IsZero(t *testing.T) {
	assert.True(t, address.PostalAddress{}.IsZero())
	assert.False(t, address.PostalAddress{Locality: "Paris"}.IsZero())
}

func TestInput_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name       string
		data       string
		structured bool
		wantErr    bool
	}{
		{name: "string", data: `"1 Infinite Loop"`, structured: false},
		{name: "object", data: `{"postalCode":"95014"}`, structured: true},
		{name: "number", data: `42`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var in address.Input
			err := json.Unmarshal([]byte(tt.data), &in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.structured, in.IsStructured())
		})
	}
}

func TestInput_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(address.FromString("1 Infinite Loop"))
	require.NoError(t, err)
	assert.Equal(t, `"1 Infinite Loop"`, string(data))
}
