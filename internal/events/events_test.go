package events_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/dukerupert/addressvalidation/internal/events"
	"github.com/dukerupert/addressvalidation/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	r, err := validation.Parse([]byte(`{
		"responseId": "resp-1",
		"result": {
			"verdict": {"addressComplete": true},
			"address": {"postalAddress": {"regionCode": "US"}},
			"metadata": {"residential": true},
			"uspsData": {"dpvConfirmation": "Y"}
		}
	}`))
	require.NoError(t, err)

	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.FixedZone("PST", -8*3600))
	e := events.NewEvent(r, true, at)

	assert.Equal(t, "resp-1", e.ResponseID)
	assert.Equal(t, "US", e.RegionCode)
	assert.Equal(t, validation.ConfidenceHigh, e.ConfidenceLevel)
	assert.Equal(t, validation.AddressTypeResidential, e.AddressType)
	assert.Equal(t, r.Score(), e.Score)
	assert.True(t, e.IsValid)
	assert.True(t, e.IsDeliverable)
	assert.True(t, e.CacheHit)
	assert.Equal(t, time.UTC, e.ValidatedAt.Location())

	data, err := json.Marshal(e)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"confidenceLevel":"high"`)
}

func TestEvent_MessageID(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	fetched := events.Event{ResponseID: "resp-1", ValidatedAt: at}
	hit := events.Event{ResponseID: "resp-1", CacheHit: true, ValidatedAt: at}
	laterHit := events.Event{ResponseID: "resp-1", CacheHit: true, ValidatedAt: at.Add(time.Second)}

	assert.Contains(t, fetched.MessageID(), "resp-1")
	assert.NotEqual(t, fetched.MessageID(), hit.MessageID())
	assert.NotEqual(t, hit.MessageID(), laterHit.MessageID())
	assert.Equal(t, hit.MessageID(), hit.MessageID())
}

func TestNopPublisher(t *testing.T) {
	var p events.Publisher = events.NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), events.Event{}))
	assert.NoError(t, p.Close())
}

func TestNewNATSPublisher_RequiresURL(t *testing.T) {
	_, err := events.NewNATSPublisher(events.NATSConfig{})
	assert.Error(t, err)
}
