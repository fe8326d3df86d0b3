package event

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/semexchange/errors"
	"github.com/c360/semexchange/types/offering"
)

func TestNewMeta(t *testing.T) {
	meta := NewMeta("marketplace-api")

	_, err := uuid.Parse(meta.EventID)
	assert.NoError(t, err)
	assert.Equal(t, "marketplace-api", meta.Source)
	assert.Equal(t, time.UTC, meta.Timestamp.Location())
	assert.NotEqual(t, meta.EventID, NewMeta("marketplace-api").EventID)
}

func TestMetaValidate(t *testing.T) {
	tests := []struct {
		name    string
		meta    Meta
		wantErr bool
	}{
		{"valid", NewMeta("test"), false},
		{"missing event ID", Meta{Timestamp: time.Now()}, true},
		{"missing timestamp", Meta{EventID: uuid.NewString()}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.meta.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, errors.ErrInvalidData)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSubjectHierarchy(t *testing.T) {
	assert.Equal(t, "exchange.events.offering.created", OfferingCreated.Subject())
	assert.Equal(t, "exchange.events.category.parent_changed", CategoryParentChanged.Subject())
}

func TestTypeFromSubject(t *testing.T) {
	tests := []struct {
		subject string
		want    Type
		ok      bool
	}{
		{OfferingDeleted.Subject(), OfferingDeleted, true},
		{SubjectPrefix + "subscription.created", SubscriptionCreated, true},
		{"exchange.commands.offering.created", "", false},
		{SubjectPrefix, "", false},
	}
	for _, tt := range tests {
		got, ok := TypeFromSubject(tt.subject)
		assert.Equal(t, tt.ok, ok, tt.subject)
		assert.Equal(t, tt.want, got, tt.subject)
	}
}

func TestOfferingCreatedEventDecodes(t *testing.T) {
	payload := []byte(`{
		"event_id": "7b5fbb39-52f5-4b5a-9ffb-5fbd5ac7bd3a",
		"timestamp": "2019-04-02T10:00:00Z",
		"source": "marketplace-api",
		"offering": {
			"id": "off1",
			"providerId": "prov1",
			"name": "Parking spots",
			"categoryUri": "urn:big-iot:parking",
			"price": {"pricingModel": "PER_ACCESS", "money": {"amount": 0.05, "currency": "EUR"}},
			"license": "OPEN_DATA_LICENSE",
			"activation": {"status": true, "expirationTime": 1554400000000}
		}
	}`)

	var ev OfferingCreatedEvent
	require.NoError(t, json.Unmarshal(payload, &ev))
	require.NoError(t, ev.Validate())

	assert.Equal(t, "off1", ev.Offering.ID)
	assert.Equal(t, offering.PricePerAccess, ev.Offering.Price.Model)
	assert.Equal(t, offering.LicenseOpenData, ev.Offering.License)
	assert.True(t, ev.Offering.Activation.Status)
}
