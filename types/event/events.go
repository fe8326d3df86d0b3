// Package event provides the domain event types consumed by the projector.
// Events arrive on the exchange event stream, one type per resource/action
// pair; each decodes into a typed payload that a projector handler turns
// into an idempotent graph delta.
package event

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/c360/semexchange/errors"
	"github.com/c360/semexchange/types/offering"
	"github.com/c360/semexchange/types/semantic"
)

// Type identifies a domain event as resource.action.
type Type string

// Organization events.
const (
	OrganizationCreated     Type = "organization.created"
	OrganizationNameChanged Type = "organization.name_changed"
)

// Provider events.
const (
	ProviderCreated     Type = "provider.created"
	ProviderNameChanged Type = "provider.name_changed"
	ProviderDeleted     Type = "provider.deleted"
)

// Consumer events.
const (
	ConsumerCreated     Type = "consumer.created"
	ConsumerNameChanged Type = "consumer.name_changed"
	ConsumerDeleted     Type = "consumer.deleted"
)

// Offering events.
const (
	OfferingCreated                Type = "offering.created"
	OfferingDeleted                Type = "offering.deleted"
	OfferingNameChanged            Type = "offering.name_changed"
	OfferingCategoryChanged        Type = "offering.category_changed"
	OfferingEndpointsChanged       Type = "offering.endpoints_changed"
	OfferingInputsChanged          Type = "offering.inputs_changed"
	OfferingOutputsChanged         Type = "offering.outputs_changed"
	OfferingSpatialExtentChanged   Type = "offering.spatial_extent_changed"
	OfferingTemporalExtentChanged  Type = "offering.temporal_extent_changed"
	OfferingLicenseChanged         Type = "offering.license_changed"
	OfferingPriceChanged           Type = "offering.price_changed"
	OfferingActivated              Type = "offering.activated"
	OfferingDeactivated            Type = "offering.deactivated"
	OfferingAccessWhiteListChanged Type = "offering.access_whitelist_changed"
)

// OfferingQuery events.
const (
	QueryCreated               Type = "query.created"
	QueryDeleted               Type = "query.deleted"
	QueryNameChanged           Type = "query.name_changed"
	QueryCategoryChanged       Type = "query.category_changed"
	QueryInputsChanged         Type = "query.inputs_changed"
	QueryOutputsChanged        Type = "query.outputs_changed"
	QuerySpatialExtentChanged  Type = "query.spatial_extent_changed"
	QueryTemporalExtentChanged Type = "query.temporal_extent_changed"
	QueryLicenseChanged        Type = "query.license_changed"
	QueryPriceChanged          Type = "query.price_changed"
)

// Subscription events.
const (
	SubscriptionCreated Type = "subscription.created"
	SubscriptionDeleted Type = "subscription.deleted"
)

// Category events.
const (
	CategoryCreated       Type = "category.created"
	CategoryNameChanged   Type = "category.name_changed"
	CategoryParentChanged Type = "category.parent_changed"
	CategoryDeprecated    Type = "category.deprecated"
	CategoryUndeprecated  Type = "category.undeprecated"
)

// Annotation events.
const (
	InputTypeAdded         Type = "annotation.input_type_added"
	OutputTypeAdded        Type = "annotation.output_type_added"
	AnnotationDeprecated   Type = "annotation.deprecated"
	AnnotationUndeprecated Type = "annotation.undeprecated"
)

// Meta carries identity and provenance shared by every domain event.
type Meta struct {
	EventID   string    `json:"event_id"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source,omitempty"`
}

// NewMeta mints event metadata with a fresh UUID.
func NewMeta(source string) Meta {
	return Meta{
		EventID:   uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Source:    source,
	}
}

// Validate checks the metadata required on every event.
func (m Meta) Validate() error {
	if m.EventID == "" {
		return errors.WrapInvalid(errors.ErrInvalidData, "Event", "Validate", "event ID is required")
	}
	if m.Timestamp.IsZero() {
		return errors.WrapInvalid(errors.ErrInvalidData, "Event", "Validate", "timestamp is required")
	}
	return nil
}

// SubjectPrefix is the subject namespace all exchange events share.
const SubjectPrefix = "exchange.events."

// Subject returns the NATS subject an event type is published on.
// The hierarchical pattern allows selective subscription per resource.
func (t Type) Subject() string {
	return fmt.Sprintf("%s%s", SubjectPrefix, string(t))
}

// TypeFromSubject recovers the event type from a NATS subject. The second
// return is false for subjects outside the exchange event namespace.
func TypeFromSubject(subject string) (Type, bool) {
	rest, ok := strings.CutPrefix(subject, SubjectPrefix)
	if !ok || rest == "" {
		return "", false
	}
	return Type(rest), true
}

// Organization payloads.

// OrganizationCreatedEvent declares a new organization.
type OrganizationCreatedEvent struct {
	Meta
	ID   string `json:"id"`
	Name string `json:"name"`
}

// NameChangedEvent renames any resource identified by ID. Shared by the
// organization/provider/consumer/offering/query name-changed events, which
// differ only in which graph nodes the handler rewrites.
type NameChangedEvent struct {
	Meta
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DeletedEvent removes a resource and its exclusively owned sub-resources.
type DeletedEvent struct {
	Meta
	ID string `json:"id"`
}

// ProviderCreatedEvent declares a new provider inside an organization.
type ProviderCreatedEvent struct {
	Meta
	ID             string `json:"id"`
	Name           string `json:"name"`
	OrganizationID string `json:"organizationId"`
}

// ConsumerCreatedEvent declares a new consumer inside an organization.
type ConsumerCreatedEvent struct {
	Meta
	ID             string `json:"id"`
	Name           string `json:"name"`
	OrganizationID string `json:"organizationId"`
}

// Offering payloads.

// OfferingCreatedEvent carries the full offering shape; projection expands
// it into a sub-graph in one atomic delta.
type OfferingCreatedEvent struct {
	Meta
	Offering offering.Offering `json:"offering"`
}

// CategoryChangedEvent re-tags a resource with a different category.
type CategoryChangedEvent struct {
	Meta
	ID          string `json:"id"`
	CategoryURI string `json:"categoryUri"`
}

// EndpointsChangedEvent replaces the full endpoint set of an offering.
type EndpointsChangedEvent struct {
	Meta
	ID        string              `json:"id"`
	Endpoints []offering.Endpoint `json:"endpoints"`
}

// DataChangedEvent replaces the full input or output field set of an
// offering or query. The event type distinguishes inputs from outputs.
type DataChangedEvent struct {
	Meta
	ID     string               `json:"id"`
	Fields []semantic.DataField `json:"fields"`
}

// SpatialExtentChangedEvent replaces a resource's spatial extent.
type SpatialExtentChangedEvent struct {
	Meta
	ID     string                  `json:"id"`
	Extent *offering.SpatialExtent `json:"extent"`
}

// TemporalExtentChangedEvent replaces a resource's temporal extent.
type TemporalExtentChangedEvent struct {
	Meta
	ID     string                   `json:"id"`
	Extent *offering.TemporalExtent `json:"extent"`
}

// LicenseChangedEvent replaces a resource's license.
type LicenseChangedEvent struct {
	Meta
	ID      string           `json:"id"`
	License offering.License `json:"license"`
}

// PriceChangedEvent replaces a resource's price specification.
type PriceChangedEvent struct {
	Meta
	ID    string         `json:"id"`
	Price offering.Price `json:"price"`
}

// ActivationChangedEvent activates or deactivates an offering together with
// its new expiration time. Status and expiration always travel together.
type ActivationChangedEvent struct {
	Meta
	ID             string `json:"id"`
	Status         bool   `json:"status"`
	ExpirationTime int64  `json:"expirationTime"`
}

// AccessWhiteListChangedEvent replaces the organizations whitelisted for a
// restricted offering.
type AccessWhiteListChangedEvent struct {
	Meta
	ID              string   `json:"id"`
	AccessWhiteList []string `json:"accessWhiteList"`
}

// OfferingQuery payloads.

// QueryCreatedEvent carries the full query shape.
type QueryCreatedEvent struct {
	Meta
	Query offering.Query `json:"query"`
}

// Subscription payloads.

// SubscriptionCreatedEvent subscribes a query to an offering.
type SubscriptionCreatedEvent struct {
	Meta
	ID             string `json:"id"`
	SubscribableID string `json:"subscribableId"`
	SubscriberID   string `json:"subscriberId"`
}

// Category payloads.

// CategoryCreatedEvent proposes a new category under a parent.
type CategoryCreatedEvent struct {
	Meta
	URI      string `json:"uri"`
	Name     string `json:"name"`
	Parent   string `json:"parent"`
	Proposed bool   `json:"proposed"`
}

// CategoryURIEvent targets a category by URI for flag toggles.
type CategoryURIEvent struct {
	Meta
	URI string `json:"uri"`
}

// CategoryNameChangedEvent relabels a category.
type CategoryNameChangedEvent struct {
	Meta
	URI  string `json:"uri"`
	Name string `json:"name"`
}

// CategoryParentChangedEvent re-parents a category; annotation inheritance
// is recomputed for the moved subtree.
type CategoryParentChangedEvent struct {
	Meta
	URI    string `json:"uri"`
	Parent string `json:"parent"`
}

// Annotation payloads.

// TypeAddedEvent declares an input or output annotation expected by a
// category. The event type distinguishes inputs from outputs.
type TypeAddedEvent struct {
	Meta
	CategoryURI string                 `json:"categoryUri"`
	Annotation  semantic.AnnotationRef `json:"annotation"`
}

// AnnotationURIEvent targets an annotation by URI for flag toggles.
type AnnotationURIEvent struct {
	Meta
	URI string `json:"uri"`
}
