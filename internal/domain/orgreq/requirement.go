package orgreq

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/auditready/auditready-backend/internal/domain/errors"
)

// FulfillmentStatus is the per-tenant fulfillment state of one library
// requirement. Stored and validated as plain strings rather than a native
// database enum: a historical enum-encoding bug around partially-fulfilled
// required a dedicated repair migration, so enum churn stays out of DDL.
type FulfillmentStatus string

const (
	StatusFulfilled          FulfillmentStatus = "fulfilled"
	StatusPartiallyFulfilled FulfillmentStatus = "partially-fulfilled"
	StatusNotFulfilled       FulfillmentStatus = "not-fulfilled"
	StatusNotApplicable      FulfillmentStatus = "not-applicable"
	StatusNotStarted         FulfillmentStatus = "not-started"
)

func (s FulfillmentStatus) String() string {
	return string(s)
}

func (s FulfillmentStatus) IsValid() bool {
	switch s {
	case StatusFulfilled, StatusPartiallyFulfilled, StatusNotFulfilled, StatusNotApplicable, StatusNotStarted:
		return true
	}
	return false
}

// DataClassification labels the sensitivity of attached evidence
type DataClassification string

const (
	ClassificationPublic       DataClassification = "public"
	ClassificationInternal     DataClassification = "internal"
	ClassificationConfidential DataClassification = "confidential"
	ClassificationRestricted   DataClassification = "restricted"
)

func (c DataClassification) IsValid() bool {
	switch c {
	case ClassificationPublic, ClassificationInternal, ClassificationConfidential, ClassificationRestricted:
		return true
	}
	return false
}

// Requirement is a per-tenant instance of one library requirement, created
// when the organization subscribes to a standard and mutated throughout the
// compliance lifecycle. Instances are never deleted; retirement is the
// not-applicable status. Version increments on every update for optimistic
// concurrency.
type Requirement struct {
	ID               uuid.UUID          `json:"id"`
	OrganizationID   uuid.UUID          `json:"organization_id"`
	RequirementID    uuid.UUID          `json:"requirement_id"`
	StandardID       uuid.UUID          `json:"standard_id"`
	Status           FulfillmentStatus  `json:"status"`
	Fulfillment      decimal.Decimal    `json:"fulfillment_percentage"`
	Evidence         string             `json:"evidence"`
	EvidenceURLs     []string           `json:"evidence_urls"`
	Notes            string             `json:"notes"`
	ResponsibleParty string             `json:"responsible_party"`
	WorkflowState    string             `json:"workflow_state"`
	Classification   DataClassification `json:"data_classification"`
	Version          int                `json:"version"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// NewRequirement creates a not-started instance for an organization
func NewRequirement(organizationID, requirementID, standardID uuid.UUID) (*Requirement, error) {
	if organizationID == uuid.Nil {
		return nil, errors.NewValidationError("INVALID_ORGANIZATION", "organization ID is required")
	}
	if requirementID == uuid.Nil {
		return nil, errors.NewValidationError("INVALID_REQUIREMENT", "requirement ID is required")
	}
	if standardID == uuid.Nil {
		return nil, errors.NewValidationError("INVALID_STANDARD", "standard ID is required")
	}

	now := time.Now()
	return &Requirement{
		ID:             uuid.New(),
		OrganizationID: organizationID,
		RequirementID:  requirementID,
		StandardID:     standardID,
		Status:         StatusNotStarted,
		Fulfillment:    decimal.Zero,
		Classification: ClassificationInternal,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// UpdateStatus changes fulfillment state. expectedVersion is the version the
// caller last read; a mismatch means a concurrent update happened and the
// caller must re-fetch.
func (r *Requirement) UpdateStatus(status FulfillmentStatus, fulfillment decimal.Decimal, expectedVersion int) error {
	if !status.IsValid() {
		return errors.NewValidationError("INVALID_STATUS", "unknown fulfillment status: "+string(status))
	}
	if fulfillment.LessThan(decimal.Zero) || fulfillment.GreaterThan(decimal.NewFromInt(100)) {
		return errors.NewValidationError("INVALID_FULFILLMENT", "fulfillment percentage must be within [0,100]")
	}
	if err := r.checkVersion(expectedVersion); err != nil {
		return err
	}

	r.Status = status
	r.Fulfillment = fulfillment
	r.bump()
	return nil
}

// AttachEvidence records evidence text and storage references. Evidence
// blobs live in external object storage; only their locations are kept.
func (r *Requirement) AttachEvidence(evidence string, urls []string, expectedVersion int) error {
	if err := r.checkVersion(expectedVersion); err != nil {
		return err
	}
	r.Evidence = evidence
	r.EvidenceURLs = urls
	r.bump()
	return nil
}

// AssignResponsible sets the accountable party
func (r *Requirement) AssignResponsible(party string, expectedVersion int) error {
	if err := r.checkVersion(expectedVersion); err != nil {
		return err
	}
	r.ResponsibleParty = party
	r.bump()
	return nil
}

// MarkNotApplicable retires the instance without deleting it
func (r *Requirement) MarkNotApplicable(reason string, expectedVersion int) error {
	if err := r.checkVersion(expectedVersion); err != nil {
		return err
	}
	r.Status = StatusNotApplicable
	r.Fulfillment = decimal.Zero
	if reason != "" {
		r.Notes = reason
	}
	r.bump()
	return nil
}

func (r *Requirement) checkVersion(expected int) error {
	if expected != r.Version {
		return errors.NewConcurrentModificationError("organization requirement was modified concurrently")
	}
	return nil
}

func (r *Requirement) bump() {
	r.Version++
	r.UpdatedAt = time.Now()
}
