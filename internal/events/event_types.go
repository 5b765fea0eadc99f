package events

import (
	"time"

	"github.com/fieldops/deployment-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventDeploymentCreated EventType = "deployment_created"
	EventDeploymentPatched EventType = "deployment_patched"
	EventDeploymentDeleted EventType = "deployment_deleted"
	EventChecklistUpdated  EventType = "checklist_updated"
	EventStagedSubmitted   EventType = "staged_submitted"
	EventStagedConfirmed   EventType = "staged_confirmed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	AccountID *int64      `json:"account_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// DeploymentCreatedPayload payload.
type DeploymentCreatedPayload struct {
	DeploymentID int64                 `json:"deployment_id"`
	CustomerID   int64                 `json:"customer_id"`
	Type         domain.DeploymentType `json:"type"`
	Connection   domain.ConnectionType `json:"connection"`
}

// DeploymentPatchedPayload payload.
type DeploymentPatchedPayload struct {
	DeploymentID  int64    `json:"deployment_id"`
	ChangedFields []string `json:"changed_fields"`
}

// DeploymentDeletedPayload payload.
type DeploymentDeletedPayload struct {
	DeploymentID int64 `json:"deployment_id"`
	CustomerID   int64 `json:"customer_id"`
}

// ChecklistUpdatedPayload payload.
type ChecklistUpdatedPayload struct {
	DeploymentID int64  `json:"deployment_id"`
	Step         string `json:"step"`
	Done         bool   `json:"done"`
}

// StagedSubmittedPayload payload. ConfirmationLink carries the full URL
// embedding the encrypted staged id.
type StagedSubmittedPayload struct {
	StagedID         string `json:"staged_id"`
	CustomerID       int64  `json:"customer_id"`
	SubmitterEmail   string `json:"submitter_email"`
	ConfirmationLink string `json:"confirmation_link"`
}

// StagedConfirmedPayload payload.
type StagedConfirmedPayload struct {
	StagedID     string `json:"staged_id"`
	DeploymentID int64  `json:"deployment_id"`
}
