package dto

import (
	"encoding/json"
	"time"

	"github.com/fieldops/deployment-service/internal/domain"
)

// AddressPayload carries an address in requests and responses.
type AddressPayload struct {
	Street      string  `json:"street"`
	HouseNumber string  `json:"houseNumber"`
	ZipCode     string  `json:"zipCode"`
	City        string  `json:"city"`
	State       *string `json:"state,omitempty"`
}

// CreateDeploymentRequest is the POST /deployments body.
type CreateDeploymentRequest struct {
	Type       string          `json:"type"`
	Connection string          `json:"connection"`
	Address    *AddressPayload `json:"address"`
	LptAddress *AddressPayload `json:"lptAddress"`
	Scheduled  *string         `json:"scheduled"`
	Annotation *string         `json:"annotation"`
	Testing    bool            `json:"testing"`
	Customer   *int64          `json:"customer"`
}

// UpdateDeploymentRequest is the PATCH /deployments/:id body. RawMessage
// fields distinguish absent keys from explicit nulls.
type UpdateDeploymentRequest struct {
	Type       *string         `json:"type"`
	Connection *string         `json:"connection"`
	Address    *AddressPayload `json:"address"`
	LptAddress *AddressPayload `json:"lptAddress"`
	Scheduled  json.RawMessage `json:"scheduled"`
	Annotation json.RawMessage `json:"annotation"`
	Testing    *bool           `json:"testing"`
}

// SubmitDeploymentRequest is the POST /submit body.
type SubmitDeploymentRequest struct {
	Connection string          `json:"connection"`
	Address    *AddressPayload `json:"address"`
	Annotation *string         `json:"annotation"`
	Email      string          `json:"email"`
	Customer   *int64          `json:"customer"`
}

// CustomerResponse serializes a customer.
type CustomerResponse struct {
	ID           int64   `json:"id"`
	Company      string  `json:"company"`
	Abbreviation *string `json:"abbreviation,omitempty"`
}

// DeploymentResponse serializes a deployment. Systems and Customer are
// included depending on the endpoint variant.
type DeploymentResponse struct {
	ID         int64                 `json:"id"`
	Type       domain.DeploymentType `json:"type"`
	Connection domain.ConnectionType `json:"connection"`
	Address    AddressPayload        `json:"address"`
	LptAddress *AddressPayload       `json:"lptAddress,omitempty"`
	Scheduled  *time.Time            `json:"scheduled"`
	Annotation *string               `json:"annotation"`
	Testing    bool                  `json:"testing"`

	TechnicianAnnotation                json.RawMessage `json:"technicianAnnotation,omitempty"`
	ConstructionSitePreparationFeedback *time.Time      `json:"constructionSitePreparationFeedback"`
	InternetConnection                  *time.Time      `json:"internetConnection"`
	HardwareInstallation                *time.Time      `json:"hardwareInstallation"`

	Customer *CustomerResponse `json:"customer,omitempty"`
	Systems  []int64           `json:"systems,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// StagedDeploymentResponse serializes a staged deployment.
type StagedDeploymentResponse struct {
	ID         string                `json:"id"`
	Customer   int64                 `json:"customer"`
	Connection domain.ConnectionType `json:"connection"`
	Address    AddressPayload        `json:"address"`
	Annotation *string               `json:"annotation"`
	CreatedAt  time.Time             `json:"createdAt"`
}
