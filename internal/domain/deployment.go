package domain

import (
	"encoding/json"
	"time"
)

// DeploymentType enumerates installation kinds.
type DeploymentType string

const (
	DeploymentTypeDDB     DeploymentType = "ddb"
	DeploymentTypeKiosk   DeploymentType = "kiosk"
	DeploymentTypeDisplay DeploymentType = "display"
)

// ParseDeploymentType validates a raw type value.
func ParseDeploymentType(raw string) (DeploymentType, bool) {
	switch t := DeploymentType(raw); t {
	case DeploymentTypeDDB, DeploymentTypeKiosk, DeploymentTypeDisplay:
		return t, true
	default:
		return "", false
	}
}

// ConnectionType enumerates network connection kinds.
type ConnectionType string

const (
	ConnectionDSL   ConnectionType = "dsl"
	ConnectionLTE   ConnectionType = "lte"
	ConnectionFiber ConnectionType = "fiber"
	ConnectionLAN   ConnectionType = "lan"
)

// ParseConnectionType validates a raw connection value.
func ParseConnectionType(raw string) (ConnectionType, bool) {
	switch c := ConnectionType(raw); c {
	case ConnectionDSL, ConnectionLTE, ConnectionFiber, ConnectionLAN:
		return c, true
	default:
		return "", false
	}
}

// Deployment is a physical installation site where hardware systems are or
// will be installed. The checklist fields are nullable timestamps with
// presence = completed-at semantics.
type Deployment struct {
	ID           int64
	CustomerID   int64
	Type         DeploymentType
	Connection   ConnectionType
	AddressID    int64
	LPTAddressID *int64
	Scheduled    *time.Time
	Annotation   *string
	Testing      bool

	TechnicianAnnotation                json.RawMessage
	ConstructionSitePreparationFeedback *time.Time
	InternetConnection                  *time.Time
	HardwareInstallation                *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	// Populated by cascading reads; nil when not requested.
	Address    *Address
	LPTAddress *Address
	Customer   *Customer
	Systems    []int64
}

// System is a hardware unit installed at a deployment. Its presence locks
// destructive mutations for non-root accounts.
type System struct {
	ID           int64
	DeploymentID *int64
}
