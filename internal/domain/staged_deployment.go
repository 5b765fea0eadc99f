package domain

import "time"

// StagedDeployment is a provisional record awaiting confirmation via an
// emailed encrypted link before becoming a permanent deployment.
type StagedDeployment struct {
	ID             string
	CustomerID     int64
	Connection     ConnectionType
	AddressID      int64
	Annotation     *string
	SubmitterEmail string
	CreatedAt      time.Time

	Address *Address
}
