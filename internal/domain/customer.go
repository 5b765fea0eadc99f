package domain

// Customer owns deployments. External entity, read-only here.
type Customer struct {
	ID           int64
	Company      string
	Abbreviation *string
}
