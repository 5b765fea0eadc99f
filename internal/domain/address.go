package domain

// Address is a street/house-number/ZIP/city tuple. Addresses are
// content-addressed: identical tuples resolve to the same row.
type Address struct {
	ID          int64
	Street      string
	HouseNumber string
	ZipCode     string
	City        string
	State       *string
}

// SameLocation reports whether two addresses share the deduplication tuple.
// State is informational and not part of the identity.
func (a Address) SameLocation(other Address) bool {
	return a.Street == other.Street &&
		a.HouseNumber == other.HouseNumber &&
		a.ZipCode == other.ZipCode &&
		a.City == other.City
}
