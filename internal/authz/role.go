package authz

// roleKind discriminates the role union.
type roleKind int

const (
	kindOwner roleKind = iota
	kindScopedAdmin
	kindRoot
)

// Role models the three-tier authorization model as a tagged union:
// Root, ScopedAdmin (delegated customer set plus the own customer) and
// Owner (the account's own customer only).
type Role struct {
	kind      roleKind
	customers []int64
}

// Root grants unrestricted access.
func Root() Role {
	return Role{kind: kindRoot}
}

// ScopedAdmin grants deployment-admin access over the given customers.
// The caller is expected to include the account's own customer.
func ScopedAdmin(customerIDs []int64) Role {
	return Role{kind: kindScopedAdmin, customers: dedupe(customerIDs)}
}

// Owner grants access to the account's own customer only.
func Owner(customerID int64) Role {
	return Role{kind: kindOwner, customers: []int64{customerID}}
}

// Unrestricted reports whether the role sees all customers.
func (r Role) Unrestricted() bool {
	return r.kind == kindRoot
}

// Admin reports whether the role carries deployment-admin rights.
func (r Role) Admin() bool {
	return r.kind == kindRoot || r.kind == kindScopedAdmin
}

// VisibleCustomers returns the customer ids the role may see. The result is
// meaningless for unrestricted roles; callers must check Unrestricted first.
func (r Role) VisibleCustomers() []int64 {
	out := make([]int64, len(r.customers))
	copy(out, r.customers)
	return out
}

// CanAccessCustomer reports whether the role covers the given customer.
func (r Role) CanAccessCustomer(customerID int64) bool {
	if r.kind == kindRoot {
		return true
	}
	for _, id := range r.customers {
		if id == customerID {
			return true
		}
	}
	return false
}

// Scope converts the role into a repository query scope.
func (r Role) Scope() Scope {
	if r.kind == kindRoot {
		return Scope{All: true}
	}
	return Scope{CustomerIDs: r.VisibleCustomers()}
}

// Scope restricts repository queries to a set of customers. All=true means
// unrestricted.
type Scope struct {
	All         bool
	CustomerIDs []int64
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
