package domain

// DefaultAdminInfo is recorded when an admin caller gives no identity
const DefaultAdminInfo = "Updated via API"

// Actor is the caller identity resolved by the transport layer
type Actor struct {
	Admin    bool
	Identity string
}

// AdminInfo is the value stored on history entries written by this actor
func (a Actor) AdminInfo() string {
	if a.Identity == "" {
		return DefaultAdminInfo
	}
	return a.Identity
}
