package enums

import "fmt"

// ActorRole identifies which side of the procurement workflow a user acts for.
type ActorRole string

const (
	ActorRoleOwner  ActorRole = "owner"
	ActorRoleStaff  ActorRole = "staff"
	ActorRoleVendor ActorRole = "vendor"
	ActorRoleAdmin  ActorRole = "admin"
)

var validActorRoles = []ActorRole{
	ActorRoleOwner,
	ActorRoleStaff,
	ActorRoleVendor,
	ActorRoleAdmin,
}

// String implements fmt.Stringer.
func (a ActorRole) String() string {
	return string(a)
}

// IsValid reports whether the value is a known ActorRole.
func (a ActorRole) IsValid() bool {
	for _, candidate := range validActorRoles {
		if candidate == a {
			return true
		}
	}
	return false
}

// IsCounterpart reports whether the role sits on the buyer side of an order.
func (a ActorRole) IsCounterpart() bool {
	return a == ActorRoleOwner || a == ActorRoleStaff || a == ActorRoleAdmin
}

// ParseActorRole converts raw input into an ActorRole.
func ParseActorRole(value string) (ActorRole, error) {
	for _, candidate := range validActorRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid actor role %q", value)
}
