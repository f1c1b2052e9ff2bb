package enums

import "fmt"

// MemberRole maps to the member_role_enum enum in Postgres. Admins may award
// points to other members; employees may only act on their own account.
type MemberRole string

const (
	MemberRoleEmployee MemberRole = "employee"
	MemberRoleManager  MemberRole = "manager"
	MemberRoleAdmin    MemberRole = "admin"
)

var validMemberRoles = []MemberRole{
	MemberRoleEmployee,
	MemberRoleManager,
	MemberRoleAdmin,
}

// IsValid reports whether the value matches the canonical member role enum.
func (r MemberRole) IsValid() bool {
	for _, candidate := range validMemberRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// CanAward reports whether the role may award points to other members.
func (r MemberRole) CanAward() bool {
	return r == MemberRoleManager || r == MemberRoleAdmin
}

// ParseMemberRole converts raw input into MemberRole.
func ParseMemberRole(value string) (MemberRole, error) {
	for _, candidate := range validMemberRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid member role %q", value)
}
