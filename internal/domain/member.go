package domain

import "time"

type Role string

const (
	RoleMember Role = "MEMBER"
	RoleAdmin  Role = "ADMIN"
)

// Member is a registered participant of the savings group. MemberNo is the
// external identifier members are known by on paper records and bulk
// reconciliation sheets.
type Member struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	MemberNo string    `json:"member_no"`
	Phone    string    `json:"phone,omitempty"`
	Role     Role      `json:"role"`
	Active   bool      `json:"active"`
	JoinedOn time.Time `json:"joined_on"`
}

// Actor is the already-authenticated identity performing an operation. The
// core trusts the identity provider and does not re-authenticate.
type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}

// IsAdmin reports whether the actor may perform admin-only operations.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
