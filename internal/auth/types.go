package auth

import "time"

// Roles recognised by the platform. A session's role never changes for
// its lifetime; re-authentication is required to act as someone else.
const (
	RoleCitizen = "citizen"
	RoleAgency  = "agency"
	RoleAdmin   = "admin"
)

// ValidRole reports whether the given role is one the platform knows.
func ValidRole(role string) bool {
	switch role {
	case RoleCitizen, RoleAgency, RoleAdmin:
		return true
	}
	return false
}

// User is a registered account: a citizen filing complaints, an agency
// operator working assigned cases, or an administrator.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	AgencyID     string    `json:"agencyId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Agency is an organizational unit complaints are routed to.
type Agency struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Categories   []string  `json:"categories"`
	ContactEmail string    `json:"contactEmail"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserUpdate carries optional field changes; nil means "leave as is".
type UserUpdate struct {
	Name     *string
	Email    *string
	Password *string
	Role     *string
	AgencyID *string
}

// AgencyUpdate carries optional field changes; nil means "leave as is".
type AgencyUpdate struct {
	Name         *string
	Categories   []string
	ContactEmail *string
}
