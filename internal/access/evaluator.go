package access

import (
	"github.com/rvanstaden/huisvind-backend/pkg/db/models"
	"github.com/rvanstaden/huisvind-backend/pkg/enums"
)

// Capability evaluation is pure and total: a nil profile (no authenticated
// user) evaluates every capability to false. No I/O happens here; loading
// the profile is the caller's job.

func IsAdmin(profile *models.UserProfile) bool {
	return profile != nil && profile.Role == enums.UserRoleAdmin
}

func IsAgent(profile *models.UserProfile) bool {
	return profile != nil && profile.Role == enums.UserRoleAgent
}

func IsRegularUser(profile *models.UserProfile) bool {
	return profile != nil && profile.Role == enums.UserRoleUser
}

// CanAccessDashboard grants the role-gated account area to active admins
// and agents.
func CanAccessDashboard(profile *models.UserProfile) bool {
	if profile == nil || !profile.IsActive {
		return false
	}
	return profile.Role == enums.UserRoleAdmin || profile.Role == enums.UserRoleAgent
}

// CanListProperties matches the dashboard predicate: only active admins and
// agents may create listings.
func CanListProperties(profile *models.UserProfile) bool {
	return CanAccessDashboard(profile)
}

// HasRole checks for an exact active role match.
func HasRole(profile *models.UserProfile, role enums.UserRole) bool {
	return profile != nil && profile.IsActive && profile.Role == role
}

// CanManageProperty grants write access to the owner of a listing or any
// active admin.
func CanManageProperty(profile *models.UserProfile, ownerID string) bool {
	if profile == nil || !profile.IsActive {
		return false
	}
	if profile.Role == enums.UserRoleAdmin {
		return true
	}
	return ownerID != "" && profile.UID.String() == ownerID
}

// Capabilities is the flattened capability set handed to clients so they can
// gate navigation without re-deriving rules.
type Capabilities struct {
	Role               enums.UserRole `json:"role"`
	IsActive           bool           `json:"is_active"`
	CanAccessDashboard bool           `json:"can_access_dashboard"`
	CanListProperties  bool           `json:"can_list_properties"`
	IsAdmin            bool           `json:"is_admin"`
}

// Evaluate derives the full capability set for a profile.
func Evaluate(profile *models.UserProfile) Capabilities {
	caps := Capabilities{
		CanAccessDashboard: CanAccessDashboard(profile),
		CanListProperties:  CanListProperties(profile),
		IsAdmin:            IsAdmin(profile),
	}
	if profile != nil {
		caps.Role = profile.Role
		caps.IsActive = profile.IsActive
	}
	return caps
}
