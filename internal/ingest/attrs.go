package ingest

import "github.com/scorecard/api/internal/model"

// attributeRoles is the declarative gate for patchable project attributes:
// column name -> minimum role allowed to stage it. Attributes staged by an
// unauthorized caller are dropped silently, matching the upload form's
// behavior of simply not offering those fields.
var attributeRoles = map[string]string{
	"name":         model.RoleAdmin,
	"finished":     model.RoleUser,
	"last_segment": model.RoleUser,
}

var roleRank = map[string]int{
	model.RoleUser:       0,
	model.RoleAdmin:      1,
	model.RoleSuperadmin: 2,
}

// roleAllows reports whether role meets the required minimum for an
// attribute.
func roleAllows(role, attribute string) bool {
	required, ok := attributeRoles[attribute]
	if !ok {
		return false
	}
	return roleRank[role] >= roleRank[required]
}
