package utils

import (
	"strings"

	"shopledger/models"
)

// shopRoles are the roles a user can hold inside a shop.
var shopRoles = map[string]bool{
	models.RoleOwner: true,
	models.RoleStaff: true,
}

// ValidateAndNormalizeRole lowercases and trims role and reports whether the
// result is a known shop role.
func ValidateAndNormalizeRole(role string) (string, bool) {
	normalized := strings.ToLower(strings.TrimSpace(role))
	return normalized, shopRoles[normalized]
}

// IsValidRole reports whether role is already a normalized shop role, as
// carried in access tokens.
func IsValidRole(role string) bool {
	return shopRoles[role]
}

// IsPrivileged reports whether role may see purchase prices and manage the shop.
func IsPrivileged(role string) bool {
	return role == models.RoleOwner
}
