package services

import "github.com/yeremiapane/clipper-lms/models"

// RequireRole fails with Forbidden unless identity holds one of roles.
func RequireRole(identity models.Identity, msg string, roles ...models.Role) error {
	for _, r := range roles {
		if identity.Role == r {
			return nil
		}
	}
	return forbidden(msg)
}

// RequireOwnerOrAdmin fails with Forbidden unless identity is an admin or the
// owner of the resource.
func RequireOwnerOrAdmin(identity models.Identity, ownerID uint, msg string) error {
	if identity.Role == models.RoleAdmin || identity.ID == ownerID {
		return nil
	}
	return forbidden(msg)
}
