// Package tenant collapses an authenticated principal to the owner id that
// scopes every tenant query.
package tenant

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/02priyeshraj/QR_Menu_Backend/apperrors"
	"github.com/02priyeshraj/QR_Menu_Backend/models"
)

// EffectiveID returns the owner's own id for owners and admins, or the
// ownerId back-reference for staff. A staff record without an owner is a
// configuration error, not a missing resource.
func EffectiveID(principal *models.User) (primitive.ObjectID, error) {
	if principal == nil {
		return primitive.NilObjectID, apperrors.Unauthorized("Authentication required")
	}
	if !principal.IsStaff() {
		return principal.ID, nil
	}
	if principal.OwnerID == nil || principal.OwnerID.IsZero() {
		return primitive.NilObjectID, apperrors.Configuration("Staff account is not linked to an owner")
	}
	return *principal.OwnerID, nil
}

// Owns reports whether the resource tenant matches the principal's effective
// tenant. Resolution failures are returned unchanged.
func Owns(principal *models.User, resourceTenant primitive.ObjectID) error {
	id, err := EffectiveID(principal)
	if err != nil {
		return err
	}
	if id != resourceTenant {
		return apperrors.Forbidden("Access denied")
	}
	return nil
}
