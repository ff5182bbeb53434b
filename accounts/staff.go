package accounts

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/02priyeshraj/QR_Menu_Backend/apperrors"
	"github.com/02priyeshraj/QR_Menu_Backend/helper"
	"github.com/02priyeshraj/QR_Menu_Backend/logger"
	"github.com/02priyeshraj/QR_Menu_Backend/models"
	"github.com/02priyeshraj/QR_Menu_Backend/store"
	"github.com/02priyeshraj/QR_Menu_Backend/tenant"
)

const DefaultStaffRole = "waiter"

var pinPattern = regexp.MustCompile(`^\d{6}$`)

type CreateStaffInput struct {
	Name        string   `json:"name" validate:"required"`
	Email       string   `json:"email" validate:"omitempty,email"`
	Phone       string   `json:"phone"`
	Permissions []string `json:"permissions"`
	Pin         string   `json:"pin"`
	StaffRole   string   `json:"staffRole" validate:"omitempty,oneof=admin manager waiter kitchen cashier"`
}

type UpdateStaffInput struct {
	Name        *string  `json:"name" validate:"omitempty,min=1"`
	Email       *string  `json:"email" validate:"omitempty,email"`
	Phone       *string  `json:"phone"`
	IsActive    *bool    `json:"isActive"`
	Permissions []string `json:"permissions"`
	StaffRole   *string  `json:"staffRole" validate:"omitempty,oneof=admin manager waiter kitchen cashier"`
}

func (s *Service) ListStaff(ctx context.Context, principal *models.User) ([]models.User, error) {
	tenantID, err := tenant.EffectiveID(principal)
	if err != nil {
		return nil, err
	}
	staff, err := s.users.ListStaff(ctx, tenantID)
	if err != nil {
		return nil, apperrors.Internal("Error listing staff", err)
	}
	if staff == nil {
		staff = []models.User{}
	}
	return staff, nil
}

// CreateStaff adds a staff identity whose password is the bcrypt hash of
// its six digit PIN.
func (s *Service) CreateStaff(ctx context.Context, principal *models.User, in CreateStaffInput) (*models.User, error) {
	tenantID, err := tenant.EffectiveID(principal)
	if err != nil {
		return nil, err
	}
	in.Email = normalizeEmail(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	if err := helper.Validate(in); err != nil {
		return nil, err
	}
	if in.Email == "" && in.Phone == "" {
		return nil, apperrors.Validation("Either email or phone number is required")
	}
	if !pinPattern.MatchString(in.Pin) {
		return nil, apperrors.Validation("PIN must be a 6-digit number")
	}
	if in.Email != "" {
		if taken, err := s.emailTaken(ctx, in.Email); err != nil {
			return nil, err
		} else if taken {
			return nil, apperrors.Conflict("A user with this email already exists")
		}
	}
	if in.Phone != "" {
		if taken, err := s.phoneTaken(ctx, in.Phone); err != nil {
			return nil, err
		} else if taken {
			return nil, apperrors.Conflict("A user with this phone already exists")
		}
	}

	hashed, err := s.hasher.Hash(in.Pin)
	if err != nil {
		return nil, apperrors.Internal("Error hashing PIN", err)
	}
	role := in.StaffRole
	if role == "" {
		role = DefaultStaffRole
	}
	permissions := in.Permissions
	if permissions == nil {
		permissions = []string{}
	}
	now := s.now()
	user := &models.User{
		Name:           strings.TrimSpace(in.Name),
		Email:          in.Email,
		Phone:          in.Phone,
		Password:       hashed,
		RestaurantName: principal.RestaurantName,
		Role:           models.RoleStaff,
		StaffRole:      role,
		OwnerID:        &tenantID,
		IsActive:       true,
		Permissions:    permissions,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperrors.Conflict("A user with this email already exists")
		}
		return nil, apperrors.Internal("Error creating staff", err)
	}
	s.log.Info(logger.RequestID(ctx), "staff_created", "staff account created",
		"tenant_id", tenantID.Hex(), "staff_id", user.ID.Hex(), "staff_role", role)
	return user, nil
}

// staffMember loads a staff user and checks it belongs to the principal's
// tenant.
func (s *Service) staffMember(ctx context.Context, principal *models.User, id string) (*models.User, error) {
	tenantID, err := tenant.EffectiveID(principal)
	if err != nil {
		return nil, err
	}
	oid, err := helper.ParseID(id, "Staff user")
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, oid)
	if errors.Is(err, store.ErrNotFound) || (err == nil && !user.IsStaff()) {
		return nil, apperrors.NotFound("Staff user not found")
	}
	if err != nil {
		return nil, apperrors.Internal("Error loading staff user", err)
	}
	if user.OwnerID == nil || *user.OwnerID != tenantID {
		return nil, apperrors.Forbidden("Not authorized to modify this staff user")
	}
	return user, nil
}

func (s *Service) UpdateStaff(ctx context.Context, principal *models.User, id string, in UpdateStaffInput) (*models.User, error) {
	if err := helper.Validate(in); err != nil {
		return nil, err
	}
	user, err := s.staffMember(ctx, principal, id)
	if err != nil {
		return nil, err
	}

	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		if email != "" && email != user.Email {
			if taken, err := s.emailTaken(ctx, email); err != nil {
				return nil, err
			} else if taken {
				return nil, apperrors.Conflict("A user with this email already exists")
			}
		}
		user.Email = email
	}
	if in.Phone != nil {
		phone := strings.TrimSpace(*in.Phone)
		if phone != "" && phone != user.Phone {
			if taken, err := s.phoneTaken(ctx, phone); err != nil {
				return nil, err
			} else if taken {
				return nil, apperrors.Conflict("A user with this phone already exists")
			}
		}
		user.Phone = phone
	}
	if user.Email == "" && user.Phone == "" {
		return nil, apperrors.Validation("Either email or phone number is required")
	}
	if in.Name != nil {
		user.Name = strings.TrimSpace(*in.Name)
	}
	if in.IsActive != nil {
		user.IsActive = *in.IsActive
	}
	if in.Permissions != nil {
		user.Permissions = in.Permissions
	}
	if in.StaffRole != nil {
		user.StaffRole = *in.StaffRole
	}
	user.UpdatedAt = s.now()

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperrors.Conflict("A user with this email already exists")
		}
		return nil, apperrors.Internal("Error updating staff", err)
	}
	return user, nil
}

// DeleteStaff removes the staff identity permanently.
func (s *Service) DeleteStaff(ctx context.Context, principal *models.User, id string) error {
	user, err := s.staffMember(ctx, principal, id)
	if err != nil {
		return err
	}
	if err := s.users.Delete(ctx, user.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return apperrors.Internal("Error deleting staff", err)
	}
	s.log.Info(logger.RequestID(ctx), "staff_deleted", "staff account deleted", "staff_id", user.ID.Hex())
	return nil
}
