// Package accounts registers owners, logs principals in and manages the
// staff identities that act on an owner's behalf.
package accounts

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/02priyeshraj/QR_Menu_Backend/apperrors"
	"github.com/02priyeshraj/QR_Menu_Backend/helper"
	"github.com/02priyeshraj/QR_Menu_Backend/logger"
	"github.com/02priyeshraj/QR_Menu_Backend/models"
	"github.com/02priyeshraj/QR_Menu_Backend/store"
)

const errBadCredentials = "Invalid email or password"

type RegisterInput struct {
	Name           string `json:"name" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required,min=6"`
	Phone          string `json:"phone"`
	RestaurantName string `json:"restaurantName" validate:"required"`
}

// LoginInput accepts either an email or, for staff signing in with a PIN,
// a phone number.
type LoginInput struct {
	Email    string `json:"email" validate:"required_without=Phone"`
	Phone    string `json:"phone"`
	Password string `json:"password" validate:"required"`
}

type ProfileInput struct {
	Name                  *string `json:"name" validate:"omitempty,min=1"`
	Phone                 *string `json:"phone"`
	RestaurantName        *string `json:"restaurantName" validate:"omitempty,min=1"`
	RestaurantAddress     *string `json:"restaurantAddress"`
	RestaurantDescription *string `json:"restaurantDescription"`
	RestaurantLogo        *string `json:"restaurantLogo"`
	UpiID                 *string `json:"upiId"`
}

type Session struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

type Service struct {
	users  store.Users
	tokens *helper.TokenManager
	hasher helper.Hasher
	log    *logger.Logger
	now    func() time.Time
}

func NewService(users store.Users, tokens *helper.TokenManager, hasher helper.Hasher, log *logger.Logger) *Service {
	return &Service{users: users, tokens: tokens, hasher: hasher, log: log, now: time.Now}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	in.Email = normalizeEmail(in.Email)
	if err := helper.Validate(in); err != nil {
		return nil, err
	}
	if taken, err := s.emailTaken(ctx, in.Email); err != nil {
		return nil, err
	} else if taken {
		return nil, apperrors.Conflict("User with this email already exists")
	}

	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperrors.Internal("Error hashing password", err)
	}
	now := s.now()
	user := &models.User{
		Name:           strings.TrimSpace(in.Name),
		Email:          in.Email,
		Password:       hashed,
		Phone:          strings.TrimSpace(in.Phone),
		RestaurantName: strings.TrimSpace(in.RestaurantName),
		Role:           models.RoleOwner,
		IsActive:       true,
		Permissions:    []string{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperrors.Conflict("User with this email already exists")
		}
		return nil, apperrors.Internal("Error creating user", err)
	}
	s.log.Info(logger.RequestID(ctx), "user_registered", "owner registered", "user_id", user.ID.Hex())
	return s.session(user)
}

// Login verifies the password before looking at the account state, so an
// inactive account is only revealed to someone holding its password.
func (s *Service) Login(ctx context.Context, in LoginInput) (*Session, error) {
	if err := helper.Validate(in); err != nil {
		return nil, err
	}

	var user *models.User
	var err error
	if in.Email != "" {
		user, err = s.users.FindByEmail(ctx, normalizeEmail(in.Email))
	} else {
		user, err = s.users.FindByPhone(ctx, strings.TrimSpace(in.Phone))
	}
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperrors.Unauthorized(errBadCredentials)
	}
	if err != nil {
		return nil, apperrors.Internal("Error loading user", err)
	}
	if !s.hasher.Verify(user.Password, in.Password) {
		return nil, apperrors.Unauthorized(errBadCredentials)
	}
	if !user.IsActive {
		return nil, apperrors.Forbidden("Your account has been deactivated")
	}
	s.log.Info(logger.RequestID(ctx), "user_login", "login successful", "user_id", user.ID.Hex(), "role", user.Role)
	return s.session(user)
}

func (s *Service) session(user *models.User) (*Session, error) {
	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, apperrors.Internal("Error generating token", err)
	}
	return &Session{User: user, Token: token}, nil
}

// Authenticate resolves a bearer token to its current user. It backs the
// auth middleware.
func (s *Service) Authenticate(ctx context.Context, bearer string) (*models.User, error) {
	claims, err := s.tokens.Validate(bearer)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindUnauthorized, "Not authorized, token failed", err)
	}
	id, err := helper.ParseID(claims.Uid, "User")
	if err != nil {
		return nil, apperrors.Unauthorized("Not authorized, token failed")
	}
	user, err := s.users.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperrors.Unauthorized("User not found")
	}
	if err != nil {
		return nil, apperrors.Internal("Error loading user", err)
	}
	if !user.IsActive {
		return nil, apperrors.Forbidden("Your account has been deactivated")
	}
	return user, nil
}

func (s *Service) Me(ctx context.Context, principal *models.User) (*models.User, error) {
	if principal == nil {
		return nil, apperrors.Unauthorized("Not authorized")
	}
	user, err := s.users.FindByID(ctx, principal.ID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperrors.NotFound("User not found")
	}
	if err != nil {
		return nil, apperrors.Internal("Error loading user", err)
	}
	return user, nil
}

func (s *Service) UpdateProfile(ctx context.Context, principal *models.User, in ProfileInput) (*models.User, error) {
	if err := helper.Validate(in); err != nil {
		return nil, err
	}
	user, err := s.Me(ctx, principal)
	if err != nil {
		return nil, err
	}
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	set(&user.Name, in.Name)
	set(&user.Phone, in.Phone)
	set(&user.RestaurantName, in.RestaurantName)
	set(&user.RestaurantAddress, in.RestaurantAddress)
	set(&user.RestaurantDescription, in.RestaurantDescription)
	set(&user.RestaurantLogo, in.RestaurantLogo)
	set(&user.UpiID, in.UpiID)
	user.UpdatedAt = s.now()

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperrors.Conflict("A user with this phone already exists")
		}
		return nil, apperrors.Internal("Error updating profile", err)
	}
	return user, nil
}

func (s *Service) emailTaken(ctx context.Context, email string) (bool, error) {
	_, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, apperrors.Internal("Error checking email", err)
	}
	return true, nil
}

func (s *Service) phoneTaken(ctx context.Context, phone string) (bool, error) {
	_, err := s.users.FindByPhone(ctx, phone)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, apperrors.Internal("Error checking phone", err)
	}
	return true, nil
}
