package profile

import (
	"strings"

	"github.com/BruksfildServices01/nail-scheduler/internal/auth"
	"github.com/BruksfildServices01/nail-scheduler/internal/httperr"
	"github.com/BruksfildServices01/nail-scheduler/internal/models"
	"github.com/BruksfildServices01/nail-scheduler/internal/validators"
)

const DefaultPageSize = 5

// Actor is the authenticated user performing an operation.
type Actor struct {
	UserID uint
	Role   models.Role
}

// ListFilter drives the master and customer lists.
type ListFilter struct {
	Username string
	Page     int
	PageSize int
}

func (f ListFilter) Normalize() ListFilter {
	f.Username = strings.TrimSpace(f.Username)
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	return f
}

func (f ListFilter) Offset() int {
	return (f.Page - 1) * f.PageSize
}

// ===============================
// Validations
// ===============================

// CheckRole enforces that a profile row hangs off a user of the same kind.
func CheckRole(user *models.User, want models.Role) error {
	if user.Role != want {
		return httperr.ErrBusiness("role_mismatch")
	}
	return nil
}

// CanManage lets the profile owner or an admin change or delete it.
func CanManage(actor Actor, ownerUserID uint) error {
	if actor.Role == models.RoleAdmin || actor.UserID == ownerUserID {
		return nil
	}
	return httperr.ErrBusiness("not_owner")
}

func ValidateCredentials(username, password string) error {
	if !validators.IsUsernameValid(username) {
		return httperr.ErrBusiness("invalid_username")
	}
	if len(password) < auth.MinPasswordLength {
		return httperr.ErrBusiness("password_too_short")
	}
	return nil
}

// NewUser builds an identity row with a hashed password and the given role.
func NewUser(username, password, firstName, lastName, email string, role models.Role) (*models.User, error) {
	username = strings.TrimSpace(username)
	if err := ValidateCredentials(username, password); err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	return &models.User{
		Username:     username,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(firstName),
		LastName:     strings.TrimSpace(lastName),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Role:         role,
	}, nil
}
