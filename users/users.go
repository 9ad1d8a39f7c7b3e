package users

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jrsteele09/go-learning-portal/internal/utils"
)

// RoleType is the platform role of a user. The set is closed.
type RoleType string

const (
	RoleStudent     RoleType = "student"     // Enrolled learner
	RoleTeacher     RoleType = "teacher"     // Authors and grades course content
	RoleCoordinator RoleType = "coordinator" // Oversees courses and teachers
	RoleAdmin       RoleType = "admin"       // Platform administration
)

var knownRoles = map[RoleType]struct{}{
	RoleStudent:     {},
	RoleTeacher:     {},
	RoleCoordinator: {},
	RoleAdmin:       {},
}

// ParseRole returns the role for tag, rejecting anything outside the closed set.
func ParseRole(tag string) (RoleType, error) {
	role := RoleType(strings.ToLower(strings.TrimSpace(tag)))
	if _, ok := knownRoles[role]; !ok {
		return "", fmt.Errorf("unknown role %q", tag)
	}
	return role, nil
}

func (r RoleType) Valid() bool {
	_, ok := knownRoles[r]
	return ok
}

// User is the identity returned by the backend for the current browser
// context.
type User struct {
	ID        string   `json:"id"`                  // Backend user identifier
	Email     string   `json:"email"`               // Login email
	FirstName string   `json:"firstName,omitempty"` // Given name
	LastName  string   `json:"lastName,omitempty"`  // Family name
	Role      RoleType `json:"role"`                // Platform role
	Avatar    string   `json:"avatar,omitempty"`    // Profile picture URL
	Bio       string   `json:"bio,omitempty"`
	Phone     string   `json:"phone,omitempty"`
	Verified  bool     `json:"isVerified,omitempty"` // Email verified
}

// UnmarshalJSON accepts "_id" as an alias for "id" and rejects unknown roles.
// A missing role decodes to the empty role.
func (u *User) UnmarshalJSON(data []byte) error {
	type plain User
	aux := struct {
		*plain
		MongoID string `json:"_id"`
		Role    string `json:"role"`
	}{plain: (*plain)(u)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if u.ID == "" {
		u.ID = aux.MongoID
	}
	if strings.TrimSpace(aux.Role) == "" {
		u.Role = ""
		return nil
	}
	role, err := ParseRole(aux.Role)
	if err != nil {
		return err
	}
	u.Role = role
	return nil
}

// DisplayName returns "First Last", falling back to the email.
func (u *User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

// Clone returns a copy so callers never share the session's own record.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

// Credentials is the login payload.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Registration is the full profile submitted to create an account.
type Registration struct {
	FirstName string   `json:"firstName" validate:"required"`
	LastName  string   `json:"lastName" validate:"required"`
	Email     string   `json:"email" validate:"required,email"`
	Password  string   `json:"password" validate:"required,min=8"`
	Role      RoleType `json:"role" validate:"required,oneof=student teacher coordinator admin"`
	Phone     string   `json:"phone,omitempty"`
}

// ProfileUpdate is a partial update; nil fields are left untouched.
type ProfileUpdate struct {
	FirstName *string `json:"firstName,omitempty" validate:"omitempty,min=1"`
	LastName  *string `json:"lastName,omitempty" validate:"omitempty,min=1"`
	Avatar    *string `json:"avatar,omitempty" validate:"omitempty,url"`
	Bio       *string `json:"bio,omitempty"`
	Phone     *string `json:"phone,omitempty"`
}

// Empty reports whether the update changes nothing.
func (p ProfileUpdate) Empty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Avatar == nil && p.Bio == nil && p.Phone == nil
}

// Apply returns a copy of u with the non-nil fields of p set.
func (u User) Apply(p ProfileUpdate) User {
	u.FirstName = utils.ValueOr(p.FirstName, u.FirstName)
	u.LastName = utils.ValueOr(p.LastName, u.LastName)
	u.Avatar = utils.ValueOr(p.Avatar, u.Avatar)
	u.Bio = utils.ValueOr(p.Bio, u.Bio)
	u.Phone = utils.ValueOr(p.Phone, u.Phone)
	return u
}

type PasswordChange struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,nefield=CurrentPassword"`
}

type PasswordReset struct {
	Token    string `json:"-" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

type ForgotPassword struct {
	Email string `json:"email" validate:"required,email"`
}
