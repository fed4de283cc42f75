package models

import (
	"encoding/json"
	"fmt"
)

// Role identifies which kind of account holds a session
type Role string

const (
	RoleNone         Role = ""
	RoleUser         Role = "user"
	RolePhotographer Role = "photographer"
	RoleAdmin        Role = "admin"
)

// Roles lists every authenticated role, in persisted-key order
var Roles = []Role{RoleUser, RolePhotographer, RoleAdmin}

// IsValid reports whether r is one of the authenticated roles
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RolePhotographer, RoleAdmin:
		return true
	}
	return false
}

// String returns the string representation of Role
func (r Role) String() string {
	if r == RoleNone {
		return "none"
	}
	return string(r)
}

// ParseRole converts a path segment or claim into a Role
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.IsValid() {
		return RoleNone, fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Identity is the profile of an authenticated party
type Identity interface {
	IdentityID() string
	IdentityRole() Role
	DisplayName() string
}

// EndUser is a customer who books sessions and rates photographers
type EndUser struct {
	ID             string `json:"_id" validate:"required"`
	Name           string `json:"name" validate:"required"`
	Email          string `json:"email" validate:"required,loose_email"`
	Phone          string `json:"phone,omitempty"`
	Address        string `json:"address,omitempty"`
	ProfilePicture string `json:"profilePicture,omitempty"`
	Status         string `json:"status,omitempty"`
}

func (u *EndUser) IdentityID() string  { return u.ID }
func (u *EndUser) IdentityRole() Role  { return RoleUser }
func (u *EndUser) DisplayName() string { return u.Name }
func (u *EndUser) UnmarshalJSON(b []byte) error {
	type alias EndUser
	aux := struct {
		*alias
		AltID string `json:"id"`
	}{alias: (*alias)(u)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if u.ID == "" {
		u.ID = aux.AltID
	}
	return nil
}

// Package is a priced photography offer
type Package struct {
	Name  string  `json:"name" validate:"required"`
	Price float64 `json:"price" validate:"gte=0"`
}

// Photographer offers sessions and owns a portfolio
type Photographer struct {
	ID             string          `json:"_id" validate:"required"`
	Name           string          `json:"name" validate:"required"`
	Email          string          `json:"email" validate:"required,loose_email"`
	Phone          string          `json:"phone,omitempty"`
	Specialization []string        `json:"specialization"`
	Experience     int             `json:"experience"`
	AverageRating  float64         `json:"averageRating"`
	Portfolio      []PortfolioItem `json:"portfolio,omitempty"`
	Packages       []Package       `json:"packages,omitempty"`
	ProfilePicture string          `json:"profilePicture,omitempty"`
}

func (p *Photographer) IdentityID() string  { return p.ID }
func (p *Photographer) IdentityRole() Role  { return RolePhotographer }
func (p *Photographer) DisplayName() string { return p.Name }
func (p *Photographer) UnmarshalJSON(b []byte) error {
	type alias Photographer
	aux := struct {
		*alias
		AltID string `json:"id"`
	}{alias: (*alias)(p)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if p.ID == "" {
		p.ID = aux.AltID
	}
	return nil
}

// Admin manages accounts and views analytics
type Admin struct {
	ID    string `json:"_id" validate:"required"`
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,loose_email"`
}

func (a *Admin) IdentityID() string  { return a.ID }
func (a *Admin) IdentityRole() Role  { return RoleAdmin }
func (a *Admin) DisplayName() string { return a.Name }
func (a *Admin) UnmarshalJSON(b []byte) error {
	type alias Admin
	aux := struct {
		*alias
		AltID string `json:"id"`
	}{alias: (*alias)(a)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if a.ID == "" {
		a.ID = aux.AltID
	}
	return nil
}

// DecodeIdentity decodes a JSON identity blob for the given role
func DecodeIdentity(role Role, blob []byte) (Identity, error) {
	var id Identity
	switch role {
	case RoleUser:
		id = &EndUser{}
	case RolePhotographer:
		id = &Photographer{}
	case RoleAdmin:
		id = &Admin{}
	default:
		return nil, fmt.Errorf("unknown role %q", role)
	}
	if err := json.Unmarshal(blob, id); err != nil {
		return nil, fmt.Errorf("decode %s identity: %w", role, err)
	}
	if err := Validate(id); err != nil {
		return nil, err
	}
	return id, nil
}

// Credentials is the login form payload
type Credentials struct {
	Email    string `json:"email" validate:"required,loose_email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginResult is what a successful backend login yields
type LoginResult struct {
	Token    string
	Identity Identity
}

// RegisterUserRequest is the EndUser registration form
type RegisterUserRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,loose_email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone" validate:"required,min=10"`
	Address  string `json:"address"`
}

// RegisterPhotographerRequest is the photographer registration form
type RegisterPhotographerRequest struct {
	Name           string   `json:"name" validate:"required"`
	Email          string   `json:"email" validate:"required,loose_email"`
	Password       string   `json:"password" validate:"required,min=6"`
	Phone          string   `json:"phone" validate:"required,min=10"`
	Specialization []string `json:"specialization" validate:"required,min=1,dive,required"`
	Experience     int      `json:"experience" validate:"gte=0"`
}

// RegisterAdminRequest is the admin registration form
type RegisterAdminRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,loose_email"`
	Password string `json:"password" validate:"required,min=6"`
}

// UpdateUserProfileRequest carries editable EndUser fields
type UpdateUserProfileRequest struct {
	Name           string `json:"name,omitempty"`
	Phone          string `json:"phone,omitempty" validate:"omitempty,min=10"`
	Address        string `json:"address,omitempty"`
	ProfilePicture string `json:"profilePicture,omitempty" validate:"omitempty,url"`
}

// UpdatePhotographerProfileRequest carries editable photographer fields
type UpdatePhotographerProfileRequest struct {
	Name           string    `json:"name,omitempty"`
	Phone          string    `json:"phone,omitempty" validate:"omitempty,min=10"`
	Specialization []string  `json:"specialization,omitempty" validate:"omitempty,dive,required"`
	Experience     *int      `json:"experience,omitempty" validate:"omitempty,gte=0"`
	Packages       []Package `json:"packages,omitempty" validate:"omitempty,dive"`
	ProfilePicture string    `json:"profilePicture,omitempty" validate:"omitempty,url"`
}

// UserStatus is the account state an admin can set
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
)

// UpdateUserStatusRequest is sent to PUT /admin/user-status
type UpdateUserStatusRequest struct {
	UserID string     `json:"userId" validate:"required"`
	Status UserStatus `json:"status" validate:"required,oneof=active inactive"`
}

// MessageResponse is the generic acknowledgement the backend returns
type MessageResponse struct {
	Message string `json:"message"`
}
