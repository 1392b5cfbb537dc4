package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleAdmin       UserRole = "ADMIN"
	RoleInstitution UserRole = "INSTITUTION"
	RoleEvaluator   UserRole = "EVALUATOR"
)

// Valid reports whether the role is one the workflow understands.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleInstitution, RoleEvaluator:
		return true
	default:
		return false
	}
}

// User is the read model of a portal account. Accounts are managed by the
// authentication service; the workflow only looks evaluators up.
type User struct {
	ID            string    `db:"id" json:"id"`
	Email         string    `db:"email" json:"email"`
	FullName      string    `db:"full_name" json:"full_name"`
	Role          UserRole  `db:"role" json:"role"`
	InstitutionID *string   `db:"institution_id" json:"institution_id,omitempty"`
	Active        bool      `db:"active" json:"active"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// Actor is the caller identity passed explicitly into every workflow operation.
type Actor struct {
	UserID        string
	Role          UserRole
	InstitutionID string
}

// IsAdmin reports whether the actor has unrestricted access.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID        string   `json:"user_id"`
	Role          UserRole `json:"role"`
	InstitutionID string   `json:"institution_id,omitempty"`
	Email         string   `json:"email,omitempty"`
	FullName      string   `json:"full_name,omitempty"`
	jwt.RegisteredClaims
}

// Actor converts the token claims into a workflow actor.
func (c *JWTClaims) Actor() Actor {
	if c == nil {
		return Actor{}
	}
	return Actor{UserID: c.UserID, Role: c.Role, InstitutionID: c.InstitutionID}
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
