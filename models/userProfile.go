package models

import "time"

// UserProfile is the profiles row of a user of the hosted auth service.
type UserProfile struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Username   *string   `json:"username"`
	Full_Name  *string   `json:"full_name"`
	Avatar_URL *string   `json:"avatar_url" db:"avatar_url"`
	Role       Role      `json:"role"`
	Created_At time.Time `json:"created_at" goqu:"skipinsert"`
	Updated_At time.Time `json:"updated_at" goqu:"skipinsert"`
}

// DisplayName picks the friendliest non-empty name of the profile.
func (p UserProfile) DisplayName() string {
	if p.Full_Name != nil && *p.Full_Name != "" {
		return *p.Full_Name
	}
	if p.Username != nil && *p.Username != "" {
		return *p.Username
	}
	return p.Email
}

// AuthUser is the identity taken from a verified access token.
type AuthUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

// SessionCreate is the request body for POST /api/auth/session
type SessionCreate struct {
	Access_Token string `json:"accessToken" binding:"required"`
}
