package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Roles carried in session tokens. Admins and users live in separate tables
// with identical shape; the role both namespaces the credential lookup and
// gates protected routes.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Account holds the credential fields shared by both variants. The password
// hash never serializes outward.
type Account struct {
	ID           int64     `bun:"id,pk,autoincrement" json:"id"`
	FirstName    string    `bun:"first_name,notnull" json:"first_name"`
	LastName     string    `bun:"last_name,notnull" json:"last_name"`
	Mobile       string    `bun:"mobile,notnull,unique" json:"mobile"`
	PasswordHash string    `bun:"password,notnull" json:"-"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

type Admin struct {
	bun.BaseModel `bun:"table:admins"`
	Account
}

type User struct {
	bun.BaseModel `bun:"table:users"`
	Account
}

// Details is the optional 1:1 profile row attached to an account. The image
// field stores only the storage key; handlers qualify it into a URL.
type Details struct {
	ID           int64     `bun:"id,pk,autoincrement" json:"id"`
	AccountID    int64     `bun:"account_id,notnull" json:"account_id"`
	Email        string    `bun:"email,nullzero" json:"email"`
	ProfileImage string    `bun:"profile_image,nullzero" json:"profile_image"`
	DateOfBirth  string    `bun:"date_of_birth,nullzero" json:"date_of_birth"`
	Address      string    `bun:"address,nullzero" json:"address"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

type AdminDetails struct {
	bun.BaseModel `bun:"table:admin_details"`
	Details
}

type UserDetails struct {
	bun.BaseModel `bun:"table:user_details"`
	Details
}

// AccountInfo is the public projection of an account used in responses.
type AccountInfo struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Mobile    string    `json:"mobile"`
	CreatedAt time.Time `json:"created_at"`
}

func (a Account) Info() AccountInfo {
	return AccountInfo{
		ID:        a.ID,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Mobile:    a.Mobile,
		CreatedAt: a.CreatedAt,
	}
}

// Profile is the response shape for profile reads and updates. Defaults are
// substituted for accounts that have no details row yet.
type Profile struct {
	ID        int64       `json:"id"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Mobile    string      `json:"mobile"`
	Details   ProfileInfo `json:"details"`
}

type ProfileInfo struct {
	Email        string `json:"email"`
	ProfileImage string `json:"profile_image"`
	DateOfBirth  string `json:"date_of_birth"`
	Address      string `json:"address"`
}

// RegisterRequest is the body for account registration and admin-side user
// creation.
type RegisterRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Mobile    string `json:"mobile"`
	Password  string `json:"password"`
}

type LoginRequest struct {
	Mobile   string `json:"mobile"`
	Password string `json:"password"`
}

type ChangePasswordRequest struct {
	OldPassword     string `json:"oldPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// ProfileUpdate carries the mutable profile fields. First and last name land
// on the account row, the rest on the details row.
type ProfileUpdate struct {
	FirstName   string
	LastName    string
	Email       string
	DateOfBirth string
	Address     string
	// NewImage is the storage key of a freshly uploaded image, empty when
	// the request carried no file.
	NewImage string
}
