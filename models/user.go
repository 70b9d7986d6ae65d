package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	CollectionUsers = "users"
)

// user roles form a closed set; handlers check capabilities, not role strings
const (
	RoleStudent  = "student"
	RoleProvider = "provider"
	RoleVerifier = "verifier"
	RoleAdmin    = "admin"
)

func IsValidRole(role string) bool {
	switch role {
	case RoleStudent, RoleProvider, RoleVerifier, RoleAdmin:
		return true
	}
	return false
}

type Capability string

const (
	CapCreateScholarship  Capability = "scholarship:create"
	CapManageScholarship  Capability = "scholarship:manage"
	CapSubmitApplication  Capability = "application:submit"
	CapReviewApplications Capability = "application:review"
	CapVerifyUsers        Capability = "user:verify"
	CapManageUsers        Capability = "user:manage"
)

// RoleHasCapability is the single authorization branch point for roles.
func RoleHasCapability(role string, cap Capability) bool {
	switch cap {
	case CapCreateScholarship, CapManageScholarship:
		return role == RoleProvider || role == RoleAdmin
	case CapSubmitApplication:
		return role == RoleStudent
	case CapReviewApplications:
		return role == RoleProvider || role == RoleAdmin
	case CapVerifyUsers:
		return role == RoleVerifier || role == RoleAdmin
	case CapManageUsers:
		return role == RoleAdmin
	}
	return false
}

type UserProfile struct {
	University string  `bson:"university,omitempty" json:"university,omitempty"`
	Major      string  `bson:"major,omitempty" json:"major,omitempty"`
	GPA        float64 `bson:"gpa,omitempty" json:"gpa,omitempty"`
	Year       int64   `bson:"year,omitempty" json:"year,omitempty"`
	Phone      string  `bson:"phone,omitempty" json:"phone,omitempty"`
	Address    string  `bson:"address,omitempty" json:"address,omitempty"`
	StudentId  string  `bson:"student_id,omitempty" json:"student_id,omitempty"`
}

type Verification struct {
	IsVerified bool                `bson:"is_verified" json:"is_verified"`
	VerifiedBy *primitive.ObjectID `bson:"verified_by,omitempty" json:"verified_by,omitempty"`
	VerifiedAt *time.Time          `bson:"verified_at,omitempty" json:"verified_at,omitempty"`
}

// User is created at registration, mutated on verification and profile
// update, and soft-deactivated via IsActive; rows are never hard-deleted.
type User struct {
	Id            *primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	WalletAddress string              `bson:"wallet_address" json:"wallet_address"`
	Email         string              `bson:"email" json:"email"`
	Name          string              `bson:"name" json:"name"`
	Role          string              `bson:"role" json:"role"`
	Profile       UserProfile         `bson:"profile" json:"profile"`
	Verification  Verification        `bson:"verification" json:"verification"`
	IsActive      bool                `bson:"is_active" json:"is_active"`
	LastLogin     *time.Time          `bson:"last_login,omitempty" json:"last_login,omitempty"`
	CreatedAt     time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time           `bson:"updated_at" json:"updated_at"`
}
