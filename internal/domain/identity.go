package domain

import "time"

// Roles form a closed set. New identities default to RolePatient.
const (
	RolePatient = "patient"
	RoleDoctor  = "doctor"
	RoleAgent   = "agent"
)

// ValidRole reports whether role is one of the known role names.
func ValidRole(role string) bool {
	switch role {
	case RolePatient, RoleDoctor, RoleAgent:
		return true
	}
	return false
}

// Identity is the durable user record. It is created on the first
// request-code call for an unseen identifier and never deleted by the
// authentication service.
type Identity struct {
	IdentityID  string    `json:"id" dynamodbav:"identity_id"`
	Identifier  string    `json:"identifier" dynamodbav:"identifier"` // normalized email or E.164 phone, unique
	DisplayName string    `json:"display_name" dynamodbav:"display_name"`
	Role        string    `json:"role" dynamodbav:"role"`
	Language    string    `json:"language" dynamodbav:"language"`
	IsNewUser   bool      `json:"is_new_user" dynamodbav:"is_new_user"`
	CreatedAt   time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt   time.Time `json:"updated" dynamodbav:"updated_at"`
}

type RequestCodeRequest struct {
	Identifier  string `json:"identifier" validate:"required"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role" validate:"omitempty,oneof=patient doctor agent"`
	Language    string `json:"language"`
}

type VerifyCodeRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Code       string `json:"code" validate:"required,len=6,numeric"`
}

type ResendCodeRequest struct {
	Identifier string `json:"identifier" validate:"required"`
}
