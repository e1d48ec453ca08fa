package domain

import "time"

// OTP lifecycle constants.
const (
	CodeLength  = 6
	CodeTTL     = 10 * time.Minute
	MaxAttempts = 5
)

// PendingVerification is the ephemeral record tracking an issued but not yet
// confirmed code. At most one exists per identifier; issuing a new code
// overwrites the prior entry. The code itself is stored bcrypt-hashed.
// ExpiresAt is Unix seconds and doubles as the DynamoDB TTL attribute.
type PendingVerification struct {
	Identifier  string    `json:"identifier" dynamodbav:"identifier"`
	CodeHash    string    `json:"-" dynamodbav:"code_hash"`
	OwnerName   string    `json:"owner_name" dynamodbav:"owner_name"`
	IssuedAt    time.Time `json:"issued_at" dynamodbav:"issued_at"`
	ExpiresAt   int64     `json:"expires_at" dynamodbav:"expires_at"`
	Attempts    int       `json:"attempts" dynamodbav:"attempts"`
	MaxAttempts int       `json:"max_attempts" dynamodbav:"max_attempts"`
}

// Expired reports whether the entry is past its expiry at the given instant.
// An expired entry is treated as absent even if not yet physically swept.
func (v *PendingVerification) Expired(now time.Time) bool {
	return now.Unix() > v.ExpiresAt
}
