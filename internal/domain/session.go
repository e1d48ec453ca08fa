package domain

import "time"

// Session is the authenticated session created after a successful
// verification. The bearer JWT references it; the refresh token rotates on
// every refresh.
type Session struct {
	SessionID        string    `json:"id" dynamodbav:"session_id"`
	IdentityID       string    `json:"identity_id" dynamodbav:"identity_id"`
	Enable           bool      `json:"enable" dynamodbav:"enable"`
	RefreshToken     string    `json:"-" dynamodbav:"refresh_token"`
	RefreshExpiresAt int64     `json:"refresh_expires_at" dynamodbav:"refresh_expires_at"`
	CreatedAt        time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt        time.Time `json:"updated" dynamodbav:"updated_at"`

	Identity *Identity `json:"identity,omitempty" dynamodbav:"-"`
}
