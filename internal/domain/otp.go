package domain

import "time"

// OtpRecord is the single active verification record for an email.
// The plaintext code is never persisted; CodeHash holds a bcrypt hash.
// ExpiresAt doubles as the DynamoDB TTL attribute (Unix seconds).
type OtpRecord struct {
	Email     string    `json:"email" dynamodbav:"email"`
	CodeHash  string    `json:"-" dynamodbav:"code_hash"`
	ExpiresAt int64     `json:"expires_at" dynamodbav:"expires_at"`
	Attempts  int       `json:"attempts" dynamodbav:"attempts"`
	IsUsed    bool      `json:"is_used" dynamodbav:"is_used"`
	CreatedAt time.Time `json:"created_at" dynamodbav:"created_at"`
}

// Expired reports whether the record is past its expiry at the given instant.
func (r *OtpRecord) Expired(now time.Time) bool {
	return now.Unix() > r.ExpiresAt
}
