package domain

import "time"

// TokenPair is what a successful verification or refresh hands back.
// AccessToken is a signed JWT; RefreshToken is the opaque plaintext value,
// returned exactly once and stored server-side only as a hash.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// RefreshTokenRecord tracks one issued refresh token. Keyed by the sha256 hex
// of the token value, so a leaked store never yields usable credentials.
// A revoked record never transitions back; rotation revokes before reissuing.
type RefreshTokenRecord struct {
	TokenHash string    `json:"token_hash" dynamodbav:"token_hash"`
	UserID    string    `json:"user_id" dynamodbav:"user_id"`
	ExpiresAt int64     `json:"expires_at" dynamodbav:"expires_at"`
	Revoked   bool      `json:"revoked" dynamodbav:"revoked"`
	CreatedAt time.Time `json:"created_at" dynamodbav:"created_at"`
}
