package domain

import "time"

type User struct {
	UserID      string    `json:"id" dynamodbav:"user_id"`
	Email       string    `json:"email" dynamodbav:"email"`
	LastLoginAt time.Time `json:"lastLoginAt" dynamodbav:"last_login_at"`
	CreatedAt   time.Time `json:"createdAt" dynamodbav:"created_at"`
}
