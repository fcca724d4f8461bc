package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User roles.
const (
	RoleClient = "client"
	RoleAdmin  = "admin"
)

// User is an account document in the auth database.
type User struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email            string             `bson:"email" json:"email"`
	PasswordHash     string             `bson:"password_hash" json:"-"`
	Role             string             `bson:"role" json:"role"`
	FullName         string             `bson:"full_name,omitempty" json:"full_name,omitempty"`
	Username         string             `bson:"username,omitempty" json:"username,omitempty"`
	Birthdate        string             `bson:"birthdate,omitempty" json:"birthdate,omitempty"`
	Address          string             `bson:"address,omitempty" json:"address,omitempty"`
	IsActive         bool               `bson:"is_active" json:"is_active"`
	IsVerified       bool               `bson:"is_verified" json:"is_verified"`
	VerificationCode string             `bson:"verification_code,omitempty" json:"-"`
	ResetCode        string             `bson:"reset_code,omitempty" json:"-"`
	ResetCodeExpires *time.Time         `bson:"reset_code_expires,omitempty" json:"-"`
	GoogleID         string             `bson:"google_id,omitempty" json:"-"`
	Picture          string             `bson:"picture,omitempty" json:"picture,omitempty"`
	CreatedAt        time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time          `bson:"updated_at" json:"updated_at"`
}

// Token is an issued access token plus the bearer's role.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Role        string `json:"role"`
}

// GoogleIdentity is the verified identity extracted from a Google ID token.
type GoogleIdentity struct {
	Subject string
	Email   string
	Name    string
	Picture string
}
