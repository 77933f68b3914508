package models

import "time"

// Identity is a booking claimant: a permanent user or an ephemeral guest
// placeholder created so every hold resolves to a real identity row.
type Identity struct {
	ID           string    `bson:"id" json:"id"`
	Name         string    `bson:"name,omitempty" json:"name,omitempty"`
	Email        string    `bson:"email,omitempty" json:"email,omitempty"`
	Phone        string    `bson:"phone,omitempty" json:"phone,omitempty"`
	PasswordHash string    `bson:"password_hash,omitempty" json:"-"`
	Guest        bool      `bson:"guest" json:"guest"`
	CreatedAt    time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updatedAt"`
}

// GuestContactInfo is payment-time contact data used to promote a guest
// into a permanent identity.
type GuestContactInfo struct {
	Name     string `json:"name"`
	Email    string `json:"email" binding:"required"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password,omitempty"`
}
