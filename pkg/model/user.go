package model

import "time"

// User is an account that owns usages. PasswordHash is never serialized.
type User struct {
	ID           string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	UserName     string    `json:"user_name" bson:"user_name" validate:"required,min=2,max=64"`
	FullName     string    `json:"full_name" bson:"full_name" validate:"omitempty,max=100"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	Roles        []string  `json:"roles" bson:"roles" validate:"omitempty,dive,oneof=user manager"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt    time.Time `json:"updated_at,omitempty" bson:"updated_at,omitempty" validate:"omitempty"`
}

// UserSummary is the slice of a user embedded in usage details.
type UserSummary struct {
	ID       string `json:"id" bson:"_id"`
	UserName string `json:"user_name" bson:"user_name"`
	FullName string `json:"full_name" bson:"full_name"`
}

func (u *User) Summary() *UserSummary {
	return &UserSummary{ID: u.ID, UserName: u.UserName, FullName: u.FullName}
}
