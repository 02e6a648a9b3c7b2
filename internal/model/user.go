package model

import "time"

// User mirrors the 'users' table. Films holds the ids of the films this
// user owns, in insertion order; it is stored as a JSON column and written
// back as a whole value, so concurrent writers race last-write-wins.
type User struct {
	ID        uint64    `json:"id"`
	UserName  string    `json:"userName"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Avatar    Image     `json:"avatar"`
	Films     []uint64  `json:"films"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserRef is the populated form of a user reference (film owner, comment
// author): the user minus their films list and credentials.
type UserRef struct {
	ID       uint64 `json:"id"`
	UserName string `json:"userName"`
	Email    string `json:"email"`
	Avatar   Image  `json:"avatar"`
}

// Ref returns the reference form of u.
func (u User) Ref() UserRef {
	return UserRef{ID: u.ID, UserName: u.UserName, Email: u.Email, Avatar: u.Avatar}
}
