package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the account record as stored in the users collection. Password holds
// the bcrypt hash, never the plaintext. RefreshToken is the single currently
// valid refresh token for the account; it is overwritten on every login and
// refresh and unset on logout.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string             `bson:"username" json:"username"`
	Email        string             `bson:"email" json:"email"`
	FullName     string             `bson:"fullName" json:"fullName"`
	Avatar       string             `bson:"avatar" json:"avatar"`
	CoverImage   string             `bson:"coverImage,omitempty" json:"coverImage,omitempty"`
	Password     string             `bson:"password" json:"-"`
	RefreshToken string             `bson:"refreshToken,omitempty" json:"-"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Public returns a copy safe to hand back to clients, with the password hash
// and refresh token stripped. The json tags already hide both; clearing the
// fields keeps the value safe even when it is copied around in memory.
func (u User) Public() User {
	u.Password = ""
	u.RefreshToken = ""
	return u
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
	UserID       primitive.ObjectID
}
