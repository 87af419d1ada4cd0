package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AccessClaims travel inside the short-lived access token. Subject carries the
// account id in hex.
type AccessClaims struct {
	jwt.RegisteredClaims
	Email    string `json:"email"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
}

// RefreshClaims carry only the account id. Refresh tokens are signed with a
// secret independent from the access secret, so compromise of one cannot
// forge the other.
type RefreshClaims struct {
	jwt.RegisteredClaims
}

type Issuer interface {
	GenerateAccessToken(id primitive.ObjectID, email, username, fullName string) (token string, exp time.Time, err error)
	GenerateRefreshToken(id primitive.ObjectID) (token string, exp time.Time, err error)
	ValidateAccessToken(token string) (AccessClaims, error)
	ValidateRefreshToken(token string) (RefreshClaims, error)
}
