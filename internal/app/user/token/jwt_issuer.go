package token

import (
	"time"

	customErrors "github.com/aryan091/playtube/internal/domain/user/errors"
	domtoken "github.com/aryan091/playtube/internal/domain/user/token"
	"github.com/aryan091/playtube/internal/infra/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// JWTIssuer signs and validates the access/refresh token pair with HS256.
// Access and refresh tokens use independent secrets so that compromise of one
// cannot forge the other. Every token carries a random jti, so two tokens
// issued within the same second are still distinct.
type JWTIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewJWTIssuer(cfg *config.Config) *JWTIssuer {
	return &JWTIssuer{
		accessSecret:  []byte(cfg.AccessTokenSecret),
		refreshSecret: []byte(cfg.RefreshTokenSecret),
		accessTTL:     cfg.AccessTokenTTL,
		refreshTTL:    cfg.RefreshTokenTTL,
	}
}

func (j *JWTIssuer) GenerateAccessToken(id primitive.ObjectID, email, username, fullName string) (string, time.Time, error) {
	now := time.Now()

	claims := domtoken.AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   id.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.accessTTL)),
		},
		Email:    email,
		Username: username,
		FullName: fullName,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.accessSecret)
	if err != nil {
		return "", time.Time{}, customErrors.WrapInternal(err, "sign access token")
	}

	return signed, claims.ExpiresAt.Time, nil
}

func (j *JWTIssuer) GenerateRefreshToken(id primitive.ObjectID) (string, time.Time, error) {
	now := time.Now()

	claims := domtoken.RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   id.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.refreshTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.refreshSecret)
	if err != nil {
		return "", time.Time{}, customErrors.WrapInternal(err, "sign refresh token")
	}

	return signed, claims.ExpiresAt.Time, nil
}

func (j *JWTIssuer) ValidateAccessToken(raw string) (domtoken.AccessClaims, error) {
	parsed, err := jwt.ParseWithClaims(raw, &domtoken.AccessClaims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, customErrors.ErrInvalidToken
		}
		return j.accessSecret, nil
	}, jwt.WithIssuedAt())

	if err != nil || !parsed.Valid {
		return domtoken.AccessClaims{}, customErrors.ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*domtoken.AccessClaims)
	if !ok {
		return domtoken.AccessClaims{}, customErrors.ErrInvalidToken
	}

	return *claims, nil
}

func (j *JWTIssuer) ValidateRefreshToken(raw string) (domtoken.RefreshClaims, error) {
	parsed, err := jwt.ParseWithClaims(raw, &domtoken.RefreshClaims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, customErrors.ErrInvalidToken
		}
		return j.refreshSecret, nil
	}, jwt.WithIssuedAt())

	if err != nil || !parsed.Valid {
		return domtoken.RefreshClaims{}, customErrors.ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*domtoken.RefreshClaims)
	if !ok {
		return domtoken.RefreshClaims{}, customErrors.ErrInvalidToken
	}

	return *claims, nil
}
