package repo

import (
	"context"

	"github.com/aryan091/playtube/internal/domain/user/model"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserRepo is the persistence boundary for account records. Implementations
// own password hashing on the create and password-change paths so a plaintext
// password never reaches the store, and must map duplicate-key conflicts to
// ErrAlreadyExists and missing documents to ErrNotFound.
type UserRepo interface {
	Create(ctx context.Context, user model.User, plainPassword string) (model.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (model.User, error)
	// GetByUsernameOrEmail matches either field; empty arguments are ignored.
	GetByUsernameOrEmail(ctx context.Context, username, email string) (model.User, error)
	// SetRefreshToken unconditionally overwrites the stored refresh token.
	// This is the rotation point on login: last write wins.
	SetRefreshToken(ctx context.Context, id primitive.ObjectID, token string) error
	// RotateRefreshToken replaces old with next only if old is still the
	// stored value (conditional update). Returns ErrNotFound when the stored
	// token no longer matches, which callers treat as a stale or already-used
	// token.
	RotateRefreshToken(ctx context.Context, id primitive.ObjectID, old, next string) error
	// ClearRefreshToken unsets the refresh token field. Idempotent.
	ClearRefreshToken(ctx context.Context, id primitive.ObjectID) error
	// UpdatePassword re-hashes and stores a new password. No other update
	// path touches the password field.
	UpdatePassword(ctx context.Context, id primitive.ObjectID, plainPassword string) error
}
