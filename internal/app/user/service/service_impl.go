package service

import (
	"context"
	"errors"
	"strings"

	"github.com/aryan091/playtube/internal/adapters/transport/http/dto"
	customErrors "github.com/aryan091/playtube/internal/domain/user/errors"
	"github.com/aryan091/playtube/internal/domain/user/model"
	"github.com/aryan091/playtube/internal/domain/user/repo"
	"github.com/aryan091/playtube/internal/domain/user/storage"
	"github.com/aryan091/playtube/internal/domain/user/token"
	"github.com/aryan091/playtube/internal/infra/config"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PasswordChecker verifies a plaintext password against its stored hash.
// Hashing itself happens inside the store adapter on create and
// password-change, so the service only ever needs the check side.
type PasswordChecker interface {
	Check(plain, hashed string) bool
}

type userService struct {
	userRepo repo.UserRepo
	uploader storage.Uploader
	issuer   token.Issuer
	checker  PasswordChecker
	cfg      *config.Config
	v        *validator.Validate
}

type Service interface {
	Register(context.Context, dto.RegisterDTO) (model.User, error)
	Login(context.Context, dto.LoginDTO) (model.User, model.TokenPair, error)
	Logout(ctx context.Context, userID primitive.ObjectID) error
	Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error)
	Authenticate(ctx context.Context, accessToken string) (model.User, error)
}

func New(
	ur repo.UserRepo,
	up storage.Uploader,
	is token.Issuer,
	pc PasswordChecker,
	cfg *config.Config,
	v *validator.Validate,
) Service {
	return &userService{
		userRepo: ur, uploader: up, issuer: is, checker: pc, cfg: cfg, v: v,
	}
}

func (s *userService) Register(ctx context.Context, in dto.RegisterDTO) (model.User, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.TrimSpace(in.Email)
	in.Username = strings.TrimSpace(in.Username)

	if in.FullName == "" || in.Email == "" || in.Username == "" || strings.TrimSpace(in.Password) == "" {
		return model.User{}, customErrors.NewValidation("all fields are required")
	}
	if err := s.v.Struct(in); err != nil {
		return model.User{}, customErrors.NewValidation(err.Error())
	}

	_, err := s.userRepo.GetByUsernameOrEmail(ctx, in.Username, in.Email)
	switch {
	case err == nil:
		return model.User{}, customErrors.ErrAlreadyExists
	case !customErrors.IsNotFound(err):
		return model.User{}, customErrors.WrapInternal(err, "Register")
	}

	if in.AvatarLocalPath == "" {
		return model.User{}, customErrors.NewValidation("avatar is required")
	}

	// The account is created only after the avatar upload succeeds, so a
	// failed or cancelled upload never leaves a partial account behind.
	avatarURL, err := s.uploader.Upload(ctx, in.AvatarLocalPath)
	if err != nil || avatarURL == "" {
		return model.User{}, customErrors.NewUploadFailed("failed to upload avatar")
	}

	// Cover image is optional and its upload failure is tolerated.
	var coverURL string
	if in.CoverImageLocalPath != "" {
		coverURL, _ = s.uploader.Upload(ctx, in.CoverImageLocalPath)
	}

	created, err := s.userRepo.Create(ctx, model.User{
		FullName:   in.FullName,
		Email:      in.Email,
		Username:   strings.ToLower(in.Username),
		Avatar:     avatarURL,
		CoverImage: coverURL,
	}, in.Password)
	if err != nil {
		if errors.Is(err, customErrors.ErrAlreadyExists) {
			return model.User{}, customErrors.ErrAlreadyExists
		}
		return model.User{}, customErrors.WrapInternal(err, "Register")
	}

	fetched, err := s.userRepo.GetByID(ctx, created.ID)
	if err != nil {
		return model.User{}, customErrors.WrapInternal(err, "fetch created user")
	}
	return fetched.Public(), nil
}

func (s *userService) Login(ctx context.Context, in dto.LoginDTO) (model.User, model.TokenPair, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	if in.Username == "" && in.Email == "" {
		return model.User{}, model.TokenPair{}, customErrors.NewValidation("username or email is required")
	}
	if err := s.v.Struct(in); err != nil {
		return model.User{}, model.TokenPair{}, customErrors.NewValidation(err.Error())
	}

	user, err := s.userRepo.GetByUsernameOrEmail(ctx, in.Username, in.Email)
	switch {
	case customErrors.IsNotFound(err):
		return model.User{}, model.TokenPair{}, customErrors.ErrNotFound
	case err != nil:
		return model.User{}, model.TokenPair{}, customErrors.WrapInternal(err, "Login")
	}

	if !s.checker.Check(in.Password, user.Password) {
		return model.User{}, model.TokenPair{}, customErrors.ErrInvalidCredentials
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return model.User{}, model.TokenPair{}, err
	}

	fetched, err := s.userRepo.GetByID(ctx, user.ID)
	if err != nil {
		return model.User{}, model.TokenPair{}, customErrors.WrapInternal(err, "fetch logged in user")
	}
	return fetched.Public(), pair, nil
}

// Logout unsets the stored refresh token. Logging out twice is not an error.
func (s *userService) Logout(ctx context.Context, userID primitive.ObjectID) error {
	if err := s.userRepo.ClearRefreshToken(ctx, userID); err != nil {
		return customErrors.WrapInternal(err, "Logout")
	}
	return nil
}

func (s *userService) Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error) {
	if refreshToken == "" {
		return model.TokenPair{}, customErrors.NewInvalidToken("please login")
	}

	claims, err := s.issuer.ValidateRefreshToken(refreshToken)
	if err != nil {
		return model.TokenPair{}, customErrors.ErrInvalidToken
	}

	id, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		return model.TokenPair{}, customErrors.ErrInvalidToken
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return model.TokenPair{}, customErrors.ErrInvalidToken
	}

	// Rotation detection: only the most recently stored refresh token is
	// valid, even when the presented one still verifies cryptographically.
	if user.RefreshToken == "" || user.RefreshToken != refreshToken {
		return model.TokenPair{}, customErrors.NewInvalidToken("refresh token is expired or used")
	}

	at, _, err := s.issuer.GenerateAccessToken(user.ID, user.Email, user.Username, user.FullName)
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "GenerateAccessToken")
	}
	rt, _, err := s.issuer.GenerateRefreshToken(user.ID)
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "GenerateRefreshToken")
	}

	err = s.userRepo.RotateRefreshToken(ctx, user.ID, refreshToken, rt)
	switch {
	case customErrors.IsNotFound(err):
		// A concurrent login or refresh rotated the token after we read it.
		return model.TokenPair{}, customErrors.NewInvalidToken("refresh token is expired or used")
	case err != nil:
		return model.TokenPair{}, customErrors.WrapInternal(err, "RotateRefreshToken")
	}

	return model.TokenPair{
		AccessToken:  at,
		RefreshToken: rt,
		AccessTTL:    s.cfg.AccessTokenTTL,
		RefreshTTL:   s.cfg.RefreshTokenTTL,
		UserID:       user.ID,
	}, nil
}

func (s *userService) Authenticate(ctx context.Context, accessToken string) (model.User, error) {
	if accessToken == "" {
		return model.User{}, customErrors.NewInvalidToken("please login to access this resource")
	}

	claims, err := s.issuer.ValidateAccessToken(accessToken)
	if err != nil {
		return model.User{}, customErrors.ErrInvalidToken
	}

	id, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		return model.User{}, customErrors.ErrInvalidToken
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return model.User{}, customErrors.NewInvalidToken("invalid access token")
	}
	return user.Public(), nil
}

// issueTokens generates a fresh pair and persists the refresh token. This is
// the single rotation point on login: the stored value is overwritten, which
// immediately invalidates whatever token was there before.
func (s *userService) issueTokens(ctx context.Context, user model.User) (model.TokenPair, error) {
	at, _, err := s.issuer.GenerateAccessToken(user.ID, user.Email, user.Username, user.FullName)
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "GenerateAccessToken")
	}
	rt, _, err := s.issuer.GenerateRefreshToken(user.ID)
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "GenerateRefreshToken")
	}

	if err := s.userRepo.SetRefreshToken(ctx, user.ID, rt); err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "SetRefreshToken")
	}

	return model.TokenPair{
		AccessToken:  at,
		RefreshToken: rt,
		AccessTTL:    s.cfg.AccessTokenTTL,
		RefreshTTL:   s.cfg.RefreshTokenTTL,
		UserID:       user.ID,
	}, nil
}
