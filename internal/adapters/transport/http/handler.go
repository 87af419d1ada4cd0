package http

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/aryan091/playtube/internal/adapters/transport/http/dto"
	appsvc "github.com/aryan091/playtube/internal/app/user/service"
	userErrors "github.com/aryan091/playtube/internal/domain/user/errors"
	"github.com/aryan091/playtube/internal/domain/user/model"
	"github.com/aryan091/playtube/internal/infra/config"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	svc appsvc.Service
	cfg *config.Config
	log *zap.Logger
}

func NewHandler(svc appsvc.Service, cfg *config.Config, log *zap.Logger) *Handler {
	return &Handler{svc: svc, cfg: cfg, log: log}
}

// Mount registers the user routes under /api/v1/users.
func (h *Handler) Mount(r gin.IRouter) {
	users := r.Group("/api/v1/users")
	users.POST("/register", h.Register)
	users.POST("/login", h.Login)
	users.POST("/refresh-token", h.Refresh)
	users.POST("/logout", RequireAuth(h.svc), h.Logout)
	users.GET("/current-user", RequireAuth(h.svc), h.CurrentUser)
}

func (h *Handler) Register(c *gin.Context) {
	var body dto.RegisterDTO
	if err := c.ShouldBind(&body); err != nil {
		c.JSON(http.StatusBadRequest, fail(http.StatusBadRequest, err.Error()))
		return
	}

	avatarPath, cleanupAvatar, err := h.spoolFormFile(c, "avatar")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		c.JSON(http.StatusBadRequest, fail(http.StatusBadRequest, "Avatar is required"))
		return
	case err != nil:
		h.log.Error("failed to spool avatar upload", zap.Error(err))
		c.JSON(http.StatusInternalServerError, fail(http.StatusInternalServerError, "Something went wrong"))
		return
	}
	defer cleanupAvatar()
	body.AvatarLocalPath = avatarPath

	if coverPath, cleanupCover, err := h.spoolFormFile(c, "coverImage"); err == nil {
		defer cleanupCover()
		body.CoverImageLocalPath = coverPath
	}

	h.log.Info("register",
		zap.String("user", fmt.Sprintf("%x", sha256.Sum256([]byte(body.Email)))),
	)

	user, err := h.svc.Register(c.Request.Context(), body)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ok(http.StatusCreated, user, "User registered successfully"))
}

func (h *Handler) Login(c *gin.Context) {
	var body dto.LoginDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, fail(http.StatusBadRequest, err.Error()))
		return
	}

	user, pair, err := h.svc.Login(c.Request.Context(), body)
	if err != nil {
		h.handleError(c, err)
		return
	}

	h.setTokenCookies(c, pair)
	c.JSON(http.StatusOK, ok(http.StatusOK, gin.H{
		"user":         user,
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	}, "User logged in successfully"))
}

func (h *Handler) Logout(c *gin.Context) {
	user := CurrentUserFrom(c)

	if err := h.svc.Logout(c.Request.Context(), user.ID); err != nil {
		h.handleError(c, err)
		return
	}

	h.clearTokenCookies(c)
	c.JSON(http.StatusOK, ok(http.StatusOK, gin.H{}, "User logged out"))
}

// Refresh accepts the refresh token from the refreshToken cookie or the
// request body and answers with a freshly rotated pair.
func (h *Handler) Refresh(c *gin.Context) {
	incoming, _ := c.Cookie("refreshToken")
	if incoming == "" {
		var body dto.RefreshDTO
		_ = c.ShouldBindJSON(&body)
		incoming = body.RefreshToken
	}
	if incoming == "" {
		c.JSON(http.StatusUnauthorized, fail(http.StatusUnauthorized, "Unauthorized request"))
		return
	}

	pair, err := h.svc.Refresh(c.Request.Context(), incoming)
	if err != nil {
		if userErrors.IsInvalidToken(err) {
			c.JSON(http.StatusUnauthorized, fail(http.StatusUnauthorized, "Refresh token is expired or used"))
			return
		}
		h.handleError(c, err)
		return
	}

	h.setTokenCookies(c, pair)
	c.JSON(http.StatusOK, ok(http.StatusOK, gin.H{
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	}, "Access token refreshed"))
}

func (h *Handler) CurrentUser(c *gin.Context) {
	c.JSON(http.StatusOK, ok(http.StatusOK, CurrentUserFrom(c), "Current user fetched successfully"))
}

// spoolFormFile saves a multipart file into the upload temp dir and returns
// the local path plus a cleanup func that removes the spooled file.
func (h *Handler) spoolFormFile(c *gin.Context, field string) (string, func(), error) {
	file, err := c.FormFile(field)
	if err != nil {
		return "", nil, err
	}
	dst := filepath.Join(h.cfg.UploadTempDir, fmt.Sprintf("%d-%s", time.Now().UnixNano(), filepath.Base(file.Filename)))
	if err := saveUploadedFile(c, file, dst); err != nil {
		return "", nil, err
	}
	return dst, func() { _ = os.Remove(dst) }, nil
}

func saveUploadedFile(c *gin.Context, file *multipart.FileHeader, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return c.SaveUploadedFile(file, dst)
}

func (h *Handler) setTokenCookies(c *gin.Context, pair model.TokenPair) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie("accessToken", pair.AccessToken, int(pair.AccessTTL.Seconds()), "/", h.cfg.CookieDomain, true, true)
	c.SetCookie("refreshToken", pair.RefreshToken, int(pair.RefreshTTL.Seconds()), "/", h.cfg.CookieDomain, true, true)
}

func (h *Handler) clearTokenCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie("accessToken", "", -1, "/", h.cfg.CookieDomain, true, true)
	c.SetCookie("refreshToken", "", -1, "/", h.cfg.CookieDomain, true, true)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case userErrors.IsValidation(err):
		c.JSON(http.StatusBadRequest, fail(http.StatusBadRequest, err.Error()))
	case userErrors.IsInvalidCredentials(err):
		c.JSON(http.StatusUnauthorized, fail(http.StatusUnauthorized, "Invalid user credentials"))
	case userErrors.IsInvalidToken(err):
		c.JSON(http.StatusUnauthorized, fail(http.StatusUnauthorized, "Invalid access token"))
	case userErrors.IsAlreadyExists(err):
		c.JSON(http.StatusConflict, fail(http.StatusConflict, "User already exists"))
	case userErrors.IsNotFound(err):
		c.JSON(http.StatusNotFound, fail(http.StatusNotFound, "User does not exist"))
	case userErrors.IsUploadFailed(err):
		c.JSON(http.StatusInternalServerError, fail(http.StatusInternalServerError, "Failed to upload avatar"))
	default:
		h.log.Error("internal error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, fail(http.StatusInternalServerError, "Something went wrong"))
	}
}
