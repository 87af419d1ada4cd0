package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aryan091/playtube/internal/adapters/transport/http/dto"
	userErrors "github.com/aryan091/playtube/internal/domain/user/errors"
	"github.com/aryan091/playtube/internal/domain/user/model"
	"github.com/aryan091/playtube/internal/infra/config"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type svcStub struct {
	registerErr error
	loginErr    error
	refreshErr  error
	authErr     error

	user model.User
	pair model.TokenPair

	lastRegister dto.RegisterDTO
	loggedOut    []primitive.ObjectID
}

func (s *svcStub) Register(_ context.Context, in dto.RegisterDTO) (model.User, error) {
	s.lastRegister = in
	if s.registerErr != nil {
		return model.User{}, s.registerErr
	}
	return s.user, nil
}

func (s *svcStub) Login(_ context.Context, _ dto.LoginDTO) (model.User, model.TokenPair, error) {
	if s.loginErr != nil {
		return model.User{}, model.TokenPair{}, s.loginErr
	}
	return s.user, s.pair, nil
}

func (s *svcStub) Logout(_ context.Context, id primitive.ObjectID) error {
	s.loggedOut = append(s.loggedOut, id)
	return nil
}

func (s *svcStub) Refresh(_ context.Context, _ string) (model.TokenPair, error) {
	if s.refreshErr != nil {
		return model.TokenPair{}, s.refreshErr
	}
	return s.pair, nil
}

func (s *svcStub) Authenticate(_ context.Context, raw string) (model.User, error) {
	if s.authErr != nil {
		return model.User{}, s.authErr
	}
	if raw == "" {
		return model.User{}, userErrors.ErrInvalidToken
	}
	return s.user, nil
}

func newRouter(t *testing.T, svc *svcStub) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	h := NewHandler(svc, &config.Config{UploadTempDir: t.TempDir()}, zap.NewNop())
	h.Mount(r)
	return r
}

func newStub() *svcStub {
	id := primitive.NewObjectID()
	return &svcStub{
		user: model.User{ID: id, Username: "janed", Email: "jane@x.com", FullName: "Jane Doe", Avatar: "https://cdn/a.png"},
		pair: model.TokenPair{
			AccessToken:  "access-token",
			RefreshToken: "refresh-token",
			AccessTTL:    time.Minute,
			RefreshTTL:   time.Hour,
			UserID:       id,
		},
	}
}

func registerForm(t *testing.T, withAvatar bool) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("fullName", "Jane Doe"))
	require.NoError(t, w.WriteField("email", "jane@x.com"))
	require.NoError(t, w.WriteField("username", "janed"))
	require.NoError(t, w.WriteField("password", "Secr3t!"))
	if withAvatar {
		fw, err := w.CreateFormFile("avatar", "avatar.png")
		require.NoError(t, err)
		_, err = fw.Write([]byte("png-bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestRegister_Created(t *testing.T) {
	svc := newStub()
	r := newRouter(t, svc)

	body, contentType := registerForm(t, true)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decode(t, rec)
	require.True(t, resp.Success)
	require.Equal(t, "User registered successfully", resp.Message)
	require.NotEmpty(t, svc.lastRegister.AvatarLocalPath)
	require.NotContains(t, rec.Body.String(), "password")
}

func TestRegister_MissingAvatarFile(t *testing.T) {
	svc := newStub()
	r := newRouter(t, svc)

	body, contentType := registerForm(t, false)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Avatar is required", decode(t, rec).Message)
}

func TestRegister_SpoolWriteFailure(t *testing.T) {
	svc := newStub()
	gin.SetMode(gin.TestMode)

	// A regular file in place of the upload dir makes spooling fail with a
	// write error, which must not be reported as a missing avatar.
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	r := gin.New()
	h := NewHandler(svc, &config.Config{UploadTempDir: filepath.Join(blocker, "uploads")}, zap.NewNop())
	h.Mount(r)

	body, contentType := registerForm(t, true)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "Something went wrong", decode(t, rec).Message)
}

func TestRegister_Conflict(t *testing.T) {
	svc := newStub()
	svc.registerErr = userErrors.ErrAlreadyExists
	r := newRouter(t, svc)

	body, contentType := registerForm(t, true)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "User already exists", decode(t, rec).Message)
}

func TestLogin_SetsCookiesAndBody(t *testing.T) {
	svc := newStub()
	r := newRouter(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login",
		strings.NewReader(`{"username":"janed","password":"Secr3t!"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	names := map[string]*http.Cookie{}
	for _, ck := range cookies {
		names[ck.Name] = ck
	}
	require.Contains(t, names, "accessToken")
	require.Contains(t, names, "refreshToken")
	require.True(t, names["accessToken"].HttpOnly)
	require.True(t, names["accessToken"].Secure)

	resp := decode(t, rec)
	require.True(t, resp.Success)
	data := resp.Data.(map[string]interface{})
	require.Equal(t, "access-token", data["accessToken"])
	require.Equal(t, "refresh-token", data["refreshToken"])
}

func TestLogin_WrongPassword(t *testing.T) {
	svc := newStub()
	svc.loginErr = userErrors.ErrInvalidCredentials
	r := newRouter(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login",
		strings.NewReader(`{"username":"janed","password":"wrong"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Invalid user credentials", decode(t, rec).Message)
}

func TestLogin_UnknownUser(t *testing.T) {
	svc := newStub()
	svc.loginErr = userErrors.ErrNotFound
	r := newRouter(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login",
		strings.NewReader(`{"username":"ghost","password":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "User does not exist", decode(t, rec).Message)
}

func TestRefresh_FromCookie(t *testing.T) {
	svc := newStub()
	r := newRouter(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token", nil)
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: "refresh-token"})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, decode(t, rec).Success)
}

func TestRefresh_FromBody(t *testing.T) {
	svc := newStub()
	r := newRouter(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token",
		strings.NewReader(`{"refreshToken":"refresh-token"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRefresh_StaleToken(t *testing.T) {
	svc := newStub()
	svc.refreshErr = userErrors.NewInvalidToken("refresh token is expired or used")
	r := newRouter(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token",
		strings.NewReader(`{"refreshToken":"stale"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Refresh token is expired or used", decode(t, rec).Message)
}

func TestRefresh_MissingToken(t *testing.T) {
	svc := newStub()
	// The service must not be consulted when no token was presented at all.
	svc.refreshErr = userErrors.ErrInternal
	r := newRouter(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Unauthorized request", decode(t, rec).Message)
}

func TestLogout_RequiresAuth(t *testing.T) {
	svc := newStub()
	r := newRouter(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/logout", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Please login to access this resource", decode(t, rec).Message)
	require.Empty(t, svc.loggedOut)
}

func TestLogout_ClearsCookies(t *testing.T) {
	svc := newStub()
	r := newRouter(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/logout", nil)
	req.Header.Set("Authorization", "Bearer access-token")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []primitive.ObjectID{svc.user.ID}, svc.loggedOut)

	for _, ck := range rec.Result().Cookies() {
		require.LessOrEqual(t, ck.MaxAge, 0)
		require.Empty(t, ck.Value)
	}
}

func TestCurrentUser_FromCookie(t *testing.T) {
	svc := newStub()
	r := newRouter(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/current-user", nil)
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: "access-token"})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode(t, rec)
	data := resp.Data.(map[string]interface{})
	require.Equal(t, "janed", data["username"])
}

func TestCurrentUser_BadToken(t *testing.T) {
	svc := newStub()
	svc.authErr = userErrors.ErrInvalidToken
	r := newRouter(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/current-user", nil)
	req.Header.Set("Authorization", "Bearer expired")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Invalid access token", decode(t, rec).Message)
}
