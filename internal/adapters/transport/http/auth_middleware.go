package http

import (
	"net/http"
	"strings"

	appsvc "github.com/aryan091/playtube/internal/app/user/service"
	"github.com/aryan091/playtube/internal/domain/user/model"
	"github.com/gin-gonic/gin"
)

const currentUserKey = "playtube.currentUser"

// RequireAuth resolves the access token from the accessToken cookie or the
// Authorization bearer header and attaches the authenticated account to the
// request context. Requests without a valid token are rejected with 401.
func RequireAuth(svc appsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				fail(http.StatusUnauthorized, "Please login to access this resource"))
			return
		}

		user, err := svc.Authenticate(c.Request.Context(), raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				fail(http.StatusUnauthorized, "Invalid access token"))
			return
		}

		c.Set(currentUserKey, user)
		c.Next()
	}
}

// CurrentUserFrom returns the account RequireAuth attached to the context.
// Calling it outside an authenticated route yields the zero User.
func CurrentUserFrom(c *gin.Context) model.User {
	if v, ok := c.Get(currentUserKey); ok {
		if u, ok := v.(model.User); ok {
			return u
		}
	}
	return model.User{}
}

func bearerToken(c *gin.Context) string {
	if cookie, err := c.Cookie("accessToken"); err == nil && cookie != "" {
		return cookie
	}
	auth := c.GetHeader("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}
