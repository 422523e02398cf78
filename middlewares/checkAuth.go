package middlewares

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/PressTune/models"
	"github.com/PressTune/services"
)

const (
	CurrentUserKey = "currentUser"
	AuthUserKey    = "authUser"

	// SessionTokenKey holds the access token inside the cookie session.
	SessionTokenKey = "access_token"
)

// extractToken prefers the Authorization header and falls back to the cookie
// session. A malformed header is reported rather than ignored.
func extractToken(c *gin.Context) (token string, malformed bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return "", true
		}
		return parts[1], false
	}

	if session := sessionFrom(c); session != nil {
		if value, ok := session.Get(SessionTokenKey).(string); ok {
			return value, false
		}
	}
	return "", false
}

// sessionFrom returns the request session, or nil when the sessions
// middleware is not installed.
func sessionFrom(c *gin.Context) sessions.Session {
	if _, exists := c.Get(sessions.DefaultKey); !exists {
		return nil
	}
	return sessions.Default(c)
}

// authenticate verifies the token and loads the profile. status is 0 on
// success.
func authenticate(c *gin.Context) (status int, message string) {
	token, malformed := extractToken(c)
	if malformed {
		return http.StatusUnauthorized, "Invalid token format"
	}
	if token == "" {
		return http.StatusUnauthorized, "Authentication required"
	}

	verifier := services.GetTokenVerifier()
	if verifier == nil {
		log.Println("Auth service not initialized")
		return http.StatusInternalServerError, "Authentication is unavailable"
	}

	authUser, err := verifier.VerifyToken(c.Request.Context(), token)
	if err != nil {
		return http.StatusUnauthorized, "Invalid or expired token"
	}

	profile, found, err := services.GetUserProfile(authUser.ID)
	if err != nil {
		log.Printf("Failed to load user profile %s: %v", authUser.ID, err)
		return http.StatusInternalServerError, "Failed to load user profile"
	}
	if !found {
		return http.StatusUnauthorized, "No profile for this user"
	}

	c.Set(AuthUserKey, *authUser)
	c.Set(CurrentUserKey, profile)
	return 0, ""
}

// CheckAuth requires a valid access token and a profile row.
func CheckAuth(c *gin.Context) {
	if status, message := authenticate(c); status != 0 {
		c.AbortWithStatusJSON(status, gin.H{"error": message})
		return
	}
	c.Next()
}

// LoadAuth attaches the user when the request carries a valid token and lets
// anonymous requests through untouched.
func LoadAuth(c *gin.Context) {
	_, _ = authenticate(c)
	c.Next()
}

// CurrentUser returns the profile set by CheckAuth or LoadAuth.
func CurrentUser(c *gin.Context) (models.UserProfile, bool) {
	value, exists := c.Get(CurrentUserKey)
	if !exists {
		return models.UserProfile{}, false
	}
	profile, ok := value.(models.UserProfile)
	return profile, ok
}
