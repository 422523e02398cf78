package controllers

import (
	"log"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/PressTune/middlewares"
	"github.com/PressTune/models"
	"github.com/PressTune/services"
)

// CreateSession verifies an access token from the hosted auth service and
// keeps it in the cookie session for pages without an Authorization header.
func CreateSession(c *gin.Context) {
	var input models.SessionCreate
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "accessToken is required"})
		return
	}

	verifier := services.GetTokenVerifier()
	if verifier == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Authentication is unavailable"})
		return
	}

	authUser, err := verifier.VerifyToken(c.Request.Context(), input.Access_Token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}

	profile, found, err := services.GetUserProfile(authUser.ID)
	if err != nil {
		log.Printf("Failed to load user profile %s: %v", authUser.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user profile"})
		return
	}

	session := sessions.Default(c)
	session.Set(middlewares.SessionTokenKey, input.Access_Token)
	if err := session.Save(); err != nil {
		log.Printf("Failed to save session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save session"})
		return
	}

	response := gin.H{"user": authUser, "profile": nil}
	if found {
		response["profile"] = profile
	}
	c.JSON(http.StatusOK, response)
}

// GetSession reports the identity behind the current request. Anonymous
// visitors get {"user": null}.
func GetSession(c *gin.Context) {
	profile, ok := middlewares.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"user": nil, "profile": nil})
		return
	}

	user := models.AuthUser{ID: profile.ID, Email: profile.Email, Role: string(profile.Role)}
	if value, exists := c.Get(middlewares.AuthUserKey); exists {
		if authUser, ok := value.(models.AuthUser); ok {
			user = authUser
		}
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "profile": profile})
}

func DeleteSession(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		log.Printf("Failed to clear session: %v", err)
	}

	if profile, ok := middlewares.CurrentUser(c); ok {
		services.InvalidateProfile(profile.ID)
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}
