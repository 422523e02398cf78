package controllers

import (
	"net/http"

	"github.com/PressTune/initializers"
	"github.com/PressTune/services"
	"github.com/gin-gonic/gin"
)

// TestReplyEmail sends a sample reply notification.
// This is for development/testing purposes only
func TestReplyEmail(c *gin.Context) {
	type TestEmailRequest struct {
		Email string `json:"email" binding:"required,email"`
		Name  string `json:"name"`
	}

	var req TestEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Valid email is required"})
		return
	}

	if req.Name == "" {
		req.Name = "Test User"
	}

	emailService := services.GetEmailService()
	if emailService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Email service is not initialized. Check RESEND_API_KEY in .env",
		})
		return
	}

	err := emailService.SendReplyNotificationEmail(services.ReplyEmail{
		To_Email:     req.Email,
		To_Name:      req.Name,
		Replier_Name: "PressTune",
		Reply_Text:   "This is a **test** reply notification.",
		Thread_URL:   initializers.AppConfig.SiteURL,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send test email"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Test email sent successfully!",
		"email":   req.Email,
	})
}
