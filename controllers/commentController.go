package controllers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/PressTune/middlewares"
	"github.com/PressTune/models"
	"github.com/PressTune/services"
)

// respondError maps a service error onto its HTTP status. Backend details are
// logged, never returned.
func respondError(c *gin.Context, err error) {
	var commentErr *models.CommentError
	if errors.As(err, &commentErr) {
		if commentErr.Kind == models.BackendError && commentErr.Origin != nil {
			log.Printf("%s: %v", commentErr.Message, commentErr.Origin)
		}
		c.JSON(commentErr.Status(), gin.H{"error": commentErr.Message})
		return
	}

	log.Printf("Unexpected error: %v", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

// GetComments returns the comment tree of a resource. Authentication is
// optional; a known viewer gets current_user_vote filled in.
func GetComments(c *gin.Context) {
	resourceType := c.Query("resourceType")
	resourceSlug := c.Query("resourceSlug")
	if resourceType == "" || resourceSlug == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "resourceType and resourceSlug are required"})
		return
	}

	sortBy, ok := models.ParseSortOrder(c.Query("sortBy"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sortBy must be one of newest, oldest, popular"})
		return
	}

	req := services.TreeRequest{
		Resource_Type: resourceType,
		Resource_Slug: resourceSlug,
		Sort_By:       sortBy,
	}
	if user, ok := middlewares.CurrentUser(c); ok {
		req.Viewer_ID = user.ID
	}

	comments, err := services.LoadCommentTree(req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

func CreateComment(c *gin.Context) {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var input models.CommentCreate
	if err := c.BindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	comment, err := services.CreateComment(user, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "comment": comment})
}

func UpdateComment(c *gin.Context) {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var input models.CommentUpdate
	if err := c.BindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	comment, err := services.UpdateComment(user, c.Param("id"), input.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "comment": comment})
}

func DeleteComment(c *gin.Context) {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	if err := services.DeleteComment(user, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ModeratorDeleteComment removes any user's comment. Only routed when
// ALLOW_MODERATOR_DELETE is on.
func ModeratorDeleteComment(c *gin.Context) {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	if err := services.ModeratorDeleteComment(user, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func VoteComment(c *gin.Context) {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var input models.VoteRequest
	if err := c.BindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	action, err := services.ToggleVote(user, c.Param("id"), input.Vote_Type)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "action": action})
}
