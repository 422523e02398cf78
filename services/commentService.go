package services

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"

	"github.com/PressTune/initializers"
	"github.com/PressTune/models"
)

const maxResourceFieldLength = 200

// ValidateCommentID rejects ids that are not uuids before they reach the
// database.
func ValidateCommentID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return models.NewValidationError("Invalid comment ID")
	}
	return nil
}

// ValidateContent trims content and checks it is non-empty and within the
// configured length.
func ValidateContent(content string) (string, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "", models.NewValidationError("Comment content is required")
	}
	maxLength := initializers.AppConfig.CommentMaxLength
	if utf8.RuneCountInString(trimmed) > maxLength {
		return "", models.NewValidationError(fmt.Sprintf("Comment content exceeds maximum length of %d characters", maxLength))
	}
	return trimmed, nil
}

func validateResource(resourceType, resourceSlug string) error {
	if resourceType == "" || resourceSlug == "" {
		return models.NewValidationError("resourceType and resourceSlug are required")
	}
	if len(resourceType) > maxResourceFieldLength || len(resourceSlug) > maxResourceFieldLength {
		return models.NewValidationError("resourceType or resourceSlug is too long")
	}
	return nil
}

// CreateComment inserts a top-level comment or a reply. For replies the depth
// is derived from the parent and the parent's reply_count is bumped in the
// same transaction.
func CreateComment(user models.UserProfile, input models.CommentCreate) (*models.Comment, error) {
	input.Resource_Type = strings.TrimSpace(input.Resource_Type)
	input.Resource_Slug = strings.TrimSpace(input.Resource_Slug)
	if err := validateResource(input.Resource_Type, input.Resource_Slug); err != nil {
		return nil, err
	}

	content, err := ValidateContent(input.Content)
	if err != nil {
		return nil, err
	}

	if input.Parent_ID != nil && *input.Parent_ID == "" {
		input.Parent_ID = nil
	}

	depth := 0
	if input.Parent_ID != nil {
		if err := ValidateCommentID(*input.Parent_ID); err != nil {
			return nil, models.NewValidationError("Invalid parent comment ID")
		}

		parent, found, err := FindComment(*input.Parent_ID)
		if err != nil {
			return nil, models.NewBackendError("Failed to load parent comment", err)
		}
		if !found {
			return nil, models.NewNotFoundError("Parent comment not found")
		}
		if parent.Resource_Type != input.Resource_Type || parent.Resource_Slug != input.Resource_Slug {
			return nil, models.NewValidationError("Parent comment belongs to a different resource")
		}
		if parent.Is_Deleted {
			return nil, models.NewValidationError("Cannot reply to a deleted comment")
		}

		depth = parent.Depth + 1
		if depth > initializers.AppConfig.CommentMaxDepth {
			return nil, models.NewValidationError(fmt.Sprintf("Replies cannot be nested more than %d levels deep", initializers.AppConfig.CommentMaxDepth))
		}
	}

	var commentID string
	err = initializers.DB.WithTx(func(tx *goqu.TxDatabase) error {
		record := goqu.Record{
			"user_id":       user.ID,
			"resource_type": input.Resource_Type,
			"resource_slug": input.Resource_Slug,
			"parent_id":     input.Parent_ID,
			"content":       content,
			"depth":         depth,
		}

		if _, err := tx.Insert("comments").
			Rows(record).
			Returning("id").
			Executor().
			ScanVal(&commentID); err != nil {
			return err
		}

		if input.Parent_ID != nil {
			_, err := tx.Update("comments").
				Set(goqu.Record{"reply_count": goqu.L("reply_count + 1")}).
				Where(goqu.C("id").Eq(*input.Parent_ID)).
				Executor().Exec()
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("Failed to create comment: %v", err)
		return nil, models.NewBackendError("Failed to create comment", err)
	}

	created, found, err := FindComment(commentID)
	if err != nil || !found {
		log.Printf("Failed to load created comment %s: %v", commentID, err)
		return &models.Comment{
			ID:            commentID,
			User_ID:       user.ID,
			Resource_Type: input.Resource_Type,
			Resource_Slug: input.Resource_Slug,
			Parent_ID:     input.Parent_ID,
			Content:       content,
			Content_HTML:  RenderCommentHTML(content),
			Depth:         depth,
			Replies:       []*models.Comment{},
		}, nil
	}

	if input.Parent_ID != nil {
		go NotifyParentAuthorOfReply(*input.Parent_ID, created, user)
	}

	return created, nil
}

func loadOwnedComment(user models.UserProfile, id string, action string) (*models.Comment, error) {
	if err := ValidateCommentID(id); err != nil {
		return nil, err
	}

	existing, found, err := FindComment(id)
	if err != nil {
		return nil, models.NewBackendError("Failed to load comment", err)
	}
	if !found {
		return nil, models.NewNotFoundError("Comment not found")
	}
	if existing.User_ID != user.ID {
		return nil, models.NewAuthorizationError(fmt.Sprintf("You can only %s your own comments", action))
	}
	if existing.Is_Deleted {
		return nil, models.NewValidationError("Comment has been deleted")
	}
	return existing, nil
}

// UpdateComment replaces the content of a comment owned by user and marks it
// edited.
func UpdateComment(user models.UserProfile, id string, content string) (*models.Comment, error) {
	trimmed, err := ValidateContent(content)
	if err != nil {
		return nil, err
	}

	existing, err := loadOwnedComment(user, id, "edit")
	if err != nil {
		return nil, err
	}

	result, err := initializers.DB.Update("comments").
		Set(goqu.Record{
			"content":    trimmed,
			"is_edited":  true,
			"updated_at": goqu.L("NOW()"),
		}).
		Where(
			goqu.C("id").Eq(id),
			goqu.C("user_id").Eq(user.ID),
			goqu.C("is_deleted").IsFalse(),
		).
		Executor().Exec()
	if err != nil {
		log.Printf("Failed to update comment %s: %v", id, err)
		return nil, models.NewBackendError("Failed to update comment", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return nil, models.NewNotFoundError("Comment not found")
	}

	updated, found, err := FindComment(id)
	if err != nil || !found {
		log.Printf("Failed to reload comment %s after edit: %v", id, err)
		existing.Content = trimmed
		existing.Content_HTML = RenderCommentHTML(trimmed)
		existing.Is_Edited = true
		return existing, nil
	}
	return updated, nil
}

// DeleteComment soft-deletes a comment owned by user through the
// soft_delete_comment procedure. Replies stay attached.
func DeleteComment(user models.UserProfile, id string) error {
	if _, err := loadOwnedComment(user, id, "delete"); err != nil {
		return err
	}
	return softDelete(id, user.ID, false)
}

// ModeratorDeleteComment soft-deletes any comment on behalf of a moderator.
func ModeratorDeleteComment(moderator models.UserProfile, id string) error {
	if !moderator.Role.AtLeast(models.RoleModerator) {
		return models.NewAuthorizationError("Only moderators can remove other users' comments")
	}
	if err := ValidateCommentID(id); err != nil {
		return err
	}
	return softDelete(id, moderator.ID, true)
}

func softDelete(id string, actorID string, force bool) error {
	var deleted bool
	err := initializers.DB.QueryRow("SELECT soft_delete_comment($1, $2, $3)", id, actorID, force).Scan(&deleted)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.NewNotFoundError("Comment not found")
		}
		log.Printf("Failed to delete comment %s: %v", id, err)
		return models.NewBackendError("Failed to delete comment", err)
	}
	if !deleted {
		return models.NewNotFoundError("Comment not found")
	}
	return nil
}
