package services

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/url"

	"github.com/doug-martin/goqu/v9"

	"github.com/PressTune/initializers"
	"github.com/PressTune/models"
)

const NotificationTypeCommentReply = "COMMENT_REPLY"

// shouldSendDebounced reports whether a notification for (type, user, entity)
// is outside its debounce window, recording the attempt when it is. Records
// older than a day are cleaned up lazily.
func shouldSendDebounced(notifType string, targetUserID string, entityID string, windowMinutes int) bool {
	_, cleanupErr := initializers.DB.Delete("notification_debounce").
		Where(goqu.L("last_triggered_at < NOW() - INTERVAL '24 hours'")).
		Executor().Exec()
	if cleanupErr != nil {
		log.Printf("Error cleaning up old debounce records: %v", cleanupErr)
	}

	// The conditional DO UPDATE returns no row while inside the window.
	query := `
		INSERT INTO notification_debounce (notification_type, target_user_id, entity_id, last_triggered_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (notification_type, target_user_id, entity_id)
		DO UPDATE SET last_triggered_at = NOW()
		WHERE notification_debounce.last_triggered_at < NOW() - ($4 || ' minutes')::INTERVAL
		RETURNING debounce_id
	`

	var debounceID int
	err := initializers.DB.QueryRow(query, notifType, targetUserID, entityID, windowMinutes).Scan(&debounceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false
		}
		log.Printf("Error in debounce check: %v", err)
		return true
	}

	return true
}

// ThreadURL links to the comment on the page it belongs to.
func ThreadURL(comment *models.Comment) string {
	return fmt.Sprintf("%s/%s/%s#comment-%s",
		initializers.AppConfig.SiteURL,
		url.PathEscape(comment.Resource_Type),
		url.PathEscape(comment.Resource_Slug),
		comment.ID,
	)
}

// NotifyParentAuthorOfReply emails the author of parentID that reply was
// posted. Self-replies and replies inside the debounce window are skipped.
func NotifyParentAuthorOfReply(parentID string, reply *models.Comment, replier models.UserProfile) {
	sender := GetEmailService()
	if sender == nil {
		return
	}

	parent, found, err := FindComment(parentID)
	if err != nil || !found {
		log.Printf("Failed to load parent comment %s for reply notification: %v", parentID, err)
		return
	}

	if parent.User_ID == replier.ID || parent.Is_Deleted {
		return
	}

	author, found, err := GetUserProfile(parent.User_ID)
	if err != nil || !found || author.Email == "" {
		log.Printf("Failed to load author %s for reply notification: %v", parent.User_ID, err)
		return
	}

	if !shouldSendDebounced(NotificationTypeCommentReply, author.ID, parent.ID, initializers.AppConfig.ReplyNotifyWindowMinutes) {
		return
	}

	err = sender.SendReplyNotificationEmail(ReplyEmail{
		To_Email:     author.Email,
		To_Name:      author.DisplayName(),
		Replier_Name: replier.DisplayName(),
		Reply_Text:   reply.Content,
		Thread_URL:   ThreadURL(reply),
	})
	if err != nil {
		log.Printf("Failed to notify user %s of reply %s: %v", author.ID, reply.ID, err)
	}
}
