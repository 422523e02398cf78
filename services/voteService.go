package services

import (
	"log"

	"github.com/doug-martin/goqu/v9"

	"github.com/PressTune/initializers"
	"github.com/PressTune/models"
)

func voteCountColumn(v models.VoteType) string {
	if v == models.VoteDownvote {
		return "downvote_count"
	}
	return "upvote_count"
}

// ToggleVote applies a tri-state vote: a first vote is added, a vote of the
// other type replaces it, and repeating the same vote removes it. The vote
// counters on the comment change in the same transaction.
func ToggleVote(user models.UserProfile, commentID string, voteType models.VoteType) (models.VoteAction, error) {
	if !voteType.Valid() {
		return "", models.NewValidationError("voteType must be upvote or downvote")
	}
	if err := ValidateCommentID(commentID); err != nil {
		return "", err
	}

	comment, found, err := FindComment(commentID)
	if err != nil {
		return "", models.NewBackendError("Failed to load comment", err)
	}
	if !found {
		return "", models.NewNotFoundError("Comment not found")
	}
	if comment.Is_Deleted {
		return "", models.NewValidationError("Cannot vote on a deleted comment")
	}

	var action models.VoteAction
	err = initializers.DB.WithTx(func(tx *goqu.TxDatabase) error {
		var existing models.CommentVote
		hasVote, err := tx.From("comment_votes").
			Select("id", "comment_id", "user_id", "vote_type").
			Where(
				goqu.C("comment_id").Eq(commentID),
				goqu.C("user_id").Eq(user.ID),
			).
			ForUpdate(goqu.Wait).
			ScanStruct(&existing)
		if err != nil {
			return err
		}

		counters := goqu.Record{}
		switch {
		case !hasVote:
			action = models.VoteAdded
			_, err = tx.Insert("comment_votes").
				Rows(goqu.Record{
					"comment_id": commentID,
					"user_id":    user.ID,
					"vote_type":  string(voteType),
				}).
				Executor().Exec()
			counters[voteCountColumn(voteType)] = goqu.L(voteCountColumn(voteType) + " + 1")

		case existing.Vote_Type == voteType:
			action = models.VoteRemoved
			_, err = tx.Delete("comment_votes").
				Where(goqu.C("id").Eq(existing.ID)).
				Executor().Exec()
			counters[voteCountColumn(voteType)] = goqu.L("GREATEST(" + voteCountColumn(voteType) + " - 1, 0)")

		default:
			action = models.VoteChanged
			_, err = tx.Update("comment_votes").
				Set(goqu.Record{
					"vote_type":  string(voteType),
					"updated_at": goqu.L("NOW()"),
				}).
				Where(goqu.C("id").Eq(existing.ID)).
				Executor().Exec()
			counters[voteCountColumn(voteType)] = goqu.L(voteCountColumn(voteType) + " + 1")
			counters[voteCountColumn(existing.Vote_Type)] = goqu.L("GREATEST(" + voteCountColumn(existing.Vote_Type) + " - 1, 0)")
		}
		if err != nil {
			return err
		}

		_, err = tx.Update("comments").
			Set(counters).
			Where(goqu.C("id").Eq(commentID)).
			Executor().Exec()
		return err
	})
	if err != nil {
		log.Printf("Failed to record vote on comment %s: %v", commentID, err)
		return "", models.NewBackendError("Failed to record vote", err)
	}

	return action, nil
}
