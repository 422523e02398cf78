package models

import "time"

type VoteType string

const (
	VoteUpvote   VoteType = "upvote"
	VoteDownvote VoteType = "downvote"
)

func (v VoteType) Valid() bool {
	return v == VoteUpvote || v == VoteDownvote
}

// VoteAction reports what a vote request did to the caller's vote row.
type VoteAction string

const (
	VoteAdded   VoteAction = "added"
	VoteChanged VoteAction = "changed"
	VoteRemoved VoteAction = "removed"
)

// CommentVote is one row of comment_votes, unique per (comment_id, user_id).
type CommentVote struct {
	ID         string    `json:"id" goqu:"skipinsert"`
	Comment_ID string    `json:"comment_id"`
	User_ID    string    `json:"user_id"`
	Vote_Type  VoteType  `json:"vote_type"`
	Created_At time.Time `json:"created_at" goqu:"skipinsert"`
	Updated_At time.Time `json:"updated_at" goqu:"skipinsert"`
}

type VoteRequest struct {
	Vote_Type VoteType `json:"voteType"`
}
