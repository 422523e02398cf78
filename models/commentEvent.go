package models

// CommentChangeEvent is sent to every subscriber of a resource when any of
// its comments is inserted, updated or deleted. Clients reload the whole
// thread when they receive it.
type CommentChangeEvent struct {
	Type          string `json:"type"`
	Operation     string `json:"operation"`
	Comment_ID    string `json:"comment_id,omitempty"`
	Resource_Type string `json:"resource_type,omitempty"`
	Resource_Slug string `json:"resource_slug"`
}

const CommentsChangedEvent = "comments_changed"
