package services

import (
	"fmt"
	"log"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/PressTune/initializers"
	"github.com/PressTune/models"
)

// TreeRequest identifies the thread to load and, optionally, the viewer whose
// votes should be attached.
type TreeRequest struct {
	Resource_Type string
	Resource_Slug string
	Sort_By       models.SortOrder
	Viewer_ID     string
}

func topLevelOrder(sortBy models.SortOrder) []exp.OrderedExpression {
	switch sortBy {
	case models.SortOldest:
		return []exp.OrderedExpression{goqu.C("created_at").Asc()}
	case models.SortPopular:
		return []exp.OrderedExpression{goqu.C("upvote_count").Desc(), goqu.C("created_at").Desc()}
	default:
		return []exp.OrderedExpression{goqu.C("created_at").Desc()}
	}
}

// LoadCommentTree returns the ordered top-level comments of a resource, each
// with its full reply subtree. Failing to read the top level is a
// BackendError; a reply level that fails is logged and comes back empty.
func LoadCommentTree(req TreeRequest) ([]*models.Comment, error) {
	roots, err := fetchTopLevelComments(req)
	if err != nil {
		return nil, models.NewBackendError("Failed to load comments", err)
	}

	for _, root := range roots {
		attachReplies(root, 1)
	}

	if req.Viewer_ID != "" && len(roots) > 0 {
		attachViewerVotes(roots, req.Viewer_ID)
	}

	return roots, nil
}

func fetchTopLevelComments(req TreeRequest) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := initializers.DB.From("comments_with_user").
		Select(models.CommentColumns...).
		Where(
			goqu.C("resource_type").Eq(req.Resource_Type),
			goqu.C("resource_slug").Eq(req.Resource_Slug),
			goqu.C("parent_id").IsNull(),
		).
		Order(topLevelOrder(req.Sort_By)...).
		ScanStructs(&comments)
	if err != nil {
		return nil, fmt.Errorf("comments of %s/%s: %w", req.Resource_Type, req.Resource_Slug, err)
	}

	for _, c := range comments {
		prepareComment(c)
	}
	if comments == nil {
		comments = []*models.Comment{}
	}
	return comments, nil
}

// attachReplies fetches the direct children of parent (oldest first) and
// recurses into every child that has replies of its own. level guards the
// recursion against rows that violate the depth limit.
func attachReplies(parent *models.Comment, level int) {
	if parent.Reply_Count <= 0 || level > initializers.AppConfig.CommentMaxDepth {
		return
	}

	var replies []*models.Comment
	err := initializers.DB.From("comments_with_user").
		Select(models.CommentColumns...).
		Where(goqu.C("parent_id").Eq(parent.ID)).
		Order(goqu.C("created_at").Asc()).
		ScanStructs(&replies)
	if err != nil {
		log.Printf("Failed to fetch replies for comment %s: %v", parent.ID, err)
		return
	}

	for _, reply := range replies {
		prepareComment(reply)
		parent.Replies = append(parent.Replies, reply)
		attachReplies(reply, level+1)
	}
}

func prepareComment(c *models.Comment) {
	c.Replies = []*models.Comment{}
	if c.Is_Deleted {
		c.Content = models.DeletedContent
	}
	c.Content_HTML = RenderCommentHTML(c.Content)
}

func collectIDs(comments []*models.Comment, index map[string]*models.Comment) {
	for _, c := range comments {
		index[c.ID] = c
		collectIDs(c.Replies, index)
	}
}

func attachViewerVotes(roots []*models.Comment, viewerID string) {
	index := make(map[string]*models.Comment)
	collectIDs(roots, index)

	ids := make([]string, 0, len(index))
	for id := range index {
		ids = append(ids, id)
	}

	var votes []models.CommentVote
	err := initializers.DB.From("comment_votes").
		Select("comment_id", "vote_type").
		Where(
			goqu.C("user_id").Eq(viewerID),
			goqu.C("comment_id").In(ids),
		).
		ScanStructs(&votes)
	if err != nil {
		log.Printf("Failed to fetch votes of user %s: %v", viewerID, err)
		return
	}

	for _, vote := range votes {
		if c, ok := index[vote.Comment_ID]; ok {
			voteType := vote.Vote_Type
			c.Current_User_Vote = &voteType
		}
	}
}

// FindComment loads a single comment from comments_with_user.
func FindComment(id string) (*models.Comment, bool, error) {
	var comment models.Comment
	found, err := initializers.DB.From("comments_with_user").
		Select(models.CommentColumns...).
		Where(goqu.C("id").Eq(id)).
		ScanStruct(&comment)
	if err != nil || !found {
		return nil, found, err
	}
	prepareComment(&comment)
	return &comment, true, nil
}
