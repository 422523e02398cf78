package client

import (
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/PressTune/models"
)

const (
	goodToken = "good-token"
	fakeUser  = "11111111-1111-4111-8111-111111111111"
)

// fakeServer is an in-memory comment API with request counting.
type fakeServer struct {
	*httptest.Server

	mu       sync.Mutex
	comments map[string]*models.Comment
	votes    map[string]models.VoteType
	requests map[string]int
	sortSeen []string
	failList bool
	clock    time.Time

	// createGate, when set, holds POST /api/comments until it is closed.
	createGate chan struct{}

	conns []*websocket.Conn
}

func newFakeServer(t *testing.T) *fakeServer {
	gin.SetMode(gin.TestMode)
	f := &fakeServer{
		comments: make(map[string]*models.Comment),
		votes:    make(map[string]models.VoteType),
		requests: make(map[string]int),
		clock:    time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}

	router := gin.New()
	router.Use(func(c *gin.Context) {
		f.mu.Lock()
		f.requests[c.Request.Method+" "+c.FullPath()]++
		f.mu.Unlock()
		c.Next()
	})
	router.GET("/api/comments", f.list)
	router.GET("/api/comments/realtime", f.realtime)
	router.GET("/api/auth/session", f.session)

	auth := router.Group("/api", f.auth)
	auth.POST("/comments", f.create)
	auth.PUT("/comments/:id", f.update)
	auth.DELETE("/comments/:id", f.remove)
	auth.POST("/comments/:id/vote", f.vote)

	f.Server = httptest.NewServer(router)
	t.Cleanup(func() {
		f.mu.Lock()
		for _, conn := range f.conns {
			conn.Close()
		}
		f.mu.Unlock()
		f.Close()
	})
	return f
}

func (f *fakeServer) count(route string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[route]
}

func (f *fakeServer) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.requests {
		n += c
	}
	return n
}

func (f *fakeServer) auth(c *gin.Context) {
	if c.GetHeader("Authorization") != "Bearer "+goodToken {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}
	c.Next()
}

func (f *fakeServer) session(c *gin.Context) {
	if c.GetHeader("Authorization") != "Bearer "+goodToken {
		c.JSON(http.StatusOK, gin.H{"user": nil, "profile": nil})
		return
	}
	username := "server-copy"
	c.JSON(http.StatusOK, gin.H{
		"user":    models.AuthUser{ID: fakeUser, Email: "test@example.com"},
		"profile": models.UserProfile{ID: fakeUser, Email: "test@example.com", Username: &username, Role: models.RoleUser},
	})
}

func (f *fakeServer) tree(parentID *string, sortBy models.SortOrder) []*models.Comment {
	nodes := []*models.Comment{}
	for _, comment := range f.comments {
		if (parentID == nil) != (comment.Parent_ID == nil) {
			continue
		}
		if parentID != nil && *comment.Parent_ID != *parentID {
			continue
		}
		node := *comment
		if vote, ok := f.votes[comment.ID]; ok {
			v := vote
			node.Current_User_Vote = &v
		}
		node.Replies = f.tree(&node.ID, models.SortOldest)
		nodes = append(nodes, &node)
	}

	sort.Slice(nodes, func(i, j int) bool {
		switch sortBy {
		case models.SortOldest:
			return nodes[i].Created_At.Before(nodes[j].Created_At)
		case models.SortPopular:
			if nodes[i].Upvote_Count != nodes[j].Upvote_Count {
				return nodes[i].Upvote_Count > nodes[j].Upvote_Count
			}
		}
		return nodes[i].Created_At.After(nodes[j].Created_At)
	})
	return nodes
}

func (f *fakeServer) list(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.sortSeen = append(f.sortSeen, c.Query("sortBy"))
	if f.failList {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load comments"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": f.tree(nil, models.SortOrder(c.Query("sortBy")))})
}

func (f *fakeServer) create(c *gin.Context) {
	f.mu.Lock()
	gate := f.createGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}

	var input models.CommentCreate
	if err := c.BindJSON(&input); err != nil || strings.TrimSpace(input.Content) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Comment content is required"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	depth := 0
	if input.Parent_ID != nil {
		parent, ok := f.comments[*input.Parent_ID]
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Parent comment not found"})
			return
		}
		depth = parent.Depth + 1
		parent.Reply_Count++
	}

	f.clock = f.clock.Add(time.Minute)
	comment := &models.Comment{
		ID:            uuid.NewString(),
		User_ID:       fakeUser,
		Resource_Type: input.Resource_Type,
		Resource_Slug: input.Resource_Slug,
		Parent_ID:     input.Parent_ID,
		Content:       input.Content,
		Depth:         depth,
		Created_At:    f.clock,
		Updated_At:    f.clock,
	}
	f.comments[comment.ID] = comment
	c.JSON(http.StatusOK, gin.H{"success": true, "comment": comment})
}

func (f *fakeServer) update(c *gin.Context) {
	var input models.CommentUpdate
	_ = c.BindJSON(&input)

	f.mu.Lock()
	defer f.mu.Unlock()
	comment, ok := f.comments[c.Param("id")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}
	comment.Content = input.Content
	comment.Is_Edited = true
	c.JSON(http.StatusOK, gin.H{"success": true, "comment": comment})
}

func (f *fakeServer) remove(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	comment, ok := f.comments[c.Param("id")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}
	comment.Is_Deleted = true
	comment.Content = models.DeletedContent
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (f *fakeServer) vote(c *gin.Context) {
	var input models.VoteRequest
	if err := c.BindJSON(&input); err != nil || !input.Vote_Type.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "voteType must be upvote or downvote"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	comment, ok := f.comments[c.Param("id")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}

	bump := func(v models.VoteType, delta int) {
		if v == models.VoteUpvote {
			comment.Upvote_Count += delta
		} else {
			comment.Downvote_Count += delta
		}
	}

	var action models.VoteAction
	existing, has := f.votes[comment.ID]
	switch {
	case !has:
		action = models.VoteAdded
		f.votes[comment.ID] = input.Vote_Type
		bump(input.Vote_Type, 1)
	case existing == input.Vote_Type:
		action = models.VoteRemoved
		delete(f.votes, comment.ID)
		bump(existing, -1)
	default:
		action = models.VoteChanged
		f.votes[comment.ID] = input.Vote_Type
		bump(existing, -1)
		bump(input.Vote_Type, 1)
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "action": action})
}

var fakeUpgrader = websocket.Upgrader{}

func (f *fakeServer) realtime(c *gin.Context) {
	conn, err := fakeUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	f.mu.Lock()
	f.conns = append(f.conns, conn)
	f.mu.Unlock()
}

func (f *fakeServer) subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.conns)
}

// broadcast sends a comments_changed event to every websocket client.
func (f *fakeServer) broadcast(slug string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, conn := range f.conns {
		_ = conn.WriteJSON(models.CommentChangeEvent{
			Type:          models.CommentsChangedEvent,
			Operation:     "INSERT",
			Resource_Slug: slug,
		})
	}
}
