// Package client is the comment thread service the site's pages build their
// comment widgets on. A Thread owns the tree, the expand/collapse state, the
// sort order and the realtime subscription of one mounted thread.
package client

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"sync"

	"github.com/PressTune/models"
)

var (
	// ErrAuthRequired is returned when an interaction needs a signed-in
	// user. OnAuthRequired has already been called.
	ErrAuthRequired = errors.New("sign in to continue")

	// ErrSubmitting is returned while the same control already has a
	// submission in flight.
	ErrSubmitting = errors.New("another change is still being submitted")

	ErrEmptyContent = errors.New("comment cannot be empty")

	// ErrCancelled is returned when the user declines a confirmation.
	ErrCancelled = errors.New("cancelled")
)

const deleteConfirmation = "Are you sure you want to delete this comment?"

// Controls name the form or button a submission came from. Each one allows a
// single submission in flight; different controls never block each other.
// TopLevelControl is the new-comment form at the top of the thread.
const TopLevelControl = "comment"

func ReplyControl(parentID string) string {
	return "reply:" + parentID
}

func EditControl(id string) string {
	return "edit:" + id
}

func DeleteControl(id string) string {
	return "delete:" + id
}

func VoteControl(id string) string {
	return "vote:" + id
}

type ThreadOptions struct {
	Resource_Type string
	Resource_Slug string
	Sort_By       models.SortOrder

	// OnAuthRequired opens the sign-in prompt. The interaction that caused
	// it is not replayed after sign-in.
	OnAuthRequired func()

	// Confirm asks the user to confirm a destructive action. Without it
	// deletes are refused.
	Confirm func(prompt string) bool

	// OnChange is called after every state change, for re-rendering.
	OnChange func()
}

// Thread is one comment thread. Every mutation follows the same steps: auth
// gate, local validation, per-control submitting guard, backend call, full
// reload.
type Thread struct {
	backend Backend
	session Session
	feed    ChangeFeed
	opts    ThreadOptions

	mu         sync.Mutex
	comments   []*models.Comment
	sortBy     models.SortOrder
	expanded   map[string]bool
	replyingTo string
	loading    bool
	submitting map[string]bool
	closed     bool
	sub        io.Closer
}

// NewThread builds a thread. feed may be nil when realtime updates are not
// wanted.
func NewThread(backend Backend, session Session, feed ChangeFeed, opts ThreadOptions) *Thread {
	sortBy := opts.Sort_By
	if !sortBy.Valid() {
		sortBy = models.DefaultSortOrder
	}
	return &Thread{
		backend:    backend,
		session:    session,
		feed:       feed,
		opts:       opts,
		comments:   []*models.Comment{},
		sortBy:     sortBy,
		expanded:   make(map[string]bool),
		submitting: make(map[string]bool),
	}
}

func (t *Thread) changed() {
	if t.opts.OnChange != nil {
		t.opts.OnChange()
	}
}

// Comments returns the current tree. It is replaced wholesale by every
// reload and must be treated as read-only.
func (t *Thread) Comments() []*models.Comment {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.comments
}

func (t *Thread) SortOrder() models.SortOrder {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sortBy
}

func (t *Thread) Loading() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loading
}

// Submitting reports whether any control has a submission in flight.
func (t *Thread) Submitting() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.submitting) > 0
}

// IsSubmitting reports whether control has a submission in flight, for
// disabling that one button.
func (t *Thread) IsSubmitting(control string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.submitting[control]
}

// Load fetches the whole tree. A failed load leaves an empty tree and is
// also returned so the caller may log it.
func (t *Thread) Load(ctx context.Context) error {
	t.mu.Lock()
	t.loading = true
	sortBy := t.sortBy
	t.mu.Unlock()
	t.changed()

	comments, err := t.backend.ListComments(ctx, t.opts.Resource_Type, t.opts.Resource_Slug, sortBy)
	if err != nil {
		log.Printf("Failed to load comments for %s/%s: %v", t.opts.Resource_Type, t.opts.Resource_Slug, err)
		comments = []*models.Comment{}
	}

	t.mu.Lock()
	t.comments = comments
	t.loading = false
	t.mu.Unlock()
	t.changed()
	return err
}

// ChangeSortOrder switches the server-side sort and reloads. Unknown values
// fall back to the default order.
func (t *Thread) ChangeSortOrder(ctx context.Context, raw string) error {
	sortBy := models.SortOrder(raw)
	if !sortBy.Valid() {
		sortBy = models.DefaultSortOrder
	}

	t.mu.Lock()
	t.sortBy = sortBy
	t.mu.Unlock()
	return t.Load(ctx)
}

// ToggleThread shows or hides the replies of id. It never touches data.
func (t *Thread) ToggleThread(id string) {
	t.mu.Lock()
	if t.expanded[id] {
		delete(t.expanded, id)
	} else {
		t.expanded[id] = true
	}
	t.mu.Unlock()
	t.changed()
}

func (t *Thread) IsExpanded(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.expanded[id]
}

// requireIdentity is the auth gate in front of every interaction.
func (t *Thread) requireIdentity() error {
	if t.session != nil && t.session.Current().Authenticated() {
		return nil
	}
	if t.opts.OnAuthRequired != nil {
		t.opts.OnAuthRequired()
	}
	return ErrAuthRequired
}

// BeginReply opens the reply form under parentID for signed-in users.
func (t *Thread) BeginReply(parentID string) error {
	if err := t.requireIdentity(); err != nil {
		return err
	}
	t.mu.Lock()
	t.replyingTo = parentID
	t.mu.Unlock()
	t.changed()
	return nil
}

func (t *Thread) CancelReply() {
	t.mu.Lock()
	t.replyingTo = ""
	t.mu.Unlock()
	t.changed()
}

// ReplyingTo is the comment whose reply form is open, or "".
func (t *Thread) ReplyingTo() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.replyingTo
}

// mutate runs call under the submitting guard of control and reloads when it
// succeeds.
func (t *Thread) mutate(ctx context.Context, control string, call func() error) error {
	t.mu.Lock()
	if t.submitting[control] {
		t.mu.Unlock()
		return ErrSubmitting
	}
	t.submitting[control] = true
	t.mu.Unlock()
	t.changed()

	err := call()

	t.mu.Lock()
	delete(t.submitting, control)
	t.mu.Unlock()

	if err != nil {
		t.changed()
		return err
	}
	_ = t.Load(ctx)
	return nil
}

// SubmitComment posts a top-level comment, or a reply when parentID is set.
func (t *Thread) SubmitComment(ctx context.Context, content string, parentID *string) (*models.Comment, error) {
	if err := t.requireIdentity(); err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	control := TopLevelControl
	if parentID != nil {
		control = ReplyControl(*parentID)
	}

	var created *models.Comment
	err := t.mutate(ctx, control, func() error {
		var err error
		created, err = t.backend.CreateComment(ctx, models.CommentCreate{
			Resource_Type: t.opts.Resource_Type,
			Resource_Slug: t.opts.Resource_Slug,
			Content:       content,
			Parent_ID:     parentID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	if parentID != nil {
		t.mu.Lock()
		t.expanded[*parentID] = true
		if t.replyingTo == *parentID {
			t.replyingTo = ""
		}
		t.mu.Unlock()
		t.changed()
	}
	return created, nil
}

func (t *Thread) EditComment(ctx context.Context, id, content string) error {
	if err := t.requireIdentity(); err != nil {
		return err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return ErrEmptyContent
	}

	return t.mutate(ctx, EditControl(id), func() error {
		_, err := t.backend.UpdateComment(ctx, id, content)
		return err
	})
}

// DeleteComment soft-deletes id after the user confirms.
func (t *Thread) DeleteComment(ctx context.Context, id string) error {
	if err := t.requireIdentity(); err != nil {
		return err
	}
	if t.opts.Confirm == nil || !t.opts.Confirm(deleteConfirmation) {
		return ErrCancelled
	}

	return t.mutate(ctx, DeleteControl(id), func() error {
		return t.backend.DeleteComment(ctx, id)
	})
}

func (t *Thread) Vote(ctx context.Context, id string, voteType models.VoteType) (models.VoteAction, error) {
	if err := t.requireIdentity(); err != nil {
		return "", err
	}
	if !voteType.Valid() {
		return "", models.NewValidationError("voteType must be upvote or downvote")
	}

	var action models.VoteAction
	err := t.mutate(ctx, VoteControl(id), func() error {
		var err error
		action, err = t.backend.Vote(ctx, id, voteType)
		return err
	})
	return action, err
}

// Subscribe starts realtime invalidation: every change to this resource
// triggers a full reload. Calling it twice keeps the first subscription.
// Reloads run off the feed's read loop, so OnChange may call Close.
func (t *Thread) Subscribe(ctx context.Context) error {
	if t.feed == nil {
		return nil
	}

	t.mu.Lock()
	if t.sub != nil || t.closed {
		t.mu.Unlock()
		return nil
	}
	t.mu.Unlock()

	sub, err := t.feed.Subscribe(ctx, t.opts.Resource_Slug, func(models.CommentChangeEvent) {
		t.mu.Lock()
		closed := t.closed
		t.mu.Unlock()
		if !closed {
			go t.Load(context.Background())
		}
	})
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed || t.sub != nil {
		return sub.Close()
	}
	t.sub = sub
	return nil
}

// Close drops the realtime subscription. The thread must not be used
// afterwards.
func (t *Thread) Close() error {
	t.mu.Lock()
	t.closed = true
	sub := t.sub
	t.sub = nil
	t.mu.Unlock()

	if sub != nil {
		return sub.Close()
	}
	return nil
}
