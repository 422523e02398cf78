package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PressTune/models"
)

// Backend is the comment API a Thread talks to.
type Backend interface {
	ListComments(ctx context.Context, resourceType, resourceSlug string, sortBy models.SortOrder) ([]*models.Comment, error)
	CreateComment(ctx context.Context, input models.CommentCreate) (*models.Comment, error)
	UpdateComment(ctx context.Context, id, content string) (*models.Comment, error)
	DeleteComment(ctx context.Context, id string) error
	Vote(ctx context.Context, id string, voteType models.VoteType) (models.VoteAction, error)
}

// TokenSource supplies the access token sent as a Bearer header. An empty
// token sends the request anonymously.
type TokenSource interface {
	AccessToken() string
}

// API is the HTTP client for the comment endpoints.
type API struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

func NewAPI(baseURL string, httpClient *http.Client, tokens TokenSource) *API {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &API{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		tokens:     tokens,
	}
}

// errorForStatus rebuilds the server's error taxonomy from a failed response.
func errorForStatus(status int, message string) error {
	if message == "" {
		message = http.StatusText(status)
	}
	switch status {
	case http.StatusBadRequest:
		return models.NewValidationError(message)
	case http.StatusUnauthorized:
		return models.NewAuthenticationError(message)
	case http.StatusForbidden:
		return models.NewAuthorizationError(message)
	case http.StatusNotFound:
		return models.NewNotFoundError(message)
	default:
		return models.NewBackendError(message, fmt.Errorf("status %d", status))
	}
}

func (a *API) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if a.tokens != nil {
		if token := a.tokens.AccessToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return models.NewBackendError("Failed to reach the comment service", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var failure struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&failure)
		return errorForStatus(resp.StatusCode, failure.Error)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return models.NewBackendError("Failed to decode response", err)
	}
	return nil
}

func (a *API) ListComments(ctx context.Context, resourceType, resourceSlug string, sortBy models.SortOrder) ([]*models.Comment, error) {
	query := url.Values{}
	query.Set("resourceType", resourceType)
	query.Set("resourceSlug", resourceSlug)
	query.Set("sortBy", string(sortBy))

	var resp struct {
		Comments []*models.Comment `json:"comments"`
	}
	if err := a.do(ctx, http.MethodGet, "/api/comments?"+query.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	if resp.Comments == nil {
		resp.Comments = []*models.Comment{}
	}
	return resp.Comments, nil
}

type commentResult struct {
	Success bool            `json:"success"`
	Comment *models.Comment `json:"comment"`
}

func (a *API) CreateComment(ctx context.Context, input models.CommentCreate) (*models.Comment, error) {
	var resp commentResult
	if err := a.do(ctx, http.MethodPost, "/api/comments", input, &resp); err != nil {
		return nil, err
	}
	return resp.Comment, nil
}

func (a *API) UpdateComment(ctx context.Context, id, content string) (*models.Comment, error) {
	var resp commentResult
	err := a.do(ctx, http.MethodPut, "/api/comments/"+url.PathEscape(id), models.CommentUpdate{Content: content}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Comment, nil
}

func (a *API) DeleteComment(ctx context.Context, id string) error {
	return a.do(ctx, http.MethodDelete, "/api/comments/"+url.PathEscape(id), nil, nil)
}

func (a *API) Vote(ctx context.Context, id string, voteType models.VoteType) (models.VoteAction, error) {
	var resp struct {
		Success bool              `json:"success"`
		Action  models.VoteAction `json:"action"`
	}
	err := a.do(ctx, http.MethodPost, "/api/comments/"+url.PathEscape(id)+"/vote", models.VoteRequest{Vote_Type: voteType}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Action, nil
}

// SessionInfo is the body of GET /api/auth/session.
type SessionInfo struct {
	User    *models.AuthUser    `json:"user"`
	Profile *models.UserProfile `json:"profile"`
}

// FetchSession asks the server who the current token belongs to.
func (a *API) FetchSession(ctx context.Context) (*SessionInfo, error) {
	var info SessionInfo
	if err := a.do(ctx, http.MethodGet, "/api/auth/session", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}
