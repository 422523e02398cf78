package client

import (
	"context"
	"sync"
	"time"

	"github.com/PressTune/models"
	"github.com/PressTune/utils"
)

// Identity is a snapshot of who is signed in.
type Identity struct {
	User    *models.AuthUser
	Profile *models.UserProfile
	Loading bool
}

func (i Identity) Authenticated() bool {
	return i.User != nil
}

// Session is the auth state a Thread reads for its auth gate.
type Session interface {
	TokenSource
	Current() Identity
	// Subscribe calls fn on every identity change until the returned
	// function is called.
	Subscribe(fn func(Identity)) (unsubscribe func())
}

// SessionFetcher resolves the identity behind the current token.
type SessionFetcher interface {
	FetchSession(ctx context.Context) (*SessionInfo, error)
}

// ProfileCache keeps recently fetched profiles for a short TTL.
type ProfileCache struct {
	cache *utils.TTLCache[models.UserProfile]
}

func NewProfileCache(size int, ttl time.Duration) (*ProfileCache, error) {
	cache, err := utils.NewTTLCache[models.UserProfile](size, ttl)
	if err != nil {
		return nil, err
	}
	return &ProfileCache{cache: cache}, nil
}

func (p *ProfileCache) Get(userID string) (models.UserProfile, bool) {
	return p.cache.Get(userID)
}

func (p *ProfileCache) Set(profile models.UserProfile) {
	p.cache.Set(profile.ID, profile)
}

func (p *ProfileCache) Forget(userID string) {
	p.cache.Delete(userID)
}

// TokenSession holds an access token from the hosted auth service and the
// identity it resolves to.
type TokenSession struct {
	profiles *ProfileCache

	mu          sync.RWMutex
	token       string
	identity    Identity
	nextID      int
	subscribers map[int]func(Identity)
}

func NewTokenSession(profiles *ProfileCache) *TokenSession {
	return &TokenSession{
		profiles:    profiles,
		subscribers: make(map[int]func(Identity)),
	}
}

func (s *TokenSession) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *TokenSession) Current() Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity
}

func (s *TokenSession) Subscribe(fn func(Identity)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

func (s *TokenSession) setIdentity(identity Identity) {
	s.mu.Lock()
	s.identity = identity
	subscribers := make([]func(Identity), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subscribers = append(subscribers, fn)
	}
	s.mu.Unlock()

	for _, fn := range subscribers {
		fn(identity)
	}
}

// SignIn stores token and resolves its identity through fetcher, which
// usually is the API built on this session. A cached profile for the same
// user is reused instead of the server's copy.
func (s *TokenSession) SignIn(ctx context.Context, fetcher SessionFetcher, token string) error {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	s.setIdentity(Identity{Loading: true})

	info, err := fetcher.FetchSession(ctx)
	if err != nil || info.User == nil {
		s.mu.Lock()
		s.token = ""
		s.mu.Unlock()
		s.setIdentity(Identity{})
		if err == nil {
			err = models.NewAuthenticationError("Token was not accepted")
		}
		return err
	}

	identity := Identity{User: info.User, Profile: info.Profile}
	if s.profiles != nil {
		if cached, ok := s.profiles.Get(info.User.ID); ok {
			identity.Profile = &cached
		} else if info.Profile != nil {
			s.profiles.Set(*info.Profile)
		}
	}
	s.setIdentity(identity)
	return nil
}

func (s *TokenSession) SignOut() {
	current := s.Current()
	if current.User != nil && s.profiles != nil {
		s.profiles.Forget(current.User.ID)
	}

	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
	s.setIdentity(Identity{})
}
