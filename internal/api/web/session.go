// Package web provides the HTTP server for the organizer's browser
// frontend.
package web

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/mks-o/spotify-organizer/internal/app/genres"
	"github.com/mks-o/spotify-organizer/internal/app/library"
	"github.com/mks-o/spotify-organizer/internal/domain/track"
	"github.com/mks-o/spotify-organizer/internal/domain/user"
)

const sessionCookieName = "session_id"

// LibraryFetcher retrieves the user's saved tracks.
type LibraryFetcher interface {
	FetchLibrary(ctx context.Context) ([]track.Track, error)
}

// Session represents an authenticated user session. Each session owns
// its Spotify client, genre resolver and library manager.
type Session struct {
	ID        string
	Token     *oauth2.Token
	User      *user.User
	Client    LibraryFetcher
	Manager   *library.Manager
	Resolver  *genres.Resolver
	CreatedAt time.Time
}

// SessionStore manages user sessions in memory.
type SessionStore struct {
	ttl time.Duration

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionStore creates a new in-memory session store.
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		ttl:      ttl,
		sessions: make(map[string]*Session),
	}
}

// Create registers a new session and assigns it an ID.
func (s *SessionStore) Create(token *oauth2.Token, u *user.User, client LibraryFetcher, manager *library.Manager, resolver *genres.Resolver) *Session {
	session := &Session{
		ID:        uuid.NewString(),
		Token:     token,
		User:      u,
		Client:    client,
		Manager:   manager,
		Resolver:  resolver,
		CreatedAt: time.Now(),
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	return session
}

// Get retrieves a session by ID. Expired sessions are dropped.
func (s *SessionStore) Get(id string) *Session {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil
	}

	if time.Since(session.CreatedAt) > s.ttl {
		s.Delete(id)
		return nil
	}

	return session
}

// Delete removes a session by ID.
func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// GetFromRequest extracts the session from the request cookie.
func (s *SessionStore) GetFromRequest(r *http.Request) *Session {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return nil
	}
	return s.Get(cookie.Value)
}

// SetCookie sets the session cookie on the response.
func (s *SessionStore) SetCookie(w http.ResponseWriter, session *Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    session.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.ttl.Seconds()),
	})
}

// ClearCookie removes the session cookie from the response.
func (s *SessionStore) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}
