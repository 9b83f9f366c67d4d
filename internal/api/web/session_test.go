package web

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/mks-o/spotify-organizer/internal/domain/user"
)

func TestSessionStore_Lifecycle(t *testing.T) {
	store := NewSessionStore(time.Hour)

	session := store.Create(&oauth2.Token{AccessToken: "tok"}, &user.User{ID: "u1"}, nil, nil, nil)
	require.NotEmpty(t, session.ID)

	got := store.Get(session.ID)
	require.NotNil(t, got)
	assert.Equal(t, "u1", got.User.ID)

	store.Delete(session.ID)
	assert.Nil(t, store.Get(session.ID))
}

func TestSessionStore_Expiry(t *testing.T) {
	store := NewSessionStore(time.Nanosecond)

	session := store.Create(&oauth2.Token{}, &user.User{}, nil, nil, nil)
	time.Sleep(time.Millisecond)

	assert.Nil(t, store.Get(session.ID))
}

func TestSessionStore_CookieRoundtrip(t *testing.T) {
	store := NewSessionStore(time.Hour)
	session := store.Create(&oauth2.Token{}, &user.User{ID: "u1"}, nil, nil, nil)

	w := httptest.NewRecorder()
	store.SetCookie(w, session)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range w.Result().Cookies() {
		r.AddCookie(c)
	}

	got := store.GetFromRequest(r)
	require.NotNil(t, got)
	assert.Equal(t, session.ID, got.ID)
}

func TestSessionStore_NoCookie(t *testing.T) {
	store := NewSessionStore(time.Hour)
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Nil(t, store.GetFromRequest(r))
}
