// Package user provides the authenticated user entity.
package user

// User represents the Spotify account the session belongs to.
type User struct {
	ID       string // Spotify user ID
	Name     string // Display name
	Email    string
	ImageURL string // Profile image, empty if none
}
