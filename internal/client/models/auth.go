// Package models defines client-side data models used by the Juiz Lab client.
package models

import "strings"

// Credential is the bearer pair issued by the backend at sign-in. The access
// token is short-lived; the refresh token outlives it and is exchanged for a
// new pair.
type Credential struct {
	AccessToken  string `json:"access"`
	RefreshToken string `json:"refresh"`
}

// Complete reports whether both tokens are present. A credential with only
// one token is never persisted.
func (c Credential) Complete() bool {
	return c.AccessToken != "" && c.RefreshToken != ""
}

// Identity is the authenticated user as confirmed by the auth check endpoint.
type Identity struct {
	Authenticated bool   `json:"authenticated"`
	UserID        int64  `json:"user_id"`
	Username      string `json:"username"`
}

// Profile is the extended identity shown in the shell. It is optional
// enrichment and its absence never affects the session.
type Profile struct {
	ID           int64  `json:"id"`
	UserID       int64  `json:"user"`
	Email        string `json:"email"`
	FullName     string `json:"full_name"`
	Bio          string `json:"bio"`
	ProfileImage string `json:"profile_image,omitempty"`
	Tel          string `json:"tel"`
}

// OwnerID makes a profile subject to the same ownership rule as content.
func (p Profile) OwnerID() int64 { return p.UserID }

// UserPage is a user's public profile with everything they published.
type UserPage struct {
	Profile   Profile
	Recipes   []Item
	Tutorials []Item
	Blogs     []Item
}

// ProfileDraft holds the editable profile fields.
type ProfileDraft struct {
	Email    string
	FullName string
	Bio      string
	Tel      string
}

// Validate performs the form-level checks done before the profile is sent.
func (d ProfileDraft) Validate() map[string]string {
	problems := map[string]string{}
	if d.Email != "" && !strings.Contains(d.Email, "@") {
		problems["email"] = "email must contain @"
	}
	if len(d.FullName) > 255 {
		problems["full_name"] = "full name must be at most 255 characters"
	}
	if len(d.Tel) > 20 {
		problems["tel"] = "phone must be at most 20 characters"
	}
	return problems
}

// DisplayName prefers the full name and falls back to the username.
func DisplayName(id Identity, p *Profile) string {
	if p != nil && p.FullName != "" {
		return p.FullName
	}
	return id.Username
}
