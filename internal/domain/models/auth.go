package models

import "github.com/golang-jwt/jwt/v5"

// Claims is the JWT payload carried in the auth cookie.
// Tokens issued by the account service put the user id in "uid"; tokens from an
// external identity provider use the standard "sub" claim instead.
type Claims struct {
	jwt.RegisteredClaims
	UID   string `json:"uid,omitempty"`
	Email string `json:"email,omitempty"`
}

// GetUserID returns the caller's user id.
func (c *Claims) GetUserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.Subject
}
