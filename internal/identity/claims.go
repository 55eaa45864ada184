package identity

import (
	"github.com/golang-jwt/jwt/v4"
)

// Claims is the identity claim set carried by an access token.
//
// Owner and Name are the only fields the decision pipeline trusts: the
// identity provider never changes them when a user updates their profile, so
// a valid access token always maps to the same owner/name pair. Everything
// else is informational and surfaces only in diagnostic logging.
type Claims struct {
	Owner string `json:"owner"`
	Name  string `json:"name"`

	ID          string `json:"id"`
	Type        string `json:"type"`
	DisplayName string `json:"displayName"`
	Avatar      string `json:"avatar"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Location    string `json:"location"`
	Affiliation string `json:"affiliation"`
	Title       string `json:"title"`
	Language    string `json:"language"`

	IsOnline    bool `json:"isOnline"`
	IsAdmin     bool `json:"isAdmin"`
	IsForbidden bool `json:"isForbidden"`

	SignupApplication string `json:"signupApplication"`

	jwt.RegisteredClaims
}

// Subject returns the stable policy subject for these claims, always the
// string "owner/name".
func (c *Claims) Subject() string {
	return c.Owner + "/" + c.Name
}
