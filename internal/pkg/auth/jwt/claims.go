package jwt

import "github.com/golang-jwt/jwt"

// Payload defines the claims of a TrailMeet session token.
// Clients treat the signed token as an opaque bearer string.
type Payload struct {
	// StandardClaims carries Exp, Iat, Iss, and Id. Id is the session identifier
	// that the session registry can revoke on logout.
	jwt.StandardClaims `json:"standard_claims"`

	// ID is the user identifier.
	ID string `json:"id"`

	// Name is the display name at the time the token was issued.
	Name string `json:"name"`
}

// SessionID returns the revocable session identifier of the token.
func (p *Payload) SessionID() string {
	return p.StandardClaims.Id
}
