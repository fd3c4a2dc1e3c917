package jwt

import "github.com/golang-jwt/jwt/v5"

// MemberClaims is the token payload for a signed-in member. Tier rides along
// so vote weighting never needs a membership lookup on the hot path.
type MemberClaims struct {
	jwt.RegisteredClaims
	Tier string `json:"tier"`
}
