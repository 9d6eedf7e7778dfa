package transfer

import "github.com/golang-jwt/jwt/v5"

// CustomClaims is the session token shape minted by the external identity
// service. UserID is the authenticated user's uuid.
type CustomClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}
