package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/bsthardware/storefront-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	ID   uuid.UUID
	Role enums.Role
	JTI  string
}

// AccessTokenClaims represents the typed JWT issued to clients. The id is a
// user id for role "user" and an admin id for role "admin".
type AccessTokenClaims struct {
	ID   uuid.UUID  `json:"id"`
	Role enums.Role `json:"role"`
	jwt.RegisteredClaims
}

// Validate runs after the registered claims pass; jwt.Parser calls it.
func (c AccessTokenClaims) Validate() error {
	if c.ID == uuid.Nil {
		return errors.New("token missing subject id")
	}
	if !c.Role.IsValid() {
		return fmt.Errorf("token carries invalid role %q", c.Role)
	}
	return nil
}

// TokenID returns the jti used as the session key.
func (c *AccessTokenClaims) TokenID() string {
	if c == nil {
		return ""
	}
	return c.RegisteredClaims.ID
}
