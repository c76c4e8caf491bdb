package auth

import (
	"github.com/google/uuid"

	"github.com/bsthardware/storefront-backend/internal/users"
	"github.com/bsthardware/storefront-backend/pkg/enums"
)

// SignupRequest accepts "name" as an alias of "username" for older clients.
type SignupRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Consent  bool   `json:"consent"`
}

// LoginRequest identifies the account by username or email. IP is filled in
// by the transport for the activity log.
type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	IP       string `json:"-"`
}

type SignupResponse struct {
	Message string         `json:"message"`
	User    *users.UserDTO `json:"user"`
}

// Identity is the public view of the logged in account.
type Identity struct {
	ID       uuid.UUID  `json:"id"`
	Username string     `json:"username"`
	Email    string     `json:"email"`
	Role     enums.Role `json:"role"`
}

type LoginResponse struct {
	Message string   `json:"message"`
	Token   string   `json:"token"`
	User    Identity `json:"user"`
}

type AdminLoginResponse struct {
	Message string   `json:"message"`
	Token   string   `json:"token"`
	Admin   Identity `json:"admin"`
}
