package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/bsthardware/storefront-backend/pkg/db/models"
)

// UserDTO is a customer as the admin panel and signup response show it.
// The password hash never leaves the package.
type UserDTO struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateUserDTO is a signup that already passed validation and hashing.
type CreateUserDTO struct {
	Username     string
	Email        string
	PasswordHash string
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	dto := UserDTO{ID: u.ID, Username: u.Username, Email: u.Email, CreatedAt: u.CreatedAt}
	return &dto
}

func (c CreateUserDTO) ToModel() *models.User {
	return &models.User{Username: c.Username, Email: c.Email, PasswordHash: c.PasswordHash}
}
