package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID        uuid.UUID  `json:"id"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	Plan      string     `json:"plan"`
	IsBanned  bool       `json:"is_banned"`
	BannedAt  *time.Time `json:"banned_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

const (
	RoleUser   = "user"
	RoleAdmin  = "admin"
	RoleSystem = "system"
)

// Actor - кто выполняет запрос (для аудита)
type Actor struct {
	UserID    uuid.UUID
	Role      string
	IP        string
	UserAgent string
}
