package entity

import (
	"time"

	"github.com/google/uuid"
)

// User represents an account for data transfer between layers.
// Google tokens are stored encrypted; the repository hands them out as-is
// and callers decrypt with common.TokenCipher.
type User struct {
	ID                 uuid.UUID `json:"id"`
	Email              string    `json:"email"`
	GoogleAccessToken  string    `json:"-"`
	GoogleRefreshToken string    `json:"-"`
	ExtractionMode     string    `json:"extraction_mode"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}
