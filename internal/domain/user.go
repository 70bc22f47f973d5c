package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is the account aggregate. PasswordHash and RefreshToken are
// never serialized; RefreshToken holds the single currently valid
// refresh token for the account ("" when logged out).
type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Username     string    `json:"username" gorm:"uniqueIndex;not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	FullName     string    `json:"fullName" gorm:"not null"`
	Avatar       string    `json:"avatar" gorm:"not null"`
	CoverImage   string    `json:"coverImage"`
	PasswordHash string    `json:"-" gorm:"not null"`
	RefreshToken string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// MediaField selects which image column a media replacement targets.
type MediaField string

const (
	MediaFieldAvatar     MediaField = "avatar"
	MediaFieldCoverImage MediaField = "cover_image"
)
