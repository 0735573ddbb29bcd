package models

import "time"

// User is a service account created through the external identity
// provider. The provider tokens are stored encrypted; plaintext values
// exist only inside a request.
type User struct {
	UserID uint   `gorm:"primaryKey" json:"userId"`
	Email  string `gorm:"uniqueIndex;not null" json:"email"`
	Name   string `gorm:"not null" json:"name"`

	// NaverID is the provider's stable identifier for this user.
	NaverID string `gorm:"index" json:"-"`
	// NaverAccessToken is the encrypted provider access token. Empty
	// when the user has never linked the provider.
	NaverAccessToken string `gorm:"type:text" json:"-"`
	// NaverRefreshToken is the encrypted provider refresh token. The
	// provider may omit a new one on refresh, in which case the stored
	// value is kept.
	NaverRefreshToken string `gorm:"type:text" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"-"`
}
