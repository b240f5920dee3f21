package domain

import "time"

type User struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Email         string         `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash  string         `gorm:"size:128;not null" json:"-"`
	CreatedAt     time.Time      `json:"created_at"`
	RefreshTokens []RefreshToken `gorm:"foreignKey:UserID" json:"-"`
	Posts         []Post         `gorm:"foreignKey:OwnerID" json:"-"`
}
