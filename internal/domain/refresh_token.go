package domain

import "time"

// RefreshToken is one issued refresh credential. Rotation and logout flip
// IsActive instead of deleting the row so the lineage stays auditable.
type RefreshToken struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Token     string    `gorm:"size:64;uniqueIndex;not null" json:"-"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	ExpiresAt time.Time `gorm:"index;not null" json:"expires_at"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// Usable reports whether the token could still pass validation at t.
func (rt *RefreshToken) Usable(t time.Time) bool {
	return rt.IsActive && t.Before(rt.ExpiresAt)
}
