package domain

import "time"

type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:255;index;not null" json:"title"`
	Content   string    `gorm:"not null" json:"content"`
	Published bool      `gorm:"not null;default:true" json:"published"`
	Contact   *string   `gorm:"size:32" json:"contact,omitempty"`
	OwnerID   uint      `gorm:"index;not null" json:"owner_id"`
	Owner     *User     `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"owner,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// PostWithVotes is the read model for post listings: the post row joined
// with its aggregated vote count.
type PostWithVotes struct {
	Post
	Votes int64 `json:"votes"`
}
