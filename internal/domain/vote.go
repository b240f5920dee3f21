package domain

type Vote struct {
	PostID uint  `gorm:"primaryKey;autoIncrement:false" json:"post_id"`
	UserID uint  `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	Post   *Post `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	User   *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}
