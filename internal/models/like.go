package models

import "time"

// Like records that a user liked a post.
// The combination of UserID and PostID must be unique.
type Like struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UserID    int64     `gorm:"not null;uniqueIndex:idx_like_user_post" json:"-"`
	PostID    int64     `gorm:"not null;uniqueIndex:idx_like_user_post" json:"-"`
	CreatedAt time.Time `json:"-"`

	User User `gorm:"foreignKey:UserID" json:"usuario"`
	Post Post `gorm:"foreignKey:PostID" json:"postagem"`
}
