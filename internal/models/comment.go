package models

import "time"

// Comment is a reply on a post.
type Comment struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Body      string    `gorm:"type:text;not null" json:"conteudo"`
	CreatedAt time.Time `json:"data_criacao"`
	PostID    int64     `gorm:"not null;index" json:"-"`
	AuthorID  int64     `gorm:"not null" json:"-"`
	Author    User      `gorm:"foreignKey:AuthorID" json:"usuario"`
}
