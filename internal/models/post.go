package models

import (
	"sort"
	"strings"
	"time"
)

// Post is a feed entry. Author is an embedded snapshot of the user at
// creation time; later profile edits do not rewrite it.
type Post struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"not null" json:"titulo"`
	Body      string    `gorm:"type:text;not null" json:"conteudo"`
	Tags      string    `json:"tags"`
	PhotoURL  string    `json:"foto,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"data_criacao"`
	AuthorID  int64     `gorm:"not null;index" json:"-"`
	Author    User      `gorm:"foreignKey:AuthorID" json:"usuario"`
	// LikeCount is not persisted; computed at query time by the API server.
	LikeCount int `gorm:"-" json:"likesCount"`
}

// PostInput is the create/edit form of a post.
type PostInput struct {
	Title    string `json:"titulo"`
	Body     string `json:"conteudo"`
	Tags     string `json:"tags"`
	PhotoURL string `json:"foto"`
}

// PostPatch carries the mutable fields of a post. Author and CreatedAt are
// never patched.
type PostPatch struct {
	Title    *string
	Body     *string
	Tags     *string
	PhotoURL *string
}

// Patch converts a full form into a patch that overwrites every mutable field.
func (in PostInput) Patch() PostPatch {
	return PostPatch{Title: &in.Title, Body: &in.Body, Tags: &in.Tags, PhotoURL: &in.PhotoURL}
}

// Apply merges the patch into p.
func (pp PostPatch) Apply(p *Post) {
	if pp.Title != nil {
		p.Title = *pp.Title
	}
	if pp.Body != nil {
		p.Body = *pp.Body
	}
	if pp.Tags != nil {
		p.Tags = *pp.Tags
	}
	if pp.PhotoURL != nil {
		p.PhotoURL = *pp.PhotoURL
	}
}

// TagList splits the comma-separated tags, dropping blanks.
func (p *Post) TagList() []string {
	var tags []string
	for _, t := range strings.Split(p.Tags, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// Matches reports whether term occurs in the title, body or tags, ignoring case.
func (p *Post) Matches(term string) bool {
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(p.Title), term) ||
		strings.Contains(strings.ToLower(p.Body), term) ||
		strings.Contains(strings.ToLower(p.Tags), term)
}

// SortNewestFirst orders posts by CreatedAt descending, in place.
func SortNewestFirst(posts []Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
}
