package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"pingme/internal/models"

	"gopkg.in/yaml.v3"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

type userOutput struct {
	ID       int64  `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Email    string `json:"email,omitempty" yaml:"email,omitempty"`
	Bio      string `json:"bio,omitempty" yaml:"bio,omitempty"`
	PhotoURL string `json:"photo_url,omitempty" yaml:"photo_url,omitempty"`
}

type postOutput struct {
	ID        int64     `json:"id" yaml:"id"`
	Title     string    `json:"title" yaml:"title"`
	Body      string    `json:"body" yaml:"body"`
	Tags      []string  `json:"tags,omitempty" yaml:"tags,omitempty"`
	PhotoURL  string    `json:"photo_url,omitempty" yaml:"photo_url,omitempty"`
	Author    string    `json:"author" yaml:"author"`
	AuthorID  int64     `json:"author_id" yaml:"author_id"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	Likes     int       `json:"likes" yaml:"likes"`
	Liked     bool      `json:"liked" yaml:"liked"`
}

type commentOutput struct {
	ID        int64     `json:"id" yaml:"id"`
	Body      string    `json:"body" yaml:"body"`
	Author    string    `json:"author" yaml:"author"`
	AuthorID  int64     `json:"author_id" yaml:"author_id"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

type postDetailOutput struct {
	Post     postOutput      `json:"post" yaml:"post"`
	Own      bool            `json:"own" yaml:"own"`
	Comments []commentOutput `json:"comments" yaml:"comments"`
}

type profileOutput struct {
	User  userOutput   `json:"user" yaml:"user"`
	Own   bool         `json:"own" yaml:"own"`
	Posts []postOutput `json:"posts" yaml:"posts"`
}

type messageOutput struct {
	Message string `json:"message" yaml:"message"`
	ID      int64  `json:"id,omitempty" yaml:"id,omitempty"`
	URL     string `json:"url,omitempty" yaml:"url,omitempty"`
	Liked   *bool  `json:"liked,omitempty" yaml:"liked,omitempty"`
}

func toUser(u models.User) userOutput {
	return userOutput{ID: u.ID, Name: u.Name, Email: u.Email, Bio: u.Bio, PhotoURL: u.ProfilePhotoURL}
}

func toPost(p models.Post, liked bool) postOutput {
	return postOutput{
		ID:        p.ID,
		Title:     p.Title,
		Body:      p.Body,
		Tags:      p.TagList(),
		PhotoURL:  p.PhotoURL,
		Author:    p.Author.Name,
		AuthorID:  p.AuthorID,
		CreatedAt: p.CreatedAt,
		Likes:     p.LikeCount,
		Liked:     liked,
	}
}

func toComment(c models.Comment) commentOutput {
	return commentOutput{ID: c.ID, Body: c.Body, Author: c.Author.Name, AuthorID: c.AuthorID, CreatedAt: c.CreatedAt}
}

// render writes v as JSON or YAML, or calls text for the default format.
func (c *CLI) render(v any, text func(w io.Writer) error) error {
	switch c.format {
	case formatJSON:
		enc := json.NewEncoder(c.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(c.Stdout)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return text(c.Stdout)
	}
}

func (c *CLI) message(msg string) error {
	return c.render(messageOutput{Message: msg}, func(w io.Writer) error {
		_, err := fmt.Fprintln(w, msg)
		return err
	})
}

func writePostTable(w io.Writer, posts []postOutput) error {
	if len(posts) == 0 {
		_, err := fmt.Fprintln(w, "no posts")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR\tDATE\tLIKES")
	for _, p := range posts {
		likes := fmt.Sprintf("%d", p.Likes)
		if p.Liked {
			likes += " *"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", p.ID, truncate(p.Title, 40), p.Author, p.CreatedAt.Format("2006-01-02 15:04"), likes)
	}
	return tw.Flush()
}

func writePost(w io.Writer, p postOutput) {
	fmt.Fprintf(w, "#%d %s\n", p.ID, p.Title)
	fmt.Fprintf(w, "by %s on %s, %d likes", p.Author, p.CreatedAt.Format("2006-01-02 15:04"), p.Likes)
	if p.Liked {
		fmt.Fprint(w, " (liked)")
	}
	fmt.Fprintln(w)
	if len(p.Tags) > 0 {
		fmt.Fprintf(w, "tags: %s\n", strings.Join(p.Tags, ", "))
	}
	if p.PhotoURL != "" {
		fmt.Fprintf(w, "photo: %s\n", p.PhotoURL)
	}
	fmt.Fprintf(w, "\n%s\n", p.Body)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
