// Package model defines core data structures and types for the blog content store.
package model

import (
	"strconv"
	"strings"
)

type PostID int64

func (id PostID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

func ParsePostID(s string) (PostID, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, err
	}
	return PostID(id), nil
}

// DateLayout is the calendar date format stored in Post.Date.
const DateLayout = "2006-01-02"

// Post is one persisted blog entry. The JSON field names are the on-disk format.
type Post struct {
	ID PostID `json:"id"`

	Title   string `json:"title"`
	Content string `json:"content"`

	// Either a remote URL or a data URL carrying the uploaded media.
	Image string `json:"image"`

	// Fixed at creation.
	Date   string `json:"date"`
	Author string `json:"author"`
}

// Draft is the unsaved edit buffer of the editor.
type Draft struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Image   string `json:"image"`
}

// Complete reports whether the draft carries both a title and content.
func (d Draft) Complete() bool {
	return d.Title != "" && d.Content != ""
}

func DraftOf(p Post) Draft {
	return Draft{
		Title:   p.Title,
		Content: p.Content,
		Image:   p.Image,
	}
}
