package entity

import "strings"

// ImageLinks holds the cover URLs the book-data provider exposes.
type ImageLinks struct {
	SmallThumbnail string `json:"smallThumbnail,omitempty"`
	Thumbnail      string `json:"thumbnail,omitempty"`
}

// Book is a read-only view of a provider book as relayed by the backend.
type Book struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Subtitle      string     `json:"subtitle,omitempty"`
	Authors       []string   `json:"authors,omitempty"`
	Description   string     `json:"description,omitempty"`
	Publisher     string     `json:"publisher,omitempty"`
	PublishedDate string     `json:"publishedDate,omitempty"`
	PageCount     int        `json:"pageCount,omitempty"`
	Language      string     `json:"language,omitempty"`
	Categories    []string   `json:"categories,omitempty"`
	PreviewLink   string     `json:"previewLink,omitempty"`
	InfoLink      string     `json:"infoLink,omitempty"`
	ImageLinks    ImageLinks `json:"imageLinks"`
}

// Thumbnail returns the best cover URL available, or "" when there is none.
func (b Book) Thumbnail() string {
	if b.ImageLinks.Thumbnail != "" {
		return b.ImageLinks.Thumbnail
	}
	return b.ImageLinks.SmallThumbnail
}

// PublishedYear returns the year part of PublishedDate ("2006-01-02", "2006-01" or "2006").
func (b Book) PublishedYear() string {
	year, _, _ := strings.Cut(b.PublishedDate, "-")
	return year
}
