package models

import "time"

// ContentType selects which optional fields and filter rules apply.
type ContentType string

const (
	ContentBlog  ContentType = "blog"
	ContentPress ContentType = "press"
)

// Valid reports whether t is a known content type.
func (t ContentType) Valid() bool {
	return t == ContentBlog || t == ContentPress
}

// BlogPost is the raw CMS blog document.
type BlogPost struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	Slug        Slug      `json:"slug"`
	Excerpt     string    `json:"excerpt"`
	PublishedAt string    `json:"publishedAt"`
	Categories  []string  `json:"categories"`
	Category    string    `json:"category"`
	Author      string    `json:"author"`
	ReadTime    string    `json:"readTime"`
	MainImage   *ImageRef `json:"mainImage"`
	ImageURL    string    `json:"imageUrl"`
	Body        []Block   `json:"body"`
}

// PressRelease is the raw CMS press document.
type PressRelease struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	Slug        Slug      `json:"slug"`
	Excerpt     string    `json:"excerpt"`
	PublishedAt string    `json:"publishedAt"`
	ReleaseDate string    `json:"releaseDate"`
	Category    string    `json:"category"`
	Source      string    `json:"source"`
	SourceURL   string    `json:"sourceUrl"`
	Location    string    `json:"location"`
	Featured    bool      `json:"featured"`
	Image       *ImageRef `json:"image"`
	ImageURL    string    `json:"imageUrl"`
	Body        []Block   `json:"body"`
}

// Block is one portable-text block. Only "block" types carry text.
type Block struct {
	Type     string `json:"_type"`
	Key      string `json:"_key"`
	Style    string `json:"style"`
	Children []Span `json:"children"`
}

type Span struct {
	Type  string   `json:"_type"`
	Text  string   `json:"text"`
	Marks []string `json:"marks"`
}

// ContentItem is the card model for blog posts and press releases.
type ContentItem struct {
	ID          string      `json:"id"`
	Type        ContentType `json:"type"`
	Title       string      `json:"title"`
	Slug        string      `json:"slug"`
	Excerpt     string      `json:"excerpt"`
	Date        string      `json:"date"`
	PublishedAt time.Time   `json:"publishedAt"`
	Category    string      `json:"category"`
	Categories  []string    `json:"categories"`
	Image       string      `json:"image"`

	// blog
	Author   string `json:"author,omitempty"`
	ReadTime string `json:"readTime,omitempty"`

	// press
	Source    string `json:"source,omitempty"`
	SourceURL string `json:"sourceUrl,omitempty"`
	Location  string `json:"location,omitempty"`
	Featured  bool   `json:"featured,omitempty"`
}
