package domain

import "time"

// Blog es un post con su documento rich-text serializado en Content.
type Blog struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	Image     string    `json:"image,omitempty"`
	UserID    string    `json:"userId,omitempty"`
	CreatedAt time.Time `json:"date"`
}
