package domain

import "time"

// Book is one catalog entry. The (Title, Author) pair is unique across the
// catalog; the ID is assigned by the store and never changes.
type Book struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Year      int       `json:"year,omitempty"`
	Genre     string    `json:"genre,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookPatch carries a partial update. Zero values mean "not supplied":
// only non-empty strings and a non-zero year overwrite stored fields, so a
// caller cannot clear a field by sending an empty value. That quirk is part
// of the API contract.
type BookPatch struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	Year   int    `json:"year"`
	Genre  string `json:"genre"`
}

// BookContext is the optional book snapshot attached to a chat message.
type BookContext struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	Year   int    `json:"year"`
	Genre  string `json:"genre"`
}

// ChatRequest is one inbound chat exchange. Nothing about it is persisted.
type ChatRequest struct {
	Message string       `json:"message"`
	Book    *BookContext `json:"book,omitempty"`
}

// ChatResponse is the normalized reply returned to the client.
type ChatResponse struct {
	Response string `json:"response"`
}
