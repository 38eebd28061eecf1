package store

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/uptrace/bun"
)

// Field limits.
const (
	MaxNameLength        = 255
	MaxDescriptionLength = 2000
)

// Collection groups documents.
type Collection struct {
	bun.BaseModel `bun:"table:collections,alias:c"`

	ID          int64     `bun:"id,pk,autoincrement" json:"id"`
	Name        string    `bun:"name,notnull" json:"name"`
	Description *string   `bun:"description" json:"description"`
	CreatedAt   time.Time `bun:"created_at,notnull" json:"createdAt"`
	UpdatedAt   time.Time `bun:"updated_at,notnull" json:"updatedAt"`
}

// Document is one markdown note. Content is raw markdown.
type Document struct {
	bun.BaseModel `bun:"table:documents,alias:d"`

	ID           int64     `bun:"id,pk,autoincrement" json:"id"`
	CollectionID int64     `bun:"collection_id,notnull" json:"collectionId"`
	Name         string    `bun:"name,notnull" json:"name"`
	Content      string    `bun:"content,notnull" json:"content"`
	CreatedAt    time.Time `bun:"created_at,notnull" json:"createdAt"`
	UpdatedAt    time.Time `bun:"updated_at,notnull" json:"updatedAt"`
}

// CollectionInput holds the writable fields of a collection.
type CollectionInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// normalize trims the fields. An empty description becomes nil.
func (in CollectionInput) normalize() CollectionInput {
	in.Name = strings.TrimSpace(in.Name)
	if in.Description != nil {
		d := strings.TrimSpace(*in.Description)
		if d == "" {
			in.Description = nil
		} else {
			in.Description = &d
		}
	}
	return in
}

// Validate implements validation.Validatable.
func (in CollectionInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.RuneLength(1, MaxNameLength)),
		validation.Field(&in.Description, validation.RuneLength(0, MaxDescriptionLength)),
	)
}

// DocumentInput holds the fields of a new document.
type DocumentInput struct {
	CollectionID int64  `json:"collectionId"`
	Name         string `json:"name"`
	Content      string `json:"content"`
}

func (in DocumentInput) normalize() DocumentInput {
	in.Name = strings.TrimSpace(in.Name)
	return in
}

// Validate implements validation.Validatable.
func (in DocumentInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.CollectionID, validation.Required, validation.Min(int64(1))),
		validation.Field(&in.Name, validation.Required, validation.RuneLength(1, MaxNameLength)),
	)
}

// DocumentUpdate holds the writable fields of an existing document.
// A document never moves between collections.
type DocumentUpdate struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

func (in DocumentUpdate) normalize() DocumentUpdate {
	in.Name = strings.TrimSpace(in.Name)
	return in
}

// Validate implements validation.Validatable.
func (in DocumentUpdate) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.RuneLength(1, MaxNameLength)),
	)
}
