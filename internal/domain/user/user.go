package user

import (
	"errors"
	"time"
)

// ErrNotFound is returned by storage backends when an id lookup misses
// on a mutating operation.
var ErrNotFound = errors.New("user not found")

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Response is the only user shape that crosses the service boundary.
// Fields other than ID carry omit tags so a field-selected lookup can
// leave unselected fields off the wire.
type Response struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

func (u User) ToResponse() Response {
	return Response{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type CreateInput struct {
	Name     string `json:"name" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// UpdateInput fields are pointers: nil leaves the attribute untouched.
type UpdateInput struct {
	Name  *string `json:"name" validate:"omitempty,min=3"`
	Email *string `json:"email" validate:"omitempty,email"`
}

// Query drives FindAll: substring search over name/email, sort by an
// allow-listed field, then the [Skip, Skip+Take) page.
type Query struct {
	Skip     int
	Take     int
	SortBy   string
	SortDesc bool
	Search   string
}

const DefaultTake = 10

// Normalized returns a copy with the reference defaults applied.
func (q Query) Normalized() Query {
	if q.Skip < 0 {
		q.Skip = 0
	}
	if q.Take <= 0 {
		q.Take = DefaultTake
	}
	return q
}

// Field names a User attribute that may be sorted on or selected.
// Runtime strings are checked against the fixed sets below instead of
// reflective field access.
type Field string

const (
	FieldID        Field = "id"
	FieldName      Field = "name"
	FieldEmail     Field = "email"
	FieldCreatedAt Field = "createdAt"
	FieldUpdatedAt Field = "updatedAt"
)

var knownFields = map[Field]struct{}{
	FieldID:        {},
	FieldName:      {},
	FieldEmail:     {},
	FieldCreatedAt: {},
	FieldUpdatedAt: {},
}

func IsSortable(name string) bool {
	_, ok := knownFields[Field(name)]
	return ok
}

// IsSelectable shares the sortable set: both enumerate plain User attributes.
func IsSelectable(name string) bool {
	return IsSortable(name)
}
