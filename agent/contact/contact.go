package contact

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/uptrace/bun"
)

type Contact struct {
	bun.BaseModel `bun:"table:contacts,alias:c" json:"-"`

	ID              int64      `bun:"id,pk,autoincrement" json:"id"`
	Name            *string    `bun:"name" json:"name"`
	Email           *string    `bun:"email,unique" json:"email"`
	Phone           *string    `bun:"phone" json:"phone"`
	Notes           *string    `bun:"notes" json:"notes"`
	LastContactedAt *time.Time `bun:"last_contacted_at" json:"lastContactedAt"`
	CreatedAt       time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
}

// NewContact holds the fields accepted on creation.
type NewContact struct {
	Name            *string    `json:"name"`
	Email           *string    `json:"email"`
	Phone           *string    `json:"phone"`
	Notes           *string    `json:"notes"`
	LastContactedAt *time.Time `json:"lastContactedAt"`
}

// HasIdentity reports whether at least one of name or email is non-empty.
func (n NewContact) HasIdentity() bool {
	return nonEmpty(n.Name) || nonEmpty(n.Email)
}

// Optional distinguishes an absent field from an explicit null and a value.
type Optional[T any] struct {
	Set   bool
	Value *T
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: &v}
}

func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// Patch is a partial update. Only fields with Set=true are written.
type Patch struct {
	Name            Optional[string]    `json:"name"`
	Email           Optional[string]    `json:"email"`
	Phone           Optional[string]    `json:"phone"`
	Notes           Optional[string]    `json:"notes"`
	LastContactedAt Optional[time.Time] `json:"lastContactedAt"`
}

func (p Patch) IsEmpty() bool {
	return len(p.Columns()) == 0
}

// Columns returns the column names touched by the patch.
func (p Patch) Columns() []string {
	var cols []string
	if p.Name.Set {
		cols = append(cols, "name")
	}
	if p.Email.Set {
		cols = append(cols, "email")
	}
	if p.Phone.Set {
		cols = append(cols, "phone")
	}
	if p.Notes.Set {
		cols = append(cols, "notes")
	}
	if p.LastContactedAt.Set {
		cols = append(cols, "last_contacted_at")
	}
	return cols
}

// Apply writes the set fields of p onto c.
func (p Patch) Apply(c *Contact) {
	if p.Name.Set {
		c.Name = copyPtr(p.Name.Value)
	}
	if p.Email.Set {
		c.Email = copyPtr(p.Email.Value)
	}
	if p.Phone.Set {
		c.Phone = copyPtr(p.Phone.Value)
	}
	if p.Notes.Set {
		c.Notes = copyPtr(p.Notes.Value)
	}
	if p.LastContactedAt.Set {
		c.LastContactedAt = copyPtr(p.LastContactedAt.Value)
	}
}

// ListFilter narrows List. Query matches name or email.
type ListFilter struct {
	Query string
}

func nonEmpty(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}

func copyPtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func (c Contact) clone() Contact {
	out := c
	out.Name = copyPtr(c.Name)
	out.Email = copyPtr(c.Email)
	out.Phone = copyPtr(c.Phone)
	out.Notes = copyPtr(c.Notes)
	out.LastContactedAt = copyPtr(c.LastContactedAt)
	return out
}
