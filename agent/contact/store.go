package contact

import (
	"context"
)

// Store is the persistence contract used by the contact tools and the CRUD API.
// Lookups that find nothing return an error wrapping contract.ErrNotFound and
// uniqueness violations wrap contract.ErrConflict.
type Store interface {
	FindByEmail(ctx context.Context, email string) (*Contact, error)
	FindByName(ctx context.Context, name string) (*Contact, error)
	Insert(ctx context.Context, in NewContact) (*Contact, error)
	Update(ctx context.Context, id int64, patch Patch) (*Contact, error)
	// Search matches query as a case-insensitive substring of name, email or notes.
	Search(ctx context.Context, query string) ([]Contact, error)

	Get(ctx context.Context, id int64) (*Contact, error)
	List(ctx context.Context, filter ListFilter) ([]Contact, error)
	Delete(ctx context.Context, id int64) (*Contact, error)
}
