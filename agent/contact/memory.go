package contact

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	contractx "github.com/tanpawarit/contact-assistant/agent/contract"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps contacts in process memory. It enforces the same email
// uniqueness as the database schema.
type MemoryStore struct {
	mu       sync.RWMutex
	contacts map[int64]Contact
	nextID   int64
	now      func() time.Time
}

type MemoryStoreOption func(*MemoryStore)

func WithClock(now func() time.Time) MemoryStoreOption {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	s := &MemoryStore{
		contacts: make(map[int64]Contact),
		nextID:   1,
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *MemoryStore) FindByEmail(ctx context.Context, email string) (*Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range s.sortedIDs() {
		c := s.contacts[id]
		if c.Email != nil && *c.Email == email {
			out := c.clone()
			return &out, nil
		}
	}
	return nil, fmt.Errorf("%w: contact with email %q", contractx.ErrNotFound, email)
}

func (s *MemoryStore) FindByName(ctx context.Context, name string) (*Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range s.sortedIDs() {
		c := s.contacts[id]
		if c.Name != nil && *c.Name == name {
			out := c.clone()
			return &out, nil
		}
	}
	return nil, fmt.Errorf("%w: contact with name %q", contractx.ErrNotFound, name)
}

func (s *MemoryStore) Insert(ctx context.Context, in NewContact) (*Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if in.Email != nil {
		if err := s.checkEmailFree(*in.Email, 0); err != nil {
			return nil, err
		}
	}

	c := Contact{
		ID:              s.nextID,
		Name:            copyPtr(in.Name),
		Email:           copyPtr(in.Email),
		Phone:           copyPtr(in.Phone),
		Notes:           copyPtr(in.Notes),
		LastContactedAt: copyPtr(in.LastContactedAt),
		CreatedAt:       s.now().UTC(),
	}
	s.nextID++
	s.contacts[c.ID] = c

	out := c.clone()
	return &out, nil
}

func (s *MemoryStore) Update(ctx context.Context, id int64, patch Patch) (*Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.contacts[id]
	if !ok {
		return nil, fmt.Errorf("%w: contact id=%d", contractx.ErrNotFound, id)
	}
	if patch.Email.Set && patch.Email.Value != nil {
		if err := s.checkEmailFree(*patch.Email.Value, id); err != nil {
			return nil, err
		}
	}

	patch.Apply(&c)
	s.contacts[id] = c

	out := c.clone()
	return &out, nil
}

func (s *MemoryStore) Search(ctx context.Context, query string) ([]Contact, error) {
	return s.filter(query, true), nil
}

func (s *MemoryStore) Get(ctx context.Context, id int64) (*Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.contacts[id]
	if !ok {
		return nil, fmt.Errorf("%w: contact id=%d", contractx.ErrNotFound, id)
	}
	out := c.clone()
	return &out, nil
}

func (s *MemoryStore) List(ctx context.Context, filter ListFilter) ([]Contact, error) {
	return s.filter(filter.Query, false), nil
}

func (s *MemoryStore) Delete(ctx context.Context, id int64) (*Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.contacts[id]
	if !ok {
		return nil, fmt.Errorf("%w: contact id=%d", contractx.ErrNotFound, id)
	}
	delete(s.contacts, id)
	return &c, nil
}

func (s *MemoryStore) filter(query string, withNotes bool) []Contact {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(query)
	out := make([]Contact, 0)
	for _, id := range s.sortedIDs() {
		c := s.contacts[id]
		if needle == "" || containsFold(c.Name, needle) || containsFold(c.Email, needle) ||
			(withNotes && containsFold(c.Notes, needle)) {
			out = append(out, c.clone())
		}
	}
	return out
}

func (s *MemoryStore) checkEmailFree(email string, selfID int64) error {
	for id, c := range s.contacts {
		if id != selfID && c.Email != nil && *c.Email == email {
			return fmt.Errorf("%w: a contact with email %q already exists", contractx.ErrConflict, email)
		}
	}
	return nil
}

func (s *MemoryStore) sortedIDs() []int64 {
	ids := make([]int64, 0, len(s.contacts))
	for id := range s.contacts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func containsFold(field *string, lowerNeedle string) bool {
	if field == nil {
		return false
	}
	return strings.Contains(strings.ToLower(*field), lowerNeedle)
}
