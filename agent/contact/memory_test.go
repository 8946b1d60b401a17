package contact

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	contractx "github.com/tanpawarit/contact-assistant/agent/contract"
)

func strPtr(s string) *string { return &s }

func TestMemoryStoreInsertAndFind(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	store := NewMemoryStore(WithClock(func() time.Time { return fixed }))
	ctx := context.Background()

	first, err := store.Insert(ctx, NewContact{Name: strPtr("Sam Lee"), Email: strPtr("sam@x.io")})
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, fixed, first.CreatedAt)

	second, err := store.Insert(ctx, NewContact{Name: strPtr("Sam Lee")})
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.ID)

	byEmail, err := store.FindByEmail(ctx, "sam@x.io")
	require.NoError(t, err)
	assert.Equal(t, first.ID, byEmail.ID)

	byName, err := store.FindByName(ctx, "Sam Lee")
	require.NoError(t, err)
	assert.Equal(t, first.ID, byName.ID, "lowest id wins on duplicate names")

	_, err = store.FindByEmail(ctx, "nobody@x.io")
	assert.ErrorIs(t, err, contractx.ErrNotFound)
}

func TestMemoryStoreEmailUniqueness(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.Insert(ctx, NewContact{Email: strPtr("a@x.io")})
	require.NoError(t, err)
	other, err := store.Insert(ctx, NewContact{Email: strPtr("b@x.io")})
	require.NoError(t, err)

	_, err = store.Insert(ctx, NewContact{Email: strPtr("a@x.io")})
	assert.ErrorIs(t, err, contractx.ErrConflict)

	_, err = store.Update(ctx, other.ID, Patch{Email: Some("a@x.io")})
	assert.ErrorIs(t, err, contractx.ErrConflict)

	same, err := store.Update(ctx, other.ID, Patch{Email: Some("b@x.io")})
	require.NoError(t, err)
	assert.Equal(t, "b@x.io", *same.Email)
}

func TestMemoryStoreUpdatePatchSemantics(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	c, err := store.Insert(ctx, NewContact{Name: strPtr("Ana"), Phone: strPtr("555"), Notes: strPtr("met at expo")})
	require.NoError(t, err)

	updated, err := store.Update(ctx, c.ID, Patch{Phone: Null[string](), Name: Some("Ana Ruiz")})
	require.NoError(t, err)
	assert.Equal(t, "Ana Ruiz", *updated.Name)
	assert.Nil(t, updated.Phone)
	require.NotNil(t, updated.Notes)
	assert.Equal(t, "met at expo", *updated.Notes)

	_, err = store.Update(ctx, 99, Patch{Name: Some("x")})
	assert.ErrorIs(t, err, contractx.ErrNotFound)
}

func TestMemoryStoreSearchAndList(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.Insert(ctx, NewContact{Name: strPtr("Sam Lee"), Email: strPtr("sam@x.io")})
	require.NoError(t, err)
	_, err = store.Insert(ctx, NewContact{Name: strPtr("Kim"), Notes: strPtr("knows SAM from school")})
	require.NoError(t, err)
	_, err = store.Insert(ctx, NewContact{Name: strPtr("Olu")})
	require.NoError(t, err)

	found, err := store.Search(ctx, "sam")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, int64(1), found[0].ID)
	assert.Equal(t, int64(2), found[1].ID)

	listed, err := store.List(ctx, ListFilter{Query: "sam"})
	require.NoError(t, err)
	require.Len(t, listed, 1, "list does not match notes")

	all, err := store.List(ctx, ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := store.Search(ctx, "zzz")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	c, err := store.Insert(ctx, NewContact{Name: strPtr("Ana")})
	require.NoError(t, err)
	*c.Name = "mutated"

	got, err := store.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", *got.Name)
}

func TestMemoryStoreDelete(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	c, err := store.Insert(ctx, NewContact{Name: strPtr("Ana")})
	require.NoError(t, err)

	deleted, err := store.Delete(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, deleted.ID)

	_, err = store.Get(ctx, c.ID)
	assert.ErrorIs(t, err, contractx.ErrNotFound)
	_, err = store.Delete(ctx, c.ID)
	assert.ErrorIs(t, err, contractx.ErrNotFound)
}

func TestPatchUnmarshalJSON(t *testing.T) {
	t.Parallel()

	var p Patch
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Ana","phone":null}`), &p))

	assert.True(t, p.Name.Set)
	require.NotNil(t, p.Name.Value)
	assert.Equal(t, "Ana", *p.Name.Value)
	assert.True(t, p.Phone.Set)
	assert.Nil(t, p.Phone.Value)
	assert.False(t, p.Email.Set)
	assert.Equal(t, []string{"name", "phone"}, p.Columns())

	var empty Patch
	require.NoError(t, json.Unmarshal([]byte(`{}`), &empty))
	assert.True(t, empty.IsEmpty())
}

func TestNewContactHasIdentity(t *testing.T) {
	t.Parallel()

	assert.False(t, NewContact{}.HasIdentity())
	assert.False(t, NewContact{Name: strPtr("  ")}.HasIdentity())
	assert.True(t, NewContact{Email: strPtr("a@x.io")}.HasIdentity())
}
