package contacts

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/feedback-api/pkg/logging"
)

func TestResolve_CreatesNewContact(t *testing.T) {
	store := NewMemoryStore()
	resolver := NewResolver(logging.Default())

	c, err := resolver.Resolve(context.Background(), store, "  Ivan Petrov ", "ivan@example.com", "+79161234567")
	require.NoError(t, err)

	assert.NotZero(t, c.ID)
	assert.Equal(t, "Ivan Petrov", c.Name)
	assert.Equal(t, "ivan@example.com", c.Email)
	assert.Equal(t, "+79161234567", c.Phone)
	assert.Equal(t, 1, store.Len())
}

func TestResolve_RepeatContactOverwritesName(t *testing.T) {
	store := NewMemoryStore()
	resolver := NewResolver(nil)
	ctx := context.Background()

	first, err := resolver.Resolve(ctx, store, "Ivan Petrov", "ivan@example.com", "+79161234567")
	require.NoError(t, err)
	second, err := resolver.Resolve(ctx, store, "I. Petrov", "ivan@example.com", "+79161234567")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "I. Petrov", second.Name)
	assert.Equal(t, 1, store.Len())

	stored, ok := store.Get(first.ID)
	require.True(t, ok)
	assert.Equal(t, "I. Petrov", stored.Name)
	assert.Equal(t, "ivan@example.com", stored.Email)
	assert.Equal(t, "+79161234567", stored.Phone)
}

func TestResolve_DistinctPairsStayDistinct(t *testing.T) {
	store := NewMemoryStore()
	resolver := NewResolver(nil)
	ctx := context.Background()

	tests := []struct {
		email string
		phone string
	}{
		{"ivan@example.com", "+79161234567"},
		{"ivan@example.com", "+79161234568"},
		{"other@example.com", "+79161234567"},
	}
	seen := map[int64]bool{}
	for _, tt := range tests {
		c, err := resolver.Resolve(ctx, store, "Ivan", tt.email, tt.phone)
		require.NoError(t, err)
		assert.False(t, seen[c.ID], "contact id %d reused for %s/%s", c.ID, tt.email, tt.phone)
		seen[c.ID] = true
	}
	assert.Equal(t, 3, store.Len())
}

// racingStore simulates another session inserting the same pair between the
// lookup and the insert.
type racingStore struct {
	*MemoryStore
	once sync.Once
}

func (s *racingStore) Insert(ctx context.Context, c *Contact) error {
	s.once.Do(func() {
		_ = s.MemoryStore.Insert(ctx, &Contact{Name: "Winner", Email: c.Email, Phone: c.Phone})
	})
	return s.MemoryStore.Insert(ctx, c)
}

func TestResolve_ConflictTriggersReRead(t *testing.T) {
	store := &racingStore{MemoryStore: NewMemoryStore()}
	resolver := NewResolver(nil)

	c, err := resolver.Resolve(context.Background(), store, "Loser", "ivan@example.com", "+79161234567")
	require.NoError(t, err)

	assert.Equal(t, int64(1), c.ID)
	assert.Equal(t, "Loser", c.Name)
	assert.Equal(t, 1, store.Len())
}

func TestResolve_ConcurrentSamePairConvergesToOneRow(t *testing.T) {
	store := NewMemoryStore()
	resolver := NewResolver(nil)

	const workers = 16
	ids := make([]int64, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := resolver.Resolve(context.Background(), store, "Ivan", "ivan@example.com", "+79161234567")
			if err != nil {
				t.Errorf("resolve: %v", err)
				return
			}
			ids[i] = c.ID
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, store.Len())
	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
}

type failingStore struct {
	findErr   error
	insertErr error
	updateErr error
	existing  *Contact
}

func (f *failingStore) FindByEmailPhone(context.Context, string, string) (*Contact, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	if f.existing != nil {
		c := *f.existing
		return &c, nil
	}
	return nil, ErrNotFound
}

func (f *failingStore) Insert(context.Context, *Contact) error { return f.insertErr }

func (f *failingStore) UpdateName(context.Context, int64, string) error { return f.updateErr }

func TestResolve_PropagatesStoreErrors(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name  string
		store *failingStore
	}{
		{"lookup failure", &failingStore{findErr: boom}},
		{"insert failure", &failingStore{insertErr: boom}},
		{"update failure", &failingStore{updateErr: boom, existing: &Contact{ID: 3, Name: "Old"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewResolver(nil).Resolve(context.Background(), tt.store, "New", "a@b.c", "+79161234567")
			require.Error(t, err)
			assert.ErrorIs(t, err, boom)
		})
	}
}

func TestResolve_DuplicateWithoutRowIsAnError(t *testing.T) {
	store := &failingStore{insertErr: ErrDuplicate}
	_, err := NewResolver(nil).Resolve(context.Background(), store, "New", "a@b.c", "+79161234567")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_SnapshotRestore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Insert(ctx, &Contact{Name: "Keep", Email: "k@e.com", Phone: "+70000000001"}))

	restore := store.Snapshot()
	require.NoError(t, store.Insert(ctx, &Contact{Name: "Drop", Email: "d@e.com", Phone: "+70000000002"}))
	require.NoError(t, store.UpdateName(ctx, 1, "Changed"))
	restore()

	assert.Equal(t, 1, store.Len())
	c, ok := store.Get(1)
	require.True(t, ok)
	assert.Equal(t, "Keep", c.Name)
	_, err := store.FindByEmailPhone(ctx, "d@e.com", "+70000000002")
	assert.ErrorIs(t, err, ErrNotFound)

	next := &Contact{Name: "Next", Email: "n@e.com", Phone: "+70000000003"}
	require.NoError(t, store.Insert(ctx, next))
	assert.Equal(t, int64(2), next.ID)
}

func TestMemoryStore_Delete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	c := &Contact{Name: "A", Email: "a@e.com", Phone: "+70000000001"}
	require.NoError(t, store.Insert(ctx, c))

	assert.True(t, store.Delete(c.ID))
	assert.False(t, store.Delete(c.ID))
	require.NoError(t, store.Insert(ctx, &Contact{Name: "A2", Email: "a@e.com", Phone: "+70000000001"}))
}
