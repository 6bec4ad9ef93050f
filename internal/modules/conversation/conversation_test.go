// README: Conversation lifecycle, locking and persistence tests.
package conversation

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"samanainn/internal/chat"
	"samanainn/internal/infra"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusActive, StatusClosed, true},
		{StatusClosed, StatusActive, false},
		{StatusClosed, StatusClosed, false},
		{StatusActive, StatusActive, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestService_ResumeCreatesWhenUnknown(t *testing.T) {
	svc := NewService(NewMemoryStore(), nil, nil, nil)
	ctx := context.Background()

	c, created, err := svc.Resume(ctx, "", "sess-1")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "sess-1", c.SessionID)
	assert.Equal(t, StatusActive, c.Status)
	assert.Equal(t, chat.StageInitial, c.Context.ProcessingStage)

	again, created, err := svc.Resume(ctx, c.ID, "sess-1")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, c.ID, again.ID)

	fresh, created, err := svc.Resume(ctx, "does-not-exist", "sess-1")
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, "does-not-exist", fresh.ID)
}

func TestService_ResumeAfterCloseStartsNewConversation(t *testing.T) {
	svc := NewService(NewMemoryStore(), nil, nil, nil)
	ctx := context.Background()

	c, err := svc.Start(ctx, "sess-close", nil)
	require.NoError(t, err)
	require.NoError(t, svc.Close(ctx, c.ID))

	next, created, err := svc.Resume(ctx, c.ID, "")
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, c.ID, next.ID)
	assert.Equal(t, "sess-close", next.SessionID)
}

func TestService_CloseTwice(t *testing.T) {
	svc := NewService(NewMemoryStore(), nil, nil, nil)
	ctx := context.Background()

	c, err := svc.Start(ctx, "s", nil)
	require.NoError(t, err)
	require.NoError(t, svc.Close(ctx, c.ID))
	assert.ErrorIs(t, svc.Close(ctx, c.ID), ErrInvalidState)
	assert.ErrorIs(t, svc.Close(ctx, "missing"), ErrNotFound)
}

func TestService_HistoryOldestFirstAndLimited(t *testing.T) {
	svc := NewService(NewMemoryStore(), nil, nil, nil)
	ctx := context.Background()
	c, err := svc.Start(ctx, "s", nil)
	require.NoError(t, err)

	require.NoError(t, svc.SaveUserMessage(ctx, c.ID, "hola"))
	require.NoError(t, svc.SaveBotMessage(ctx, c.ID, chat.Response{Message: "¡Bienvenido!", UI: &chat.UI{BannerType: chat.BannerGeneral}}))
	require.NoError(t, svc.SaveUserMessage(ctx, c.ID, "busco hotel"))

	turns, err := svc.Turns(ctx, c.ID, 2)
	require.NoError(t, err)
	want := []chat.Turn{
		{Role: chat.RoleBot, Content: "¡Bienvenido!"},
		{Role: chat.RoleUser, Content: "busco hotel"},
	}
	if diff := cmp.Diff(want, turns); diff != "" {
		t.Fatalf("turns mismatch (-want +got):\n%s", diff)
	}

	msgs, err := svc.History(ctx, c.ID, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	require.NotNil(t, msgs[1].Metadata.UI)
	assert.Equal(t, chat.BannerGeneral, msgs[1].Metadata.UI.BannerType)

	_, err = svc.History(ctx, "missing", 0)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_ListBySession(t *testing.T) {
	svc := NewService(NewMemoryStore(), nil, nil, nil)
	ctx := context.Background()

	_, err := svc.ListBySession(ctx, " ", 0)
	assert.ErrorIs(t, err, ErrBadRequest)

	for i := 0; i < 7; i++ {
		_, err := svc.Start(ctx, "sess-list", nil)
		require.NoError(t, err)
	}
	_, err = svc.Start(ctx, "other", nil)
	require.NoError(t, err)

	list, err := svc.ListBySession(ctx, "sess-list", 0)
	require.NoError(t, err)
	assert.Len(t, list, DefaultListLimit)
	for _, c := range list {
		assert.Equal(t, "sess-list", c.SessionID)
	}
}

type fakeCache struct {
	mu      sync.Mutex
	data    map[string]chat.Context
	failGet bool
	failSet bool
}

func (f *fakeCache) Get(_ context.Context, id string) (chat.Context, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failGet {
		return chat.Context{}, false, errors.New("redis down")
	}
	c, ok := f.data[id]
	return c, ok, nil
}

func (f *fakeCache) Set(_ context.Context, id string, c chat.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSet {
		return errors.New("redis write timeout")
	}
	f.data[id] = c
	return nil
}

func (f *fakeCache) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, id)
	return nil
}

func TestService_ContextReadThroughCache(t *testing.T) {
	cache := &fakeCache{data: map[string]chat.Context{}}
	store := NewMemoryStore()
	svc := NewService(store, cache, nil, nil)
	ctx := context.Background()

	c, err := svc.Start(ctx, "s", nil)
	require.NoError(t, err)

	next := chat.Context{ProcessingStage: chat.StageQuery, Intent: &chat.Intent{Type: chat.TopicGastronomy, Confidence: 0.9}}
	require.NoError(t, svc.SaveContext(ctx, c.ID, next))

	got, err := svc.CurrentContext(ctx, c.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(next, got); diff != "" {
		t.Fatalf("context mismatch (-want +got):\n%s", diff)
	}

	// a broken cache falls back to the store copy
	cache.failGet = true
	got, err = svc.CurrentContext(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, chat.StageQuery, got.ProcessingStage)

	assert.ErrorIs(t, svc.SaveContext(ctx, "missing", next), ErrNotFound)
}

func TestService_FailedCacheWriteEvictsStaleContext(t *testing.T) {
	cache := &fakeCache{data: map[string]chat.Context{}}
	svc := NewService(NewMemoryStore(), cache, nil, nil)
	ctx := context.Background()

	c, err := svc.Start(ctx, "s", nil)
	require.NoError(t, err)
	require.NoError(t, svc.SaveContext(ctx, c.ID, chat.Context{ProcessingStage: chat.StageQuery}))

	cache.failSet = true
	require.NoError(t, svc.SaveContext(ctx, c.ID, chat.Context{ProcessingStage: chat.StageBooking}))

	got, err := svc.CurrentContext(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, chat.StageBooking, got.ProcessingStage)
	_, cached := cache.data[c.ID]
	assert.False(t, cached)
}

func TestLocalLocker_Serializes(t *testing.T) {
	locker := NewLocalLocker()
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	inside, maxInside := 0, 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := locker.Lock(ctx, "conv-1")
			if err != nil {
				t.Errorf("lock: %v", err)
				return
			}
			mu.Lock()
			inside++
			maxInside = max(maxInside, inside)
			mu.Unlock()
			time.Sleep(time.Millisecond)
			mu.Lock()
			inside--
			mu.Unlock()
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxInside)
	assert.Zero(t, locker.held())
}

func TestLocalLocker_TimesOutWhileHeld(t *testing.T) {
	locker := NewLocalLocker()
	unlock, err := locker.Lock(context.Background(), "conv-2")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(ctx, "conv-2")
	assert.ErrorIs(t, err, ErrLocked)

	// other conversations are independent
	other, err := locker.Lock(context.Background(), "conv-3")
	require.NoError(t, err)
	other()

	unlock()
	unlock()
	assert.Zero(t, locker.held())
}

func TestRedisLocker(t *testing.T) {
	client := setupTestRedis(t)
	locker := NewRedisLocker(client, 2*time.Second)
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "conv-redis")
	require.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(waitCtx, "conv-redis")
	assert.ErrorIs(t, err, ErrLocked)

	unlock()
	again, err := locker.Lock(ctx, "conv-redis")
	require.NoError(t, err)
	again()
}

func TestCache_RoundTripAndMiss(t *testing.T) {
	client := setupTestRedis(t)
	cache := NewCache(client, time.Minute)
	ctx := context.Background()

	_, ok, err := cache.Get(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, ok)

	want := chat.Context{ProcessingStage: chat.StageBooking, BookingParams: &chat.BookingParams{Type: "accommodation", Slug: "hotel-x"}}
	require.NoError(t, cache.Set(ctx, "c1", want))
	got, ok, err := cache.Get(ctx, "c1")
	require.NoError(t, err)
	assert.True(t, ok)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("cached context mismatch (-want +got):\n%s", diff)
	}
	require.NoError(t, cache.Delete(ctx, "c1"))
}

func TestStore_Lifecycle(t *testing.T) {
	store := setupTestStore(t)
	svc := NewService(store, nil, nil, nil)
	ctx := context.Background()

	c, err := svc.Start(ctx, "sess-db", nil)
	require.NoError(t, err)
	require.NoError(t, svc.SaveUserMessage(ctx, c.ID, "hola"))
	time.Sleep(2 * time.Millisecond)
	require.NoError(t, svc.SaveBotMessage(ctx, c.ID, chat.Response{Message: "¡Hola!"}))

	next := chat.Context{ProcessingStage: chat.StageGeneric, ActiveAgents: []chat.ResponderName{chat.ResponderValidation}}
	require.NoError(t, svc.SaveContext(ctx, c.ID, next))

	got, err := svc.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, chat.StageGeneric, got.Context.ProcessingStage)

	turns, err := svc.Turns(ctx, c.ID, 20)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, chat.RoleUser, turns[0].Role)

	require.NoError(t, svc.Close(ctx, c.ID))
	assert.ErrorIs(t, svc.Close(ctx, c.ID), ErrInvalidState)
}

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := os.Getenv("SAMANAINN_TEST_DSN")
	if dsn == "" {
		t.Skip("SAMANAINN_TEST_DSN not set; skipping DB-backed tests")
	}

	ctx := context.Background()
	db, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	dir, err := infra.MigrationsDir()
	require.NoError(t, err)
	require.NoError(t, infra.ApplyMigrations(ctx, db, dir))

	_, err = db.Exec(ctx, "TRUNCATE TABLE conversation_messages, conversations")
	require.NoError(t, err)
	return NewStore(db)
}

func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	addr := os.Getenv("SAMANAINN_TEST_REDIS")
	if addr == "" {
		t.Skip("SAMANAINN_TEST_REDIS not set; skipping redis-backed tests")
	}
	client := infra.NewRedis(addr)
	t.Cleanup(func() { client.Close() })
	require.NoError(t, infra.PingRedis(context.Background(), client))
	return client
}
