package analytics

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"samanainn/internal/chat"
	"samanainn/internal/infra"
)

type stubRecorder struct {
	turns       int
	completions []bool
	err         error
}

func (s *stubRecorder) UpsertTurn(context.Context, string, chat.Topic, []chat.ResponderName) error {
	s.turns++
	return s.err
}

func (s *stubRecorder) IncrementCompletion(_ context.Context, _ string, ok bool) error {
	s.completions = append(s.completions, ok)
	return s.err
}

func TestService_SwallowsStoreErrors(t *testing.T) {
	rec := &stubRecorder{err: errors.New("db down")}
	svc := NewService(rec, nil)
	ctx := context.Background()

	svc.RecordTurn(ctx, "c1", chat.TopicGastronomy, []chat.ResponderName{chat.ResponderFood})
	svc.RecordCompletion(ctx, "c1", false)

	assert.Equal(t, 1, rec.turns)
	assert.Equal(t, []bool{false}, rec.completions)
}

func TestService_SkipsAnonymousAndNilStore(t *testing.T) {
	rec := &stubRecorder{}
	svc := NewService(rec, nil)
	svc.RecordTurn(context.Background(), "", chat.TopicGeneral, nil)
	svc.RecordCompletion(context.Background(), "", true)
	assert.Zero(t, rec.turns)
	assert.Empty(t, rec.completions)

	// must not panic
	NewService(nil, nil).RecordTurn(context.Background(), "c1", chat.TopicGeneral, nil)
}

func TestStore_TurnAndCompletionCounters(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, err := store.Get(ctx, "conv-a")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.IncrementCompletion(ctx, "conv-a", true))
	require.NoError(t, store.UpsertTurn(ctx, "conv-a", chat.TopicAccommodation,
		[]chat.ResponderName{chat.ResponderQuery, chat.ResponderLodging, chat.ResponderValidation}))
	require.NoError(t, store.IncrementCompletion(ctx, "conv-a", false))

	got, err := store.Get(ctx, "conv-a")
	require.NoError(t, err)
	want := &Summary{
		ConversationID:     "conv-a",
		Topic:              chat.TopicAccommodation,
		AgentsUsed:         []chat.ResponderName{chat.ResponderQuery, chat.ResponderLodging, chat.ResponderValidation},
		CompletionCalls:    2,
		CompletionFailures: 1,
	}
	if diff := cmp.Diff(want, got, cmpopts.IgnoreFields(Summary{}, "UpdatedAt")); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}
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

	_, err = db.Exec(ctx, "TRUNCATE TABLE chat_analytics")
	require.NoError(t, err)
	return NewStore(db)
}
