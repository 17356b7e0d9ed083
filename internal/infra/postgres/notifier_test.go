package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"social-insights-service/internal/domain"
	"social-insights-service/internal/infra/postgres/migrations"
)

func TestNotifier_Publish(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_notify($1, $2)")).
		WithArgs("posts_changed", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n := NewNotifier(db, "", "posts_changed", zap.NewNop())
	err = n.Publish(context.Background(), domain.ChangeEvent{ID: "42", Source: "sync"})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotifier_Publish_Error(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_notify($1, $2)")).
		WillReturnError(errors.New("connection reset"))

	n := NewNotifier(db, "", "posts_changed", zap.NewNop())
	err = n.Publish(context.Background(), domain.ChangeEvent{ID: "42"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "notifying posts_changed")
}

func TestNotifier_Decode(t *testing.T) {
	n := NewNotifier(nil, "", "posts_changed", zap.NewNop())

	ev := n.decode(&pq.Notification{
		Channel: "posts_changed",
		Extra:   `{"id":"42","source":"UPDATE","at":"2024-06-01T10:00:00.000000Z"}`,
	})
	assert.Equal(t, "42", ev.ID)
	assert.Equal(t, "UPDATE", ev.Source)
	assert.Equal(t, time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC), ev.At)

	ev = n.decode(&pq.Notification{Channel: "posts_changed", Extra: "not json"})
	assert.Equal(t, "posts_changed", ev.Source)
	assert.False(t, ev.At.IsZero())

	ev = n.decode(nil)
	assert.Equal(t, sourceReconnect, ev.Source)
}

func TestNotifier_TriggerDeliversRowChanges(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	tdb, cleanup := setupTestDB(t)
	defer cleanup()

	sqlDB, err := tdb.db.DB()
	require.NoError(t, err)

	n := NewNotifier(sqlDB, tdb.dsn, migrations.DefaultChannel, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := n.Subscribe(ctx)
	require.NoError(t, err)

	require.NoError(t, NewPostRepository(tdb.db).BulkUpsert(ctx, []domain.Post{{ID: "row-1", Likes: 3}}))

	select {
	case ev := <-events:
		assert.Equal(t, "row-1", ev.ID)
		assert.Equal(t, "INSERT", ev.Source)
	case <-time.After(10 * time.Second):
		t.Fatal("no notification received")
	}

	require.NoError(t, n.Publish(ctx, domain.ChangeEvent{ID: "manual", Source: "test"}))

	select {
	case ev := <-events:
		assert.Equal(t, "manual", ev.ID)
	case <-time.After(10 * time.Second):
		t.Fatal("no published event received")
	}

	cancel()
	for range events {
	}
}
