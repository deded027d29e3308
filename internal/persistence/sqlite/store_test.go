package sqlite_test

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/booking-sessions/internal/persistence"
	"github.com/example/booking-sessions/internal/persistence/expr"
	"github.com/example/booking-sessions/internal/testfixtures"
)

var monday = time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)

func TestServiceRepository_RoundTrip(t *testing.T) {
	t.Parallel()

	h := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()

	_, err := h.Services.GetService(ctx, "svc-1")
	require.ErrorIs(t, err, persistence.ErrNotFound)

	service := testfixtures.NewService("svc-1", "schedule", testfixtures.FixedDuration(time.Hour, "room-a", "room-b"))
	service.UpdatedAt = monday
	require.NoError(t, h.Services.SaveService(ctx, service))

	stored, err := h.Services.GetService(ctx, "svc-1")
	require.NoError(t, err)
	assert.Equal(t, service.Name, stored.Name)
	assert.Equal(t, service.ScheduleID, stored.ScheduleID)
	assert.Equal(t, service.SessionTypes, stored.SessionTypes)
	assert.True(t, monday.Equal(stored.UpdatedAt))

	service.Name = "Renamed"
	service.SessionTypes = nil
	require.NoError(t, h.Services.SaveService(ctx, service))
	require.NoError(t, h.Services.SaveService(ctx, testfixtures.NewService("svc-0", "schedule")))

	services, err := h.Services.ListServices(ctx)
	require.NoError(t, err)
	require.Len(t, services, 2)
	assert.Equal(t, "svc-0", services[0].ID)
	assert.Equal(t, "Renamed", services[1].Name)
	assert.Empty(t, services[1].SessionTypes)
}

func TestServiceRepository_RejectsIncompleteRows(t *testing.T) {
	t.Parallel()

	h := testfixtures.NewSQLiteHarness(t)
	err := h.Services.SaveService(context.Background(), testfixtures.NewService("svc-1", ""))
	assert.ErrorIs(t, err, persistence.ErrConstraintViolation)
}

func TestResourceRepository_RoundTrip(t *testing.T) {
	t.Parallel()

	h := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()

	_, err := h.Resources.GetResource(ctx, "room-a")
	require.ErrorIs(t, err, persistence.ErrNotFound)

	resource := testfixtures.NewResource("room-a",
		testfixtures.WeeklyRule(monday.Add(9*time.Hour), 2*time.Hour, monday.AddDate(0, 1, 0), "monday,thursday"))
	resource.Availability.Timezone = "Europe/Berlin"
	require.NoError(t, h.Resources.SaveResource(ctx, resource))

	stored, err := h.Resources.GetResource(ctx, "room-a")
	require.NoError(t, err)
	assert.Equal(t, resource.Availability, stored.Availability)
	assert.False(t, stored.UpdatedAt.IsZero())
}

func TestSessionRepository(t *testing.T) {
	t.Parallel()

	h := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()

	sessions := []persistence.Session{
		{ID: "b", ServiceID: "svc-1", Start: 200, End: 300, ResourceIDs: []string{"room-a", "room-b"}, CreatedAt: monday},
		{ID: "a", ServiceID: "svc-1", Start: 100, End: 200},
		{ID: "c", ServiceID: "svc-2", Start: 100, End: 200},
	}
	n, err := h.Sessions.InsertSessions(ctx, slices.Values(sessions))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	ofService := expr.Eq(expr.Var("service_id"), expr.Lit("svc-1"))
	got, err := h.Sessions.SelectSessions(ctx, ofService)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Nil(t, got[0].ResourceIDs)
	assert.False(t, got[0].CreatedAt.IsZero())
	assert.Equal(t, []string{"room-a", "room-b"}, got[1].ResourceIDs)
	assert.True(t, monday.Equal(got[1].CreatedAt))

	late, err := h.Sessions.SelectSessions(ctx, expr.And(ofService, expr.Compare(expr.OpGte, expr.Var("start"), expr.Lit(200))))
	require.NoError(t, err)
	require.Len(t, late, 1)
	assert.Equal(t, "b", late[0].ID)

	deleted, err := h.Sessions.DeleteSessions(ctx, ofService)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	rest, err := h.Sessions.SelectSessions(ctx, expr.And())
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, "c", rest[0].ID)
}

func TestSessionRepository_InsertIsAtomic(t *testing.T) {
	t.Parallel()

	h := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()

	t.Run("duplicate ids roll back the batch", func(t *testing.T) {
		_, err := h.Sessions.InsertSessions(ctx, slices.Values([]persistence.Session{
			{ID: "dup", ServiceID: "svc-1", Start: 100, End: 200},
			{ID: "dup", ServiceID: "svc-1", Start: 200, End: 300},
		}))
		require.ErrorIs(t, err, persistence.ErrDuplicate)
	})

	t.Run("inverted bounds violate constraints", func(t *testing.T) {
		_, err := h.Sessions.InsertSessions(ctx, slices.Values([]persistence.Session{
			{ID: "ok", ServiceID: "svc-1", Start: 100, End: 200},
			{ID: "inverted", ServiceID: "svc-1", Start: 300, End: 200},
		}))
		require.ErrorIs(t, err, persistence.ErrConstraintViolation)
	})

	all, err := h.Sessions.SelectSessions(ctx, expr.And())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSessionRepository_RejectsUnknownColumns(t *testing.T) {
	t.Parallel()

	h := testfixtures.NewSQLiteHarness(t)
	_, err := h.Sessions.SelectSessions(context.Background(), expr.Eq(expr.Var("created_at"), expr.Lit("x")))
	assert.ErrorIs(t, err, expr.ErrInvalidExpr)
}
