package services_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"taskpad/backend/internal/cache"
	"taskpad/backend/internal/services"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestCache(t *testing.T) *cache.TaskCache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return cache.NewTaskCacheWithClient(client, time.Minute)
}

func TestCachedListServesFromCache(t *testing.T) {
	db := setupTestDB(t)
	aliceID, _ := createTestUsers(t, db)
	taskCache := setupTestCache(t)
	svc := services.NewCachedTaskService(services.NewTaskService(), taskCache)

	_, err := svc.CreateTask(db, aliceID, "Buy milk", "", nil)
	require.NoError(t, err)

	// First list populates the cache.
	tasks, err := svc.ListTasks(db, aliceID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	cached, err := taskCache.GetUserTasks(context.Background(), aliceID)
	require.NoError(t, err)
	assert.Len(t, cached, 1)

	// Second list is served from the cache even if the row vanishes
	// underneath it.
	require.NoError(t, db.Exec("DELETE FROM tasks").Error)
	tasks, err = svc.ListTasks(db, aliceID)
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
}

func TestCachedWritesInvalidate(t *testing.T) {
	db := setupTestDB(t)
	aliceID, _ := createTestUsers(t, db)
	taskCache := setupTestCache(t)
	svc := services.NewCachedTaskService(services.NewTaskService(), taskCache)

	task, err := svc.CreateTask(db, aliceID, "Buy milk", "", nil)
	require.NoError(t, err)

	_, err = svc.ListTasks(db, aliceID)
	require.NoError(t, err)

	_, err = svc.UpdateTask(db, aliceID, task.ID, services.TaskPatch{Completed: boolPtr(true)})
	require.NoError(t, err)

	_, err = taskCache.GetUserTasks(context.Background(), aliceID)
	assert.ErrorIs(t, err, cache.ErrCacheMiss)

	tasks, err := svc.ListTasks(db, aliceID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.True(t, tasks[0].Completed)

	require.NoError(t, svc.DeleteTask(db, aliceID, task.ID))
	_, err = taskCache.GetUserTasks(context.Background(), aliceID)
	assert.ErrorIs(t, err, cache.ErrCacheMiss)
}

func TestCachedServiceWithoutCache(t *testing.T) {
	db := setupTestDB(t)
	aliceID, _ := createTestUsers(t, db)
	svc := services.NewCachedTaskService(services.NewTaskService(), nil)

	_, err := svc.CreateTask(db, aliceID, "Buy milk", "", nil)
	require.NoError(t, err)

	tasks, err := svc.ListTasks(db, aliceID)
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
}

func TestNullableDateDecode(t *testing.T) {
	var patch services.TaskPatch

	// Absent field: unset.
	require.NoError(t, json.Unmarshal([]byte(`{}`), &patch))
	assert.False(t, patch.DueDate.Set)

	// Explicit null: set but not valid.
	patch = services.TaskPatch{}
	require.NoError(t, json.Unmarshal([]byte(`{"dueDate": null}`), &patch))
	assert.True(t, patch.DueDate.Set)
	assert.False(t, patch.DueDate.Valid)

	// Date-only and RFC3339 values both parse.
	patch = services.TaskPatch{}
	require.NoError(t, json.Unmarshal([]byte(`{"dueDate": "2025-01-01"}`), &patch))
	assert.True(t, patch.DueDate.Set)
	assert.True(t, patch.DueDate.Valid)
	assert.Equal(t, 2025, patch.DueDate.Time.Year())

	patch = services.TaskPatch{}
	require.NoError(t, json.Unmarshal([]byte(`{"dueDate": "2025-06-15T10:30:00Z"}`), &patch))
	assert.True(t, patch.DueDate.Valid)
	assert.Equal(t, time.June, patch.DueDate.Time.Month())

	patch = services.TaskPatch{}
	assert.Error(t, json.Unmarshal([]byte(`{"dueDate": "not-a-date"}`), &patch))
}
