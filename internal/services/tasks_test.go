package services_test

import (
	"testing"
	"time"

	"taskpad/backend/internal/services"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createTestUsers(t *testing.T, db *gorm.DB) (uuid.UUID, uuid.UUID) {
	t.Helper()
	svc := newTestAuthService()
	alice, err := svc.RegisterUser(db, "alice@example.com", "secret123", "Alice")
	require.NoError(t, err)
	bob, err := svc.RegisterUser(db, "bob@example.com", "secret456", "Bob")
	require.NoError(t, err)
	return alice.ID, bob.ID
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestCreateTask(t *testing.T) {
	db := setupTestDB(t)
	aliceID, _ := createTestUsers(t, db)
	svc := services.NewTaskService()

	due := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	task, err := svc.CreateTask(db, aliceID, "Buy milk", "from the store", &due)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, task.ID)
	assert.Equal(t, aliceID, task.UserID)
	assert.Equal(t, "Buy milk", task.Title)
	assert.False(t, task.Completed)
	require.NotNil(t, task.DueDate)
	assert.True(t, task.DueDate.Equal(due))
}

func TestCreateTaskEmptyTitle(t *testing.T) {
	db := setupTestDB(t)
	aliceID, _ := createTestUsers(t, db)
	svc := services.NewTaskService()

	for _, title := range []string{"", "   "} {
		_, err := svc.CreateTask(db, aliceID, title, "", nil)
		assert.ErrorIs(t, err, services.ErrValidation)
	}

	var count int64
	db.Table("tasks").Count(&count)
	assert.Zero(t, count)
}

func TestListTasksNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	aliceID, _ := createTestUsers(t, db)
	svc := services.NewTaskService()

	for _, title := range []string{"first", "second", "third"} {
		_, err := svc.CreateTask(db, aliceID, title, "", nil)
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond)
	}

	tasks, err := svc.ListTasks(db, aliceID)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, "third", tasks[0].Title)
	assert.Equal(t, "second", tasks[1].Title)
	assert.Equal(t, "first", tasks[2].Title)
}

// A task created by one user must be invisible to another, and foreign
// update/delete attempts must look exactly like a missing task.
func TestOwnershipScoping(t *testing.T) {
	db := setupTestDB(t)
	aliceID, bobID := createTestUsers(t, db)
	svc := services.NewTaskService()

	task, err := svc.CreateTask(db, aliceID, "Alice's task", "", nil)
	require.NoError(t, err)

	bobTasks, err := svc.ListTasks(db, bobID)
	require.NoError(t, err)
	assert.Empty(t, bobTasks)

	_, err = svc.UpdateTask(db, bobID, task.ID, services.TaskPatch{Title: strPtr("stolen")})
	assert.ErrorIs(t, err, services.ErrTaskNotFound)

	err = svc.DeleteTask(db, bobID, task.ID)
	assert.ErrorIs(t, err, services.ErrTaskNotFound)

	// Alice's task is untouched.
	aliceTasks, err := svc.ListTasks(db, aliceID)
	require.NoError(t, err)
	require.Len(t, aliceTasks, 1)
	assert.Equal(t, "Alice's task", aliceTasks[0].Title)
}

func TestUpdateTaskPartial(t *testing.T) {
	db := setupTestDB(t)
	aliceID, _ := createTestUsers(t, db)
	svc := services.NewTaskService()

	due := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	task, err := svc.CreateTask(db, aliceID, "Buy milk", "2 liters", &due)
	require.NoError(t, err)

	updated, err := svc.UpdateTask(db, aliceID, task.ID, services.TaskPatch{
		Completed: boolPtr(true),
	})
	require.NoError(t, err)

	assert.True(t, updated.Completed)
	assert.Equal(t, "Buy milk", updated.Title)
	assert.Equal(t, "2 liters", updated.Description)
	require.NotNil(t, updated.DueDate)
	assert.True(t, updated.DueDate.Equal(due))
}

func TestUpdateTaskClearDueDate(t *testing.T) {
	db := setupTestDB(t)
	aliceID, _ := createTestUsers(t, db)
	svc := services.NewTaskService()

	due := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	task, err := svc.CreateTask(db, aliceID, "Buy milk", "", &due)
	require.NoError(t, err)

	updated, err := svc.UpdateTask(db, aliceID, task.ID, services.TaskPatch{
		DueDate: services.NullableDate{Set: true, Valid: false},
	})
	require.NoError(t, err)
	assert.Nil(t, updated.DueDate)
}

func TestUpdateTaskEmptyTitleRejected(t *testing.T) {
	db := setupTestDB(t)
	aliceID, _ := createTestUsers(t, db)
	svc := services.NewTaskService()

	task, err := svc.CreateTask(db, aliceID, "Buy milk", "", nil)
	require.NoError(t, err)

	_, err = svc.UpdateTask(db, aliceID, task.ID, services.TaskPatch{Title: strPtr("  ")})
	assert.ErrorIs(t, err, services.ErrValidation)
}

func TestUpdateTaskNotFound(t *testing.T) {
	db := setupTestDB(t)
	aliceID, _ := createTestUsers(t, db)
	svc := services.NewTaskService()

	_, err := svc.UpdateTask(db, aliceID, uuid.Must(uuid.NewV4()), services.TaskPatch{
		Completed: boolPtr(true),
	})
	assert.ErrorIs(t, err, services.ErrTaskNotFound)
}

func TestDeleteTask(t *testing.T) {
	db := setupTestDB(t)
	aliceID, _ := createTestUsers(t, db)
	svc := services.NewTaskService()

	task, err := svc.CreateTask(db, aliceID, "Buy milk", "", nil)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTask(db, aliceID, task.ID))

	tasks, err := svc.ListTasks(db, aliceID)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	err = svc.DeleteTask(db, aliceID, task.ID)
	assert.ErrorIs(t, err, services.ErrTaskNotFound)
}

func TestCompleteRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	aliceID, _ := createTestUsers(t, db)
	svc := services.NewTaskService()

	task, err := svc.CreateTask(db, aliceID, "Buy milk", "2 liters", nil)
	require.NoError(t, err)

	_, err = svc.UpdateTask(db, aliceID, task.ID, services.TaskPatch{Completed: boolPtr(true)})
	require.NoError(t, err)

	tasks, err := svc.ListTasks(db, aliceID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.True(t, tasks[0].Completed)
	assert.Equal(t, "Buy milk", tasks[0].Title)
	assert.Equal(t, "2 liters", tasks[0].Description)
}
