package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskpad/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// NullableDate distinguishes three JSON states: field absent, explicit
// null, and a concrete date. An explicit null clears a stored due date.
type NullableDate struct {
	Set   bool
	Valid bool
	Time  time.Time
}

func (d *NullableDate) UnmarshalJSON(b []byte) error {
	d.Set = true
	if string(b) == "null" {
		d.Valid = false
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	t, err := parseDate(s)
	if err != nil {
		return err
	}
	d.Valid = true
	d.Time = t
	return nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// TaskPatch carries a partial update. Nil pointer fields and an unset
// DueDate leave the stored values unchanged.
type TaskPatch struct {
	Title       *string      `json:"title"`
	Description *string      `json:"description"`
	Completed   *bool        `json:"completed"`
	DueDate     NullableDate `json:"dueDate"`
}

type TaskService interface {
	ListTasks(db *gorm.DB, ownerID uuid.UUID) ([]models.Task, error)
	CreateTask(db *gorm.DB, ownerID uuid.UUID, title, description string, dueDate *time.Time) (*models.Task, error)
	UpdateTask(db *gorm.DB, ownerID, taskID uuid.UUID, patch TaskPatch) (*models.Task, error)
	DeleteTask(db *gorm.DB, ownerID, taskID uuid.UUID) error
}

type TaskServiceImpl struct{}

func NewTaskService() *TaskServiceImpl {
	return &TaskServiceImpl{}
}

func (s *TaskServiceImpl) ListTasks(db *gorm.DB, ownerID uuid.UUID) ([]models.Task, error) {
	tasks := []models.Task{}
	err := db.Where("user_id = ?", ownerID).Order("created_at DESC").Find(&tasks).Error
	if err != nil {
		return nil, storeError(err)
	}
	return tasks, nil
}

func (s *TaskServiceImpl) CreateTask(db *gorm.DB, ownerID uuid.UUID, title, description string, dueDate *time.Time) (*models.Task, error) {
	if strings.TrimSpace(title) == "" {
		return nil, validationError("title is required")
	}

	task := models.Task{
		ID:          uuid.Must(uuid.NewV4()),
		UserID:      ownerID,
		Title:       title,
		Description: description,
		Completed:   false,
		DueDate:     dueDate,
	}
	if err := db.Create(&task).Error; err != nil {
		return nil, storeError(err)
	}
	return &task, nil
}

// UpdateTask applies the patch to the task matching both id and owner in a
// single predicate, so a foreign task id is indistinguishable from a
// nonexistent one.
func (s *TaskServiceImpl) UpdateTask(db *gorm.DB, ownerID, taskID uuid.UUID, patch TaskPatch) (*models.Task, error) {
	updates := map[string]interface{}{}
	if patch.Title != nil {
		if strings.TrimSpace(*patch.Title) == "" {
			return nil, validationError("title cannot be empty")
		}
		updates["title"] = *patch.Title
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.Completed != nil {
		updates["completed"] = *patch.Completed
	}
	if patch.DueDate.Set {
		if patch.DueDate.Valid {
			updates["due_date"] = patch.DueDate.Time
		} else {
			updates["due_date"] = nil
		}
	}

	if len(updates) > 0 {
		result := db.Model(&models.Task{}).
			Where("id = ? AND user_id = ?", taskID, ownerID).
			Updates(updates)
		if result.Error != nil {
			return nil, storeError(result.Error)
		}
		if result.RowsAffected == 0 {
			return nil, ErrTaskNotFound
		}
	}

	var task models.Task
	if err := db.Where("id = ? AND user_id = ?", taskID, ownerID).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, storeError(err)
	}
	return &task, nil
}

func (s *TaskServiceImpl) DeleteTask(db *gorm.DB, ownerID, taskID uuid.UUID) error {
	result := db.Where("id = ? AND user_id = ?", taskID, ownerID).Delete(&models.Task{})
	if result.Error != nil {
		return storeError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}
