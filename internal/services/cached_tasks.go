package services

import (
	"context"
	"log"
	"time"

	"taskpad/backend/internal/cache"
	"taskpad/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

const cacheOpTimeout = 3 * time.Second

// CachedTaskService decorates a TaskService with a per-user list cache.
// Cache failures are logged and fall through to the store; a nil cache
// makes every operation a pass-through.
type CachedTaskService struct {
	taskService TaskService
	cache       *cache.TaskCache
}

func NewCachedTaskService(taskService TaskService, cacheInstance *cache.TaskCache) *CachedTaskService {
	return &CachedTaskService{
		taskService: taskService,
		cache:       cacheInstance,
	}
}

func (s *CachedTaskService) ListTasks(db *gorm.DB, ownerID uuid.UUID) ([]models.Task, error) {
	if s.cache != nil {
		ctx, cancel := context.WithTimeout(context.Background(), cacheOpTimeout)
		tasks, err := s.cache.GetUserTasks(ctx, ownerID)
		cancel()
		if err == nil {
			return tasks, nil
		}
		if err != cache.ErrCacheMiss {
			log.Printf("task cache read failed for user %s: %v", ownerID, err)
		}
	}

	tasks, err := s.taskService.ListTasks(db, ownerID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		ctx, cancel := context.WithTimeout(context.Background(), cacheOpTimeout)
		if err := s.cache.SetUserTasks(ctx, ownerID, tasks); err != nil {
			log.Printf("task cache write failed for user %s: %v", ownerID, err)
		}
		cancel()
	}

	return tasks, nil
}

func (s *CachedTaskService) CreateTask(db *gorm.DB, ownerID uuid.UUID, title, description string, dueDate *time.Time) (*models.Task, error) {
	task, err := s.taskService.CreateTask(db, ownerID, title, description, dueDate)
	if err != nil {
		return nil, err
	}
	s.invalidate(ownerID)
	return task, nil
}

func (s *CachedTaskService) UpdateTask(db *gorm.DB, ownerID, taskID uuid.UUID, patch TaskPatch) (*models.Task, error) {
	task, err := s.taskService.UpdateTask(db, ownerID, taskID, patch)
	if err != nil {
		return nil, err
	}
	s.invalidate(ownerID)
	return task, nil
}

func (s *CachedTaskService) DeleteTask(db *gorm.DB, ownerID, taskID uuid.UUID) error {
	if err := s.taskService.DeleteTask(db, ownerID, taskID); err != nil {
		return err
	}
	s.invalidate(ownerID)
	return nil
}

func (s *CachedTaskService) invalidate(ownerID uuid.UUID) {
	if s.cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), cacheOpTimeout)
	defer cancel()
	if err := s.cache.InvalidateUser(ctx, ownerID); err != nil {
		log.Printf("task cache invalidation failed for user %s: %v", ownerID, err)
	}
}
