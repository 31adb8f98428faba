package db

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/darwinsql/darwinctl/internal/models"
)

// CreateTaskRequest holds the data needed to create a new task
type CreateTaskRequest struct {
	Description string
	CreatorFK   string
	AreaFK      *int
	Priority    bool
	SortOrder   *int16
}

// CreateTask creates a new task, optionally filed under an area.
func CreateTask(req CreateTaskRequest) (*models.Task, error) {
	if req.Description == "" {
		return nil, fmt.Errorf("task description is required")
	}
	if utf8.RuneCountInString(req.Description) > models.MaxDescriptionLen {
		return nil, fmt.Errorf("task description exceeds %d characters", models.MaxDescriptionLen)
	}

	task := models.Task{
		Description: req.Description,
		CreatorFK:   req.CreatorFK,
		AreaFK:      req.AreaFK,
		Priority:    req.Priority,
		SortOrder:   req.SortOrder,
	}
	if err := DB.Create(&task).Error; err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return &task, nil
}

// GetTaskByID retrieves a task by ID
func GetTaskByID(id int) (*models.Task, error) {
	var task models.Task
	if err := DB.First(&task, id).Error; err != nil {
		return nil, fmt.Errorf("task #%d not found", id)
	}
	return &task, nil
}

// CompleteTask marks a task as done and stamps done_ts. Completing a task
// that was reopened stamps done_ts again, overwriting the earlier value.
func CompleteTask(id int) (*models.Task, error) {
	task, err := GetTaskByID(id)
	if err != nil {
		return nil, err
	}
	if task.Done {
		return nil, fmt.Errorf("task #%d is already completed", id)
	}

	now := time.Now()
	task.Done = true
	task.DoneTS = &now
	if err := DB.Save(task).Error; err != nil {
		return nil, fmt.Errorf("failed to update task #%d: %w", id, err)
	}
	return task, nil
}

// ReopenTask flips a completed task back to not-done. The old done_ts is
// kept until the next completion overwrites it.
func ReopenTask(id int) (*models.Task, error) {
	task, err := GetTaskByID(id)
	if err != nil {
		return nil, err
	}
	if !task.Done {
		return nil, fmt.Errorf("task #%d is not completed", id)
	}

	task.Done = false
	if err := DB.Save(task).Error; err != nil {
		return nil, fmt.Errorf("failed to update task #%d: %w", id, err)
	}
	return task, nil
}

// SetTaskSortOrder sets the task's manual position. Callers are responsible
// for avoiding collisions; equal positions fall back to id order.
func SetTaskSortOrder(id int, sortOrder *int16) (*models.Task, error) {
	task, err := GetTaskByID(id)
	if err != nil {
		return nil, err
	}
	task.SortOrder = sortOrder
	if err := DB.Save(task).Error; err != nil {
		return nil, fmt.Errorf("failed to update task #%d: %w", id, err)
	}
	return task, nil
}

// AreaTasks returns an area's tasks in display order, as decided by the
// area's sort mode:
//
//	priority: priority flag first, then most recently created, id breaking ties
//	hand:     manual sort_order positions, unpositioned tasks last, id breaking ties
func AreaTasks(areaID int) ([]models.Task, error) {
	var area models.Area
	if err := DB.First(&area, areaID).Error; err != nil {
		return nil, fmt.Errorf("area #%d not found", areaID)
	}

	order := "priority DESC, create_ts DESC, id DESC"
	if area.SortMode == models.SortModeHand {
		order = "sort_order IS NULL, sort_order ASC, id ASC"
	}

	var tasks []models.Task
	if err := DB.Where("area_fk = ?", areaID).Order(order).Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to list tasks for area #%d: %w", areaID, err)
	}
	return tasks, nil
}
