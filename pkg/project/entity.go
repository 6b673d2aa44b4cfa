package project

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound возвращается, когда проект отсутствует.
var ErrNotFound = errors.New("project not found")

type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Project описывает проект клиента, под который подбираются фрилансеры.
type Project struct {
	ID             uuid.UUID
	ClientID       uuid.UUID
	Title          string
	Description    string
	RequiredSkills []string
	// AllocatedBudget nil, если бюджет не указан.
	AllocatedBudget *float64
	Status          Status
	CreatedAt       time.Time
}

// Repository читает проекты.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (Project, error)
	List(ctx context.Context, limit, offset int) ([]Project, error)
}
