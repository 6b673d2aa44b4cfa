package invoice

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound возвращается, когда счёт отсутствует или недоступен пользователю.
var ErrNotFound = errors.New("invoice not found")

// Invoice хранит неизменяемый снимок реквизитов и расчёта на момент выставления.
type Invoice struct {
	ID           uuid.UUID
	FreelancerID uuid.UUID
	Fields       Fields
	Calculation  Calculation
	CreatedAt    time.Time
}

// Repository хранит счета.
type Repository interface {
	Create(ctx context.Context, inv Invoice) error
	GetByID(ctx context.Context, id uuid.UUID) (Invoice, error)
	ListByFreelancer(ctx context.Context, freelancerID uuid.UUID, limit, offset int) ([]Invoice, error)
}
