package freelancer

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound возвращается, когда профиль фрилансера отсутствует.
var ErrNotFound = errors.New("freelancer profile not found")

type Availability string

const (
	AvailabilityAvailable   Availability = "available"
	AvailabilityBusy        Availability = "busy"
	AvailabilityUnavailable Availability = "unavailable"
)

// Freelancer описывает профиль исполнителя.
type Freelancer struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	FullName string
	Bio      string
	Skills   []string
	// HourlyRate nil, если ставка не указана.
	HourlyRate   *float64
	Availability Availability
	// Rating в диапазоне 0..5.
	Rating    float64
	TotalJobs int
	CreatedAt time.Time
}

// Repository читает профили.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (Freelancer, error)
	// ListAvailable возвращает только профили со статусом available.
	ListAvailable(ctx context.Context) ([]Freelancer, error)
	List(ctx context.Context, limit, offset int) ([]Freelancer, error)
}
