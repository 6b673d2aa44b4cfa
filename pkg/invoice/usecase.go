package invoice

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/artem13815/freelance/pkg/logger"
)

// ErrValidation простая ошибка валидации входных параметров.
type ErrValidation string

func (e ErrValidation) Error() string { return string(e) }

// UseCase выставляет и показывает счета.
type UseCase interface {
	// Create returns the validation result without persisting anything when fields are invalid.
	Create(ctx context.Context, freelancerID uuid.UUID, f Fields, withholdingRate *decimal.Decimal) (Invoice, ValidationResult, error)
	Get(ctx context.Context, actorID uuid.UUID, isAdmin bool, id uuid.UUID) (Invoice, error)
	List(ctx context.Context, actorID uuid.UUID, limit, offset int) ([]Invoice, error)
}

type service struct {
	repo      Repository
	calc      *Calculator
	validator *Validator
	log       *zap.Logger
	now       func() time.Time
}

func NewService(repo Repository, calc *Calculator, validator *Validator, log *zap.Logger) UseCase {
	return &service{
		repo:      repo,
		calc:      calc,
		validator: validator,
		log:       logger.OrNop(log),
		now:       time.Now,
	}
}

func (s *service) Create(ctx context.Context, freelancerID uuid.UUID, f Fields, withholdingRate *decimal.Decimal) (Invoice, ValidationResult, error) {
	if err := CheckWithholdingRate(withholdingRate); err != nil {
		return Invoice{}, ValidationResult{}, err
	}

	res := s.validator.Validate(f)
	if !res.Valid {
		return Invoice{}, res, nil
	}

	rate := s.calc.Jurisdictions().DefaultWithholdingRate
	if withholdingRate != nil {
		rate = *withholdingRate
	}
	f.Country = normalizeCountry(f.Country)
	f.IBAN = compact(f.IBAN)
	f.SWIFT = compact(f.SWIFT)

	inv := Invoice{
		ID:           uuid.New(),
		FreelancerID: freelancerID,
		Fields:       f,
		Calculation:  s.calc.Calculate(*f.BaseAmount, f.Country, rate),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.repo.Create(ctx, inv); err != nil {
		return Invoice{}, res, fmt.Errorf("store invoice: %w", err)
	}

	s.log.Info("invoice created",
		zap.Stringer("invoice_id", inv.ID),
		zap.Stringer("freelancer_id", freelancerID),
		zap.String("scenario", string(inv.Calculation.Scenario)),
		zap.String("total", inv.Calculation.TotalAmount.StringFixed(2)),
	)
	return inv, res, nil
}

func (s *service) Get(ctx context.Context, actorID uuid.UUID, isAdmin bool, id uuid.UUID) (Invoice, error) {
	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Invoice{}, err
	}
	if !isAdmin && inv.FreelancerID != actorID {
		return Invoice{}, ErrNotFound
	}
	return inv, nil
}

func (s *service) List(ctx context.Context, actorID uuid.UUID, limit, offset int) ([]Invoice, error) {
	return s.repo.ListByFreelancer(ctx, actorID, limit, offset)
}

// CheckWithholdingRate accepts nil or a percentage in [0,100].
func CheckWithholdingRate(rate *decimal.Decimal) error {
	if rate == nil {
		return nil
	}
	if rate.IsNegative() || rate.GreaterThan(hundred) {
		return ErrValidation("withholding rate must be between 0 and 100")
	}
	return nil
}
