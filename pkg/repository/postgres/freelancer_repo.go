package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/artem13815/freelance/pkg/freelancer"
)

// FreelancerRepository читает профили фрилансеров.
type FreelancerRepository struct {
	pool *pgxpool.Pool
}

func NewFreelancerRepository(pool *pgxpool.Pool) *FreelancerRepository {
	return &FreelancerRepository{pool: pool}
}

const freelancerColumns = `id, user_id, full_name, bio, skills, hourly_rate::float8, availability, rating::float8, total_jobs, created_at`

func scanFreelancer(row pgx.Row) (freelancer.Freelancer, error) {
	var f freelancer.Freelancer
	var availability string
	if err := row.Scan(&f.ID, &f.UserID, &f.FullName, &f.Bio, &f.Skills, &f.HourlyRate, &availability, &f.Rating, &f.TotalJobs, &f.CreatedAt); err != nil {
		return freelancer.Freelancer{}, err
	}
	f.Availability = freelancer.Availability(availability)
	return f, nil
}

func (r *FreelancerRepository) GetByID(ctx context.Context, id uuid.UUID) (freelancer.Freelancer, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+freelancerColumns+` FROM freelancer_profiles WHERE id = $1`, id)
	f, err := scanFreelancer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return freelancer.Freelancer{}, freelancer.ErrNotFound
		}
		return freelancer.Freelancer{}, err
	}
	return f, nil
}

func (r *FreelancerRepository) ListAvailable(ctx context.Context) ([]freelancer.Freelancer, error) {
	return r.query(ctx, `
SELECT `+freelancerColumns+` FROM freelancer_profiles
WHERE availability = $1
ORDER BY created_at, id
`, string(freelancer.AvailabilityAvailable))
}

func (r *FreelancerRepository) List(ctx context.Context, limit, offset int) ([]freelancer.Freelancer, error) {
	return r.query(ctx, `
SELECT `+freelancerColumns+` FROM freelancer_profiles
ORDER BY created_at, id
LIMIT $1 OFFSET $2
`, limit, offset)
}

func (r *FreelancerRepository) query(ctx context.Context, sql string, args ...any) ([]freelancer.Freelancer, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []freelancer.Freelancer
	for rows.Next() {
		f, err := scanFreelancer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
