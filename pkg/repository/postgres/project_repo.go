package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/artem13815/freelance/pkg/project"
)

// ProjectRepository читает проекты клиентов.
type ProjectRepository struct {
	pool *pgxpool.Pool
}

func NewProjectRepository(pool *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{pool: pool}
}

const projectColumns = `id, client_id, title, description, required_skills, allocated_budget::float8, status, created_at`

func scanProject(row pgx.Row) (project.Project, error) {
	var p project.Project
	var status string
	if err := row.Scan(&p.ID, &p.ClientID, &p.Title, &p.Description, &p.RequiredSkills, &p.AllocatedBudget, &status, &p.CreatedAt); err != nil {
		return project.Project{}, err
	}
	p.Status = project.Status(status)
	return p, nil
}

func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (project.Project, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id)
	p, err := scanProject(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return project.Project{}, project.ErrNotFound
		}
		return project.Project{}, err
	}
	return p, nil
}

func (r *ProjectRepository) List(ctx context.Context, limit, offset int) ([]project.Project, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+projectColumns+` FROM projects
ORDER BY created_at, id
LIMIT $1 OFFSET $2
`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []project.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
