package embedding

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/artem13815/freelance/pkg/freelancer"
	"github.com/artem13815/freelance/pkg/project"
)

// Load reads the entity of the given kind and builds its Document.
func Load(ctx context.Context, projects project.Repository, freelancers freelancer.Repository, kind Kind, id uuid.UUID) (Document, error) {
	switch kind {
	case KindProject:
		p, err := projects.GetByID(ctx, id)
		if err != nil {
			return Document{}, err
		}
		return ForProject(p), nil
	case KindFreelancer:
		f, err := freelancers.GetByID(ctx, id)
		if err != nil {
			return Document{}, err
		}
		return ForFreelancer(f), nil
	default:
		return Document{}, fmt.Errorf("unknown embedding kind %q", kind)
	}
}
