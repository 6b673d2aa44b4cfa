package embedding

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"

	"github.com/artem13815/freelance/pkg/freelancer"
	"github.com/artem13815/freelance/pkg/project"
)

// Kind identifies the entity an embedding belongs to.
type Kind string

const (
	KindProject    Kind = "project"
	KindFreelancer Kind = "freelancer"
)

func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindProject, KindFreelancer:
		return k, nil
	default:
		return "", fmt.Errorf("unknown embedding kind %q", s)
	}
}

// Record is the persisted vector of one entity. A zero Vector means nothing is stored.
type Record struct {
	EntityID    uuid.UUID
	Kind        Kind
	Vector      []float32
	ContentHash string
	UpdatedAt   time.Time
}

// Document is the text an embedding is computed from.
// ID is uuid.Nil for ephemeral inputs that are never persisted.
type Document struct {
	ID   uuid.UUID
	Kind Kind
	Text string
}

func ForProject(p project.Project) Document {
	return Document{
		ID:   p.ID,
		Kind: KindProject,
		Text: joinText(p.Title, p.Description, strings.Join(p.RequiredSkills, " ")),
	}
}

func ForFreelancer(f freelancer.Freelancer) Document {
	return Document{
		ID:   f.ID,
		Kind: KindFreelancer,
		Text: joinText(f.Bio, strings.Join(f.Skills, " ")),
	}
}

func joinText(parts ...string) string {
	return strings.Join(parts, " ")
}

// ContentHash returns the hex blake2b-256 digest of text.
func ContentHash(text string) string {
	sum := blake2b.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Store persists one vector per entity, overwriting on every Save.
type Store interface {
	// Get returns a zero-vector Record when nothing is stored.
	Get(ctx context.Context, kind Kind, id uuid.UUID) (Record, error)
	Save(ctx context.Context, rec Record) error
}
