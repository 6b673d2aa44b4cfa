package embedding

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/artem13815/freelance/pkg/llm"
	"github.com/artem13815/freelance/pkg/logger"
)

// ErrInvalidVector is returned when the provider yields an empty vector or one of the wrong length.
var ErrInvalidVector = errors.New("invalid embedding vector")

type Config struct {
	// Dimensions is the expected vector length. Zero disables the check.
	Dimensions int
	// RefreshOnChange regenerates a stored vector whose content hash no longer matches the text.
	RefreshOnChange bool
}

// Service returns stored embeddings and generates missing ones.
type Service struct {
	store    Store
	embedder llm.Embedder
	cfg      Config
	log      *zap.Logger
	now      func() time.Time
}

func NewService(store Store, embedder llm.Embedder, cfg Config, log *zap.Logger) *Service {
	return &Service{
		store:    store,
		embedder: embedder,
		cfg:      cfg,
		log:      logger.OrNop(log),
		now:      time.Now,
	}
}

// GetOrCreate returns the stored vector of doc or generates, persists and returns a new one.
func (s *Service) GetOrCreate(ctx context.Context, doc Document) ([]float32, error) {
	vec, _, err := s.resolve(ctx, doc, false)
	return vec, err
}

// Refresh regenerates the vector of doc regardless of what is stored.
func (s *Service) Refresh(ctx context.Context, doc Document) ([]float32, error) {
	vec, _, err := s.resolve(ctx, doc, true)
	return vec, err
}

type BackfillResult struct {
	Total     int
	Generated int
	Cached    int
}

// Backfill makes sure every document has a stored vector. concurrency <= 0 means unbounded.
func (s *Service) Backfill(ctx context.Context, docs []Document, concurrency int) (BackfillResult, error) {
	var generated, cached atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}
	for _, doc := range docs {
		g.Go(func() error {
			_, fresh, err := s.resolve(gctx, doc, false)
			if err != nil {
				return err
			}
			if fresh {
				generated.Add(1)
			} else {
				cached.Add(1)
			}
			return nil
		})
	}
	err := g.Wait()

	return BackfillResult{
		Total:     len(docs),
		Generated: int(generated.Load()),
		Cached:    int(cached.Load()),
	}, err
}

func (s *Service) resolve(ctx context.Context, doc Document, force bool) ([]float32, bool, error) {
	persist := doc.ID != uuid.Nil
	hash := ContentHash(doc.Text)

	if persist && !force {
		rec, err := s.store.Get(ctx, doc.Kind, doc.ID)
		if err != nil {
			return nil, false, fmt.Errorf("load %s embedding %s: %w", doc.Kind, doc.ID, err)
		}
		if len(rec.Vector) > 0 {
			if !s.cfg.RefreshOnChange || rec.ContentHash == hash {
				return rec.Vector, false, nil
			}
			s.log.Debug("embedding content changed, regenerating",
				zap.String("kind", string(doc.Kind)),
				zap.Stringer("id", doc.ID),
			)
		}
	}

	vec, err := s.embedder.Embed(ctx, doc.Text)
	if err != nil {
		return nil, false, fmt.Errorf("embed %s %s: %w", doc.Kind, doc.ID, providerError(err))
	}
	if len(vec) == 0 {
		return nil, false, fmt.Errorf("embed %s %s: %w: empty vector", doc.Kind, doc.ID, ErrInvalidVector)
	}
	if s.cfg.Dimensions > 0 && len(vec) != s.cfg.Dimensions {
		return nil, false, fmt.Errorf("embed %s %s: %w: got %d dimensions, want %d",
			doc.Kind, doc.ID, ErrInvalidVector, len(vec), s.cfg.Dimensions)
	}

	if persist {
		rec := Record{
			EntityID:    doc.ID,
			Kind:        doc.Kind,
			Vector:      vec,
			ContentHash: hash,
			UpdatedAt:   s.now().UTC(),
		}
		if err := s.store.Save(ctx, rec); err != nil {
			return nil, false, fmt.Errorf("save %s embedding %s: %w", doc.Kind, doc.ID, err)
		}
	}

	s.log.Debug("embedding generated",
		zap.String("kind", string(doc.Kind)),
		zap.Stringer("id", doc.ID),
		zap.Int("dimensions", len(vec)),
		zap.Bool("persisted", persist),
	)
	return vec, true, nil
}

func providerError(err error) error {
	if errors.Is(err, llm.ErrProvider) {
		return err
	}
	return fmt.Errorf("%w: %w", llm.ErrProvider, err)
}
