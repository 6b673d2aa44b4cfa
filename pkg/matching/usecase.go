package matching

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/artem13815/freelance/pkg/embedding"
	"github.com/artem13815/freelance/pkg/freelancer"
	"github.com/artem13815/freelance/pkg/logger"
	"github.com/artem13815/freelance/pkg/project"
)

// ErrNoCandidates возвращается, когда нет ни одного доступного фрилансера.
var ErrNoCandidates = errors.New("no available freelancers")

const DefaultLimit = 10

// Match описывает кандидата с итоговой оценкой и разбивкой. Не сохраняется.
type Match struct {
	Freelancer  freelancer.Freelancer
	Score       float64
	Breakdown   Breakdown
	Explanation string
}

// Embeddings отдаёт векторы (кэш эмбеддингов).
type Embeddings interface {
	GetOrCreate(ctx context.Context, doc embedding.Document) ([]float32, error)
}

// Explainer формирует текстовое обоснование совпадения. Не возвращает ошибок.
type Explainer interface {
	Explain(ctx context.Context, p project.Project, m Match) string
}

// UseCase подбирает фрилансеров под проект.
type UseCase interface {
	FindBestMatches(ctx context.Context, projectID uuid.UUID, limit int, minScore float64) ([]Match, error)
}

type Config struct {
	// Concurrency ограничивает параллельные запросы к провайдеру; 0 снимает ограничение.
	Concurrency int
	// FuzzySkills включает сравнение навыков с учётом пунктуации и синонимов.
	FuzzySkills bool
}

type service struct {
	projects    project.Repository
	freelancers freelancer.Repository
	embeddings  Embeddings
	explainer   Explainer
	cfg         Config
	log         *zap.Logger
}

func NewService(projects project.Repository, freelancers freelancer.Repository, embeddings Embeddings, explainer Explainer, cfg Config, log *zap.Logger) UseCase {
	return &service{
		projects:    projects,
		freelancers: freelancers,
		embeddings:  embeddings,
		explainer:   explainer,
		cfg:         cfg,
		log:         logger.OrNop(log),
	}
}

func (s *service) FindBestMatches(ctx context.Context, projectID uuid.UUID, limit int, minScore float64) ([]Match, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	p, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load project %s: %w", projectID, err)
	}

	projectVec, err := s.embeddings.GetOrCreate(ctx, embedding.ForProject(p))
	if err != nil {
		return nil, fmt.Errorf("project embedding: %w", err)
	}

	candidates, err := s.loadCandidates(ctx)
	if err != nil {
		return nil, err
	}

	vectors, err := s.candidateEmbeddings(ctx, candidates)
	if err != nil {
		return nil, err
	}

	skillsMatch := SkillsMatch
	if s.cfg.FuzzySkills {
		skillsMatch = FuzzySkillsMatch
	}

	matches := make([]Match, 0, len(candidates))
	for i, c := range candidates {
		similarity, err := CosineSimilarity(projectVec, vectors[i])
		if err != nil {
			return nil, fmt.Errorf("freelancer %s: %w", c.ID, err)
		}
		b := Breakdown{
			SemanticSimilarity: similarity,
			SkillsMatch:        skillsMatch(p.RequiredSkills, c.Skills),
			RateFit:            RateFit(p.AllocatedBudget, c.HourlyRate),
			Availability:       AvailabilityScore(c.Availability),
		}.Clamp()
		score := b.Score()
		if score < minScore {
			continue
		}
		matches = append(matches, Match{Freelancer: c, Score: score, Breakdown: b})
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if len(matches) > limit {
		matches = matches[:limit]
	}

	s.explain(ctx, p, matches)

	s.log.Debug("matches computed",
		zap.Stringer("project_id", projectID),
		zap.Int("candidates", len(candidates)),
		zap.Int("returned", len(matches)),
	)
	return matches, nil
}

func (s *service) loadCandidates(ctx context.Context) ([]freelancer.Freelancer, error) {
	all, err := s.freelancers.ListAvailable(ctx)
	if err != nil {
		return nil, fmt.Errorf("list available freelancers: %w", err)
	}
	out := make([]freelancer.Freelancer, 0, len(all))
	for _, f := range all {
		if f.Availability == freelancer.AvailabilityAvailable {
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		return nil, ErrNoCandidates
	}
	return out, nil
}

// candidateEmbeddings fetches every vector concurrently. Each goroutine owns its slot;
// all failures are collected and returned together.
func (s *service) candidateEmbeddings(ctx context.Context, candidates []freelancer.Freelancer) ([][]float32, error) {
	vectors := make([][]float32, len(candidates))
	errs := make([]error, len(candidates))

	var g errgroup.Group
	if s.cfg.Concurrency > 0 {
		g.SetLimit(s.cfg.Concurrency)
	}
	for i, c := range candidates {
		g.Go(func() error {
			vec, err := s.embeddings.GetOrCreate(ctx, embedding.ForFreelancer(c))
			if err != nil {
				errs[i] = fmt.Errorf("freelancer %s: %w", c.ID, err)
				return nil
			}
			vectors[i] = vec
			return nil
		})
	}
	_ = g.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("candidate embeddings: %w", err)
	}
	return vectors, nil
}

func (s *service) explain(ctx context.Context, p project.Project, matches []Match) {
	if s.explainer == nil || len(matches) == 0 {
		return
	}
	var g errgroup.Group
	if s.cfg.Concurrency > 0 {
		g.SetLimit(s.cfg.Concurrency)
	}
	for i := range matches {
		g.Go(func() error {
			matches[i].Explanation = s.explainer.Explain(ctx, p, matches[i])
			return nil
		})
	}
	_ = g.Wait()
}
