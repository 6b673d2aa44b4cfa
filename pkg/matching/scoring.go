package matching

import (
	"math"
	"strings"

	"github.com/artem13815/freelance/pkg/freelancer"
	"github.com/artem13815/freelance/pkg/skills"
)

// Веса итоговой оценки, в сумме 1.0.
const (
	WeightSemantic     = 0.6
	WeightSkills       = 0.2
	WeightRate         = 0.1
	WeightAvailability = 0.1
)

const neutralScore = 0.5

// Breakdown хранит четыре составляющие оценки кандидата, каждая в [0,1].
type Breakdown struct {
	SemanticSimilarity float64 `json:"semantic_similarity"`
	SkillsMatch        float64 `json:"skills_match"`
	RateFit            float64 `json:"rate_fit"`
	Availability       float64 `json:"availability"`
}

// Clamp приводит каждую составляющую к [0,1]; NaN становится 0.
func (b Breakdown) Clamp() Breakdown {
	return Breakdown{
		SemanticSimilarity: clamp01(b.SemanticSimilarity),
		SkillsMatch:        clamp01(b.SkillsMatch),
		RateFit:            clamp01(b.RateFit),
		Availability:       clamp01(b.Availability),
	}
}

// Score возвращает взвешенную сумму составляющих после Clamp.
func (b Breakdown) Score() float64 {
	c := b.Clamp()
	return WeightSemantic*c.SemanticSimilarity +
		WeightSkills*c.SkillsMatch +
		WeightRate*c.RateFit +
		WeightAvailability*c.Availability
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// SkillsMatch возвращает долю требуемых навыков, найденных у кандидата.
// Навыки сравниваются без учёта регистра и крайних пробелов.
func SkillsMatch(required, candidate []string) float64 {
	have := make(map[string]struct{}, len(candidate))
	for _, s := range candidate {
		have[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}
	return skillShare(required, candidate, func(s string) bool {
		_, ok := have[strings.ToLower(strings.TrimSpace(s))]
		return ok
	})
}

// FuzzySkillsMatch как SkillsMatch, но дополнительно игнорирует пунктуацию и
// засчитывает синонимы (go/golang, k8s/kubernetes).
func FuzzySkillsMatch(required, candidate []string) float64 {
	return skillShare(required, candidate, skills.NewSet(candidate).Has)
}

func skillShare(required, candidate []string, has func(string) bool) float64 {
	if len(required) == 0 {
		return 1
	}
	if len(candidate) == 0 {
		return 0
	}
	found := 0
	for _, s := range required {
		if has(s) {
			found++
		}
	}
	return float64(found) / float64(len(required))
}

// RateFit сравнивает ставку кандидата с оценкой почасового бюджета проекта.
// Оценка считается как budget/(budget/50), что всегда даёт 50 при budget > 0.
func RateFit(budget, rate *float64) float64 {
	if budget == nil || rate == nil || *budget <= 0 || *rate <= 0 {
		return neutralScore
	}
	estimatedHours := *budget / 50
	hourlyBudget := *budget / estimatedHours
	ratio := *rate / hourlyBudget

	switch {
	case ratio >= 0.8 && ratio <= 1.2:
		return 1
	case ratio >= 0.6 && ratio <= 1.4:
		return 0.7
	case ratio >= 0.4 && ratio <= 1.6:
		return 0.4
	default:
		return 0.2
	}
}

func AvailabilityScore(a freelancer.Availability) float64 {
	switch a {
	case freelancer.AvailabilityAvailable:
		return 1
	case freelancer.AvailabilityBusy:
		return 0.5
	case freelancer.AvailabilityUnavailable:
		return 0
	default:
		return neutralScore
	}
}
