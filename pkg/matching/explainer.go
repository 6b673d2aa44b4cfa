package matching

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/artem13815/freelance/pkg/llm"
	"github.com/artem13815/freelance/pkg/logger"
	"github.com/artem13815/freelance/pkg/project"
)

// FallbackExplanation используется, когда модель недоступна или ответила пустой строкой.
const FallbackExplanation = "Este freelancer tiene un perfil compatible con los requisitos del proyecto."

const explainSystemPrompt = "Eres un asistente de una plataforma de freelancers. " +
	"Explica en 2-3 frases, en español, por qué el freelancer encaja con el proyecto. " +
	"Sé concreto y no inventes datos."

type ExplainerConfig struct {
	Temperature float32
	MaxTokens   int
}

func DefaultExplainerConfig() ExplainerConfig {
	return ExplainerConfig{Temperature: 0.7, MaxTokens: 150}
}

// LLMExplainer генерирует обоснование через ChatModel.
type LLMExplainer struct {
	chat llm.ChatModel
	cfg  ExplainerConfig
	log  *zap.Logger
}

func NewExplainer(chat llm.ChatModel, cfg ExplainerConfig, log *zap.Logger) *LLMExplainer {
	return &LLMExplainer{chat: chat, cfg: cfg, log: logger.OrNop(log)}
}

func (e *LLMExplainer) Explain(ctx context.Context, p project.Project, m Match) string {
	if e.chat == nil {
		return FallbackExplanation
	}
	out, err := e.chat.Ask(ctx, explainSystemPrompt, buildExplainPrompt(p, m),
		llm.WithTemperature(e.cfg.Temperature),
		llm.WithMaxTokens(e.cfg.MaxTokens),
	)
	if err != nil {
		e.log.Warn("match explanation failed, using fallback",
			zap.Stringer("project_id", p.ID),
			zap.Stringer("freelancer_id", m.Freelancer.ID),
			zap.Error(err),
		)
		return FallbackExplanation
	}
	out = strings.TrimSpace(out)
	if out == "" {
		e.log.Warn("empty match explanation, using fallback",
			zap.Stringer("project_id", p.ID),
			zap.Stringer("freelancer_id", m.Freelancer.ID),
		)
		return FallbackExplanation
	}
	return out
}

func buildExplainPrompt(p project.Project, m Match) string {
	f := m.Freelancer
	b := m.Breakdown

	var sb strings.Builder
	sb.WriteString("Proyecto:\n")
	fmt.Fprintf(&sb, "- Título: %s\n", p.Title)
	fmt.Fprintf(&sb, "- Descripción: %s\n", p.Description)
	fmt.Fprintf(&sb, "- Habilidades requeridas: %s\n", listOrDash(p.RequiredSkills))
	fmt.Fprintf(&sb, "- Presupuesto: %s\n", amountOrDash(p.AllocatedBudget))
	sb.WriteString("\nFreelancer:\n")
	fmt.Fprintf(&sb, "- Bio: %s\n", f.Bio)
	fmt.Fprintf(&sb, "- Habilidades: %s\n", listOrDash(f.Skills))
	fmt.Fprintf(&sb, "- Tarifa por hora: %s\n", amountOrDash(f.HourlyRate))
	fmt.Fprintf(&sb, "- Valoración: %.1f/5\n", f.Rating)
	fmt.Fprintf(&sb, "- Trabajos completados: %d\n", f.TotalJobs)
	fmt.Fprintf(&sb, "\nPuntuación total: %.0f%%\n", m.Score*100)
	fmt.Fprintf(&sb, "- Similitud semántica: %.0f%%\n", b.SemanticSimilarity*100)
	fmt.Fprintf(&sb, "- Coincidencia de habilidades: %.0f%%\n", b.SkillsMatch*100)
	fmt.Fprintf(&sb, "- Ajuste de tarifa: %.0f%%\n", b.RateFit*100)
	fmt.Fprintf(&sb, "- Disponibilidad: %.0f%%\n", b.Availability*100)
	return sb.String()
}

func listOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}

func amountOrDash(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f €", *v)
}
