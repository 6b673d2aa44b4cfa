package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/artem13815/freelance/api/http/presenter"
	"github.com/artem13815/freelance/pkg/matching"
)

type MatchHandler struct {
	uc              matching.UseCase
	defaultLimit    int
	defaultMinScore float64
}

func NewMatchHandler(uc matching.UseCase, defaultLimit int, defaultMinScore float64) *MatchHandler {
	if defaultLimit <= 0 {
		defaultLimit = matching.DefaultLimit
	}
	return &MatchHandler{uc: uc, defaultLimit: defaultLimit, defaultMinScore: defaultMinScore}
}

type matchResponse struct {
	FreelancerID string             `json:"freelancerId"`
	UserID       string             `json:"userId"`
	FullName     string             `json:"fullName"`
	Skills       []string           `json:"skills"`
	HourlyRate   *float64           `json:"hourlyRate,omitempty"`
	Rating       float64            `json:"rating"`
	TotalJobs    int                `json:"totalJobs"`
	Score        float64            `json:"score"`
	Breakdown    matching.Breakdown `json:"breakdown"`
	Explanation  string             `json:"explanation"`
}

type matchListResponse struct {
	ProjectID string          `json:"projectId"`
	Matches   []matchResponse `json:"matches"`
}

func toMatchResponse(m matching.Match) matchResponse {
	skills := m.Freelancer.Skills
	if skills == nil {
		skills = []string{}
	}
	return matchResponse{
		FreelancerID: m.Freelancer.ID.String(),
		UserID:       m.Freelancer.UserID.String(),
		FullName:     m.Freelancer.FullName,
		Skills:       skills,
		HourlyRate:   m.Freelancer.HourlyRate,
		Rating:       m.Freelancer.Rating,
		TotalJobs:    m.Freelancer.TotalJobs,
		Score:        m.Score,
		Breakdown:    m.Breakdown,
		Explanation:  m.Explanation,
	}
}

// List ранжирует доступных фрилансеров под проект.
// @Summary Подбор фрилансеров для проекта
// @Tags    Matching
// @Produce json
// @Param   id       path  string  true  "ID проекта (UUID)"
// @Param   limit    query int     false "Максимум кандидатов (1..200)"
// @Param   minScore query number  false "Минимальная оценка (0..1)"
// @Security BearerAuth
// @Success 200 {object} matchListResponse
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 401 {object} presenter.ErrorResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Failure 502 {object} presenter.ErrorResponse
// @Router  /projects/{id}/matches [get]
func (h *MatchHandler) List(c *fiber.Ctx) error {
	projectID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "невалидный id проекта")
	}
	limit := parseLimit(c, h.defaultLimit)
	minScore := h.defaultMinScore
	if v := strings.TrimSpace(c.Query("minScore")); v != "" {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil || n < 0 || n > 1 {
			return presenter.Error(c, http.StatusBadRequest, "minScore должен быть в диапазоне 0..1")
		}
		minScore = n
	}

	matches, err := h.uc.FindBestMatches(c.UserContext(), projectID, limit, minScore)
	if err != nil {
		return writeError(c, err)
	}

	out := matchListResponse{ProjectID: projectID.String(), Matches: make([]matchResponse, 0, len(matches))}
	for _, m := range matches {
		out.Matches = append(out.Matches, toMatchResponse(m))
	}
	return presenter.JSON(c, http.StatusOK, out)
}
